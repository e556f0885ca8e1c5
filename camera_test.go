package stage3d

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestCameraDefaults(t *testing.T) {
	c := NewCamera(nil)
	if got := c.State(); got != (CameraState{Zoom: 1, FieldOfView: 1000}) {
		t.Errorf("State() = %+v, want zoom 1 fov 1000", got)
	}
}

func TestCameraClamps(t *testing.T) {
	c := NewCamera(nil)

	c.SetRotation(AxisX, 500)
	c.SetRotation(AxisY, -500)
	c.SetRotation(AxisZ, 90)
	c.SetZoom(20)
	c.SetFieldOfView(10)

	s := c.State()
	if s.RotationX != 180 {
		t.Errorf("RotationX = %v, want 180", s.RotationX)
	}
	if s.RotationY != -180 {
		t.Errorf("RotationY = %v, want -180", s.RotationY)
	}
	if s.Rotation(AxisZ) != 90 {
		t.Errorf("Rotation(AxisZ) = %v, want 90", s.Rotation(AxisZ))
	}
	if s.Zoom != MaxZoom {
		t.Errorf("Zoom = %v, want %v", s.Zoom, MaxZoom)
	}
	if s.FieldOfView != MinFieldOfView {
		t.Errorf("FieldOfView = %v, want %v", s.FieldOfView, MinFieldOfView)
	}

	c.SetZoom(0)
	c.SetFieldOfView(1e9)
	if got := c.State().Zoom; got != MinZoom {
		t.Errorf("Zoom = %v, want %v", got, MinZoom)
	}
	if got := c.State().FieldOfView; got != MaxFieldOfView {
		t.Errorf("FieldOfView = %v, want %v", got, MaxFieldOfView)
	}
}

func TestCameraAdjust(t *testing.T) {
	c := NewCamera(nil)
	c.AdjustZoom(0.25)
	c.AdjustFieldOfView(-50)
	if got := c.State().Zoom; !approxEqual(got, 1.25, 1e-9) {
		t.Errorf("Zoom = %v, want 1.25", got)
	}
	if got := c.State().FieldOfView; got != 950 {
		t.Errorf("FieldOfView = %v, want 950", got)
	}
}

func TestCameraNotifiesOnChangeOnly(t *testing.T) {
	var calls []CameraState
	c := NewCamera(func(s CameraState) { calls = append(calls, s) })

	c.SetZoom(2)
	c.SetZoom(2)
	c.SetRotation(AxisY, 30)

	if len(calls) != 2 {
		t.Fatalf("onChange called %d times, want 2", len(calls))
	}
	if calls[1].RotationY != 30 || calls[1].Zoom != 2 {
		t.Errorf("last notification = %+v, want rotY 30 zoom 2", calls[1])
	}
}

func TestCameraRestoreClampsSilently(t *testing.T) {
	calls := 0
	c := NewCamera(func(CameraState) { calls++ })
	c.Restore(CameraState{RotationX: 400, Zoom: 9, FieldOfView: 5})

	if calls != 0 {
		t.Errorf("onChange called %d times during Restore", calls)
	}
	want := CameraState{RotationX: 180, Zoom: 5, FieldOfView: 100}
	if got := c.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
}

func TestCameraRejectsNaN(t *testing.T) {
	c := NewCamera(nil)
	c.Restore(CameraState{RotationX: math.NaN(), Zoom: math.NaN(), FieldOfView: math.NaN()})
	want := CameraState{RotationX: MinRotation, Zoom: MinZoom, FieldOfView: MinFieldOfView}
	if got := c.State(); got != want {
		t.Errorf("State() after NaN restore = %+v, want %+v", got, want)
	}

	c.SetZoom(2)
	c.SetZoom(math.NaN())
	if got := c.State().Zoom; got != MinZoom {
		t.Errorf("Zoom = %v, want %v", got, MinZoom)
	}
	c.AdjustFieldOfView(math.NaN())
	if got := c.State().FieldOfView; got != MinFieldOfView {
		t.Errorf("FieldOfView = %v, want %v", got, MinFieldOfView)
	}
}

func TestWrapDegrees(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{40, 40},
		{179, 179},
		{180, -180},
		{-180, -180},
		{190, -170},
		{-190, 170},
		{720, 0},
		{-540, -180},
	}
	for _, tt := range tests {
		if got := wrapDegrees(tt.in); !approxEqual(got, tt.want, epsilon) {
			t.Errorf("wrapDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCameraRefocus(t *testing.T) {
	c := NewCamera(nil)
	c.SetRotation(AxisX, 60)
	c.SetRotation(AxisY, -90)
	c.SetZoom(3)
	c.SetFieldOfView(2000)

	c.Refocus(1, ease.Linear)
	if !c.Refocusing() {
		t.Fatal("Refocusing() = false after Refocus")
	}

	c.Update(0.5)
	mid := c.State()
	if !approxEqual(mid.RotationX, 30, 1e-3) || !approxEqual(mid.RotationY, -45, 1e-3) || !approxEqual(mid.Zoom, 2, 1e-3) {
		t.Errorf("halfway state = %+v, want rotX 30 rotY -45 zoom 2", mid)
	}

	c.Update(0.6)
	if c.Refocusing() {
		t.Error("Refocusing() = true after the tween finished")
	}
	// The field of view is kept.
	if got := c.State(); got != (CameraState{Zoom: 1, FieldOfView: 2000}) {
		t.Errorf("final state = %+v, want zoom 1 fov 2000", got)
	}
}

func TestCameraInputCancelsRefocus(t *testing.T) {
	c := NewCamera(nil)
	c.SetZoom(3)
	c.Refocus(1, nil)

	c.SetRotation(AxisZ, 10)
	if c.Refocusing() {
		t.Error("Refocusing() = true after slider input")
	}
	c.Update(1)
	if got := c.State().Zoom; got != 3 {
		t.Errorf("Zoom = %v, want 3", got)
	}
}
