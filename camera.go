package stage3d

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Camera limits and steps.
const (
	MinRotation = -180.0
	MaxRotation = 180.0

	MinZoom = 0.1
	MaxZoom = 5.0

	MinFieldOfView = 100.0
	MaxFieldOfView = 50000.0

	DefaultFieldOfView = 1000.0

	// FieldOfViewStep is the change per bracket keystroke.
	FieldOfViewStep = 50.0
	// ZoomPerWheelUnit scales a wheel deltaY into a zoom change.
	ZoomPerWheelUnit = 0.001
)

// Axis selects one of the three rotation axes.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// CameraState is the viewport-wide view of the stage.
type CameraState struct {
	// RotationX, RotationY and RotationZ rotate the whole stage, in degrees.
	RotationX, RotationY, RotationZ float64
	// Zoom scales the stage (1 = no zoom).
	Zoom float64
	// FieldOfView is the CSS perspective depth in px. Larger values give
	// shallower foreshortening.
	FieldOfView float64
}

// DefaultCameraState returns an unrotated, unzoomed camera.
func DefaultCameraState() CameraState {
	return CameraState{Zoom: 1, FieldOfView: DefaultFieldOfView}
}

// Clamped returns s with every field forced into its allowed range.
func (s CameraState) Clamped() CameraState {
	s.RotationX = clamp(s.RotationX, MinRotation, MaxRotation)
	s.RotationY = clamp(s.RotationY, MinRotation, MaxRotation)
	s.RotationZ = clamp(s.RotationZ, MinRotation, MaxRotation)
	s.Zoom = clamp(s.Zoom, MinZoom, MaxZoom)
	s.FieldOfView = clamp(s.FieldOfView, MinFieldOfView, MaxFieldOfView)
	return s
}

// Rotation returns the rotation around axis.
func (s CameraState) Rotation(axis Axis) float64 {
	switch axis {
	case AxisX:
		return s.RotationX
	case AxisY:
		return s.RotationY
	default:
		return s.RotationZ
	}
}

// Camera owns the camera state and notifies its owner after every change.
type Camera struct {
	state    CameraState
	refocus  *tweenGroup
	onChange func(CameraState)
}

// NewCamera creates a camera in the default state. onChange, if non-nil, is
// called after every change with the new state.
func NewCamera(onChange func(CameraState)) *Camera {
	return &Camera{state: DefaultCameraState(), onChange: onChange}
}

// State returns the current camera state.
func (c *Camera) State() CameraState {
	return c.state
}

// Restore replaces the state without notifying, clamping every field. Used
// when hydrating from storage.
func (c *Camera) Restore(s CameraState) {
	c.refocus = nil
	c.state = s.Clamped()
}

// SetRotation sets the rotation around axis as a slider does, clamped to
// [MinRotation, MaxRotation].
func (c *Camera) SetRotation(axis Axis, degrees float64) {
	c.refocus = nil
	next := c.state
	v := clamp(degrees, MinRotation, MaxRotation)
	switch axis {
	case AxisX:
		next.RotationX = v
	case AxisY:
		next.RotationY = v
	default:
		next.RotationZ = v
	}
	c.set(next)
}

// SetZoom sets the zoom, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(zoom float64) {
	c.refocus = nil
	next := c.state
	next.Zoom = clamp(zoom, MinZoom, MaxZoom)
	c.set(next)
}

// AdjustZoom adds delta to the zoom.
func (c *Camera) AdjustZoom(delta float64) {
	c.SetZoom(c.state.Zoom + delta)
}

// SetFieldOfView sets the perspective depth, clamped to
// [MinFieldOfView, MaxFieldOfView].
func (c *Camera) SetFieldOfView(fov float64) {
	c.refocus = nil
	next := c.state
	next.FieldOfView = clamp(fov, MinFieldOfView, MaxFieldOfView)
	c.set(next)
}

// AdjustFieldOfView adds delta to the field of view.
func (c *Camera) AdjustFieldOfView(delta float64) {
	c.SetFieldOfView(c.state.FieldOfView + delta)
}

// setDragRotation applies a drag-derived rotation. Drag values are not
// clamped; they wrap into [-180, 180) so the gesture never sticks at a bound
// and the sliders can still display the result.
func (c *Camera) setDragRotation(x, y float64) {
	c.refocus = nil
	next := c.state
	next.RotationX = wrapDegrees(x)
	next.RotationY = wrapDegrees(y)
	c.set(next)
}

// Refocus animates the camera back to no rotation and zoom 1 over duration
// seconds. The field of view is kept. Advance it with Update. A nil easeFn
// uses ease.OutCubic.
func (c *Camera) Refocus(duration float32, easeFn ease.TweenFunc) {
	s := c.state
	c.refocus = newTweenGroup(
		[]float64{s.RotationX, s.RotationY, s.RotationZ, s.Zoom},
		[]float64{0, 0, 0, 1},
		duration, easeFn,
	)
}

// Refocusing reports whether a refocus animation is running.
func (c *Camera) Refocusing() bool {
	return c.refocus != nil
}

// Update advances an active refocus by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.refocus == nil {
		return
	}
	v, done := c.refocus.Update(dt)
	if done {
		c.refocus = nil
	}
	next := c.state
	next.RotationX, next.RotationY, next.RotationZ = v[0], v[1], v[2]
	next.Zoom = clamp(v[3], MinZoom, MaxZoom)
	c.set(next)
}

func (c *Camera) set(next CameraState) {
	if next == c.state {
		return
	}
	c.state = next
	if c.onChange != nil {
		c.onChange(next)
	}
}

// wrapDegrees maps any angle into [-180, 180).
func wrapDegrees(v float64) float64 {
	return v - 360*math.Floor((v+180)/360)
}
