package stage3d

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Composition is a transform turned into something renderable: the CSS
// transform list and the equivalent 4x4 matrix.
//
// Composition order is fixed for every node:
//
//	translate3d(X, Y, Z) -> rotateX -> rotateY -> rotateZ -> scale3d(X, Y, Z)
//
// As in CSS, the list is applied right to left to the node's points, so the
// scale acts first in the node's own space and the translation last.
type Composition struct {
	Transform Transform
	Matrix    mgl64.Mat4
}

// Compose composes t. It is a pure function of t.
func Compose(t Transform) Composition {
	m := mgl64.Translate3D(t.TranslateX, t.TranslateY, t.TranslateZ).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(t.RotateX))).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(t.RotateY))).
		Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(t.RotateZ))).
		Mul4(mgl64.Scale3D(t.ScaleX, t.ScaleY, t.ScaleZ))
	return Composition{Transform: t, Matrix: m}
}

// CSS returns the CSS transform property value.
func (c Composition) CSS() string {
	t := c.Transform
	var b strings.Builder
	b.WriteString("translate3d(")
	b.WriteString(px(t.TranslateX))
	b.WriteString(", ")
	b.WriteString(px(t.TranslateY))
	b.WriteString(", ")
	b.WriteString(px(t.TranslateZ))
	b.WriteString(") rotateX(")
	b.WriteString(deg(t.RotateX))
	b.WriteString(") rotateY(")
	b.WriteString(deg(t.RotateY))
	b.WriteString(") rotateZ(")
	b.WriteString(deg(t.RotateZ))
	b.WriteString(") scale3d(")
	b.WriteString(num(t.ScaleX))
	b.WriteString(", ")
	b.WriteString(num(t.ScaleY))
	b.WriteString(", ")
	b.WriteString(num(t.ScaleZ))
	b.WriteString(")")
	return b.String()
}

// Apply transforms a point given in the node's local space.
func (c Composition) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, c.Matrix)
}

// CameraMatrix returns the stage transform for a camera:
//
//	scale(zoom) -> rotateX -> rotateY -> rotateZ
//
// scale() is the 2D CSS function, so depth is not scaled.
func CameraMatrix(c CameraState) mgl64.Mat4 {
	return mgl64.Scale3D(c.Zoom, c.Zoom, 1).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(c.RotationX))).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(c.RotationY))).
		Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(c.RotationZ)))
}

// CameraCSS returns the CSS transform of the stage for a camera.
func CameraCSS(c CameraState) string {
	return "scale(" + num(c.Zoom) + ") rotateX(" + deg(c.RotationX) +
		") rotateY(" + deg(c.RotationY) + ") rotateZ(" + deg(c.RotationZ) + ")"
}

// Project applies a CSS perspective of the given depth to a point centered on
// the perspective origin. ok is false for points at or behind the viewer.
func Project(p mgl64.Vec3, perspective float64) (x, y float64, ok bool) {
	w := 1 - p.Z()/perspective
	if w <= 0 {
		return 0, 0, false
	}
	return p.X() / w, p.Y() / w, true
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func px(v float64) string {
	return num(v) + "px"
}

func deg(v float64) string {
	return num(v) + "deg"
}
