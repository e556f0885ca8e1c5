package ebitenview

import "github.com/phanxgames/stage3d"

// quadContains reports whether (x, y) lies inside a convex quad using the
// cross-product sign test. Either winding order is accepted.
func quadContains(q [4]stage3d.Vec2, x, y float64) bool {
	var positive, negative bool
	for i := range q {
		x1, y1 := q[i].X, q[i].Y
		j := (i + 1) % len(q)
		x2, y2 := q[j].X, q[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return positive || negative
}

// pick returns the topmost leaf under the point (x, y), given relative to the
// viewport center, or "" when the point hits nothing.
func pick(f *stage3d.Frame, x, y float64) string {
	order := f.PaintOrder()
	for i := len(order) - 1; i >= 0; i-- {
		e := order[i]
		q, ok := f.Project(e)
		if ok && quadContains(q, x, y) {
			return e.ID
		}
	}
	return ""
}
