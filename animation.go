package stage3d

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// tweenGroup animates up to 4 float64 values over the same duration and
// easing. Call Update(dt) each frame; there is no global animation manager.
type tweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	ends   [4]float64
	done   bool
}

// newTweenGroup creates a group moving each from[i] to to[i]. Extra values
// beyond 4 are ignored.
func newTweenGroup(from, to []float64, duration float32, fn ease.TweenFunc) *tweenGroup {
	if fn == nil {
		fn = ease.OutCubic
	}
	g := &tweenGroup{}
	for i := 0; i < len(from) && i < len(to) && i < len(g.tweens); i++ {
		g.tweens[i] = gween.New(float32(from[i]), float32(to[i]), duration, fn)
		g.ends[i] = to[i]
		g.count++
	}
	return g
}

// Update advances every tween by dt seconds and returns the current values.
// Once all tweens finish the exact end values are returned and done is true.
func (g *tweenGroup) Update(dt float32) (values [4]float64, done bool) {
	if g.done {
		return g.ends, true
	}
	finished := true
	for i := 0; i < g.count; i++ {
		v, ok := g.tweens[i].Update(dt)
		values[i] = float64(v)
		finished = finished && ok
	}
	if finished {
		g.done = true
		return g.ends, true
	}
	return values, false
}
