package ebitenview

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/stage3d"
)

// Selection outline, matching stage3d.HighlightOutline.
const outlineWidth = 2

var outlineColor = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}

// --- White pixel singleton (single-threaded, drawn from ebiten's Draw only) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used as
// the source of every untextured triangle.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}

// renderer reuses its vertex and index buffers across frames.
type renderer struct {
	verts []ebiten.Vertex
	inds  []uint16
}

// drawFrame paints every visible leaf of f as a flat quad, in paint order,
// centered on (cx, cy). Leaves with a corner behind the viewer are skipped.
func (r *renderer) drawFrame(dst *ebiten.Image, f *stage3d.Frame, cx, cy float64) {
	for _, e := range f.PaintOrder() {
		q, ok := f.Project(e)
		if !ok {
			continue
		}
		for i := range q {
			q[i].X += cx
			q[i].Y += cy
		}
		cr, cg, cb, ca := fillColor(e.Style.BackgroundColor, e.Style.Opacity)
		r.reset()
		r.appendQuad(q, cr, cg, cb, ca)
		if e.Selected {
			r.appendOutline(q)
		}
		r.flush(dst)
	}
}

func (r *renderer) reset() {
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
}

func (r *renderer) flush(dst *ebiten.Image) {
	if len(r.inds) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = true
	dst.DrawTriangles(r.verts, r.inds, ensureWhitePixel(), &op)
}

// appendQuad adds two triangles covering q with a premultiplied color.
func (r *renderer) appendQuad(q [4]stage3d.Vec2, cr, cg, cb, ca float32) {
	base := uint16(len(r.verts))
	for _, p := range q {
		r.verts = append(r.verts, ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		})
	}
	r.inds = append(r.inds,
		base+0, base+1, base+2,
		base+0, base+2, base+3,
	)
}

// appendOutline strokes the edges of q.
func (r *renderer) appendOutline(q [4]stage3d.Vec2) {
	cr := float32(outlineColor.R) / 255
	cg := float32(outlineColor.G) / 255
	cb := float32(outlineColor.B) / 255
	for i := range q {
		a, b := q[i], q[(i+1)%len(q)]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*outlineWidth/2, dx/l*outlineWidth/2
		r.appendQuad([4]stage3d.Vec2{
			{X: a.X + nx, Y: a.Y + ny},
			{X: b.X + nx, Y: b.Y + ny},
			{X: b.X - nx, Y: b.Y - ny},
			{X: a.X - nx, Y: a.Y - ny},
		}, cr, cg, cb, 1)
	}
}
