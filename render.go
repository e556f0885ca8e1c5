package stage3d

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Selection highlight. It is purely decorative: outline and box-shadow never
// change the layout box, and z-index only affects paint order.
const (
	HighlightOutline = "2px solid #3b82f6"
	HighlightShadow  = "0 0 12px 2px rgba(59, 130, 246, 0.8)"
	SelectedZIndex   = 1000
)

// Element is one rendered node. Elements nest like the tree they come from.
type Element struct {
	ID    string
	Name  string
	Kind  Kind
	Depth int

	// Local is the node's own composition; World is Local composed with
	// every ancestor container, relative to the stage.
	Local Composition
	World mgl64.Mat4

	Style      Style
	Background *Background

	Selected bool
	ZIndex   int

	Children []*Element
}

// Decl is one CSS declaration.
type Decl struct {
	Prop  string
	Value string
}

// Declarations returns the inline CSS of the element, in a stable order.
func (e *Element) Declarations() []Decl {
	decls := []Decl{
		{"position", "absolute"},
		{"left", "50%"},
		{"top", "50%"},
		{"transform-style", "preserve-3d"},
	}
	if e.Kind == KindLeaf {
		s := e.Style
		decls = append(decls,
			Decl{"width", px(s.Width)},
			Decl{"height", px(s.Height)},
			Decl{"translate", "-50% -50%"},
			Decl{"background-color", s.BackgroundColor},
		)
		if bg := e.Background; bg != nil && bg.Image != "" {
			decls = append(decls,
				Decl{"background-image", "url(" + cssString(bg.Image) + ")"},
				Decl{"background-size", string(orDefault(bg.Size, BackgroundCover))},
				Decl{"background-position", string(orDefault(bg.Position, PositionCenter))},
			)
		}
		if s.Opacity != nil {
			decls = append(decls, Decl{"opacity", num(*s.Opacity)})
		}
		if s.BorderRadius != nil {
			decls = append(decls, Decl{"border-radius", num(*s.BorderRadius) + "%"})
		}
	}
	decls = append(decls, Decl{"transform", e.Local.CSS()})
	if e.Selected {
		decls = append(decls,
			Decl{"outline", HighlightOutline},
			Decl{"box-shadow", HighlightShadow},
			Decl{"z-index", num(float64(e.ZIndex))},
		)
	}
	return decls
}

// CSSText joins the declarations into a style attribute value.
func (e *Element) CSSText() string {
	return joinDecls(e.Declarations())
}

// Frame is the rendered view of a tree under a camera.
type Frame struct {
	Camera   CameraState
	Stage    mgl64.Mat4
	Elements []*Element
	Selected string
}

// Render walks tree in document order and produces a frame. selected may be
// empty.
func Render(tree *Tree, camera CameraState, selected string) *Frame {
	f := &Frame{
		Camera:   camera,
		Stage:    CameraMatrix(camera),
		Selected: selected,
	}
	f.Elements = renderNodes(tree.Roots(), mgl64.Ident4(), 0, selected)
	return f
}

func renderNodes(nodes []*Node, parent mgl64.Mat4, depth int, selected string) []*Element {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		local := Compose(n.Transform)
		e := &Element{
			ID:         n.ID,
			Name:       n.Name,
			Kind:       n.Kind,
			Depth:      depth,
			Local:      local,
			World:      parent.Mul4(local.Matrix),
			Style:      n.Style,
			Background: n.Background,
		}
		if n.ID == selected {
			e.Selected = true
			e.ZIndex = SelectedZIndex
		}
		if n.IsContainer() {
			e.Children = renderNodes(n.Children, e.World, depth+1, selected)
		}
		out = append(out, e)
	}
	return out
}

// Walk visits every element in document order. Returning false stops the walk.
func (f *Frame) Walk(fn func(e *Element) bool) {
	walkElements(f.Elements, fn)
}

func walkElements(elems []*Element, fn func(*Element) bool) bool {
	for _, e := range elems {
		if !fn(e) || !walkElements(e.Children, fn) {
			return false
		}
	}
	return true
}

// Find returns the element rendered for id, or nil.
func (f *Frame) Find(id string) *Element {
	var found *Element
	f.Walk(func(e *Element) bool {
		if e.ID == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// PaintOrder returns the leaves in the order they are painted: document
// order, except that the selected node's leaves come last so they sit on top.
func (f *Frame) PaintOrder() []*Element {
	var below, above []*Element
	var collect func(elems []*Element, inSelected bool)
	collect = func(elems []*Element, inSelected bool) {
		for _, e := range elems {
			sel := inSelected || e.Selected
			if e.Kind == KindLeaf {
				if sel {
					above = append(above, e)
				} else {
					below = append(below, e)
				}
			}
			collect(e.Children, sel)
		}
	}
	collect(f.Elements, false)
	return append(below, above...)
}

// Project returns the screen-space corners of a leaf relative to the
// viewport center, in top-left, top-right, bottom-right, bottom-left order.
// ok is false when any corner falls behind the viewer.
func (f *Frame) Project(e *Element) (quad [4]Vec2, ok bool) {
	hw, hh := e.Style.Width/2, e.Style.Height/2
	corners := [4]mgl64.Vec3{{-hw, -hh, 0}, {hw, -hh, 0}, {hw, hh, 0}, {-hw, hh, 0}}
	m := f.Stage.Mul4(e.World)
	for i, c := range corners {
		x, y, visible := Project(mgl64.TransformCoordinate(c, m), f.Camera.FieldOfView)
		if !visible {
			return quad, false
		}
		quad[i] = Vec2{X: x, Y: y}
	}
	return quad, true
}

// StageDecls returns the inline CSS of the perspective root and of the
// camera stage that holds the rendered elements.
func (f *Frame) StageDecls() (root, stage []Decl) {
	root = []Decl{
		{"position", "relative"},
		{"width", "100dvw"},
		{"height", "100dvh"},
		{"overflow", "hidden"},
		{"perspective", px(f.Camera.FieldOfView)},
	}
	stage = []Decl{
		{"position", "absolute"},
		{"left", "50%"},
		{"top", "50%"},
		{"transform-style", "preserve-3d"},
		{"transform", CameraCSS(f.Camera)},
	}
	return root, stage
}

func joinDecls(decls []Decl) string {
	var b strings.Builder
	for i, d := range decls {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.Prop)
		b.WriteString(": ")
		b.WriteString(d.Value)
		b.WriteByte(';')
	}
	return b.String()
}

// cssString quotes s as a CSS string literal.
func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return `"` + r.Replace(s) + `"`
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}
