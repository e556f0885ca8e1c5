package stage3d

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Default style values used by the creation form.
const (
	DefaultWidth  = 100
	DefaultHeight = 100
	DefaultColor  = "#3498db"
)

// cloneSuffix is appended to the name of the top node of a cloned subtree.
const cloneSuffix = " (clone)"

// Transform is the 9-component pose of a node. Rotations are in degrees,
// translations in px.
type Transform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	TranslateZ float64 `json:"translateZ"`
	RotateX    float64 `json:"rotateX"`
	RotateY    float64 `json:"rotateY"`
	RotateZ    float64 `json:"rotateZ"`
	ScaleX     float64 `json:"scaleX"`
	ScaleY     float64 `json:"scaleY"`
	ScaleZ     float64 `json:"scaleZ"`
}

// IdentityTransform returns the transform that leaves a node in place.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1, ScaleZ: 1}
}

// Style is the visual box of a node.
type Style struct {
	Width           float64  `json:"width"`
	Height          float64  `json:"height"`
	BackgroundColor string   `json:"backgroundColor"`
	Opacity         *float64 `json:"opacity,omitempty"`
	BorderRadius    *float64 `json:"borderRadius,omitempty"` // percent
}

// DefaultStyle returns the style the creation form starts with.
func DefaultStyle() Style {
	return Style{Width: DefaultWidth, Height: DefaultHeight, BackgroundColor: DefaultColor}
}

// Equal reports whether s and o describe the same style.
func (s Style) Equal(o Style) bool {
	return s.Width == o.Width && s.Height == o.Height &&
		s.BackgroundColor == o.BackgroundColor &&
		optEqual(s.Opacity, o.Opacity) && optEqual(s.BorderRadius, o.BorderRadius)
}

// ValidColor reports whether v can stand as a single CSS color value, such as
// "#3498db", "red" or "rgb(52, 152, 219)". Values that could end the
// declaration or the style attribute are rejected.
func ValidColor(v string) bool {
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("#(),.%- ", r):
		default:
			return false
		}
	}
	return true
}

// StylePatch carries the style fields to change; nil fields are kept, and so is
// a BackgroundColor that fails ValidColor.
type StylePatch struct {
	Width           *float64
	Height          *float64
	BackgroundColor *string
	Opacity         *float64
	BorderRadius    *float64
}

// apply merges p into s and returns the result.
func (p StylePatch) apply(s Style) Style {
	if p.Width != nil {
		s.Width = *p.Width
	}
	if p.Height != nil {
		s.Height = *p.Height
	}
	if p.BackgroundColor != nil && ValidColor(*p.BackgroundColor) {
		s.BackgroundColor = *p.BackgroundColor
	}
	if p.Opacity != nil {
		s.Opacity = ptr(clamp(*p.Opacity, 0, 1))
	}
	if p.BorderRadius != nil {
		s.BorderRadius = ptr(*p.BorderRadius)
	}
	return s
}

// Background is the optional background image of a leaf.
type Background struct {
	Image    string             `json:"backgroundImage"`
	Size     BackgroundSize     `json:"backgroundSize"`
	Position BackgroundPosition `json:"backgroundPosition"`
}

// Equal reports whether two optional backgrounds are the same.
func (b *Background) Equal(o *Background) bool {
	if b == nil || o == nil {
		return b == o
	}
	return *b == *o
}

// Node is one entity of the scene hierarchy. A Node stored in a Tree is
// shared between snapshots and MUST NOT be mutated; use the Tree operations.
type Node struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Kind       Kind        `json:"type"`
	Transform  Transform   `json:"transform"`
	Style      Style       `json:"style"`
	Background *Background `json:"background,omitempty"`
	Children   []*Node     `json:"children,omitempty"`
	// ParentID is a lookup aid; the nesting of Children is authoritative.
	ParentID string `json:"parentId,omitempty"`
}

// NewID returns a fresh, never reused node id.
func NewID() string {
	return uuid.NewString()
}

// NewLeaf creates a leaf node with an identity transform.
func NewLeaf(name string, style Style) *Node {
	return &Node{
		ID:        NewID(),
		Name:      name,
		Kind:      KindLeaf,
		Transform: IdentityTransform(),
		Style:     style,
	}
}

// NewContainer creates an empty container node.
func NewContainer(name string) *Node {
	return &Node{
		ID:        NewID(),
		Name:      name,
		Kind:      KindContainer,
		Transform: IdentityTransform(),
		Style:     DefaultStyle(),
		Children:  []*Node{},
	}
}

// IsContainer reports whether n may own children.
func (n *Node) IsContainer() bool {
	return n.Kind == KindContainer
}

// shallow returns a copy of n sharing its children.
func (n *Node) shallow() *Node {
	c := *n
	return &c
}

// withChildren returns a copy of n owning children.
func (n *Node) withChildren(children []*Node) *Node {
	c := n.shallow()
	c.Children = children
	return c
}

// UnmarshalJSON decodes a node, filling absent transform and style fields with
// their defaults and inferring the kind when the payload omits it.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	p := plain{Transform: IdentityTransform(), Style: DefaultStyle()}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Kind == "" {
		p.Kind = KindLeaf
		if p.Children != nil {
			p.Kind = KindContainer
		}
	}
	if p.Kind == KindContainer && p.Children == nil {
		p.Children = []*Node{}
	}
	*n = Node(p)
	return nil
}

// MarshalJSON encodes a node. Containers always carry a children array, empty
// or not; leaves never do.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	out := struct {
		plain
		Children *[]*Node `json:"children,omitempty"`
	}{plain: plain(n)}
	if n.IsContainer() {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		out.Children = &children
	}
	return json.Marshal(out)
}

// deepCopy copies the subtree rooted at n.
func deepCopy(n *Node) (*Node, error) {
	var c Node
	if err := copier.CopyWithOption(&c, n, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copy node %s: %w", n.ID, err)
	}
	normalizeChildren(&c)
	return &c, nil
}

// normalizeChildren gives every container in the subtree a non-nil child
// sequence and every leaf a nil one.
func normalizeChildren(n *Node) {
	switch {
	case !n.IsContainer():
		n.Children = nil
	case n.Children == nil:
		n.Children = []*Node{}
	}
	for _, c := range n.Children {
		normalizeChildren(c)
	}
}

// reassignIDs gives n and all its descendants fresh ids and rewires ParentID
// so every child points at its (new) owner.
func reassignIDs(n *Node, parentID string) {
	n.ID = NewID()
	n.ParentID = parentID
	for _, c := range n.Children {
		reassignIDs(c, n.ID)
	}
}

func optEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func ptr[T any](v T) *T {
	return &v
}

// clamp limits v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
