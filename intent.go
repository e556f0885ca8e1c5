package stage3d

import "fmt"

// IntentKind tags what the creation form will produce when submitted.
type IntentKind uint8

const (
	IntentClosed          IntentKind = iota // form not shown
	IntentCreateRoot                        // new leaf at the root level
	IntentCreateContainer                   // new empty container at the root level
	IntentCreateChildOf                     // new leaf inside ParentID
)

func (k IntentKind) String() string {
	switch k {
	case IntentCreateRoot:
		return "create-root"
	case IntentCreateContainer:
		return "create-container"
	case IntentCreateChildOf:
		return "create-child"
	default:
		return "closed"
	}
}

// ModalIntent is the state of the creation form. ParentID is only meaningful
// for IntentCreateChildOf.
type ModalIntent struct {
	Kind     IntentKind
	ParentID string
}

// Open reports whether the form is shown.
func (m ModalIntent) Open() bool {
	return m.Kind != IntentClosed
}

func (m ModalIntent) String() string {
	if m.Kind == IntentCreateChildOf {
		return fmt.Sprintf("%s(%s)", m.Kind, m.ParentID)
	}
	return m.Kind.String()
}

// Closed returns the closed intent.
func Closed() ModalIntent { return ModalIntent{} }

// CreateRoot returns the intent to create a root-level leaf.
func CreateRoot() ModalIntent { return ModalIntent{Kind: IntentCreateRoot} }

// CreateContainer returns the intent to create a root-level container.
func CreateContainer() ModalIntent { return ModalIntent{Kind: IntentCreateContainer} }

// CreateChildOf returns the intent to create a leaf inside parentID.
func CreateChildOf(parentID string) ModalIntent {
	return ModalIntent{Kind: IntentCreateChildOf, ParentID: parentID}
}

// CreateRequest is the raw input collected by the creation form.
type CreateRequest struct {
	Name   string
	Width  float64
	Height float64
	Color  string
}

// style returns the leaf style for the request, falling back to the form
// defaults for missing values.
func (r CreateRequest) style() Style {
	s := DefaultStyle()
	if r.Width > 0 {
		s.Width = r.Width
	}
	if r.Height > 0 {
		s.Height = r.Height
	}
	if r.Color != "" {
		s.BackgroundColor = r.Color
	}
	return s
}

// node builds the node the intent asks for.
func (m ModalIntent) node(r CreateRequest) *Node {
	if m.Kind == IntentCreateContainer {
		return NewContainer(r.Name)
	}
	return NewLeaf(r.Name, r.style())
}
