package stage3d

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLNode builds a standalone DOM fragment for the frame: a perspective root
// holding the camera stage, which holds one div per element, nested the same
// way the tree is.
func (f *Frame) HTMLNode() *html.Node {
	rootDecls, stageDecls := f.StageDecls()
	root := newDiv(joinDecls(rootDecls))
	root.Attr = append(root.Attr, html.Attribute{Key: "id", Val: "viewport"})
	stage := newDiv(joinDecls(stageDecls))
	root.AppendChild(stage)
	appendElements(stage, f.Elements)
	return root
}

// WriteHTML renders the frame as HTML to w.
func (f *Frame) WriteHTML(w io.Writer) error {
	if err := html.Render(w, f.HTMLNode()); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// HTML returns the frame rendered as an HTML string.
func (f *Frame) HTML() (string, error) {
	var buf bytes.Buffer
	if err := f.WriteHTML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func appendElements(parent *html.Node, elems []*Element) {
	for _, e := range elems {
		div := newDiv(e.CSSText())
		div.Attr = append(div.Attr,
			html.Attribute{Key: "data-id", Val: e.ID},
			html.Attribute{Key: "title", Val: e.Name},
		)
		parent.AppendChild(div)
		appendElements(div, e.Children)
	}
}

func newDiv(style string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "style", Val: style}},
	}
}
