package stage3d

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	a := leaf("A", "A")
	a.Style.Opacity = ptr(0.25)
	a.Background = &Background{Image: "x.png", Size: BackgroundAuto, Position: PositionLeft}
	c := container("C", "C", leaf("B", "B"), container("D", "D"))
	c.Transform = Transform{TranslateZ: -40, RotateY: 15, ScaleX: 1, ScaleY: 1, ScaleZ: 2}
	tree := mustTree(t, a, c)

	b, err := Export(tree)
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n  {", "pretty-printed")

	got, err := ParseImport(b)
	require.NoError(t, err)
	assert.True(t, tree.Equal(got))
}

func TestExportKeepsEmptyChildren(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"), container("C", "C", leaf("B", "B"))).Remove("B")

	b, err := Export(tree)
	require.NoError(t, err)
	var objs []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &objs))
	require.Len(t, objs, 2)
	assert.NotContains(t, objs[0], "children")
	require.Contains(t, objs[1], "children")
	assert.JSONEq(t, "[]", string(objs[1]["children"]))

	stored, err := encodeObjects(tree)
	require.NoError(t, err)
	assert.Contains(t, string(stored), `"children":[]`)
}

func TestExportEmpty(t *testing.T) {
	b, err := Export(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	got, err := ParseImport(b)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestParseImportMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{nope`},
		{"empty", ``},
		{"object", `{"id":"a","name":"A"}`},
		{"string", `"[]"`},
		{"missing id", `[{"name":"A"}]`},
		{"empty id", `[{"id":"","name":"A"}]`},
		{"missing name", `[{"id":"a"}]`},
		{"nested missing name", `[{"id":"a","name":"A","children":[{"id":"b"}]}]`},
		{"nested missing id", `[{"id":"a","name":"A","children":[{"id":"c","name":"C","children":[{"name":"X"}]}]}]`},
		{"nested child not object", `[{"id":"a","name":"A","children":[1]}]`},
		{"element not object", `[1]`},
		{"duplicate ids", `[{"id":"a","name":"A"},{"id":"a","name":"B"}]`},
		{"leaf with children", `[{"id":"a","name":"A","type":"leaf","children":[{"id":"b","name":"B"}]}]`},
		{"unknown type", `[{"id":"a","name":"A","type":"sphere"}]`},
		{"color with extra declaration", `[{"id":"a","name":"A","style":{"width":10,"height":10,"backgroundColor":"red; position: fixed"}}]`},
		{"bad transform", `[{"id":"a","name":"A","transform":"none"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := ParseImport([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedImport)
			assert.Nil(t, tree)
		})
	}
}

func TestParseImportNormalizesParentIDs(t *testing.T) {
	data := `[{"id":"c","name":"C","children":[{"id":"b","name":"B","parentId":"wrong"}]}]`
	tree, err := ParseImport([]byte(data))
	require.NoError(t, err)

	b, ok := tree.Find("b")
	require.True(t, ok)
	assert.Equal(t, "c", b.ParentID)
	c, _ := tree.Find("c")
	assert.Equal(t, KindContainer, c.Kind)
}

func TestPendingImport(t *testing.T) {
	p := StartImport(context.Background(), strings.NewReader(`[{"id":"a","name":"A"}]`))

	res, err := p.Wait(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Err)
	assert.True(t, res.Tree.Contains("a"))

	polled, ok := p.Poll()
	assert.True(t, ok)
	assert.Same(t, res.Tree, polled.Tree)
}

func TestPendingImportMalformed(t *testing.T) {
	p := StartImport(context.Background(), strings.NewReader(`{}`))
	res, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, ErrMalformedImport)
	assert.Nil(t, res.Tree)
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestPendingImportReadError(t *testing.T) {
	cause := errors.New("permission denied")
	p := StartImport(context.Background(), errReader{cause})
	res, _ := p.Wait(context.Background())
	assert.ErrorIs(t, res.Err, cause)
}

func TestPendingImportCancel(t *testing.T) {
	pr, pw := io.Pipe()
	p := StartImport(context.Background(), pr)

	_, ok := p.Poll()
	assert.False(t, ok, "still reading")

	p.Cancel()
	pw.Write([]byte("[]"))
	pw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestPendingImportWaitTimeout(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	p := StartImport(context.Background(), pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
