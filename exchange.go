package stage3d

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxImportSize bounds how much of an import file is read.
const maxImportSize = 32 << 20

// Export encodes the tree as a pretty-printed JSON array, the same shape as
// the persisted objects value.
func Export(tree *Tree) ([]byte, error) {
	roots := tree.Roots()
	if roots == nil {
		roots = []*Node{}
	}
	b, err := json.MarshalIndent(roots, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return b, nil
}

// encodeObjects is the compact form written to the store.
func encodeObjects(tree *Tree) ([]byte, error) {
	roots := tree.Roots()
	if roots == nil {
		roots = []*Node{}
	}
	return json.Marshal(roots)
}

// ParseImport decodes an exported (or persisted) objects document. The payload
// must be JSON, its top level an array, and every element must carry a
// non-empty id and a name. The resulting hierarchy is validated and its
// ParentIDs rewritten to match the nesting. Every failure wraps
// ErrMalformedImport.
func ParseImport(data []byte) (*Tree, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedImport)
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: top level is not an array", ErrMalformedImport)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}
	nodes := make([]*Node, 0, len(raws))
	for i, raw := range raws {
		if err := checkRequired(raw); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrMalformedImport, i, err)
		}
		var n Node
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrMalformedImport, i, err)
		}
		nodes = append(nodes, &n)
	}
	tree, err := NewTree(nodes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}
	return tree, nil
}

// checkRequired verifies an element and every nested child is an object with
// a string id and name.
func checkRequired(raw json.RawMessage) error {
	var head struct {
		ID       *string           `json:"id"`
		Name     *string           `json:"name"`
		Children []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return err
	}
	if head.ID == nil || *head.ID == "" {
		return errors.New("missing id")
	}
	if head.Name == nil {
		return fmt.Errorf("%s: missing name", *head.ID)
	}
	for i, c := range head.Children {
		if err := checkRequired(c); err != nil {
			return fmt.Errorf("%s: child %d: %w", *head.ID, i, err)
		}
	}
	return nil
}

// ImportResult is the outcome of a PendingImport.
type ImportResult struct {
	Tree *Tree
	Err  error
}

// PendingImport is a single in-flight import. The file is read and parsed off
// the event loop; the result is collected with Poll or Wait and committed by
// the caller, so no state changes until it resolves.
type PendingImport struct {
	done   chan struct{}
	result ImportResult
	cancel context.CancelFunc
}

// StartImport begins reading and parsing r. A canceled ctx resolves the
// import with the context error.
func StartImport(ctx context.Context, r io.Reader) *PendingImport {
	ctx, cancel := context.WithCancel(ctx)
	p := &PendingImport{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(p.done)
		defer cancel()
		p.result = readImport(ctx, r)
	}()
	return p
}

func readImport(ctx context.Context, r io.Reader) ImportResult {
	data, err := io.ReadAll(io.LimitReader(r, maxImportSize+1))
	if err != nil {
		return ImportResult{Err: fmt.Errorf("read import: %w", err)}
	}
	if err := ctx.Err(); err != nil {
		return ImportResult{Err: err}
	}
	if len(data) > maxImportSize {
		return ImportResult{Err: fmt.Errorf("%w: file exceeds %d bytes", ErrMalformedImport, maxImportSize)}
	}
	tree, err := ParseImport(data)
	return ImportResult{Tree: tree, Err: err}
}

// Poll returns the result without blocking. ok is false while the import is
// still running.
func (p *PendingImport) Poll() (res ImportResult, ok bool) {
	select {
	case <-p.done:
		return p.result, true
	default:
		return ImportResult{}, false
	}
}

// Wait blocks until the import resolves or ctx is done.
func (p *PendingImport) Wait(ctx context.Context) (ImportResult, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return ImportResult{}, ctx.Err()
	}
}

// Cancel abandons the import. An import that already resolved keeps its result.
func (p *PendingImport) Cancel() {
	p.cancel()
}
