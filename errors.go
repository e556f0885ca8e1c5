package stage3d

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an id that does not resolve to a node.
	ErrNotFound = errors.New("stage3d: node not found")
	// ErrInvalidParent reports an insert under a missing node or a leaf.
	ErrInvalidParent = errors.New("stage3d: parent is not an existing container")
	// ErrDuplicateID reports an insert whose id is already in the tree.
	ErrDuplicateID = errors.New("stage3d: duplicate node id")
	// ErrInvalidNode reports a node that breaks the hierarchy invariants.
	ErrInvalidNode = errors.New("stage3d: invalid node")
	// ErrMalformedImport reports an import payload that was rejected.
	ErrMalformedImport = errors.New("stage3d: malformed import")
	// ErrNoIntent reports a form submission while no creation intent is open.
	ErrNoIntent = errors.New("stage3d: no creation intent open")
)

// StorageError reports a failed read or write against the Store.
// The in-memory state is never rolled back when one occurs.
type StorageError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("stage3d: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
