package stage3d

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"
)

// EditorOptions configures NewEditor.
type EditorOptions struct {
	// Store persists the scene and the camera. Defaults to a MemStore.
	Store Store
	// Logger receives warnings and debug output. Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger
	// OnStorageError is called after a failed persistence write. The
	// in-memory state is kept as committed.
	OnStorageError func(error)
	// OnImport is called when an import resolves, with nil on success.
	OnImport func(error)
}

// Editor owns the scene tree, selection, camera and creation intent, and
// writes every committed change back to the store.
//
// An Editor is single-threaded: call its methods from one event loop. Every
// mutation swaps in a complete new snapshot, so Tree and Frame never expose a
// half-applied change.
type Editor struct {
	tree      *Tree
	selection Selection
	camera    *Camera
	viewport  *Viewport
	listeners *Listeners
	collapsed map[string]bool
	intent    ModalIntent

	store          Store
	log            logrus.FieldLogger
	onStorageError func(error)
	onImport       func(error)
	storageErr     error

	pending     *PendingImport
	injectQueue []syntheticEvent
	testRunner  *TestRunner
	screenshots []string
	debug       bool
}

// NewEditor creates an editor with an empty scene and a default camera.
// Call Hydrate to load persisted state.
func NewEditor(opts EditorOptions) *Editor {
	e := &Editor{
		tree:           &Tree{},
		listeners:      &Listeners{},
		collapsed:      make(map[string]bool),
		store:          opts.Store,
		log:            opts.Logger,
		onStorageError: opts.OnStorageError,
		onImport:       opts.OnImport,
	}
	if e.store == nil {
		e.store = NewMemStore()
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	e.camera = NewCamera(e.persistCamera)
	e.viewport = NewViewport(e.camera, e.listeners)
	return e
}

// Tree returns the current scene snapshot.
func (e *Editor) Tree() *Tree { return e.tree }

// Node returns the node id, or ErrNotFound.
func (e *Editor) Node(id string) (*Node, error) {
	n, ok := e.tree.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return n, nil
}

// Camera returns the camera.
func (e *Editor) Camera() *Camera { return e.camera }

// Viewport returns the interaction state machine.
func (e *Editor) Viewport() *Viewport { return e.viewport }

// Listeners returns the global pointer listeners attached during drags. The
// event source dispatches moves and releases to it.
func (e *Editor) Listeners() *Listeners { return e.listeners }

// Selected returns the selected node id.
func (e *Editor) Selected() (string, bool) { return e.selection.Selected() }

// Intent returns the creation form state.
func (e *Editor) Intent() ModalIntent { return e.intent }

// StorageErr returns the most recent persistence failure, or nil.
func (e *Editor) StorageErr() error { return e.storageErr }

// Frame renders the current scene under the current camera.
func (e *Editor) Frame() *Frame {
	sel, _ := e.selection.Selected()
	return Render(e.tree, e.camera.State(), sel)
}

// --- Hydration ---

// Hydrate loads the scene, collapsed containers and camera from the store.
// Missing keys keep their defaults. Unreadable or malformed values are logged,
// skipped and reported in the returned error; the editor stays usable.
func (e *Editor) Hydrate() error {
	var errs []error

	if b, ok, err := e.load(KeyObjects); err != nil {
		errs = append(errs, err)
	} else if ok {
		tree, err := ParseImport(b)
		if err != nil {
			e.log.WithError(err).WithField("key", KeyObjects).Warn("stored scene is malformed, starting empty")
			errs = append(errs, err)
		} else {
			e.tree = tree
		}
	}

	if b, ok, err := e.load(KeyCollapsedContainers); err != nil {
		errs = append(errs, err)
	} else if ok {
		collapsed := make(map[string]bool)
		if err := json.Unmarshal(b, &collapsed); err != nil {
			e.log.WithError(err).WithField("key", KeyCollapsedContainers).Warn("stored collapsed state is malformed")
			errs = append(errs, fmt.Errorf("decode %s: %w", KeyCollapsedContainers, err))
		} else {
			e.collapsed = collapsed
		}
	}

	cam := DefaultCameraState()
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{KeyViewportRotateX, &cam.RotationX},
		{KeyViewportRotateY, &cam.RotationY},
		{KeyViewportRotateZ, &cam.RotationZ},
		{KeyViewportZoom, &cam.Zoom},
		{KeyViewportFov, &cam.FieldOfView},
	} {
		b, ok, err := e.load(f.key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			e.log.WithError(err).WithField("key", f.key).Warn("stored camera value is not a number")
			errs = append(errs, fmt.Errorf("decode %s: %w", f.key, err))
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			e.log.WithField("key", f.key).WithField("value", string(b)).Warn("stored camera value is not finite")
			errs = append(errs, fmt.Errorf("decode %s: %q is not finite", f.key, b))
			continue
		}
		*f.dst = v
	}
	e.camera.Restore(cam)
	e.selection.Reconcile(e.tree)

	e.log.WithField("nodes", e.tree.Len()).Debug("hydrated")
	return errors.Join(errs...)
}

// --- Creation ---

// OpenIntent shows the creation form for m.
func (e *Editor) OpenIntent(m ModalIntent) {
	e.intent = m
}

// CloseIntent hides the creation form.
func (e *Editor) CloseIntent() {
	e.intent = Closed()
}

// Submit creates the node the open intent asks for, selects it and closes
// the form. The form stays open when the insert is rejected.
func (e *Editor) Submit(r CreateRequest) (string, error) {
	if !e.intent.Open() {
		return "", ErrNoIntent
	}
	n := e.intent.node(r)
	var id string
	var err error
	if e.intent.Kind == IntentCreateChildOf {
		id, err = e.AddChild(e.intent.ParentID, n)
	} else {
		id, err = e.Insert(n)
	}
	if err != nil {
		return "", err
	}
	e.intent = Closed()
	return id, nil
}

// Insert appends n at the root level and selects it.
func (e *Editor) Insert(n *Node) (string, error) {
	next, err := e.tree.InsertRoot(n)
	if err != nil {
		e.log.WithError(err).Warn("insert rejected")
		return "", err
	}
	id := next.Roots()[len(next.Roots())-1].ID
	e.commit(next, "insert")
	e.selectID(id)
	return id, nil
}

// AddLeaf inserts a root-level leaf and returns its id.
func (e *Editor) AddLeaf(name string, style Style) (string, error) {
	return e.Insert(NewLeaf(name, style))
}

// AddContainer inserts an empty root-level container and returns its id.
func (e *Editor) AddContainer(name string) (string, error) {
	return e.Insert(NewContainer(name))
}

// AddChild appends n to the container parentID and selects it.
// ErrInvalidParent is returned when parentID is missing or a leaf.
func (e *Editor) AddChild(parentID string, n *Node) (string, error) {
	next, err := e.tree.InsertChild(parentID, n)
	if err != nil {
		e.log.WithError(err).WithField("parent", parentID).Warn("insert rejected")
		return "", err
	}
	parent, _ := next.Find(parentID)
	id := parent.Children[len(parent.Children)-1].ID
	e.commit(next, "insert-child")
	e.selectID(id)
	return id, nil
}

// --- Updates ---

// SetTransform replaces the transform of id. It reports whether anything
// changed; an identical transform is not persisted again.
func (e *Editor) SetTransform(id string, t Transform) bool {
	return e.commit(e.tree.UpdateTransform(id, t), "transform")
}

// PatchStyle merges patch into the style of id.
func (e *Editor) PatchStyle(id string, patch StylePatch) bool {
	return e.commit(e.tree.UpdateStyle(id, patch), "style")
}

// SetBackground replaces the background of id; nil removes it.
func (e *Editor) SetBackground(id string, bg *Background) bool {
	return e.commit(e.tree.UpdateBackground(id, bg), "background")
}

// Rename changes the name of id.
func (e *Editor) Rename(id, name string) bool {
	return e.commit(e.tree.Rename(id, name), "rename")
}

// Clone copies the subtree of id next to it and selects the copy.
func (e *Editor) Clone(id string) (string, bool) {
	next, newID := e.tree.Clone(id)
	if newID == "" {
		return "", false
	}
	e.commit(next, "clone")
	e.selectID(newID)
	return newID, true
}

// Remove deletes id and its subtree. When the selection was inside the
// removed subtree it falls back to the last remaining node.
func (e *Editor) Remove(id string) bool {
	if !e.commit(e.tree.Remove(id), "remove") {
		return false
	}
	e.selection.Removed(e.tree)
	e.pruneCollapsed()
	return true
}

// --- Selection ---

// Select selects id, or clears the selection when id is not in the scene.
func (e *Editor) Select(id string) {
	e.selectID(id)
}

// ClearSelection drops the selection.
func (e *Editor) ClearSelection() {
	e.selection.Clear()
}

func (e *Editor) selectID(id string) {
	if e.selection.Select(e.tree, id) {
		e.log.WithField("id", id).Debug("selected")
	}
}

// --- Collapsed containers ---

// Collapsed reports whether the container id is collapsed in the object list.
func (e *Editor) Collapsed(id string) bool {
	return e.collapsed[id]
}

// ToggleCollapsed flips the collapsed flag of a container. It reports false
// for ids that are not containers.
func (e *Editor) ToggleCollapsed(id string) bool {
	n, ok := e.tree.Find(id)
	if !ok || !n.IsContainer() {
		return false
	}
	if e.collapsed[id] {
		delete(e.collapsed, id)
	} else {
		e.collapsed[id] = true
	}
	e.persistCollapsed()
	return true
}

func (e *Editor) pruneCollapsed() {
	changed := false
	for id := range e.collapsed {
		if !e.tree.Contains(id) {
			delete(e.collapsed, id)
			changed = true
		}
	}
	if changed {
		e.persistCollapsed()
	}
}

// --- Import / export ---

// ExportJSON returns the scene as a pretty-printed JSON document.
func (e *Editor) ExportJSON() ([]byte, error) {
	return Export(e.tree)
}

// ExportHTML returns the current frame as standalone HTML.
func (e *Editor) ExportHTML() (string, error) {
	return e.Frame().HTML()
}

// Import starts reading r. The scene is replaced on a later Update once the
// import resolves and validates; a malformed file leaves everything as is.
// Starting a new import abandons the previous one.
func (e *Editor) Import(ctx context.Context, r io.Reader) *PendingImport {
	if e.pending != nil {
		e.pending.Cancel()
	}
	e.pending = StartImport(ctx, r)
	return e.pending
}

// ImportBytes parses data and, when valid, replaces the scene immediately.
func (e *Editor) ImportBytes(data []byte) error {
	tree, err := ParseImport(data)
	return e.resolveImport(ImportResult{Tree: tree, Err: err})
}

// Importing reports whether an import is still pending.
func (e *Editor) Importing() bool {
	return e.pending != nil
}

func (e *Editor) pollImport() {
	if e.pending == nil {
		return
	}
	res, ok := e.pending.Poll()
	if !ok {
		return
	}
	e.pending = nil
	e.resolveImport(res)
}

func (e *Editor) resolveImport(res ImportResult) error {
	err := res.Err
	if err == nil {
		e.commit(res.Tree, "import")
		e.selection.Reconcile(e.tree)
		e.pruneCollapsed()
		e.log.WithField("nodes", e.tree.Len()).Info("scene imported")
	} else {
		e.log.WithError(err).Warn("import rejected")
	}
	if e.onImport != nil {
		e.onImport(err)
	}
	return err
}

// --- Frame loop ---

// Update advances one frame: the camera refocus animation, a scripted step,
// one injected input event and a pending import.
func (e *Editor) Update(dt float32) {
	e.camera.Update(dt)
	if e.testRunner != nil {
		e.testRunner.step(e)
	}
	e.processInjected()
	e.pollImport()
}

// Screenshot queues a labeled capture for the front end to take after its
// next draw.
func (e *Editor) Screenshot(label string) {
	e.screenshots = append(e.screenshots, label)
}

// TakeScreenshots drains the queued screenshot labels.
func (e *Editor) TakeScreenshots() []string {
	labels := e.screenshots
	e.screenshots = nil
	return labels
}

// --- Persistence ---

// commit installs next as the current snapshot and persists it. It reports
// false, without writing, when next is the current snapshot.
func (e *Editor) commit(next *Tree, op string) bool {
	if next == e.tree {
		return false
	}
	e.tree = next
	if e.debug {
		e.debugCheckTree(op)
	}
	b, err := encodeObjects(next)
	if err != nil {
		e.storageFailed(&StorageError{Op: "encode", Key: KeyObjects, Err: err})
		return true
	}
	e.save(KeyObjects, b)
	e.log.WithField("op", op).Debug("committed")
	return true
}

func (e *Editor) persistCollapsed() {
	b, err := json.Marshal(e.collapsed)
	if err != nil {
		e.storageFailed(&StorageError{Op: "encode", Key: KeyCollapsedContainers, Err: err})
		return
	}
	e.save(KeyCollapsedContainers, b)
}

func (e *Editor) persistCamera(s CameraState) {
	e.save(KeyViewportRotateX, []byte(num(s.RotationX)))
	e.save(KeyViewportRotateY, []byte(num(s.RotationY)))
	e.save(KeyViewportRotateZ, []byte(num(s.RotationZ)))
	e.save(KeyViewportZoom, []byte(num(s.Zoom)))
	e.save(KeyViewportFov, []byte(num(s.FieldOfView)))
}

func (e *Editor) save(key string, value []byte) {
	if err := e.store.Save(key, value); err != nil {
		e.storageFailed(&StorageError{Op: "save", Key: key, Err: err})
	}
}

func (e *Editor) load(key string) ([]byte, bool, error) {
	b, ok, err := e.store.Load(key)
	if err != nil {
		serr := &StorageError{Op: "load", Key: key, Err: err}
		e.log.WithError(err).WithField("key", key).Warn("storage read failed")
		return nil, false, serr
	}
	return b, ok, nil
}

func (e *Editor) storageFailed(err *StorageError) {
	e.storageErr = err
	e.log.WithError(err.Err).WithFields(logrus.Fields{"key": err.Key, "op": err.Op}).Error("storage write failed; in-memory state kept")
	if e.onStorageError != nil {
		e.onStorageError(err)
	}
}
