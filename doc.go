// Package stage3d is the core of an editor for scenes laid out in 3D with
// CSS transforms.
//
// A scene is a hierarchy of [Node] values: leaves are the visible boxes and
// containers group other nodes into a nested 3D frame. The hierarchy lives in
// an immutable [Tree]; every edit returns a new snapshot that shares the
// untouched subtrees, and an edit that changes nothing returns the receiver.
//
// # Quick start
//
// [Editor] ties the pieces together and persists every committed change to a
// [Store]:
//
//	store, _ := stage3d.NewDirStore(".stage3d")
//	editor := stage3d.NewEditor(stage3d.EditorOptions{Store: store})
//	editor.Hydrate()
//
//	box, _ := editor.AddLeaf("box", stage3d.DefaultStyle())
//	group, _ := editor.AddContainer("group")
//	editor.AddChild(group, stage3d.NewLeaf("inner", stage3d.DefaultStyle()))
//	editor.SetTransform(box, stage3d.Transform{RotateY: 45, ScaleX: 1, ScaleY: 1, ScaleZ: 1})
//
//	html, _ := editor.ExportHTML()
//
// To drive it from a window, see the ebitenview sub-package.
//
// # Camera
//
// [Camera] holds the stage rotation, zoom and field of view. [Viewport] is the
// interaction state machine on top of it: a middle-button drag rotates the
// stage through global listeners attached once per drag, the wheel zooms and
// the bracket keys change the field of view. [Camera.Refocus] animates the
// stage back home with [gween].
//
// # Rendering
//
// [Render] turns a tree and a camera into a [Frame]. Each [Element] carries its
// own [Composition] (translate3d, rotateX, rotateY, rotateZ, scale3d, in that
// order) and its world matrix relative to the stage. The selected node gets an
// outline and is painted last; its geometry never changes.
//
// # Import and export
//
// [Export] writes the tree as a JSON array, the same document the editor
// persists. [ParseImport] validates such a document before anything is
// replaced, and [StartImport] does the same off the event loop.
//
// [gween]: https://github.com/tanema/gween
package stage3d
