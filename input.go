package stage3d

// DragState is the state of the viewport interaction state machine.
type DragState uint8

const (
	StateIdle     DragState = iota // no gesture in progress
	StateDragging                  // drag button held, camera follows the pointer
)

func (s DragState) String() string {
	if s == StateDragging {
		return "dragging"
	}
	return "idle"
}

// PointerEvent is a pointer press, move or release in screen coordinates.
type PointerEvent struct {
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// WheelEvent is a wheel turn. DeltaY follows the DOM convention: positive
// when scrolling down (away from the user).
type WheelEvent struct {
	DeltaY    float64
	Modifiers KeyModifiers
}

// KeyEvent is a key press. InTextInput is set when keyboard focus is inside a
// text-input control.
type KeyEvent struct {
	Key         Key
	Modifiers   KeyModifiers
	InTextInput bool
}

// ListenerHost attaches handlers that observe pointer moves and releases
// anywhere on screen, not only over the viewport.
type ListenerHost interface {
	AttachGlobal(move, up func(PointerEvent))
	DetachGlobal()
}

// Listeners is a ListenerHost that stores the attached handlers and lets the
// event source dispatch to them.
type Listeners struct {
	move, up func(PointerEvent)

	attaches, detaches int
}

// AttachGlobal implements ListenerHost.
func (l *Listeners) AttachGlobal(move, up func(PointerEvent)) {
	l.move = move
	l.up = up
	l.attaches++
}

// DetachGlobal implements ListenerHost.
func (l *Listeners) DetachGlobal() {
	l.move = nil
	l.up = nil
	l.detaches++
}

// Attached reports whether handlers are currently attached.
func (l *Listeners) Attached() bool {
	return l.move != nil || l.up != nil
}

// Counts returns how many times handlers were attached and detached.
func (l *Listeners) Counts() (attaches, detaches int) {
	return l.attaches, l.detaches
}

// DispatchMove delivers a global pointer move. It reports whether a handler
// was attached.
func (l *Listeners) DispatchMove(e PointerEvent) bool {
	if l.move == nil {
		return false
	}
	l.move(e)
	return true
}

// DispatchUp delivers a global pointer release. It reports whether a handler
// was attached.
func (l *Listeners) DispatchUp(e PointerEvent) bool {
	if l.up == nil {
		return false
	}
	l.up(e)
	return true
}

// Viewport runs the camera interaction state machine: auxiliary-button drags
// rotate the camera, the wheel zooms and bracket keys change the field of view.
type Viewport struct {
	camera *Camera
	host   ListenerHost

	// DragButton starts a camera drag. It defaults to the middle button so
	// ordinary clicks stay free for selection.
	DragButton MouseButton

	state    DragState
	startX   float64
	startY   float64
	snapX    float64
	snapY    float64
	attached bool
}

// NewViewport creates an idle viewport driving camera. Global handlers are
// attached to host while a drag is in progress.
func NewViewport(camera *Camera, host ListenerHost) *Viewport {
	return &Viewport{camera: camera, host: host, DragButton: MouseButtonMiddle}
}

// State returns the current interaction state.
func (v *Viewport) State() DragState {
	return v.state
}

// PointerDown handles a press inside the viewport. Pressing the drag button
// while idle starts a drag; anything else is left to the caller (selection).
// It reports whether the press was consumed.
func (v *Viewport) PointerDown(e PointerEvent) bool {
	if v.state != StateIdle || e.Button != v.DragButton {
		return false
	}
	cam := v.camera.State()
	v.state = StateDragging
	v.startX, v.startY = e.X, e.Y
	v.snapX, v.snapY = cam.RotationX, cam.RotationY
	if v.host != nil && !v.attached {
		v.host.AttachGlobal(v.globalMove, v.globalUp)
		v.attached = true
	}
	return true
}

// globalMove recomputes the rotation from the drag snapshot. It never
// accumulates, so coalesced move events cannot drift.
func (v *Viewport) globalMove(e PointerEvent) {
	if v.state != StateDragging {
		return
	}
	rotY := v.snapY + (e.X - v.startX)
	rotX := v.snapX - (e.Y - v.startY)
	v.camera.setDragRotation(rotX, rotY)
}

func (v *Viewport) globalUp(e PointerEvent) {
	if v.state != StateDragging || e.Button != v.DragButton {
		return
	}
	v.end()
}

// Cancel aborts a drag in progress, keeping the rotation reached so far.
func (v *Viewport) Cancel() {
	if v.state == StateDragging {
		v.end()
	}
}

func (v *Viewport) end() {
	v.state = StateIdle
	if v.attached {
		v.host.DetachGlobal()
		v.attached = false
	}
}

// Wheel zooms the camera. Events carrying a modifier are not consumed so the
// host's native zoom can handle them.
func (v *Viewport) Wheel(e WheelEvent) bool {
	if e.Modifiers != 0 || e.DeltaY == 0 {
		return false
	}
	v.camera.AdjustZoom(-e.DeltaY * ZoomPerWheelUnit)
	return true
}

// Key handles bracket keys, which narrow ([) or widen (]) the field of view.
// Keys typed into a text input are ignored.
func (v *Viewport) Key(e KeyEvent) bool {
	if e.InTextInput {
		return false
	}
	switch e.Key {
	case KeyBracketLeft:
		v.camera.AdjustFieldOfView(-FieldOfViewStep)
	case KeyBracketRight:
		v.camera.AdjustFieldOfView(FieldOfViewStep)
	default:
		return false
	}
	return true
}
