package stage3d

// syntheticEvent is a single injected input event. Exactly one of the event
// fields is set.
type syntheticEvent struct {
	down  *PointerEvent
	move  *PointerEvent
	up    *PointerEvent
	wheel *WheelEvent
	key   *KeyEvent
}

// InjectPress queues a press of the given button at viewport coordinates.
// The event is consumed on the next Update.
func (e *Editor) InjectPress(x, y float64, button MouseButton) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		down: &PointerEvent{X: x, Y: y, Button: button},
	})
}

// InjectMove queues a pointer move. Moves only reach the viewport while a
// drag holds the global listeners.
func (e *Editor) InjectMove(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		move: &PointerEvent{X: x, Y: y},
	})
}

// InjectRelease queues a release of the given button.
func (e *Editor) InjectRelease(x, y float64, button MouseButton) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		up: &PointerEvent{X: x, Y: y, Button: button},
	})
}

// InjectDrag queues a full camera drag: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, a final move onto
// (toX, toY) and the release. Minimum frames is 2.
func (e *Editor) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	button := e.viewport.DragButton
	e.InjectPress(fromX, fromY, button)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		e.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	e.InjectMove(toX, toY)
	e.InjectRelease(toX, toY, button)
}

// InjectWheel queues a wheel event.
func (e *Editor) InjectWheel(deltaY float64, mods KeyModifiers) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		wheel: &WheelEvent{DeltaY: deltaY, Modifiers: mods},
	})
}

// InjectKey queues a key press.
func (e *Editor) InjectKey(k Key, mods KeyModifiers) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		key: &KeyEvent{Key: k, Modifiers: mods},
	})
}

// Injecting reports whether injected events are still queued.
func (e *Editor) Injecting() bool {
	return len(e.injectQueue) > 0
}

// processInjected pops one event from the inject queue and routes it the same
// way real input is routed. Returns true if an event was consumed.
func (e *Editor) processInjected() bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	switch {
	case evt.down != nil:
		e.viewport.PointerDown(*evt.down)
	case evt.move != nil:
		e.listeners.DispatchMove(*evt.move)
	case evt.up != nil:
		e.listeners.DispatchUp(*evt.up)
	case evt.wheel != nil:
		e.viewport.Wheel(*evt.wheel)
	case evt.key != nil:
		e.viewport.Key(*evt.key)
	}
	return true
}
