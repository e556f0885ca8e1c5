package stage3d

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes leaves from containers.
type Kind string

const (
	KindLeaf      Kind = "leaf"      // visual object, never owns children
	KindContainer Kind = "container" // group establishing a nested 3D frame
)

// UnmarshalJSON accepts any of the known kinds. An empty string decodes to
// the zero Kind so Node.UnmarshalJSON can infer it from the payload.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	switch Kind(s) {
	case KindLeaf, KindContainer, "":
		*k = Kind(s)
		return nil
	}
	return fmt.Errorf("kind: unknown value %q", s)
}

// BackgroundSize mirrors the CSS background-size keywords the editor offers.
type BackgroundSize string

const (
	BackgroundCover   BackgroundSize = "cover"
	BackgroundContain BackgroundSize = "contain"
	BackgroundAuto    BackgroundSize = "auto"
)

// Valid reports whether s is one of the known keywords.
func (s BackgroundSize) Valid() bool {
	switch s {
	case BackgroundCover, BackgroundContain, BackgroundAuto:
		return true
	}
	return false
}

// BackgroundPosition mirrors the CSS background-position keywords the editor offers.
type BackgroundPosition string

const (
	PositionCenter BackgroundPosition = "center"
	PositionTop    BackgroundPosition = "top"
	PositionBottom BackgroundPosition = "bottom"
	PositionLeft   BackgroundPosition = "left"
	PositionRight  BackgroundPosition = "right"
)

// Valid reports whether p is one of the known keywords.
func (p BackgroundPosition) Valid() bool {
	switch p {
	case PositionCenter, PositionTop, PositionBottom, PositionLeft, PositionRight:
		return true
	}
	return false
}

// Vec2 is a screen-space point.
type Vec2 struct {
	X, Y float64
}

// MouseButton identifies a pointer button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary button, used for click-to-select
	MouseButtonRight                     // secondary button
	MouseButtonMiddle                    // auxiliary button, starts camera drags
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Key identifies a keyboard key the viewport reacts to.
type Key uint8

const (
	KeyUnknown      Key = iota
	KeyBracketLeft      // narrows the field of view
	KeyBracketRight     // widens the field of view
)
