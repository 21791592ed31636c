// Package events models the timestamped input stream captured alongside a
// screen recording (events.json).
package events

import "sort"

// SchemaVersion is the events.json schema this package reads and writes.
const SchemaVersion = 1

// Kind identifies the variant of an InputEvent.
type Kind string

const (
	KindMove    Kind = "move"
	KindClick   Kind = "click"
	KindMouseUp Kind = "mouseUp"
	KindScroll  Kind = "scroll"
	KindKeyDown Kind = "keyDown"
	KindKeyUp   Kind = "keyUp"
)

// MouseButton is the pressed or released button of a click event.
type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// BoundingRect is a UI element rectangle in screen pixels.
type BoundingRect struct {
	X      int32  `json:"x" yaml:"x"`
	Y      int32  `json:"y" yaml:"y"`
	Width  uint32 `json:"width" yaml:"width"`
	Height uint32 `json:"height" yaml:"height"`
}

// Empty reports whether the rectangle has no area.
func (r BoundingRect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// UIContext is what the accessibility lookup resolved for a click.
type UIContext struct {
	AppName      *string       `json:"appName,omitempty" yaml:"app_name,omitempty"`
	ControlName  *string       `json:"controlName,omitempty" yaml:"control_name,omitempty"`
	BoundingRect *BoundingRect `json:"boundingRect,omitempty" yaml:"bounding_rect,omitempty"`
}

// ScrollDelta is the wheel movement of a scroll event.
type ScrollDelta struct {
	DX float64 `json:"dx" yaml:"dx"`
	DY float64 `json:"dy" yaml:"dy"`
}

// InputEvent is one captured input event. Kind selects which payload fields
// are meaningful:
//
//	Move            TS, X, Y
//	Click           TS, X, Y, Button, UI (may be nil)
//	MouseUp         TS, X, Y, Button
//	Scroll          TS, X, Y, Delta
//	KeyDown, KeyUp  TS, KeyCode
type InputEvent struct {
	Kind    Kind
	TS      int64 // milliseconds since recording start
	X, Y    float64
	Button  MouseButton
	UI      *UIContext
	Delta   ScrollDelta
	KeyCode string
}

// Move builds a pointer move event.
func Move(ts int64, x, y float64) InputEvent {
	return InputEvent{Kind: KindMove, TS: ts, X: x, Y: y}
}

// Click builds a left click event with an optional UI context.
func Click(ts int64, x, y float64, ui *UIContext) InputEvent {
	return InputEvent{Kind: KindClick, TS: ts, X: x, Y: y, Button: ButtonLeft, UI: ui}
}

// MouseUp builds a button release event.
func MouseUp(ts int64, x, y float64) InputEvent {
	return InputEvent{Kind: KindMouseUp, TS: ts, X: x, Y: y, Button: ButtonLeft}
}

// Scroll builds a wheel event.
func Scroll(ts int64, x, y, dx, dy float64) InputEvent {
	return InputEvent{Kind: KindScroll, TS: ts, X: x, Y: y, Delta: ScrollDelta{DX: dx, DY: dy}}
}

// KeyDown builds a key press event.
func KeyDown(ts int64, code string) InputEvent {
	return InputEvent{Kind: KindKeyDown, TS: ts, KeyCode: code}
}

// KeyUp builds a key release event.
func KeyUp(ts int64, code string) InputEvent {
	return InputEvent{Kind: KindKeyUp, TS: ts, KeyCode: code}
}

// HasPosition reports whether the event carries a pointer position.
func (e InputEvent) HasPosition() bool {
	switch e.Kind {
	case KindMove, KindClick, KindMouseUp, KindScroll:
		return true
	}
	return false
}

// Bounds returns the clicked element rectangle, if the lookup produced a
// non-empty one.
func (e InputEvent) Bounds() (BoundingRect, bool) {
	if e.Kind != KindClick || e.UI == nil || e.UI.BoundingRect == nil {
		return BoundingRect{}, false
	}
	if e.UI.BoundingRect.Empty() {
		return BoundingRect{}, false
	}
	return *e.UI.BoundingRect, true
}

// IsControlKey reports whether a key code names either Control key.
func IsControlKey(code string) bool {
	return code == "ControlLeft" || code == "ControlRight"
}

// Sorted returns a copy of evs ordered by timestamp. Events sharing a
// timestamp keep their capture order.
func Sorted(evs []InputEvent) []InputEvent {
	out := make([]InputEvent, len(evs))
	copy(out, evs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TS < out[j].TS
	})
	return out
}

// File is the root of events.json.
type File struct {
	SchemaVersion int          `json:"schemaVersion"`
	RecordingID   string       `json:"recordingId"`
	StartTimeMs   int64        `json:"startTimeMs"`
	ScreenWidth   uint32       `json:"screenWidth"`
	ScreenHeight  uint32       `json:"screenHeight"`
	ScaleFactor   float64      `json:"scaleFactor"`
	Events        []InputEvent `json:"events"`
}

// Duration returns the timestamp of the last event, which is the best
// available recording length when no explicit duration is known.
func (f *File) Duration() int64 {
	var last int64
	for _, e := range f.Events {
		if e.TS > last {
			last = e.TS
		}
	}
	return last
}
