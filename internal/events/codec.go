package events

import (
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnsupportedSchema is returned for events files written by a newer schema.
var ErrUnsupportedSchema = errors.New("unsupported events schema version")

// wireEvent is the events.json shape of an InputEvent. Snake-case fields are
// accepted on read for files written by older recorders.
type wireEvent struct {
	Type      Kind         `json:"type"`
	TS        int64        `json:"ts"`
	X         *float64     `json:"x,omitempty"`
	Y         *float64     `json:"y,omitempty"`
	Button    MouseButton  `json:"button,omitempty"`
	UIContext *UIContext   `json:"uiContext,omitempty"`
	LegacyUI  *UIContext   `json:"ui_context,omitempty"`
	Delta     *ScrollDelta `json:"delta,omitempty"`
	KeyCode   string       `json:"keyCode,omitempty"`
	LegacyKey string       `json:"key_code,omitempty"`
}

// MarshalJSON writes the event in its tagged events.json form.
func (e InputEvent) MarshalJSON() ([]byte, error) {
	w := wireEvent{Type: e.Kind, TS: e.TS}
	switch e.Kind {
	case KindMove:
		w.X, w.Y = &e.X, &e.Y
	case KindClick:
		w.X, w.Y = &e.X, &e.Y
		w.Button = e.Button
		w.UIContext = e.UI
	case KindMouseUp:
		w.X, w.Y = &e.X, &e.Y
		w.Button = e.Button
	case KindScroll:
		w.X, w.Y = &e.X, &e.Y
		w.Delta = &e.Delta
	case KindKeyDown, KindKeyUp:
		w.KeyCode = e.KeyCode
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a tagged events.json event.
func (e *InputEvent) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := InputEvent{Kind: w.Type, TS: w.TS}
	switch w.Type {
	case KindMove, KindClick, KindMouseUp, KindScroll:
		if w.X == nil || w.Y == nil {
			return fmt.Errorf("%s event at %dms has no position", w.Type, w.TS)
		}
		out.X, out.Y = *w.X, *w.Y
		out.Button = w.Button
		if w.Type == KindClick {
			out.UI = w.UIContext
			if out.UI == nil {
				out.UI = w.LegacyUI
			}
		}
		if w.Type == KindScroll && w.Delta != nil {
			out.Delta = *w.Delta
		}
	case KindKeyDown, KindKeyUp:
		out.KeyCode = w.KeyCode
		if out.KeyCode == "" {
			out.KeyCode = w.LegacyKey
		}
	default:
		return fmt.Errorf("unknown event type %q", w.Type)
	}

	*e = out
	return nil
}

// Decode parses an events.json document.
func Decode(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	if f.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, f.SchemaVersion)
	}
	return &f, nil
}

// ReadFile loads events.json from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// WriteFile stores f as events.json.
func WriteFile(f *File, path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
