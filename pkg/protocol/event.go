package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// EventType identifies a client event.
type EventType string

const (
	EventInput  EventType = "input"  // Text or select change
	EventToggle EventType = "toggle" // Checkbox change
	EventSubmit EventType = "submit" // Submit button
	EventReset  EventType = "reset"  // Restore the mount state
)

// MaxEventSize bounds a single decoded event.
const MaxEventSize = 4 * 1024

var (
	// ErrInvalidEvent is returned for frames that are not a valid event.
	ErrInvalidEvent = errors.New("protocol: invalid event")

	// ErrEventTooLarge is returned for frames over MaxEventSize.
	ErrEventTooLarge = errors.New("protocol: event too large")
)

// Event is a user action sent by the client.
type Event struct {
	Type    EventType `json:"type"`
	Name    string    `json:"name,omitempty"`
	Value   string    `json:"value,omitempty"`
	Checked bool      `json:"checked,omitempty"`
}

// DecodeEvent parses and validates one event frame.
func DecodeEvent(data []byte) (Event, error) {
	if len(data) > MaxEventSize {
		return Event{}, fmt.Errorf("%w: %d bytes", ErrEventTooLarge, len(data))
	}

	var ev Event
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Validate checks that the event carries what its type needs.
func (e Event) Validate() error {
	switch e.Type {
	case EventInput, EventToggle:
		if e.Name == "" {
			return fmt.Errorf("%w: %s needs a name", ErrInvalidEvent, e.Type)
		}
	case EventSubmit, EventReset:
	case "":
		return fmt.Errorf("%w: missing type", ErrInvalidEvent)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}

// Encode marshals the event. Used by clients and tests.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
