// Package messaging connects isolated execution contexts (background, popup
// and page-context) through asynchronous request/response messages.
//
// Each context listens on an Endpoint and is served by a single goroutine, so
// a handler always runs to completion before the next message for the same
// endpoint is processed. Sending to an endpoint with no listener fails
// immediately with ErrNoListener.
package messaging

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/pipette/internal/colour"
)

// Action identifies the kind of a message.
type Action string

// Message actions.
const (
	ActionScreenshotReady Action = "screenshotReady"
	ActionColorPicked     Action = "colorPicked"
	ActionGetPickedColor  Action = "getPickedColor"
)

// Status values carried in responses.
const (
	StatusLoaded   = "loaded"
	StatusReceived = "received"
)

// ErrUnhandledAction is returned by a handler for an action it does not serve.
var ErrUnhandledAction = errors.New("unhandled message action")

// Message is the logical payload exchanged between contexts.
type Message struct {
	Action  Action     `json:"action"`
	DataURL string     `json:"dataUrl,omitempty"`
	Color   colour.Hex `json:"color,omitempty"`
}

// Response answers a Message. Color is empty when no colour is pending.
type Response struct {
	Status string     `json:"status,omitempty"`
	Color  colour.Hex `json:"color,omitempty"`
}

// ScreenshotReady hands a snapshot to the page-context.
func ScreenshotReady(dataURL string) Message {
	return Message{Action: ActionScreenshotReady, DataURL: dataURL}
}

// ColorPicked reports a sampled colour.
func ColorPicked(c colour.Hex) Message {
	return Message{Action: ActionColorPicked, Color: c}
}

// GetPickedColor asks the background for the pending colour.
func GetPickedColor() Message {
	return Message{Action: ActionGetPickedColor}
}

// Validate checks that the message carries the payload its action requires.
func (m Message) Validate() error {
	switch m.Action {
	case ActionScreenshotReady:
		if m.DataURL == "" {
			return fmt.Errorf("%s: missing data URL", m.Action)
		}
	case ActionColorPicked:
		if _, err := colour.ParseHex(string(m.Color)); err != nil {
			return fmt.Errorf("%s: %w", m.Action, err)
		}
	case ActionGetPickedColor:
	default:
		return fmt.Errorf("%w: %q", ErrUnhandledAction, m.Action)
	}
	return nil
}

// Unhandled returns the error a handler reports for an action it ignores.
func Unhandled(m Message) error {
	return fmt.Errorf("%w: %q", ErrUnhandledAction, m.Action)
}
