package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/messaging"
)

// EventType names a page input event.
type EventType string

// Input event types.
const (
	EventMove  EventType = "move"
	EventClick EventType = "click"
	EventKey   EventType = "key"
)

// Event is a pointer or keyboard event delivered to the page.
type Event struct {
	Type EventType `json:"type"`
	X    float64   `json:"x,omitempty"`
	Y    float64   `json:"y,omitempty"`
	Key  string    `json:"key,omitempty"`
}

// Move returns a pointer-move event.
func Move(x, y float64) Event { return Event{Type: EventMove, X: x, Y: y} }

// Click returns a click event.
func Click(x, y float64) Event { return Event{Type: EventClick, X: x, Y: y} }

// Key returns a key-press event.
func Key(name string) Event { return Event{Type: EventKey, Key: name} }

// Agent is the script injected into a page. It receives messages from other
// contexts and input events from the page, and drives a Session with them
// one at a time.
type Agent struct {
	mu       sync.Mutex
	session  *Session
	listener *messaging.Listener
	logger   hclog.Logger
}

// NewAgent wraps session.
func NewAgent(session *Session, logger hclog.Logger) *Agent {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Agent{session: session, logger: logger}
}

// Listen registers the agent as the page-context listener for ep.
func (a *Agent) Listen(router *messaging.Router, ep messaging.Endpoint) error {
	l, err := router.Listen(ep, a)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.listener = l
	a.mu.Unlock()
	a.logger.Debug("page script listening", "endpoint", ep)
	return nil
}

// HandleMessage implements messaging.Handler.
func (a *Agent) HandleMessage(_ context.Context, msg messaging.Message) (messaging.Response, error) {
	if err := msg.Validate(); err != nil {
		return messaging.Response{}, err
	}

	switch msg.Action {
	case messaging.ActionScreenshotReady:
		a.mu.Lock()
		defer a.mu.Unlock()
		if err := a.session.Arm(msg.DataURL); err != nil {
			a.logger.Error("failed to load snapshot", "error", err)
			return messaging.Response{}, err
		}
		a.session.Start()
		return messaging.Response{Status: messaging.StatusLoaded}, nil

	case messaging.ActionColorPicked:
		return messaging.Response{Status: messaging.StatusReceived}, nil

	default:
		return messaging.Response{}, messaging.Unhandled(msg)
	}
}

// Input dispatches a page event to the session.
func (a *Agent) Input(ctx context.Context, ev Event) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch ev.Type {
	case EventMove:
		return a.session.PointerMove(ev.X, ev.Y), nil
	case EventClick:
		return a.session.Click(ctx, ev.X, ev.Y)
	case EventKey:
		return a.session.Key(ev.Key), nil
	default:
		return Outcome{State: a.session.State()}, fmt.Errorf("unknown input event %q", ev.Type)
	}
}

// State returns the session state.
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.State()
}

// Close stops listening and tears the session down.
func (a *Agent) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		a.listener.Close()
		a.listener = nil
	}
	a.session.Teardown()
}
