package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/harmony"
	"github.com/jmylchreest/pipette/internal/messaging"
)

// DefaultColour is shown when no colour has been picked.
const DefaultColour colour.Hex = "#3366CC"

// View renders the popup.
type View interface {
	Render(base colour.Hex, palettes harmony.Palettes)
}

// ViewFunc adapts a function to View.
type ViewFunc func(base colour.Hex, palettes harmony.Palettes)

// Render calls f.
func (f ViewFunc) Render(base colour.Hex, palettes harmony.Palettes) {
	f(base, palettes)
}

// Popup is the popup context's state: the current colour and its palettes.
type Popup struct {
	mu       sync.Mutex
	colour   colour.Hex
	palettes harmony.Palettes
	sender   messaging.Sender
	view     View
	listener *messaging.Listener
	logger   hclog.Logger
}

// NewPopup creates a popup showing DefaultColour. sender reaches the
// background; view may be nil.
func NewPopup(sender messaging.Sender, view View, logger hclog.Logger) *Popup {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	p := &Popup{sender: sender, view: view, logger: logger}
	p.set(DefaultColour)
	return p
}

// Listen registers the popup on the router so live picks reach it.
func (p *Popup) Listen(router *messaging.Router) error {
	l, err := router.Listen(messaging.Popup, p)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.listener = l
	p.mu.Unlock()
	return nil
}

// Open asks the background for a pending colour, exactly once, and renders.
// A missing background or an empty answer keeps the current colour.
func (p *Popup) Open(ctx context.Context) colour.Hex {
	if p.sender != nil {
		resp, err := p.sender.Send(ctx, messaging.Background, messaging.GetPickedColor())
		switch {
		case err != nil:
			p.logger.Debug("no pending colour", "error", err)
		case resp.Color != "":
			p.SetColor(string(resp.Color))
		}
	}
	p.render()
	return p.Colour()
}

// SetColor applies user input. Surrounding space and a missing '#' are
// tolerated; anything that is still not a hex colour is ignored.
func (p *Popup) SetColor(input string) bool {
	s := strings.TrimSpace(input)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colour.ParseHex(s)
	if err != nil {
		p.logger.Trace("ignoring colour input", "input", input)
		return false
	}
	p.set(c)
	return true
}

// HandleMessage implements messaging.Handler for the popup endpoint.
func (p *Popup) HandleMessage(_ context.Context, msg messaging.Message) (messaging.Response, error) {
	if msg.Action != messaging.ActionColorPicked {
		return messaging.Response{}, messaging.Unhandled(msg)
	}
	if err := msg.Validate(); err != nil {
		return messaging.Response{}, err
	}
	p.SetColor(string(msg.Color))
	p.render()
	return messaging.Response{Status: messaging.StatusReceived}, nil
}

// Colour returns the current base colour.
func (p *Popup) Colour() colour.Hex {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.colour
}

// Palettes returns the palettes for the current colour.
func (p *Popup) Palettes() harmony.Palettes {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.palettes
}

// Close stops listening.
func (p *Popup) Close() {
	p.mu.Lock()
	l := p.listener
	p.listener = nil
	p.mu.Unlock()
	if l != nil {
		l.Close()
	}
}

func (p *Popup) set(c colour.Hex) {
	palettes, err := harmony.GenerateAll(string(c))
	if err != nil {
		// c is always a parsed hex here.
		p.logger.Error("failed to generate palettes", "colour", c, "error", err)
		return
	}
	p.mu.Lock()
	p.colour = c
	p.palettes = palettes
	p.mu.Unlock()
}

func (p *Popup) render() {
	if p.view == nil {
		return
	}
	p.mu.Lock()
	c, palettes := p.colour, p.palettes
	p.mu.Unlock()
	p.view.Render(c, palettes)
}
