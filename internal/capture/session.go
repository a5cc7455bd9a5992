// Package capture implements the page-context side of colour picking.
//
// A Session is an explicit state machine over a single snapshot:
//
//	Idle -> Armed -> Picking -> Resolved | Cancelled -> Idle
//
// Each external event (snapshot arrival, pointer move, click, key press) has
// one entry point that is only acted on in the state that accepts it.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/snapshot"
)

// Swatch geometry in CSS pixels.
const (
	SwatchOffset = 25
	SwatchExtent = 60
)

// EscapeKey is the key name that cancels picking.
const EscapeKey = "Escape"

var (
	// ErrNotPicking is returned by Click when no picking session is active.
	ErrNotPicking = errors.New("no active picking session")

	// ErrEmptySnapshot is returned by Arm when a snapshot decodes to nothing.
	ErrEmptySnapshot = errors.New("snapshot decoded to an empty bitmap")
)

// State is the lifecycle state of a Session.
type State int

// Session states.
const (
	Idle State = iota
	Armed
	Picking
	Resolved
	Cancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Picking:
		return "picking"
	case Resolved:
		return "resolved"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Point is a position in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport describes the visible page area.
// A zero Width or Height disables swatch flipping on that axis.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

func (v Viewport) scale() float64 {
	if v.Scale > 0 {
		return v.Scale
	}
	return 1
}

// SwatchPosition places the swatch beside the cursor, flipped to the other
// side on any axis where it would leave the viewport.
func (v Viewport) SwatchPosition(x, y float64) Point {
	p := Point{X: x + SwatchOffset, Y: y + SwatchOffset}
	if v.Width > 0 && p.X+SwatchExtent > v.Width {
		p.X = x - SwatchExtent - SwatchOffset
	}
	if v.Height > 0 && p.Y+SwatchExtent > v.Height {
		p.Y = y - SwatchExtent - SwatchOffset
	}
	return p
}

// Surface draws the picking UI on the page.
type Surface interface {
	// ShowOverlay installs the full-viewport overlay and the swatch.
	ShowOverlay()
	// MoveSwatch positions the swatch. An empty fill keeps the previous one.
	MoveSwatch(pos Point, fill colour.Hex)
	// RemoveOverlay detaches the overlay and the swatch.
	RemoveOverlay()
	// Confirm shows a transient on-page message.
	Confirm(message string)
}

// Decoder turns a snapshot data URL into a bitmap.
type Decoder func(dataURL string) (image.Image, error)

// Outcome is the result of the last input handled by a session.
type Outcome struct {
	State        State      `json:"state"`
	Colour       colour.Hex `json:"colour,omitempty"`
	Confirmation string     `json:"confirmation,omitempty"`
}

// ConfirmationMessage is the on-page message shown after a successful pick.
func ConfirmationMessage(c colour.Hex) string {
	return fmt.Sprintf("Color %s saved! Click the extension icon.", c)
}

// Options configures a Session.
type Options struct {
	Surface  Surface
	Reporter Reporter
	Viewport Viewport
	Decoder  Decoder
	Logger   hclog.Logger
}

// Session is one page-context's picking state machine. It is not safe for
// concurrent use; Agent serialises access.
type Session struct {
	state    State
	overlay  bool
	bitmap   image.Image
	last     Outcome
	viewport Viewport
	surface  Surface
	reporter Reporter
	decode   Decoder
	logger   hclog.Logger
}

// NewSession creates an idle session.
func NewSession(opts Options) *Session {
	s := &Session{
		viewport: opts.Viewport,
		surface:  opts.Surface,
		reporter: opts.Reporter,
		decode:   opts.Decoder,
		logger:   opts.Logger,
	}
	if s.surface == nil {
		s.surface = nopSurface{}
	}
	if s.reporter == nil {
		s.reporter = ReporterFunc(func(context.Context, colour.Hex) error { return nil })
	}
	if s.decode == nil {
		s.decode = snapshot.Decode
	}
	if s.logger == nil {
		s.logger = hclog.NewNullLogger()
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Last returns the outcome of the most recent input event.
func (s *Session) Last() Outcome {
	return s.last
}

// Arm decodes a snapshot and moves the session from Idle to Armed.
// While a session is already Armed or Picking the request is ignored.
// A decode failure leaves the session Idle and is returned.
func (s *Session) Arm(dataURL string) error {
	switch s.state {
	case Armed, Picking:
		s.logger.Debug("snapshot ignored, session already active", "state", s.state)
		return nil
	}

	bitmap, err := s.decode(dataURL)
	if err != nil {
		s.state = Idle
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if bitmap == nil {
		s.state = Idle
		return fmt.Errorf("failed to load snapshot: %w", ErrEmptySnapshot)
	}

	s.bitmap = bitmap
	s.state = Armed
	s.logger.Debug("session armed", "bounds", bitmap.Bounds().String())
	return nil
}

// Start installs the overlay and begins picking. It only acts on an Armed
// session.
func (s *Session) Start() {
	if s.state != Armed {
		return
	}
	s.surface.ShowOverlay()
	s.overlay = true
	s.state = Picking
	s.logger.Debug("picking started")
}

// PointerMove updates the swatch for a cursor at (x, y).
func (s *Session) PointerMove(x, y float64) Outcome {
	if s.state != Picking {
		return Outcome{State: s.state}
	}

	fill, _ := s.sample(x, y)
	s.surface.MoveSwatch(s.viewport.SwatchPosition(x, y), fill)

	s.last = Outcome{State: Picking}
	return s.last
}

// Click samples the pixel under (x, y). On success the colour is reported
// upstream, the session is torn down and a confirmation is shown. A failed
// sample cancels the session. Teardown happens on every path, including a
// failed report.
func (s *Session) Click(ctx context.Context, x, y float64) (Outcome, error) {
	if s.state != Picking {
		return Outcome{State: s.state}, ErrNotPicking
	}

	c, ok := s.sample(x, y)
	if !ok {
		s.logger.Debug("click outside snapshot, cancelling", "x", x, "y", y)
		s.finish(Outcome{State: Cancelled})
		return s.last, nil
	}

	s.state = Resolved
	if err := s.reporter.ReportColor(ctx, c); err != nil {
		s.finish(Outcome{State: Resolved, Colour: c})
		return s.last, fmt.Errorf("failed to report colour %s: %w", c, err)
	}

	msg := ConfirmationMessage(c)
	s.finish(Outcome{State: Resolved, Colour: c, Confirmation: msg})
	s.surface.Confirm(msg)
	s.logger.Info("colour picked", "colour", c)
	return s.last, nil
}

// Key handles a key press. Only Escape while picking has an effect.
func (s *Session) Key(name string) Outcome {
	if s.state != Picking || name != EscapeKey {
		return Outcome{State: s.state}
	}
	s.logger.Debug("picking cancelled")
	s.finish(Outcome{State: Cancelled})
	return s.last
}

// Teardown removes the overlay and releases the snapshot, returning the
// session to Idle. Calling it on an idle session does nothing.
func (s *Session) Teardown() {
	if s.overlay {
		s.surface.RemoveOverlay()
		s.overlay = false
	}
	s.bitmap = nil
	s.state = Idle
}

func (s *Session) finish(o Outcome) {
	s.state = o.State
	s.last = o
	s.Teardown()
}

func (s *Session) sample(x, y float64) (colour.Hex, bool) {
	return colour.SamplePixel(s.bitmap, x, y, s.viewport.scale())
}

type nopSurface struct{}

func (nopSurface) ShowOverlay() {}
func (nopSurface) MoveSwatch(Point, colour.Hex) {}
func (nopSurface) RemoveOverlay() {}
func (nopSurface) Confirm(string) {}
