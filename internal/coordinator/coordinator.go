// Package coordinator implements the background context: it holds the single
// pending colour between a pick and the next popup that asks for it.
package coordinator

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/messaging"
)

// BadgeText is shown while a colour is pending.
const BadgeText = "●"

// Badge is the toolbar readiness signal.
type Badge interface {
	SetBadge(text string, background colour.Hex)
	ClearBadge()
}

// Slot holds at most one colour. A value can be taken once.
type Slot struct {
	mu    sync.Mutex
	value colour.Hex
}

// Record overwrites the slot.
func (s *Slot) Record(c colour.Hex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = c
}

// TakeAndClear returns the held colour and empties the slot.
// It returns "" when nothing is held.
func (s *Slot) TakeAndClear() colour.Hex {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.value
	s.value = ""
	return c
}

// Coordinator mediates between the page-context and the popup.
type Coordinator struct {
	slot   Slot
	badge  Badge
	sender messaging.Sender
	logger hclog.Logger
}

// New creates a coordinator. badge and sender may be nil.
func New(badge Badge, sender messaging.Sender, logger hclog.Logger) *Coordinator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Coordinator{badge: badge, sender: sender, logger: logger}
}

// RecordColor stores c as the pending colour, raises the badge and forwards
// the pick to the popup if one is open. Forwarding is best-effort.
func (c *Coordinator) RecordColor(ctx context.Context, hex colour.Hex) {
	c.slot.Record(hex)
	if c.badge != nil {
		c.badge.SetBadge(BadgeText, hex)
	}
	c.logger.Info("colour recorded", "colour", hex)

	if c.sender == nil {
		return
	}
	if _, err := c.sender.Send(ctx, messaging.Popup, messaging.ColorPicked(hex)); err != nil {
		c.logger.Debug("popup not reachable, colour kept pending", "error", err)
	}
}

// TakePendingColor returns the pending colour and clears it, along with the
// badge. A second call returns "" until the next RecordColor.
func (c *Coordinator) TakePendingColor() colour.Hex {
	hex := c.slot.TakeAndClear()
	if c.badge != nil {
		c.badge.ClearBadge()
	}
	if hex != "" {
		c.logger.Debug("pending colour taken", "colour", hex)
	}
	return hex
}

// HandleMessage implements messaging.Handler for the background endpoint.
func (c *Coordinator) HandleMessage(ctx context.Context, msg messaging.Message) (messaging.Response, error) {
	if err := msg.Validate(); err != nil {
		return messaging.Response{}, err
	}

	switch msg.Action {
	case messaging.ActionColorPicked:
		hex, _ := colour.ParseHex(string(msg.Color))
		c.RecordColor(ctx, hex)
		return messaging.Response{Status: messaging.StatusReceived}, nil
	case messaging.ActionGetPickedColor:
		return messaging.Response{Color: c.TakePendingColor()}, nil
	default:
		return messaging.Response{}, messaging.Unhandled(msg)
	}
}
