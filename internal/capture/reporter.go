package capture

import (
	"context"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/messaging"
)

// Reporter sends a picked colour upstream.
type Reporter interface {
	ReportColor(ctx context.Context, c colour.Hex) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, c colour.Hex) error

// ReportColor calls f.
func (f ReporterFunc) ReportColor(ctx context.Context, c colour.Hex) error {
	return f(ctx, c)
}

// SenderReporter reports picks as ColorPicked messages to the background.
type SenderReporter struct {
	Sender messaging.Sender
}

// ReportColor sends ColorPicked{c} to the background context.
func (r SenderReporter) ReportColor(ctx context.Context, c colour.Hex) error {
	_, err := r.Sender.Send(ctx, messaging.Background, messaging.ColorPicked(c))
	return err
}
