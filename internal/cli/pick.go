package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/pipette/internal/browser"
	"github.com/jmylchreest/pipette/internal/capture"
	"github.com/jmylchreest/pipette/internal/coordinator"
	"github.com/jmylchreest/pipette/internal/messaging"
	"github.com/jmylchreest/pipette/internal/orchestrator"
	"github.com/jmylchreest/pipette/internal/snapshot"
)

// ErrNothingPicked is returned when a pick ends without a colour.
var ErrNothingPicked = errors.New("no colour picked")

type pickOptions struct {
	url      string
	snapshot string
	at       string
	moves    []string
	escape   bool
	scheme   string
	format   string
	preview  bool
	browser  browserFlags
}

// browserFlags are the host settings shared by pick and page-context.
type browserFlags struct {
	scale    float64
	viewport string
	isolated bool
}

func (f *browserFlags) register(fs *pflag.FlagSet, withIsolated bool) {
	fs.Float64Var(&f.scale, "scale", 1, "device pixel scale of the snapshot ("+browser.EnvScale+")")
	fs.StringVar(&f.viewport, "viewport", "1280x800", "visible page size in CSS pixels, WIDTHxHEIGHT ("+browser.EnvViewport+")")
	if withIsolated {
		fs.BoolVar(&f.isolated, "isolated", false, "run the page script in a separate process ("+browser.EnvIsolated+")")
	}
}

// apply copies explicitly set flags onto cfg so they win over the environment.
func (f *browserFlags) apply(fs *pflag.FlagSet, cfg *browser.Config) error {
	if fs.Changed("scale") {
		cfg.Viewport.Scale = f.scale
	}
	if fs.Changed("viewport") {
		w, h, err := browser.ParseViewport(f.viewport)
		if err != nil {
			return err
		}
		cfg.Viewport.Width, cfg.Viewport.Height = w, h
	}
	if fs.Lookup("isolated") != nil && fs.Changed("isolated") {
		cfg.Isolated = f.isolated
	}
	return nil
}

func newPickCmd() *cobra.Command {
	opts := &pickOptions{}

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick a colour from a page snapshot",
		Long: `Pick a colour from a page snapshot the way the eyedropper extension does.

The popup captures the active tab (the --snapshot image: a local file,
optionally .gz, .bz2 or .xz compressed, or an HTTPS URL), delivers it to
the page script, injecting the script on first use, then closes. Pointer
moves and a click are replayed on the page. The picked colour goes to the
background, and a fresh popup takes it and shows its palettes.`,
		Example: `  pipette pick --snapshot page.png --at 120,48
  pipette pick --url https://example.com --snapshot page.png.xz --scale 2 --move 10,10 --at 120,48
  pipette pick --snapshot page.png --at 5,5 --isolated --format list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPick(cmd, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.url, "url", "https://example.com/", "URL of the tab")
	fs.StringVar(&opts.snapshot, "snapshot", "", "what the tab shows: image path (optionally .gz, .bz2 or .xz) or HTTPS URL")
	fs.StringVar(&opts.at, "at", "", "click position X,Y in CSS pixels")
	fs.StringArrayVar(&opts.moves, "move", nil, "pointer move X,Y before clicking (repeatable)")
	fs.BoolVar(&opts.escape, "escape", false, "press Escape instead of clicking")
	fs.BoolVar(&opts.preview, "preview", false, "draw colour swatches (default: when writing to a terminal)")
	addOutputFlags(cmd, &opts.scheme, &opts.format)
	opts.browser.register(fs, true)
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

func runPick(cmd *cobra.Command, opts *pickOptions) error {
	if !opts.escape && opts.at == "" {
		return fmt.Errorf("--at is required unless --escape is given")
	}
	click, err := parsePoint(opts.at, opts.escape)
	if err != nil {
		return err
	}
	moves := make([]capture.Point, 0, len(opts.moves))
	for _, m := range opts.moves {
		p, err := parsePoint(m, false)
		if err != nil {
			return err
		}
		moves = append(moves, p)
	}
	if err := snapshot.Validate(opts.snapshot); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	logger := newLogger(cmd)
	var flagErr error
	host, err := browser.NewBuilder().
		WithEnvConfig().
		WithOverrides(func(cfg *browser.Config) { flagErr = opts.browser.apply(cmd.Flags(), cfg) }).
		WithLogger(logger.Named("browser")).
		Build()
	if err != nil {
		return err
	}
	defer host.Close()
	if flagErr != nil {
		return flagErr
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := pickColour(ctx, host, opts.url, snapshot.NewSource(opts.snapshot), moves, click, opts.escape, logger)
	if err != nil {
		return err
	}
	if result.Outcome.State == capture.Cancelled {
		_, err := fmt.Fprintln(out, "Picking cancelled")
		return err
	}
	if result.Confirmation != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), result.Confirmation)
	}
	return renderPalettes(out, result.Popup.Palettes(), opts.scheme, opts.format, usePreview(cmd, out))
}

// pickResult is what the user sees after a pick.
type pickResult struct {
	Outcome      capture.Outcome
	Confirmation string
	Popup        *orchestrator.Popup
}

// pickColour drives one capture end to end: a popup starts the picker on a
// new tab, input is replayed on the page, and a second popup collects the
// colour from the background.
func pickColour(
	ctx context.Context,
	host *browser.Host,
	url string,
	source snapshot.Source,
	moves []capture.Point,
	click capture.Point,
	escape bool,
	logger hclog.Logger,
) (pickResult, error) {
	router := host.Router()

	coord := coordinator.New(host, router, logger.Named("background"))
	if _, err := router.Listen(messaging.Background, coord); err != nil {
		return pickResult{}, err
	}

	tab, err := host.OpenTab(url, source)
	if err != nil {
		return pickResult{}, err
	}

	popup := orchestrator.NewPopup(router, nil, logger.Named("popup"))
	if err := popup.Listen(router); err != nil {
		return pickResult{}, err
	}
	orch, err := orchestrator.New(orchestrator.Options{
		Browser:            host,
		Notifier:           host,
		Close:              popup.Close,
		RestrictedPrefixes: host.Config().RestrictedPrefixes,
		Logger:             logger.Named("popup"),
	})
	if err != nil {
		return pickResult{}, err
	}
	popup.Open(ctx)
	if err := orch.Capture(ctx); err != nil {
		popup.Close()
		return pickResult{}, err
	}

	for _, m := range moves {
		if _, err := host.Dispatch(ctx, tab.ID, capture.Move(m.X, m.Y)); err != nil {
			return pickResult{}, err
		}
	}

	var outcome capture.Outcome
	if escape {
		outcome, err = host.Dispatch(ctx, tab.ID, capture.Key(capture.EscapeKey))
	} else {
		outcome, err = host.Dispatch(ctx, tab.ID, capture.Click(click.X, click.Y))
	}
	if err != nil {
		return pickResult{}, err
	}

	switch outcome.State {
	case capture.Cancelled:
		return pickResult{Outcome: outcome}, nil
	case capture.Resolved:
	default:
		return pickResult{Outcome: outcome}, fmt.Errorf("%w (page is %s)", ErrNothingPicked, outcome.State)
	}

	next := orchestrator.NewPopup(router, nil, logger.Named("popup"))
	if c := next.Open(ctx); c != outcome.Colour {
		return pickResult{}, fmt.Errorf("%w: background returned %q, page picked %s", ErrNothingPicked, c, outcome.Colour)
	}
	return pickResult{Outcome: outcome, Confirmation: outcome.Confirmation, Popup: next}, nil
}

// parsePoint parses "X,Y". An empty string is allowed when optional.
func parsePoint(s string, optional bool) (capture.Point, error) {
	if s == "" && optional {
		return capture.Point{}, nil
	}
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return capture.Point{}, fmt.Errorf("invalid point %q: want X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return capture.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return capture.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return capture.Point{X: x, Y: y}, nil
}
