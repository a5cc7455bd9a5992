// Package orchestrator implements the popup context: it drives a capture from
// the active tab and shows the palettes for whatever colour comes back.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/messaging"
)

var (
	// ErrRestrictedPage is returned for tabs the page script cannot run in.
	ErrRestrictedPage = errors.New("cannot pick colors from browser pages")

	// ErrNoActiveTab is returned when no tab is focused.
	ErrNoActiveTab = errors.New("no active tab")
)

// RestrictedPageMessage is shown instead of a generic error for restricted tabs.
const RestrictedPageMessage = "Cannot pick colors from browser pages"

// PageScriptFile is the script injected when a tab has no page-context.
const PageScriptFile = "page-script"

// DefaultRestrictedPrefixes lists URL prefixes of browser-internal pages.
var DefaultRestrictedPrefixes = []string{
	"about:",
	"moz-extension:",
	"chrome:",
	"chrome-extension:",
	"edge:",
	"view-source:",
}

// Tab is a browser tab.
type Tab struct {
	ID  int
	URL string
}

// Browser is the set of browser capabilities a capture needs.
type Browser interface {
	ActiveTab(ctx context.Context) (Tab, error)
	CaptureVisibleTab(ctx context.Context) (string, error)
	SendMessage(ctx context.Context, tabID int, msg messaging.Message) (messaging.Response, error)
	InjectScript(ctx context.Context, tabID int, file string) error
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(message string)
}

// IsRestricted reports whether url starts with any of prefixes.
func IsRestricted(url string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(url, p) {
			return true
		}
	}
	return false
}

// Options configures an Orchestrator.
type Options struct {
	Browser  Browser
	Notifier Notifier
	// Close is called once the snapshot has been handed off.
	Close func()
	// RestrictedPrefixes defaults to DefaultRestrictedPrefixes.
	RestrictedPrefixes []string
	// ScriptFile defaults to PageScriptFile.
	ScriptFile string
	Logger     hclog.Logger
}

// Orchestrator runs the capture sequence for one popup.
type Orchestrator struct {
	browser    Browser
	notifier   Notifier
	close      func()
	restricted []string
	script     string
	logger     hclog.Logger
}

// New creates an orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Browser == nil {
		return nil, fmt.Errorf("browser is required")
	}
	o := &Orchestrator{
		browser:    opts.Browser,
		notifier:   opts.Notifier,
		close:      opts.Close,
		restricted: opts.RestrictedPrefixes,
		script:     opts.ScriptFile,
		logger:     opts.Logger,
	}
	if o.restricted == nil {
		o.restricted = DefaultRestrictedPrefixes
	}
	if o.script == "" {
		o.script = PageScriptFile
	}
	if o.logger == nil {
		o.logger = hclog.NewNullLogger()
	}
	return o, nil
}

// Capture snapshots the active tab and hands the snapshot to its
// page-context, injecting the page script once if it is not there yet.
// The popup is closed after a successful hand-off; the colour arrives later
// through the background. Failures are shown to the user and returned.
func (o *Orchestrator) Capture(ctx context.Context) error {
	if err := o.capture(ctx); err != nil {
		o.report(err)
		return err
	}
	if o.close != nil {
		o.close()
	}
	return nil
}

func (o *Orchestrator) capture(ctx context.Context) error {
	tab, err := o.browser.ActiveTab(ctx)
	if err != nil {
		return fmt.Errorf("failed to query active tab: %w", err)
	}

	if IsRestricted(tab.URL, o.restricted) {
		o.logger.Debug("refusing restricted page", "url", tab.URL)
		return fmt.Errorf("%w: %s", ErrRestrictedPage, tab.URL)
	}

	dataURL, err := o.browser.CaptureVisibleTab(ctx)
	if err != nil {
		return fmt.Errorf("failed to capture tab: %w", err)
	}
	o.logger.Debug("snapshot captured", "tab", tab.ID, "bytes", len(dataURL))

	retry := InjectionRetry{
		Inject: func(ctx context.Context) error {
			return o.browser.InjectScript(ctx, tab.ID, o.script)
		},
		Logger: o.logger,
	}
	msg := messaging.ScreenshotReady(dataURL)
	err = retry.Do(ctx, func(ctx context.Context) error {
		_, err := o.browser.SendMessage(ctx, tab.ID, msg)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to start picker: %w", err)
	}

	o.logger.Info("picker started", "tab", tab.ID)
	return nil
}

func (o *Orchestrator) report(err error) {
	o.logger.Error("capture failed", "error", err)
	if o.notifier == nil {
		return
	}
	if errors.Is(err, ErrRestrictedPage) {
		o.notifier.Notify(RestrictedPageMessage)
		return
	}
	o.notifier.Notify("Error: " + err.Error())
}
