// Package browser is a headless stand-in for the browser capabilities the
// extension contexts rely on: tabs with a visible snapshot, message delivery
// to page scripts, script injection, the toolbar badge and notifications.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/capture"
	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/messaging"
	"github.com/jmylchreest/pipette/internal/orchestrator"
	"github.com/jmylchreest/pipette/internal/security"
	"github.com/jmylchreest/pipette/internal/snapshot"
)

var (
	// ErrNoPageScript is returned when input is dispatched to a tab whose
	// page script was never injected.
	ErrNoPageScript = errors.New("no page script in tab")

	// ErrUnknownTab is returned for a tab id the host does not know.
	ErrUnknownTab = errors.New("unknown tab")

	// ErrUnknownScript is returned when injecting a script the host cannot run.
	ErrUnknownScript = errors.New("unknown script")
)

// Badge is the toolbar badge state.
type Badge struct {
	Text   string
	Colour colour.Hex
}

type tab struct {
	info   orchestrator.Tab
	source snapshot.Source
	page   pageContext
}

// Host implements orchestrator.Browser, orchestrator.Notifier and
// coordinator.Badge.
type Host struct {
	mu            sync.Mutex
	config        Config
	router        *messaging.Router
	command       CommandFunc
	logger        hclog.Logger
	tabs          map[int]*tab
	active        int
	nextID        int
	badge         Badge
	notifications []string
	surfaces      map[int]*RecordingSurface
}

func newHost(config Config, router *messaging.Router, command CommandFunc, logger hclog.Logger) *Host {
	return &Host{
		config:   config,
		router:   router,
		command:  command,
		logger:   logger,
		tabs:     make(map[int]*tab),
		surfaces: make(map[int]*RecordingSurface),
	}
}

// Config returns the host configuration.
func (h *Host) Config() Config {
	return h.config
}

// Router returns the router connecting the contexts.
func (h *Host) Router() *messaging.Router {
	return h.router
}

// OpenTab opens url in a new tab, makes it active and returns it. source
// provides what the tab shows when captured.
func (h *Host) OpenTab(url string, source snapshot.Source) (orchestrator.Tab, error) {
	if err := security.ValidateTabURL(url); err != nil {
		return orchestrator.Tab{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	t := &tab{info: orchestrator.Tab{ID: h.nextID, URL: url}, source: source}
	h.tabs[t.info.ID] = t
	h.active = t.info.ID
	h.logger.Debug("tab opened", "tab", t.info.ID, "url", url)
	return t.info, nil
}

// ActiveTab implements orchestrator.Browser.
func (h *Host) ActiveTab(context.Context) (orchestrator.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.tabs[h.active]
	if !ok {
		return orchestrator.Tab{}, orchestrator.ErrNoActiveTab
	}
	return t.info, nil
}

// CaptureVisibleTab implements orchestrator.Browser.
func (h *Host) CaptureVisibleTab(ctx context.Context) (string, error) {
	h.mu.Lock()
	t, ok := h.tabs[h.active]
	h.mu.Unlock()
	if !ok {
		return "", orchestrator.ErrNoActiveTab
	}
	if t.source == nil {
		return "", fmt.Errorf("tab %d has nothing to capture", t.info.ID)
	}
	return t.source.Capture(ctx)
}

// SendMessage implements orchestrator.Browser. It fails with
// messaging.ErrNoListener until a page script is injected.
func (h *Host) SendMessage(ctx context.Context, tabID int, msg messaging.Message) (messaging.Response, error) {
	if _, err := h.lookup(tabID); err != nil {
		return messaging.Response{}, err
	}
	return h.router.Send(ctx, messaging.Tab(tabID), msg)
}

// InjectScript implements orchestrator.Browser. Injecting into a tab that
// already runs the page script is a no-op.
func (h *Host) InjectScript(_ context.Context, tabID int, file string) error {
	if file != orchestrator.PageScriptFile {
		return fmt.Errorf("%w: %s", ErrUnknownScript, file)
	}
	t, err := h.lookup(tabID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if t.page != nil {
		return nil
	}

	logger := h.logger.Named(fmt.Sprintf("page.%d", tabID))
	var page pageContext
	if h.config.Isolated {
		page, err = startRemotePage(h.router, tabID, h.config.Viewport, h.command, logger)
	} else {
		surface := &RecordingSurface{}
		h.surfaces[tabID] = surface
		page, err = startLocalPage(h.router, tabID, h.config.Viewport, surface, logger)
	}
	if err != nil {
		return fmt.Errorf("failed to inject %s into tab %d: %w", file, tabID, err)
	}
	t.page = page
	h.logger.Debug("page script injected", "tab", tabID, "isolated", h.config.Isolated)
	return nil
}

// Dispatch delivers a page input event to a tab's page script.
func (h *Host) Dispatch(ctx context.Context, tabID int, ev capture.Event) (capture.Outcome, error) {
	t, err := h.lookup(tabID)
	if err != nil {
		return capture.Outcome{}, err
	}
	h.mu.Lock()
	page := t.page
	h.mu.Unlock()
	if page == nil {
		return capture.Outcome{}, fmt.Errorf("%w %d", ErrNoPageScript, tabID)
	}
	return page.Input(ctx, ev)
}

// Surface returns the recorded page UI of an in-process page script.
func (h *Host) Surface(tabID int) (*RecordingSurface, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.surfaces[tabID]
	return s, ok
}

// SetBadge implements coordinator.Badge.
func (h *Host) SetBadge(text string, background colour.Hex) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.badge = Badge{Text: text, Colour: background}
}

// ClearBadge implements coordinator.Badge.
func (h *Host) ClearBadge() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.badge = Badge{}
}

// Badge returns the current badge.
func (h *Host) Badge() Badge {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.badge
}

// Notify implements orchestrator.Notifier.
func (h *Host) Notify(message string) {
	h.mu.Lock()
	h.notifications = append(h.notifications, message)
	h.mu.Unlock()
	h.logger.Info("notification", "message", message)
}

// Notifications returns every message shown so far.
func (h *Host) Notifications() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.notifications...)
}

// Close stops every page script and the router.
func (h *Host) Close() {
	h.mu.Lock()
	pages := make([]pageContext, 0, len(h.tabs))
	for _, t := range h.tabs {
		if t.page != nil {
			pages = append(pages, t.page)
			t.page = nil
		}
	}
	h.mu.Unlock()

	for _, p := range pages {
		p.Close()
	}
	h.router.Close()
}

func (h *Host) lookup(tabID int) (*tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.tabs[tabID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTab, tabID)
	}
	return t, nil
}
