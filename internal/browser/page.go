package browser

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/capture"
	"github.com/jmylchreest/pipette/internal/messaging"
	"github.com/jmylchreest/pipette/internal/pagescript"
)

// pageContext is an injected page script.
type pageContext interface {
	Input(ctx context.Context, ev capture.Event) (capture.Outcome, error)
	Close()
}

// localPage runs the page script in this process.
type localPage struct {
	agent *capture.Agent
}

func startLocalPage(router *messaging.Router, tabID int, vp capture.Viewport, surface capture.Surface, logger hclog.Logger) (*localPage, error) {
	session := capture.NewSession(capture.Options{
		Surface:  surface,
		Reporter: capture.SenderReporter{Sender: router},
		Viewport: vp,
		Logger:   logger,
	})
	agent := capture.NewAgent(session, logger)
	if err := agent.Listen(router, messaging.Tab(tabID)); err != nil {
		return nil, err
	}
	return &localPage{agent: agent}, nil
}

func (p *localPage) Input(ctx context.Context, ev capture.Event) (capture.Outcome, error) {
	return p.agent.Input(ctx, ev)
}

func (p *localPage) Close() {
	p.agent.Close()
}

// remotePage runs the page script in a plugin process. Messages for the tab
// are relayed over RPC; the process reports picks to the background through
// a brokered reporter.
type remotePage struct {
	proc     *pagescript.Process
	script   pagescript.PageScript
	listener *messaging.Listener
	logger   hclog.Logger
}

func startRemotePage(router *messaging.Router, tabID int, vp capture.Viewport, command CommandFunc, logger hclog.Logger) (*remotePage, error) {
	cmd, err := command(vp)
	if err != nil {
		return nil, err
	}
	proc, err := pagescript.Launch(cmd, capture.SenderReporter{Sender: router}, logger)
	if err != nil {
		return nil, err
	}

	p := &remotePage{
		proc:   proc,
		script: proc.Script(),
		logger: logger,
	}
	p.listener, err = router.Listen(messaging.Tab(tabID), p)
	if err != nil {
		proc.Kill()
		return nil, err
	}
	return p, nil
}

// HandleMessage implements messaging.Handler.
func (p *remotePage) HandleMessage(ctx context.Context, msg messaging.Message) (messaging.Response, error) {
	return p.script.Deliver(ctx, msg)
}

func (p *remotePage) Input(ctx context.Context, ev capture.Event) (capture.Outcome, error) {
	out, err := p.script.Input(ctx, ev)
	if err != nil && p.proc.Exited() {
		p.logger.Error("page script process exited")
	}
	return out, err
}

func (p *remotePage) Close() {
	p.listener.Close()
	p.proc.Kill()
}
