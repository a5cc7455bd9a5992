package pagescript

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/pipette/internal/capture"
	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/messaging"
)

// Serve runs impl as a page-script plugin. It blocks until the host goes away.
func Serve(impl PageScript, logger hclog.Logger) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap(impl, nil),
		Logger:          logger,
	})
}

// Process is a running page-script plugin.
type Process struct {
	client *plugin.Client
	script PageScript
}

// Launch starts cmd as a page-script plugin and connects to it. Picks made
// in the page are reported through reporter.
func Launch(cmd *exec.Cmd, reporter capture.Reporter, logger hclog.Logger) (*Process, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          PluginMap(nil, reporter),
		Cmd:              cmd,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           logger,
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to dispense page script: %w", err)
	}

	script, ok := raw.(PageScript)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("unexpected page script type %T", raw)
	}
	return &Process{client: client, script: script}, nil
}

// Script returns the RPC-backed page script.
func (p *Process) Script() PageScript {
	return p.script
}

// Exited reports whether the plugin process has exited.
func (p *Process) Exited() bool {
	return p.client.Exited()
}

// Kill stops the plugin process.
func (p *Process) Kill() {
	p.client.Kill()
}

// AgentScript serves a capture.Agent as a PageScript. Picks go to Reporter
// once the host has attached one.
type AgentScript struct {
	Agent    *capture.Agent
	Reporter *RemoteReporter
}

// AttachReporter implements ReporterAttacher.
func (s AgentScript) AttachReporter(r capture.Reporter) {
	if s.Reporter != nil {
		s.Reporter.AttachReporter(r)
	}
}

// Deliver passes msg to the agent.
func (s AgentScript) Deliver(ctx context.Context, msg messaging.Message) (messaging.Response, error) {
	return s.Agent.HandleMessage(ctx, msg)
}

// Input passes ev to the agent.
func (s AgentScript) Input(ctx context.Context, ev capture.Event) (capture.Outcome, error) {
	return s.Agent.Input(ctx, ev)
}

// NewPluginScript builds the page script run inside a page-script process.
// A nil surface draws the picking UI as log lines.
func NewPluginScript(viewport capture.Viewport, surface capture.Surface, logger hclog.Logger) AgentScript {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if surface == nil {
		surface = LogSurface{Logger: logger}
	}
	reporter := &RemoteReporter{}
	session := capture.NewSession(capture.Options{
		Surface:  surface,
		Reporter: reporter,
		Viewport: viewport,
		Logger:   logger,
	})
	return AgentScript{Agent: capture.NewAgent(session, logger), Reporter: reporter}
}

// LogSurface draws the picking UI as log lines.
type LogSurface struct {
	Logger hclog.Logger
}

// ShowOverlay implements capture.Surface.
func (s LogSurface) ShowOverlay() { s.Logger.Debug("overlay shown") }

// MoveSwatch implements capture.Surface.
func (s LogSurface) MoveSwatch(pos capture.Point, fill colour.Hex) {
	s.Logger.Trace("swatch moved", "x", pos.X, "y", pos.Y, "fill", fill)
}

// RemoveOverlay implements capture.Surface.
func (s LogSurface) RemoveOverlay() { s.Logger.Debug("overlay removed") }

// Confirm implements capture.Surface.
func (s LogSurface) Confirm(message string) { s.Logger.Info(message) }
