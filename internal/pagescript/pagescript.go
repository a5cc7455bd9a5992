// Package pagescript runs the page-context in its own process.
//
// The host launches the page script as a go-plugin over net/rpc and talks to
// it through the PageScript interface. Messages reach the page through
// Deliver and page input through Input. Picked colours travel back over a
// brokered connection to the host's Reporter, so the page only confirms a
// pick once the host has accepted it.
package pagescript

import (
	"context"
	"errors"
	"fmt"
	"net/rpc"
	"sync"

	"github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/pipette/internal/capture"
	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/messaging"
)

// ErrNoReporter is returned when a pick is reported before the host attached
// its reporter.
var ErrNoReporter = errors.New("no reporter attached to page script")

// PluginName is the name the page script is dispensed under.
const PluginName = "page-script"

// Handshake is shared by the host and the page-script process.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PIPETTE_PAGE_SCRIPT",
	MagicCookieValue: "pipette_page_context",
}

// PageScript is the page-context as seen from the host.
type PageScript interface {
	Deliver(ctx context.Context, msg messaging.Message) (messaging.Response, error)
	Input(ctx context.Context, ev capture.Event) (capture.Outcome, error)
}

// ReporterAttacher is implemented by page scripts that report picks through
// a reporter supplied by the host.
type ReporterAttacher interface {
	AttachReporter(r capture.Reporter)
}

// PluginMap returns the plugin set for a page script. The serving side sets
// impl; the dispensing side sets reporter, which receives the picks.
func PluginMap(impl PageScript, reporter capture.Reporter) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginName: &PageScriptRPC{Impl: impl, Reporter: reporter},
	}
}

// PageScriptRPC implements the go-plugin Plugin interface for page scripts.
type PageScriptRPC struct {
	plugin.Plugin
	Impl     PageScript
	Reporter capture.Reporter
}

// Server returns an RPC server for this plugin.
func (p *PageScriptRPC) Server(b *plugin.MuxBroker) (any, error) {
	return &PageScriptRPCServer{Impl: p.Impl, broker: b}, nil
}

// Client returns an RPC client for this plugin. When a Reporter is set it is
// served on a brokered connection and attached to the remote page script.
func (p *PageScriptRPC) Client(b *plugin.MuxBroker, c *rpc.Client) (any, error) {
	client := &PageScriptRPCClient{client: c}
	if p.Reporter == nil {
		return client, nil
	}

	id := b.NextId()
	go b.AcceptAndServe(id, &ReporterRPCServer{Impl: p.Reporter})

	var resp AttachResponse
	if err := c.Call("Plugin.AttachReporter", AttachArgs{BrokerID: id}, &resp); err != nil {
		return nil, fmt.Errorf("failed to attach reporter: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("failed to attach reporter: %w", &RPCError{Message: resp.Error})
	}
	return client, nil
}

// AttachArgs names the brokered connection serving the host's reporter.
type AttachArgs struct {
	BrokerID uint32
}

// AttachResponse is the wire form of an AttachReporter result.
type AttachResponse struct {
	Error string
}

// ReportResponse is the wire form of a ReportColor result.
type ReportResponse struct {
	Error string
}

// DeliverResponse is the wire form of a Deliver result.
type DeliverResponse struct {
	Response messaging.Response
	Error    string
}

// InputResponse is the wire form of an Input result.
type InputResponse struct {
	Outcome capture.Outcome
	Error   string
}

// PageScriptRPCServer is the RPC server implementation for page scripts.
type PageScriptRPCServer struct {
	Impl   PageScript
	broker *plugin.MuxBroker
}

// AttachReporter dials the host's reporter and hands it to the page script.
func (s *PageScriptRPCServer) AttachReporter(args AttachArgs, resp *AttachResponse) error {
	attacher, ok := s.Impl.(ReporterAttacher)
	if !ok {
		resp.Error = fmt.Sprintf("page script %T cannot report picks", s.Impl)
		return nil
	}
	conn, err := s.broker.Dial(args.BrokerID)
	if err != nil {
		resp.Error = fmt.Sprintf("failed to dial reporter: %v", err)
		return nil
	}
	attacher.AttachReporter(&ReporterRPCClient{client: rpc.NewClient(conn)})
	return nil
}

// Deliver implements the RPC method for message delivery.
func (s *PageScriptRPCServer) Deliver(msg messaging.Message, resp *DeliverResponse) error {
	r, err := s.Impl.Deliver(context.Background(), msg)
	resp.Response = r
	if err != nil {
		resp.Error = err.Error()
	}
	return nil
}

// Input implements the RPC method for page input.
func (s *PageScriptRPCServer) Input(ev capture.Event, resp *InputResponse) error {
	out, err := s.Impl.Input(context.Background(), ev)
	resp.Outcome = out
	if err != nil {
		resp.Error = err.Error()
	}
	return nil
}

// PageScriptRPCClient is the RPC client implementation for page scripts.
type PageScriptRPCClient struct {
	client *rpc.Client
}

// Deliver calls the remote Deliver method.
func (c *PageScriptRPCClient) Deliver(_ context.Context, msg messaging.Message) (messaging.Response, error) {
	var resp DeliverResponse
	if err := c.client.Call("Plugin.Deliver", msg, &resp); err != nil {
		return messaging.Response{}, err
	}
	if resp.Error != "" {
		return resp.Response, &RPCError{Message: resp.Error}
	}
	return resp.Response, nil
}

// Input calls the remote Input method.
func (c *PageScriptRPCClient) Input(_ context.Context, ev capture.Event) (capture.Outcome, error) {
	var resp InputResponse
	if err := c.client.Call("Plugin.Input", ev, &resp); err != nil {
		return capture.Outcome{}, err
	}
	if resp.Error != "" {
		return resp.Outcome, &RPCError{Message: resp.Error}
	}
	return resp.Outcome, nil
}

// ReporterRPCServer serves the host's reporter to the page script.
type ReporterRPCServer struct {
	Impl capture.Reporter
}

// ReportColor implements the RPC method for reporting a pick.
func (s *ReporterRPCServer) ReportColor(c colour.Hex, resp *ReportResponse) error {
	if err := s.Impl.ReportColor(context.Background(), c); err != nil {
		resp.Error = err.Error()
	}
	return nil
}

// ReporterRPCClient reports picks to the host over a brokered connection.
type ReporterRPCClient struct {
	client *rpc.Client
}

// ReportColor calls the remote ReportColor method.
func (c *ReporterRPCClient) ReportColor(_ context.Context, hex colour.Hex) error {
	var resp ReportResponse
	if err := c.client.Call("Plugin.ReportColor", hex, &resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return &RPCError{Message: resp.Error}
	}
	return nil
}

// RemoteReporter reports through whichever reporter the host attached.
type RemoteReporter struct {
	mu       sync.Mutex
	reporter capture.Reporter
}

// AttachReporter implements ReporterAttacher.
func (r *RemoteReporter) AttachReporter(reporter capture.Reporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reporter = reporter
}

// ReportColor implements capture.Reporter.
func (r *RemoteReporter) ReportColor(ctx context.Context, c colour.Hex) error {
	r.mu.Lock()
	reporter := r.reporter
	r.mu.Unlock()
	if reporter == nil {
		return ErrNoReporter
	}
	return reporter.ReportColor(ctx, c)
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
