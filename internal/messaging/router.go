package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	// ErrNoListener is returned when the target context has no listener.
	ErrNoListener = errors.New("could not establish connection: receiving end does not exist")

	// ErrAlreadyListening is returned when an endpoint already has a listener.
	ErrAlreadyListening = errors.New("endpoint already has a listener")
)

// Endpoint addresses a context.
type Endpoint string

// Well-known endpoints.
const (
	Background Endpoint = "background"
	Popup      Endpoint = "popup"
)

// Tab returns the endpoint of the page-context in tab id.
func Tab(id int) Endpoint {
	return Endpoint(fmt.Sprintf("tab:%d", id))
}

// Handler serves messages for one context.
type Handler interface {
	HandleMessage(ctx context.Context, msg Message) (Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg Message) (Response, error)

// HandleMessage calls f.
func (f HandlerFunc) HandleMessage(ctx context.Context, msg Message) (Response, error) {
	return f(ctx, msg)
}

// Sender delivers messages to other contexts.
type Sender interface {
	Send(ctx context.Context, to Endpoint, msg Message) (Response, error)
}

// Router delivers messages between registered contexts.
type Router struct {
	mu        sync.RWMutex
	listeners map[Endpoint]*Listener
	logger    hclog.Logger
}

// NewRouter creates an empty router.
func NewRouter(logger hclog.Logger) *Router {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Router{
		listeners: make(map[Endpoint]*Listener),
		logger:    logger,
	}
}

// Listen registers h as the sole listener for ep and starts serving it.
func (r *Router) Listen(ep Endpoint, h Handler) (*Listener, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listeners[ep]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyListening, ep)
	}

	l := &Listener{
		endpoint: ep,
		handler:  h,
		router:   r,
		inbox:    make(chan envelope),
		done:     make(chan struct{}),
		logger:   r.logger.With("endpoint", string(ep)),
	}
	r.listeners[ep] = l
	go l.serve()

	r.logger.Debug("listener registered", "endpoint", ep)
	return l, nil
}

// Listening reports whether ep currently has a listener.
func (r *Router) Listening(ep Endpoint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.listeners[ep]
	return ok
}

// Send delivers msg to the listener on ep and waits for its response.
// It fails with ErrNoListener when ep has no listener or the listener
// closes before accepting the message.
func (r *Router) Send(ctx context.Context, to Endpoint, msg Message) (Response, error) {
	r.mu.RLock()
	l := r.listeners[to]
	r.mu.RUnlock()

	if l == nil {
		return Response{}, fmt.Errorf("send %s to %s: %w", msg.Action, to, ErrNoListener)
	}

	reply := make(chan result, 1)
	select {
	case l.inbox <- envelope{ctx: ctx, msg: msg, reply: reply}:
	case <-l.done:
		return Response{}, fmt.Errorf("send %s to %s: %w", msg.Action, to, ErrNoListener)
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	// An accepted message is always answered, even if the listener closes.
	select {
	case res := <-reply:
		return res.resp, res.err
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Close stops every listener.
func (r *Router) Close() {
	r.mu.RLock()
	listeners := make([]*Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.RUnlock()

	for _, l := range listeners {
		l.Close()
	}
}

func (r *Router) remove(l *Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listeners[l.endpoint] == l {
		delete(r.listeners, l.endpoint)
	}
}

type envelope struct {
	ctx   context.Context
	msg   Message
	reply chan<- result
}

type result struct {
	resp Response
	err  error
}

// Listener is a registered context. Messages are handled one at a time.
type Listener struct {
	endpoint Endpoint
	handler  Handler
	router   *Router
	inbox    chan envelope
	done     chan struct{}
	once     sync.Once
	logger   hclog.Logger
}

// Endpoint returns the address the listener serves.
func (l *Listener) Endpoint() Endpoint {
	return l.endpoint
}

// Close unregisters the listener. Later sends fail with ErrNoListener.
// Close is safe to call more than once.
func (l *Listener) Close() {
	l.once.Do(func() {
		l.router.remove(l)
		close(l.done)
		l.logger.Debug("listener closed")
	})
}

func (l *Listener) serve() {
	for {
		select {
		case env := <-l.inbox:
			l.logger.Trace("handling message", "action", env.msg.Action)
			resp, err := l.handler.HandleMessage(env.ctx, env.msg)
			if err != nil {
				l.logger.Debug("handler failed", "action", env.msg.Action, "error", err)
			}
			env.reply <- result{resp: resp, err: err}
		case <-l.done:
			return
		}
	}
}
