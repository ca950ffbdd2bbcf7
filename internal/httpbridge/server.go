// Package httpbridge implements the HTTP Server (spec.md §4.1): a
// non-blocking TCP acceptor and per-connection parser/dispatcher that
// coexists with the engine's single-threaded frame loop. Every tick the
// engine drives, the server accepts pending connections, polls active
// ones, and dispatches completed requests to cooperative handlers that
// may themselves suspend on frame ticks or timers (spec.md §5).
package httpbridge

import (
	"context"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dev-bridge/engine-runtime-bridge/internal/bridgelog"
	"github.com/dev-bridge/engine-runtime-bridge/internal/types"
	"github.com/dev-bridge/engine-runtime-bridge/internal/util"
)

// HandlerFunc is a registered route's implementation. It receives a
// fully-parsed Request and returns a JSON-encodable value or an
// *apperr.Error (spec.md §4.1 "register").
type HandlerFunc func(ctx context.Context, req *types.Request) (any, error)

// connTimeout is the per-connection socket timeout (spec.md §4.1, §5).
const connTimeout = 30 * time.Second

// acceptPollBudget bounds pending connections drained per tick so a
// connection burst can't starve request polling in the same tick.
const acceptPollBudget = 16

// Server is the non-blocking HTTP/1.1 acceptor and dispatcher. Poll must
// be called once per engine frame tick; it never blocks.
type Server struct {
	ln      net.Listener
	routes  map[string]HandlerFunc
	conns   []*connection
	sem     *semaphore.Weighted
	timeout time.Duration

	health HealthReporter
}

// HealthReporter is an optional sink for connection-pressure metrics
// (GET /health, see internal/routes).
type HealthReporter interface {
	RecordPoll(activeConns int, semInUse bool)
}

// New constructs a Server bound to host:port. maxConcurrentHandlers
// bounds how many suspended handler goroutines may run at once (spec.md
// §5's resource model has no such bound explicitly, but an unbounded
// count of suspended `wait_for` handlers would starve the poll loop of
// CPU attention under a connection burst — this package's semaphore
// wiring is the domain-stack entry for golang.org/x/sync/semaphore).
func New(host string, port int, maxConcurrentHandlers int64) (*Server, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	return &Server{
		ln:      ln,
		routes:  make(map[string]HandlerFunc),
		sem:     semaphore.NewWeighted(maxConcurrentHandlers),
		timeout: connTimeout,
	}, nil
}

// Register installs a handler for "METHOD path" (spec.md §4.1 dispatch:
// "Routes are keyed by METHOD path").
func (s *Server) Register(method, path string, h HandlerFunc) {
	s.routes[method+" "+path] = h
}

// SetHealthReporter attaches an optional connection-pressure sink.
func (s *Server) SetHealthReporter(h HealthReporter) { s.health = h }

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Close releases the listener and forces every open connection closed.
func (s *Server) Close() error {
	for _, c := range s.conns {
		c.raw.Close()
	}
	return s.ln.Close()
}

// Poll runs one scheduling pass: accept pending connections, advance
// every active connection's parse state, dispatch completed requests,
// write ready responses, and enforce the connection timeout (spec.md
// §4.1 "Scheduling model"). It never blocks the caller (the engine's
// frame loop).
func (s *Server) Poll() {
	s.acceptPending()

	live := s.conns[:0]
	for _, c := range s.conns {
		s.pollConn(c)
		if c.state != types.ConnClosed {
			live = append(live, c)
		}
	}
	s.conns = live

	if s.health != nil {
		semInUse := !s.sem.TryAcquire(1)
		if !semInUse {
			s.sem.Release(1)
		}
		s.health.RecordPoll(len(s.conns), semInUse)
	}
}

// acceptPending performs a non-blocking accept loop: a very short
// SetDeadline stands in for a true non-blocking accept, since net.Conn's
// portable API has no poll-without-blocking primitive (spec.md §4.1:
// "non-blocking accept, disables Nagle on the socket").
func (s *Server) acceptPending() {
	tcpLn, ok := s.ln.(*net.TCPListener)
	if !ok {
		return
	}
	for i := 0; i < acceptPollBudget; i++ {
		tcpLn.SetDeadline(time.Now().Add(time.Millisecond))
		raw, err := tcpLn.Accept()
		if err != nil {
			return
		}
		if tcpConn, ok := raw.(*net.TCPConn); ok {
			tcpConn.SetNoDelay(true)
		}
		s.conns = append(s.conns, newConnection(raw))
	}
}

// pollConn advances one connection by one tick: reads available bytes,
// advances parsing, dispatches a completed request, and checks for a
// ready response or expired timeout.
func (s *Server) pollConn(c *connection) {
	if c.state == types.ConnAccepted || c.state == types.ConnBuffering || c.state == types.ConnHeaderParsed {
		c.raw.SetReadDeadline(time.Now().Add(time.Millisecond))
		buf := make([]byte, 8192)
		n, err := c.raw.Read(buf)
		if n > 0 {
			c.appendBytes(buf[:n])
		}
		if err != nil && !isTimeout(err) {
			s.closeConn(c)
			return
		}
	}

	if c.closeErr != nil && !c.dispatched {
		var resp response
		switch c.closeErr {
		case errBadJSON:
			resp = badJSONResponse()
		default:
			resp = malformedResponse()
		}
		writeResponse(c.raw, resp)
		s.closeConn(c)
		return
	}

	if c.state == types.ConnBodyComplete && !c.dispatched {
		s.dispatch(c)
	}

	if c.dispatched {
		select {
		case resp := <-c.done:
			writeResponse(c.raw, resp)
			s.closeConn(c)
			return
		default:
		}
	}

	if time.Since(c.createdAt) > s.timeout {
		bridgelog.Bridge.Errorf("conn %s timed out on %s %s", c.id, c.method, c.path)
		s.closeConn(c)
	}
}

func (s *Server) closeConn(c *connection) {
	c.raw.Close()
	c.state = types.ConnClosed
}

// dispatch looks up the route and runs the handler. Unknown routes
// respond synchronously with 404 (spec.md §4.1). A known route runs in
// its own goroutine so it can suspend on frame ticks/timers without
// blocking Poll; the semaphore bounds how many such goroutines may be
// in flight at once.
func (s *Server) dispatch(c *connection) {
	c.state = types.ConnDispatched
	c.dispatched = true

	h, ok := s.routes[c.req.Method+" "+c.req.Path]
	if !ok {
		c.done <- notFoundResponse(c.req.Method, c.req.Path)
		return
	}

	util.SafeGo(func() {
		if err := s.sem.Acquire(context.Background(), 1); err != nil {
			c.done <- encodeHandlerResult(nil, err)
			return
		}
		defer s.sem.Release(1)

		value, err := s.runHandler(h, c.req, c.id)
		c.done <- encodeHandlerResult(value, err)
	})
}

// runHandler invokes h, converting a panic into the 500 envelope
// spec.md §7 requires ("any panic must be caught at the handler
// boundary and converted to {error: "Internal: <message>"} with HTTP
// 500"). connID is logged alongside the panic so a developer can
// correlate it with the conn-timeout log line for the same request.
func (s *Server) runHandler(h HandlerFunc, req *types.Request, connID string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			bridgelog.Bridge.Errorf("conn %s: handler panic on %s %s: %v", connID, req.Method, req.Path, r)
			err = panicError{r}
			value = nil
		}
	}()
	return h(context.Background(), req)
}

type panicError struct{ v any }

func (p panicError) Error() string { return "panic: " + toString(p.v) }

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if e, ok := v.(error); ok {
		return e.Error()
	}
	return "unknown panic"
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	t, ok := err.(timeout)
	return ok && t.Timeout()
}
