// Package session owns the single authenticated connection to the Home
// Assistant hub shared by every dispatch.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
)

// Transport is one remote connection. Implementations need not be safe for
// concurrent use; Session serializes access. Close is the exception: it may
// run while a call is in flight and must make that call return.
type Transport interface {
	Authenticate(ctx context.Context, token string) error
	CallService(ctx context.Context, domain, service string, data any) (json.RawMessage, error)
	Close() error
}

// Connector opens transports.
type Connector interface {
	Connect(ctx context.Context, host string, port int) (Transport, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, host string, port int) (Transport, error)

func (f ConnectorFunc) Connect(ctx context.Context, host string, port int) (Transport, error) {
	return f(ctx, host, port)
}

// Options identify the hub.
type Options struct {
	Host  string
	Port  int
	Token string
}

// Session is the authenticated connection. Call may be used from any number
// of goroutines; exchanges never interleave.
type Session struct {
	mu        sync.Mutex
	transport Transport
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	host      string
	port      int
	log       logger.Logger
	calls     atomic.Int64
	failures  atomic.Int64
	since     time.Time
}

// Establish connects then authenticates. Both failures are returned as
// *Error with distinct kinds; nothing is retried.
func Establish(ctx context.Context, c Connector, opts Options, log logger.Logger) (*Session, error) {
	log.Info("creating the websocket client and authenticating the session",
		logger.String("host", opts.Host),
		logger.Int("port", opts.Port))

	t, err := c.Connect(ctx, opts.Host, opts.Port)
	if err != nil {
		return nil, &Error{Kind: KindConnect, Err: err}
	}

	if err := t.Authenticate(ctx, opts.Token); err != nil {
		_ = t.Close()
		return nil, &Error{Kind: KindAuth, Err: err}
	}

	log.Info("websocket connection and authentication work")
	return &Session{
		transport: t,
		host:      opts.Host,
		port:      opts.Port,
		log:       log,
		since:     time.Now(),
	}, nil
}

// Call performs one service call while holding exclusive access to the
// transport. Concurrent callers wait their turn; none are dropped or merged.
func (s *Session) Call(ctx context.Context, domain, service string, payload any) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrClosed
	}
	// Callers queued behind a slow call give up once their context ends.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("call %s.%s: %w", domain, service, err)
	}

	s.calls.Add(1)
	res, err := s.transport.CallService(ctx, domain, service, payload)
	if err != nil {
		s.failures.Add(1)
		return nil, fmt.Errorf("call %s.%s: %w", domain, service, err)
	}
	return res, nil
}

// Close releases the transport. It does not wait for a call in flight, so a
// hung exchange cannot block shutdown. Later calls fail with ErrClosed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.transport.Close()
	})
	return s.closeErr
}

// Stats is a snapshot for status reporting.
type Stats struct {
	Host     string    `json:"host"`
	Port     int       `json:"port"`
	Since    time.Time `json:"since"`
	Calls    int64     `json:"calls"`
	Failures int64     `json:"failures"`
}

// Stats returns call counters.
func (s *Session) Stats() Stats {
	return Stats{
		Host:     s.host,
		Port:     s.port,
		Since:    s.since,
		Calls:    s.calls.Load(),
		Failures: s.failures.Load(),
	}
}

// ErrClosed is returned by Call after Close.
var ErrClosed = errors.New("session closed")

// ErrSlotFilled is returned when a Slot is set twice.
var ErrSlotFilled = errors.New("session already published")

// Slot publishes the session exactly once. Readers see either nothing or
// the established session.
type Slot struct {
	p atomic.Pointer[Session]
}

// Set publishes s. Only the first call succeeds.
func (sl *Slot) Set(s *Session) error {
	if s == nil {
		return errors.New("cannot publish a nil session")
	}
	if !sl.p.CompareAndSwap(nil, s) {
		return ErrSlotFilled
	}
	return nil
}

// Get returns the published session, if any.
func (sl *Slot) Get() (*Session, bool) {
	s := sl.p.Load()
	return s, s != nil
}
