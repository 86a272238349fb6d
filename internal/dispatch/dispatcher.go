// Package dispatch runs the remote call for a pressed chord.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/binding"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/history"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/notify"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/session"
)

// ErrNoSession is reported when a chord fires before a session was
// published. Startup ordering prevents it; it is handled, not fatal.
var ErrNoSession = errors.New("no established session")

// Recorder persists dispatch outcomes.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Dispatcher turns a fired binding into one service call. It keeps no
// state between dispatches besides the shared session.
type Dispatcher struct {
	slot     *session.Slot
	notifier notify.Notifier
	history  Recorder // optional
	logger   logger.Logger
	now      func() time.Time

	// base is the parent of every triggered dispatch; Shutdown cancels it.
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// recordTimeout bounds a history write, which runs even after shutdown
// cancelled the dispatch.
const recordTimeout = 2 * time.Second

// New creates a dispatcher. history may be nil.
func New(slot *session.Slot, n notify.Notifier, history Recorder, log logger.Logger) *Dispatcher {
	base, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		slot:     slot,
		notifier: n,
		history:  history,
		logger:   log,
		now:      time.Now,
		base:     base,
		cancel:   cancel,
	}
}

// SetRecorder attaches a history recorder. It must be called before the
// first Trigger.
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.history = r
}

// Trigger runs the dispatch on its own goroutine so the key listener is
// never held up by network I/O. It is the binding.DispatchFunc handed to
// the registry.
func (d *Dispatcher) Trigger(b binding.Binding) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.OnTrigger(d.base, b)
	}()
}

// Wait blocks until every triggered dispatch has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown cancels in-flight dispatches and waits for them to return until
// ctx is done. A dispatch whose transport ignores cancellation is abandoned.
// Dispatches triggered afterwards fail at once.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatches still running: %w", ctx.Err())
	}
}

// OnTrigger performs one dispatch synchronously. Failures are logged and
// shown to the user and returned for the caller's information; they never
// stop the process.
func (d *Dispatcher) OnTrigger(ctx context.Context, b binding.Binding) (err error) {
	log := d.logger.With(
		logger.String("chord", b.Chord.String()),
		logger.String("call", b.Domain+"."+b.Service),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatch panicked: %v", r)
			log.Error("dispatch panicked", logger.Any("panic", r))
		}
	}()

	sess, ok := d.slot.Get()
	if !ok {
		d.fail(log, b, ErrNoSession)
		return ErrNoSession
	}

	start := d.now()
	res, err := sess.Call(ctx, b.Domain, b.Service, b.Payload())
	elapsed := d.now().Sub(start)

	entry := history.Entry{
		At:          start,
		Index:       b.Index,
		Description: b.Description,
		Chord:       b.Chord.String(),
		Domain:      b.Domain,
		Service:     b.Service,
		OK:          err == nil,
		Duration:    elapsed,
	}

	if err != nil {
		entry.Error = err.Error()
		d.record(ctx, log, entry)
		d.fail(log, b, err)
		return err
	}

	d.record(ctx, log, entry)
	log.Info("service called",
		logger.String("result", string(res)),
		logger.Duration("elapsed", elapsed))
	return nil
}

func (d *Dispatcher) fail(log logger.Logger, b binding.Binding, err error) {
	if errors.Is(err, context.Canceled) && d.base.Err() != nil {
		log.Warn("service call cancelled by shutdown",
			logger.String("description", b.Description))
		return
	}
	msg := fmt.Sprintf("Error calling service: %v", err)
	log.Error("error calling service",
		logger.String("description", b.Description),
		logger.Error(err))
	if nerr := d.notifier.Notify(notify.ErrorTitle(), msg); nerr != nil {
		log.Warn("failed to show notification", logger.Error(nerr))
	}
}

func (d *Dispatcher) record(ctx context.Context, log logger.Logger, e history.Entry) {
	if d.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := d.history.Record(ctx, e); err != nil {
		log.Warn("failed to record dispatch history", logger.Error(err))
	}
}
