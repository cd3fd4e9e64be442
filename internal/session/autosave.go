package session

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/pubsub"
)

// SaveNotice reports the outcome of one automatic save.
type SaveNotice struct {
	SessionID string
	At        time.Time
	Err       error
}

// Ticker is the part of *time.Ticker the auto-saver needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

func newRealTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

// AutoSaver saves the manager's current session on a fixed interval and
// publishes every outcome.
type AutoSaver struct {
	manager   *Manager
	interval  time.Duration
	newTicker TickerFunc
	broker    *pubsub.Broker[SaveNotice]

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// AutoSaverOption configures an AutoSaver.
type AutoSaverOption func(*AutoSaver)

// WithTicker replaces time.NewTicker, mainly for tests.
func WithTicker(fn TickerFunc) AutoSaverOption {
	return func(a *AutoSaver) { a.newTicker = fn }
}

// NewAutoSaver returns a stopped auto-saver. Intervals below one second are
// raised to one second.
func NewAutoSaver(m *Manager, interval time.Duration, opts ...AutoSaverOption) *AutoSaver {
	a := &AutoSaver{
		manager:   m,
		interval:  max(interval, time.Second),
		newTicker: newRealTicker,
		broker:    pubsub.NewBroker[SaveNotice](),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Subscribe returns save notices until ctx ends or the saver is stopped.
func (a *AutoSaver) Subscribe(ctx context.Context) <-chan pubsub.Event[SaveNotice] {
	return a.broker.Subscribe(ctx)
}

// Broker exposes the notice broker for tea listeners.
func (a *AutoSaver) Broker() *pubsub.Broker[SaveNotice] { return a.broker }

// Start launches the save loop. Calling Start on a running saver does
// nothing.
func (a *AutoSaver) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.stopped = make(chan struct{})
	go a.loop(ctx, a.newTicker(a.interval), a.stopped)
	log.Debug(log.CatSession, "Auto-save started", "interval", a.interval)
}

// Stop ends the loop, waits for an in-flight save, then makes a final save.
func (a *AutoSaver) Stop(ctx context.Context) {
	a.mu.Lock()
	cancel, stopped := a.cancel, a.stopped
	a.cancel, a.stopped = nil, nil
	a.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
	a.save(ctx)
	a.broker.Close()
}

func (a *AutoSaver) loop(ctx context.Context, t Ticker, stopped chan struct{}) {
	defer close(stopped)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			a.save(ctx)
		}
	}
}

func (a *AutoSaver) save(ctx context.Context) {
	s, err := a.manager.Save(ctx)
	if err != nil {
		log.ErrorErr(log.CatSession, "Auto-save failed", err)
		a.broker.Publish(pubsub.FailedEvent, SaveNotice{Err: err, At: a.manager.clock()})
		return
	}
	if s == nil {
		return
	}
	a.broker.Publish(pubsub.SavedEvent, SaveNotice{SessionID: s.ID, At: s.LastSaved})
}
