package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrBufferFull is returned by Emit in async mode when the buffer is full.
	ErrBufferFull = errors.New("audit buffer full")
	// ErrClosed is returned by Emit after Close.
	ErrClosed = errors.New("audit publisher closed")
)

// Publisher captures structured audit events. In sync mode Emit writes
// straight to the store; with WithAsyncBuffer a worker drains a bounded
// channel so slow sinks never block requests.
type Publisher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	inbox chan Event
	done  chan struct{}

	mu        sync.RWMutex
	stopped   bool
	closeOnce sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables async delivery with a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.inbox = make(chan Event, n)
		}
	}
}

// WithLogger logs async delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		w := NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			w.Run()
		}()
	}
	return p
}

// Emit records an event, stamping it when Timestamp is zero.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrClosed
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events and waits until the async buffer is drained.
// Emit calls racing with Close either land before the drain or return
// ErrClosed.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		if p.inbox != nil {
			close(p.inbox)
		}
		p.mu.Unlock()
		if p.done != nil {
			<-p.done
		}
	})
}
