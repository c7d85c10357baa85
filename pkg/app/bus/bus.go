// Package bus is the unbounded many-producer, single-consumer channel that
// carries actions to the control loop.
package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/nika-tui/nika/pkg/app/action"
	"gopkg.in/eapache/queue.v1"
)

var ErrClosed = errors.New("bus closed")

// Bus is a FIFO queue of actions. Any number of goroutines may Send; exactly
// one goroutine may receive.
type Bus struct {
	mu     sync.Mutex
	q      *queue.Queue
	closed bool
	notify chan struct{}
}

func New() *Bus {
	return &Bus{
		q:      queue.New(),
		notify: make(chan struct{}, 1),
	}
}

// Send enqueues a without blocking.
func (b *Bus) Send(a action.Action) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.q.Add(a)

	// notify is closed under mu, so this send cannot race Close.
	select {
	case b.notify <- struct{}{}:
	default:
	}
	return nil
}

// TryRecv dequeues the oldest action if one is queued.
func (b *Bus) TryRecv() (action.Action, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.q.Length() == 0 {
		return nil, false
	}
	return b.q.Remove().(action.Action), true
}

// Recv blocks until an action is queued, the bus is closed and empty, or ctx ends.
func (b *Bus) Recv(ctx context.Context) (action.Action, error) {
	for {
		b.mu.Lock()
		if b.q.Length() > 0 {
			a := b.q.Remove().(action.Action)
			b.mu.Unlock()
			return a, nil
		}
		closed := b.closed
		b.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}

		select {
		case <-b.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// RecvBatch blocks for the first action, then drains everything already queued.
func (b *Bus) RecvBatch(ctx context.Context) ([]action.Action, error) {
	first, err := b.Recv(ctx)
	if err != nil {
		return nil, err
	}
	batch := []action.Action{first}
	for {
		a, ok := b.TryRecv()
		if !ok {
			return batch, nil
		}
		batch = append(batch, a)
	}
}

func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.q.Length()
}

// Close rejects further sends. Queued actions can still be received.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.notify)
}
