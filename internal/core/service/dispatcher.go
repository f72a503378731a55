package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const notifyTimeout = 10 * time.Second

// notificationFailure tags err as ErrNotification for logging.
func notificationFailure(err error) error {
	if errors.Is(err, domain.ErrNotification) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrNotification, err)
}

type notification struct {
	kind string
	send func(ctx context.Context) error
}

// Dispatcher delivers notifications on background workers so callers never
// wait on the sink. It implements port.Notifier itself.
type Dispatcher struct {
	next  port.Notifier
	log   zerolog.Logger
	queue chan notification

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(next port.Notifier, queueSize, workers int, log zerolog.Logger) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}

	d := &Dispatcher{
		next:  next,
		log:   log.With().Str("component", "dispatcher").Logger(),
		queue: make(chan notification, queueSize),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.workerLoop(id)
		}(i)
	}
	return d
}

func (d *Dispatcher) workerLoop(id int) {
	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		if err := n.send(ctx); err != nil {
			d.log.Warn().Err(err).Int("worker", id).Str("kind", n.kind).Msg("notification failed")
		}
		cancel()
	}
}

// enqueue never blocks. A full or closed queue drops the notification.
func (d *Dispatcher) enqueue(n notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return fmt.Errorf("%w: dispatcher closed, dropped %s", domain.ErrNotification, n.kind)
	}

	select {
	case d.queue <- n:
		return nil
	default:
		return fmt.Errorf("%w: queue full, dropped %s", domain.ErrNotification, n.kind)
	}
}

func (d *Dispatcher) NotifyContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	return d.enqueue(notification{
		kind: "contact",
		send: func(ctx context.Context) error {
			return d.next.NotifyContactMessage(ctx, msg)
		},
	})
}

func (d *Dispatcher) NotifyOrderConfirmation(ctx context.Context, user domain.User, order domain.Order, lines []domain.OrderLine) error {
	return d.enqueue(notification{
		kind: "order_confirmation",
		send: func(ctx context.Context) error {
			return d.next.NotifyOrderConfirmation(ctx, user, order, lines)
		},
	})
}

// Close stops accepting work, drains what is queued and waits for the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

var _ port.Notifier = (*Dispatcher)(nil)
