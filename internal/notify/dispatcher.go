package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/config"
)

// Dispatcher delivers workflow notifications in the background. Dispatch
// never blocks and never reports delivery errors to its caller.
type Dispatcher struct {
	sender      Sender
	from        string
	recipient   string
	enabled     bool
	sendTimeout time.Duration
	logger      *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Event

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewDispatcher creates a stopped dispatcher; call Start to begin delivery.
func NewDispatcher(sender Sender, cfg config.MailConfig, logger *zap.Logger) *Dispatcher {
	size := cfg.QueueSize
	if size <= 0 {
		size = 100
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &Dispatcher{
		sender:      sender,
		from:        from,
		recipient:   cfg.Recipient,
		enabled:     cfg.Enabled && sender != nil,
		sendTimeout: timeout,
		logger:      logger.Named("notify"),
		queue:       make(chan Event, size),
	}
}

// Dispatch queues ev for delivery. When notifications are not configured it
// is a logged no-op; when the queue is full the event is dropped.
func (d *Dispatcher) Dispatch(ev Event) {
	if !d.enabled || d.recipient == "" {
		d.logger.Debug("Notifications not configured, skipping",
			zap.String("kind", string(ev.Kind)),
			zap.Uint("ticket_id", ev.TicketID))
		notificationsTotal.WithLabelValues(string(ev.Kind), resultSkipped).Inc()
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("Dispatcher stopped, dropping notification", zap.Uint("ticket_id", ev.TicketID))
		notificationsTotal.WithLabelValues(string(ev.Kind), resultDropped).Inc()
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("Notification queue full, dropping notification",
			zap.String("kind", string(ev.Kind)),
			zap.Uint("ticket_id", ev.TicketID))
		notificationsTotal.WithLabelValues(string(ev.Kind), resultDropped).Inc()
	}
}

// Start launches the delivery worker. Calling it twice has no effect.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for ev := range d.queue {
				d.deliver(ev)
			}
		}()
	})
}

// Stop refuses new events, delivers what is queued and waits for the worker.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	d.wg.Wait()
}

// deliver sends one event. Errors and panics end here.
func (d *Dispatcher) deliver(ev Event) {
	kind := string(ev.Kind)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Notification sender panicked",
				zap.String("kind", kind),
				zap.Uint("ticket_id", ev.TicketID),
				zap.Any("panic", r))
			notificationsTotal.WithLabelValues(kind, resultFailed).Inc()
		}
	}()

	msg := &Message{
		ID:      fmt.Sprintf("%s@folio", uuid.NewString()),
		From:    d.from,
		To:      []string{d.recipient},
		Subject: ev.Subject(),
		Body:    ev.Body(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("Failed to send notification",
			zap.String("kind", kind),
			zap.Uint("ticket_id", ev.TicketID),
			zap.String("to", d.recipient),
			zap.Error(err))
		notificationsTotal.WithLabelValues(kind, resultFailed).Inc()
		return
	}

	d.logger.Debug("Notification sent",
		zap.String("kind", kind),
		zap.Uint("ticket_id", ev.TicketID),
		zap.String("message_id", msg.ID))
	notificationsTotal.WithLabelValues(kind, resultSent).Inc()
}
