package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iyhunko/inventory-manager/internal/metrics"
	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
)

const (
	defaultAlertBuffer  = 256
	defaultAlertTimeout = 5 * time.Second
)

// AlertSink delivers a low-stock alert somewhere.
type AlertSink interface {
	DeliverLowStock(ctx context.Context, alert model.LowStockAlert) error
}

// AlertSinkFunc adapts a function to AlertSink.
type AlertSinkFunc func(ctx context.Context, alert model.LowStockAlert) error

func (f AlertSinkFunc) DeliverLowStock(ctx context.Context, alert model.LowStockAlert) error {
	return f(ctx, alert)
}

// LogAlertSink writes the alert as a WARN record.
type LogAlertSink struct{}

func (LogAlertSink) DeliverLowStock(_ context.Context, alert model.LowStockAlert) error {
	slog.Warn("Low stock alert",
		slog.String("product_id", alert.ProductID),
		slog.Int("current_stock", alert.CurrentStock),
		slog.Int("threshold", alert.Threshold),
		slog.String("reason", alert.Reason),
	)
	return nil
}

// OutboxAlertSink stores the alert as a pending outbox event for the OutboxWorker.
type OutboxAlertSink struct {
	events repository.EventRepository
}

// NewOutboxAlertSink creates a new OutboxAlertSink.
func NewOutboxAlertSink(events repository.EventRepository) *OutboxAlertSink {
	return &OutboxAlertSink{events: events}
}

func (s *OutboxAlertSink) DeliverLowStock(ctx context.Context, alert model.LowStockAlert) error {
	event, err := model.NewLowStockEvent(alert)
	if err != nil {
		return fmt.Errorf("failed to build low stock event: %w", err)
	}
	if err := s.events.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to store low stock event: %w", err)
	}
	return nil
}

// AlertDispatcher implements LowStockNotifier. Alerts are queued and delivered to
// every sink by a background goroutine; delivery failures are logged and never reach
// the code that raised the alert.
type AlertDispatcher struct {
	sinks   []AlertSink
	queue   chan model.LowStockAlert
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewAlertDispatcher creates a dispatcher with a queue of bufferSize alerts.
func NewAlertDispatcher(bufferSize int, sinks ...AlertSink) *AlertDispatcher {
	if bufferSize <= 0 {
		bufferSize = defaultAlertBuffer
	}
	return &AlertDispatcher{
		sinks:   sinks,
		queue:   make(chan model.LowStockAlert, bufferSize),
		timeout: defaultAlertTimeout,
	}
}

// Start launches the delivery goroutine. It is a no-op when already started.
func (d *AlertDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for alert := range d.queue {
			d.deliver(alert)
		}
	}()
}

// NotifyLowStock enqueues alert without blocking. When the queue is full the alert
// is delivered from its own goroutine; after Stop it is delivered inline.
func (d *AlertDispatcher) NotifyLowStock(alert model.LowStockAlert) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.deliver(alert)
		return
	}

	select {
	case d.queue <- alert:
	default:
		slog.Warn("Alert queue full, delivering out of band", slog.String("product_id", alert.ProductID))
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(alert)
		}()
	}
}

// Stop closes the queue and waits until every queued alert has been delivered.
func (d *AlertDispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		for alert := range d.queue {
			d.deliver(alert)
		}
	}
	d.wg.Wait()
}

func (d *AlertDispatcher) deliver(alert model.LowStockAlert) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, sink := range d.sinks {
		if err := sink.DeliverLowStock(ctx, alert); err != nil {
			metrics.AlertsDropped.Inc()
			slog.Error("Failed to deliver low stock alert",
				slog.String("product_id", alert.ProductID),
				slog.Int("current_stock", alert.CurrentStock),
				slog.Any("err", err))
		}
	}
}
