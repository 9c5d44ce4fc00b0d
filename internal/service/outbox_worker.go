package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
	"github.com/iyhunko/inventory-manager/internal/sqs"
)

const outboxBatchSize = 100

// LowStockPublisher sends low-stock alerts to the message broker.
type LowStockPublisher interface {
	PublishLowStockMessage(ctx context.Context, msg sqs.LowStockMessage) error
}

// OutboxWorker polls the events table and publishes pending events
type OutboxWorker struct {
	events    repository.EventRepository
	publisher LowStockPublisher
	interval  time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once

	mu   sync.Mutex
	done chan struct{} // closed when Start returns
}

// NewOutboxWorker creates a new OutboxWorker
func NewOutboxWorker(events repository.EventRepository, publisher LowStockPublisher, interval time.Duration) *OutboxWorker {
	return &OutboxWorker{
		events:    events,
		publisher: publisher,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start processes the outbox every interval until ctx is done or Stop is called.
func (w *OutboxWorker) Start(ctx context.Context) {
	w.mu.Lock()
	select {
	case <-w.stopChan:
		w.mu.Unlock()
		return
	default:
	}
	done := make(chan struct{})
	w.done = done
	w.mu.Unlock()
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker stopped by context")
			return
		case <-w.stopChan:
			slog.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessEvents(ctx)
		}
	}
}

// Stop stops the outbox worker and waits for a batch in flight to finish, so a
// following ProcessEvents never sees the same pending events.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })

	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

// ProcessEvents publishes one batch of pending events and records the outcome of each.
func (w *OutboxWorker) ProcessEvents(ctx context.Context) {
	events, err := w.events.ListPending(ctx, outboxBatchSize)
	if err != nil {
		slog.Error("Failed to retrieve pending events", slog.Any("err", err))
		return
	}

	if len(events) == 0 {
		return
	}

	slog.Info("Processing pending events", slog.Int("count", len(events)))

	for i := range events {
		event := &events[i]
		status := model.EventStatusProcessed
		if err := w.processEvent(ctx, event); err != nil {
			slog.Error("Failed to process event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Any("err", err))
			status = model.EventStatusFailed
		}

		if err := w.events.UpdateStatus(ctx, event.ID, status); err != nil {
			slog.Error("Failed to update event status",
				slog.String("event_id", event.ID.String()),
				slog.String("status", string(status)),
				slog.Any("err", err))
			continue
		}
		if status == model.EventStatusProcessed {
			slog.Info("Event processed successfully",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType))
		}
	}
}

// processEvent publishes a single event to SQS
func (w *OutboxWorker) processEvent(ctx context.Context, event *model.Event) error {
	if event.EventType != model.EventTypeLowStock {
		return fmt.Errorf("unsupported event type %q", event.EventType)
	}

	var msg sqs.LowStockMessage
	if err := json.Unmarshal(event.EventData, &msg); err != nil {
		return fmt.Errorf("failed to decode event data: %w", err)
	}

	return w.publisher.PublishLowStockMessage(ctx, msg)
}
