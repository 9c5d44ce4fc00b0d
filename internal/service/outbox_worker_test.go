package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/service"
	"github.com/iyhunko/inventory-manager/internal/sqs"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *model.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) ListPending(ctx context.Context, limit int) ([]model.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *MockEventRepository) UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error {
	args := m.Called(ctx, eventID, status)
	return args.Error(0)
}

// MockPublisher is a mock implementation of service.LowStockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLowStockMessage(ctx context.Context, msg sqs.LowStockMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func lowStockEvent(t *testing.T, productID string, stock int) model.Event {
	t.Helper()
	event, err := model.NewLowStockEvent(model.LowStockAlert{
		ProductID:    productID,
		CurrentStock: stock,
		Threshold:    10,
		Reason:       "sale",
		RaisedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	event.ID = uuid.New()
	return *event
}

func TestOutboxWorker_ProcessEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes pending events and marks them processed", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		publisher := new(MockPublisher)
		first := lowStockEvent(t, "PROD001", 3)
		second := lowStockEvent(t, "PROD002", 0)

		events.On("ListPending", ctx, 100).Return([]model.Event{first, second}, nil)
		publisher.On("PublishLowStockMessage", ctx, mock.MatchedBy(func(msg sqs.LowStockMessage) bool {
			return msg.ProductID == "PROD001" && msg.CurrentStock == 3 && msg.Threshold == 10 && msg.Reason == "sale"
		})).Return(nil).Once()
		publisher.On("PublishLowStockMessage", ctx, mock.MatchedBy(func(msg sqs.LowStockMessage) bool {
			return msg.ProductID == "PROD002" && msg.CurrentStock == 0
		})).Return(nil).Once()
		events.On("UpdateStatus", ctx, first.ID, model.EventStatusProcessed).Return(nil).Once()
		events.On("UpdateStatus", ctx, second.ID, model.EventStatusProcessed).Return(nil).Once()

		worker := service.NewOutboxWorker(events, publisher, time.Second)

		// when
		worker.ProcessEvents(ctx)

		// then
		events.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("marks event failed when publishing fails", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		publisher := new(MockPublisher)
		event := lowStockEvent(t, "PROD001", 1)

		events.On("ListPending", ctx, 100).Return([]model.Event{event}, nil)
		publisher.On("PublishLowStockMessage", ctx, mock.Anything).Return(errors.New("queue unavailable"))
		events.On("UpdateStatus", ctx, event.ID, model.EventStatusFailed).Return(nil).Once()

		worker := service.NewOutboxWorker(events, publisher, time.Second)

		// when
		worker.ProcessEvents(ctx)

		// then
		events.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("marks unknown event types failed without publishing", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		publisher := new(MockPublisher)
		event := model.Event{
			ID:        uuid.New(),
			EventType: "inventory.unknown",
			EventData: json.RawMessage(`{}`),
			Status:    model.EventStatusPending,
		}

		events.On("ListPending", ctx, 100).Return([]model.Event{event}, nil)
		events.On("UpdateStatus", ctx, event.ID, model.EventStatusFailed).Return(nil).Once()

		worker := service.NewOutboxWorker(events, publisher, time.Second)

		// when
		worker.ProcessEvents(ctx)

		// then
		events.AssertExpectations(t)
		publisher.AssertNotCalled(t, "PublishLowStockMessage", mock.Anything, mock.Anything)
	})

	t.Run("marks undecodable payload failed", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		publisher := new(MockPublisher)
		event := model.Event{
			ID:        uuid.New(),
			EventType: model.EventTypeLowStock,
			EventData: json.RawMessage(`"not an object"`),
			Status:    model.EventStatusPending,
		}

		events.On("ListPending", ctx, 100).Return([]model.Event{event}, nil)
		events.On("UpdateStatus", ctx, event.ID, model.EventStatusFailed).Return(nil).Once()

		worker := service.NewOutboxWorker(events, publisher, time.Second)

		// when
		worker.ProcessEvents(ctx)

		// then
		events.AssertExpectations(t)
		publisher.AssertNotCalled(t, "PublishLowStockMessage", mock.Anything, mock.Anything)
	})

	t.Run("does nothing when listing fails", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		publisher := new(MockPublisher)
		events.On("ListPending", ctx, 100).Return(nil, errors.New("connection refused"))

		worker := service.NewOutboxWorker(events, publisher, time.Second)

		// when
		worker.ProcessEvents(ctx)

		// then
		events.AssertExpectations(t)
		events.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "PublishLowStockMessage", mock.Anything, mock.Anything)
	})

	t.Run("continues after a status update failure", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		publisher := new(MockPublisher)
		first := lowStockEvent(t, "PROD001", 2)
		second := lowStockEvent(t, "PROD002", 4)

		events.On("ListPending", ctx, 100).Return([]model.Event{first, second}, nil)
		publisher.On("PublishLowStockMessage", ctx, mock.Anything).Return(nil).Twice()
		events.On("UpdateStatus", ctx, first.ID, model.EventStatusProcessed).Return(errors.New("deadlock")).Once()
		events.On("UpdateStatus", ctx, second.ID, model.EventStatusProcessed).Return(nil).Once()

		worker := service.NewOutboxWorker(events, publisher, time.Second)

		// when
		worker.ProcessEvents(ctx)

		// then
		events.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})
}

func TestOutboxWorker_StartStop(t *testing.T) {
	t.Run("stops when Stop is called", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		events.On("ListPending", mock.Anything, 100).Return([]model.Event{}, nil).Maybe()
		worker := service.NewOutboxWorker(events, new(MockPublisher), 10*time.Millisecond)

		done := make(chan struct{})
		go func() {
			worker.Start(context.Background())
			close(done)
		}()

		// when
		time.Sleep(30 * time.Millisecond)
		worker.Stop()

		// then
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
		}
	})

	t.Run("Stop waits for the batch in flight", func(t *testing.T) {
		// given
		event := lowStockEvent(t, "PROD001", 3)
		events := new(MockEventRepository)
		events.On("ListPending", mock.Anything, 100).Return([]model.Event{event}, nil).Once()
		events.On("ListPending", mock.Anything, 100).Return([]model.Event{}, nil)
		events.On("UpdateStatus", mock.Anything, event.ID, model.EventStatusProcessed).Return(nil).Once()

		publishing := make(chan struct{})
		release := make(chan struct{})
		publisher := new(MockPublisher)
		publisher.On("PublishLowStockMessage", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				close(publishing)
				<-release
			}).
			Return(nil).Once()

		worker := service.NewOutboxWorker(events, publisher, 5*time.Millisecond)
		go worker.Start(context.Background())
		<-publishing

		// when
		stopped := make(chan struct{})
		go func() {
			worker.Stop()
			close(stopped)
		}()

		// then
		select {
		case <-stopped:
			t.Fatal("Stop returned while a publish was in flight")
		case <-time.After(50 * time.Millisecond):
		}

		close(release)
		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
		}

		worker.ProcessEvents(context.Background())
		publisher.AssertNumberOfCalls(t, "PublishLowStockMessage", 1)
		events.AssertExpectations(t)
	})

	t.Run("Stop before Start", func(t *testing.T) {
		// given
		worker := service.NewOutboxWorker(new(MockEventRepository), new(MockPublisher), time.Millisecond)

		// when
		worker.Stop()
		worker.Stop()

		// then
		done := make(chan struct{})
		go func() {
			worker.Start(context.Background())
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker started after Stop")
		}
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		events.On("ListPending", mock.Anything, 100).Return([]model.Event{}, nil).Maybe()
		worker := service.NewOutboxWorker(events, new(MockPublisher), 10*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			worker.Start(ctx)
			close(done)
		}()

		// when
		cancel()

		// then
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
		}
	})
}
