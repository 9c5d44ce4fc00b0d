package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the status of an event in the outbox pattern.
type EventStatus string

const (
	// EventStatusPending indicates the event has been created but not yet processed
	EventStatusPending EventStatus = "pending"
	// EventStatusProcessed indicates the event has been published
	EventStatusProcessed EventStatus = "processed"
	// EventStatusFailed indicates publishing has failed
	EventStatusFailed EventStatus = "failed"
)

// EventTypeLowStock is the outbox event type of a low-stock alert.
const EventTypeLowStock = "inventory.low_stock"

// Event is an outbox row waiting to be published.
type Event struct {
	ID          uuid.UUID
	EventType   string
	EventData   json.RawMessage
	Status      EventStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// InitMeta initializes the event id, creation time and default status.
func (e *Event) InitMeta() {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	if e.Status == "" {
		e.Status = EventStatusPending
	}
}

// LowStockAlert is raised whenever a stock update leaves a product at or below the threshold.
type LowStockAlert struct {
	ProductID    string    `json:"product_id"`
	CurrentStock int       `json:"current_stock"`
	Threshold    int       `json:"threshold"`
	Reason       string    `json:"reason"`
	RaisedAt     time.Time `json:"raised_at"`
}

// NewLowStockEvent wraps alert into a pending outbox event.
func NewLowStockEvent(alert LowStockAlert) (*Event, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return nil, err
	}
	return &Event{
		EventType: EventTypeLowStock,
		EventData: data,
		Status:    EventStatusPending,
	}, nil
}
