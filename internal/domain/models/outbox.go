package models

import (
	"encoding/json"
	"time"
)

const (
	EventAssignmentCreated = "assignment.created"
	EventAssignmentUpdated = "assignment.updated"
	EventAssignmentDeleted = "assignment.deleted"
	EventBookingConfirmed  = "booking.confirmed"
)

const (
	OutboxNew        = "new"
	OutboxProcessing = "processing"
	OutboxProcessed  = "processed"
)

// OutboxEvent is a pending domain event stored next to the write that caused it.
type OutboxEvent struct {
	ID          string          `json:"id" db:"id"`
	EventType   string          `json:"event_type" db:"event_type"`
	AggregateID string          `json:"aggregate_id" db:"aggregate_id"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	Status      string          `json:"status" db:"status"`
	Attempts    int             `json:"attempts" db:"attempts"`
	RequestID   string          `json:"request_id" db:"request_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
