package model

import (
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "PENDING"
	OutboxSent    OutboxStatus = "SENT"
	OutboxFailed  OutboxStatus = "FAILED"
)

// OutboxMessage is a notification waiting to be published.
type OutboxMessage struct {
	ID          uuid.UUID
	AggregateID string
	EventType   EventType
	Topic       string
	Key         string
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	CreatedAt   time.Time
	SentAt      *time.Time
}
