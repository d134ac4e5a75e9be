package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"secure-bank-api/model"
	"secure-bank-api/repository"

	"github.com/google/uuid"
)

// INotifier records an event inside the transaction that caused it.
type INotifier interface {
	Enqueue(ctx context.Context, tx *sql.Tx, event model.Event) error
}

// Notifier writes events to the outbox; notify.Processor delivers them after commit.
type Notifier struct {
	repo  repository.IOutboxRepository
	topic string
}

func NewNotifier(repo repository.IOutboxRepository, topic string) *Notifier {
	return &Notifier{repo: repo, topic: topic}
}

func (n *Notifier) Enqueue(ctx context.Context, tx *sql.Tx, event model.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not encode %s event: %w", event.Type, err)
	}

	aggregateID := event.AccountNumber
	if event.WithdrawalID != nil {
		aggregateID = event.WithdrawalID.String()
	}

	msg := &model.OutboxMessage{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		EventType:   event.Type,
		Topic:       n.topic,
		Key:         event.AccountNumber,
		Payload:     payload,
		Status:      model.OutboxPending,
		CreatedAt:   event.OccurredAt,
	}
	if err := n.repo.CreateMessage(ctx, tx, msg); err != nil {
		return storageError("could not enqueue notification", err)
	}
	return nil
}
