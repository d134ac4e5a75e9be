package repository

import (
	"context"
	"database/sql"
	"fmt"
	"secure-bank-api/logger"
	"secure-bank-api/model"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// IOutboxRepository stores notifications next to the state change that caused them.
type IOutboxRepository interface {
	CreateMessage(ctx context.Context, tx *sql.Tx, msg *model.OutboxMessage) error
	ClaimPendingMessages(ctx context.Context, tx *sql.Tx, limit int) ([]model.OutboxMessage, error)
	MarkMessagesAsSent(ctx context.Context, tx *sql.Tx, ids []uuid.UUID, sentAt time.Time) error
	RecordFailure(ctx context.Context, tx *sql.Tx, id uuid.UUID, maxAttempts int) error
}

type OutboxRepository struct {
	DB *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{DB: db}
}

func (r *OutboxRepository) CreateMessage(ctx context.Context, tx *sql.Tx, msg *model.OutboxMessage) error {
	query := `INSERT INTO outbox_messages (id, aggregate_id, event_type, topic, key_value, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.ExecContext(ctx, query,
		msg.ID,
		msg.AggregateID,
		msg.EventType,
		msg.Topic,
		msg.Key,
		string(msg.Payload),
		msg.Status,
		msg.CreatedAt,
	)
	if err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"message_id": msg.ID,
			"event_type": msg.EventType,
		}).Error("Failed to create outbox message")
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

// ClaimPendingMessages locks up to limit pending messages, skipping rows another worker holds.
func (r *OutboxRepository) ClaimPendingMessages(ctx context.Context, tx *sql.Tx, limit int) ([]model.OutboxMessage, error) {
	query := `SELECT id, aggregate_id, event_type, topic, key_value, payload, status, attempts, created_at, sent_at
		FROM outbox_messages
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED`
	rows, err := tx.QueryContext(ctx, query, model.OutboxPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []model.OutboxMessage
	for rows.Next() {
		var (
			msg    model.OutboxMessage
			sentAt sql.NullTime
		)
		err := rows.Scan(&msg.ID, &msg.AggregateID, &msg.EventType, &msg.Topic, &msg.Key, &msg.Payload,
			&msg.Status, &msg.Attempts, &msg.CreatedAt, &sentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		if sentAt.Valid {
			msg.SentAt = &sentAt.Time
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}
	return messages, nil
}

func (r *OutboxRepository) MarkMessagesAsSent(ctx context.Context, tx *sql.Tx, ids []uuid.UUID, sentAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	query := `UPDATE outbox_messages SET status = $1, sent_at = $2 WHERE id = ANY($3::uuid[])`
	res, err := tx.ExecContext(ctx, query, model.OutboxSent, sentAt, pq.Array(strIDs))
	if err != nil {
		return fmt.Errorf("failed to mark outbox messages as sent: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for outbox sent: %w", err)
	}
	if rowsAffected != int64(len(ids)) {
		return fmt.Errorf("not all outbox messages were marked as sent; expected %d, got %d", len(ids), rowsAffected)
	}
	return nil
}

// RecordFailure counts a failed publish and parks the message once maxAttempts is reached.
func (r *OutboxRepository) RecordFailure(ctx context.Context, tx *sql.Tx, id uuid.UUID, maxAttempts int) error {
	query := `UPDATE outbox_messages
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= $1 THEN $2 ELSE status END
		WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, maxAttempts, model.OutboxFailed, id); err != nil {
		return fmt.Errorf("failed to record outbox failure: %w", err)
	}
	return nil
}
