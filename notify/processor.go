package notify

import (
	"context"
	"database/sql"
	"fmt"
	"secure-bank-api/logger"
	"secure-bank-api/repository"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Processor delivers committed outbox messages. Delivery is at-least-once;
// failures are counted on the message and never affect ledger state.
type Processor struct {
	db            *sql.DB
	repo          repository.IOutboxRepository
	producer      Producer
	pollInterval  time.Duration
	publishBudget time.Duration
	batchSize     int
	maxAttempts   int
}

// NewProcessor builds a Processor. publishBudget bounds how long one batch may
// spend publishing, and so how long its claimed rows stay locked.
func NewProcessor(db *sql.DB, repo repository.IOutboxRepository, producer Producer, pollInterval, publishBudget time.Duration, batchSize, maxAttempts int) *Processor {
	if publishBudget <= 0 {
		publishBudget = 15 * time.Second
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Processor{
		db:            db,
		repo:          repo,
		producer:      producer,
		pollInterval:  pollInterval,
		publishBudget: publishBudget,
		batchSize:     batchSize,
		maxAttempts:   maxAttempts,
	}
}

// Run polls until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) {
	logger.Log.WithField("poll_interval", p.pollInterval.String()).Info("Starting outbox processor")
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Outbox processor stopped")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				logger.Log.WithError(err).Error("Outbox batch failed")
			}
		}
	}
}

// ProcessBatch publishes one batch of pending messages and returns how many were sent.
// Messages not attempted before the publish budget runs out stay pending for the next poll.
func (p *Processor) ProcessBatch(ctx context.Context) (int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin outbox transaction: %w", err)
	}
	defer tx.Rollback()

	messages, err := p.repo.ClaimPendingMessages(ctx, tx, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.publishBudget)
	defer cancel()

	sent := make([]uuid.UUID, 0, len(messages))
	deferred := 0
	for i, msg := range messages {
		if publishCtx.Err() != nil {
			deferred = len(messages) - i
			break
		}
		log := logger.Log.WithFields(logrus.Fields{
			"message_id": msg.ID,
			"event_type": msg.EventType,
			"attempts":   msg.Attempts,
		})
		if err := p.producer.Produce(publishCtx, msg.Topic, msg.Key, msg.Payload); err != nil {
			if publishCtx.Err() != nil && ctx.Err() == nil {
				// Budget spent: not the message's fault, leave it pending.
				log.WithError(err).Warn("Outbox publish budget exhausted")
				deferred = len(messages) - i
				break
			}
			log.WithError(err).Warn("Failed to publish outbox message")
			if err := p.repo.RecordFailure(ctx, tx, msg.ID, p.maxAttempts); err != nil {
				return 0, err
			}
			continue
		}
		sent = append(sent, msg.ID)
	}

	if err := p.repo.MarkMessagesAsSent(ctx, tx, sent, time.Now().UTC()); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("could not commit outbox transaction: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"sent": len(sent), "claimed": len(messages), "deferred": deferred}).Debug("Outbox batch processed")
	return len(sent), nil
}
