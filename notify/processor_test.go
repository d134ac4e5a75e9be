package notify

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"secure-bank-api/logger"
	"secure-bank-api/model"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) CreateMessage(ctx context.Context, tx *sql.Tx, msg *model.OutboxMessage) error {
	return m.Called(ctx, tx, msg).Error(0)
}

func (m *MockOutboxRepository) ClaimPendingMessages(ctx context.Context, tx *sql.Tx, limit int) ([]model.OutboxMessage, error) {
	args := m.Called(ctx, tx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) MarkMessagesAsSent(ctx context.Context, tx *sql.Tx, ids []uuid.UUID, sentAt time.Time) error {
	return m.Called(ctx, tx, ids, sentAt).Error(0)
}

func (m *MockOutboxRepository) RecordFailure(ctx context.Context, tx *sql.Tx, id uuid.UUID, maxAttempts int) error {
	return m.Called(ctx, tx, id, maxAttempts).Error(0)
}

type MockProducer struct{ mock.Mock }

func (m *MockProducer) Produce(ctx context.Context, topic, key string, value []byte) error {
	return m.Called(ctx, topic, key, value).Error(0)
}

func (m *MockProducer) Close() error { return nil }

func outboxMessage(key string) model.OutboxMessage {
	return model.OutboxMessage{
		ID:        uuid.New(),
		EventType: model.EventBalanceCredited,
		Topic:     "bank.notifications",
		Key:       key,
		Payload:   []byte(`{"type":"balance.credited"}`),
		Status:    model.OutboxPending,
	}
}

func TestProcessor_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and marks sent", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo, producer := new(MockOutboxRepository), new(MockProducer)
		first, second := outboxMessage("1111111111"), outboxMessage("2222222222")

		dbMock.ExpectBegin()
		repo.On("ClaimPendingMessages", ctx, mock.Anything, 10).Return([]model.OutboxMessage{first, second}, nil).Once()
		producer.On("Produce", mock.Anything, "bank.notifications", mock.Anything, mock.Anything).Return(nil).Twice()
		repo.On("MarkMessagesAsSent", ctx, mock.Anything, []uuid.UUID{first.ID, second.ID}, mock.Anything).Return(nil).Once()
		dbMock.ExpectCommit()

		sent, err := NewProcessor(db, repo, producer, time.Second, time.Second, 10, 3).ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		repo.AssertExpectations(t)
		producer.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("failed publish is counted, not sent", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo, producer := new(MockOutboxRepository), new(MockProducer)
		ok, broken := outboxMessage("1111111111"), outboxMessage("2222222222")

		dbMock.ExpectBegin()
		repo.On("ClaimPendingMessages", ctx, mock.Anything, 10).Return([]model.OutboxMessage{ok, broken}, nil).Once()
		producer.On("Produce", mock.Anything, "bank.notifications", "1111111111", mock.Anything).Return(nil).Once()
		producer.On("Produce", mock.Anything, "bank.notifications", "2222222222", mock.Anything).Return(errors.New("leader not available")).Once()
		repo.On("RecordFailure", ctx, mock.Anything, broken.ID, 3).Return(nil).Once()
		repo.On("MarkMessagesAsSent", ctx, mock.Anything, []uuid.UUID{ok.ID}, mock.Anything).Return(nil).Once()
		dbMock.ExpectCommit()

		sent, err := NewProcessor(db, repo, producer, time.Second, time.Second, 10, 3).ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		repo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("publish budget leaves the rest pending", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo, producer := new(MockOutboxRepository), new(MockProducer)
		slow, queued := outboxMessage("1111111111"), outboxMessage("2222222222")

		dbMock.ExpectBegin()
		repo.On("ClaimPendingMessages", ctx, mock.Anything, 10).Return([]model.OutboxMessage{slow, queued}, nil).Once()
		producer.On("Produce", mock.Anything, "bank.notifications", "1111111111", mock.Anything).
			Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
			Return(context.DeadlineExceeded).Once()
		repo.On("MarkMessagesAsSent", ctx, mock.Anything, []uuid.UUID{}, mock.Anything).Return(nil).Once()
		dbMock.ExpectCommit()

		sent, err := NewProcessor(db, repo, producer, time.Second, 20*time.Millisecond, 10, 3).ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Zero(t, sent)
		repo.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		producer.AssertNotCalled(t, "Produce", mock.Anything, mock.Anything, "2222222222", mock.Anything)
		repo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("nothing pending", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo, producer := new(MockOutboxRepository), new(MockProducer)

		dbMock.ExpectBegin()
		repo.On("ClaimPendingMessages", ctx, mock.Anything, 10).Return([]model.OutboxMessage{}, nil).Once()
		dbMock.ExpectRollback()

		sent, err := NewProcessor(db, repo, producer, time.Second, time.Second, 10, 3).ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Zero(t, sent)
		producer.AssertNotCalled(t, "Produce", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestProcessor_RunStopsOnCancel(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewProcessor(db, new(MockOutboxRepository), LogProducer{}, time.Hour, time.Second, 10, 3).Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processor did not stop after cancellation")
	}
}
