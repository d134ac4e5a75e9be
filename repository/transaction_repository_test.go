package repository

import (
	"context"
	"io"
	"os"
	"regexp"
	"secure-bank-api/logger"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	logger.Log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

var transactionRowColumns = []string{"id", "account_id", "direction", "amount", "currency", "description", "balance_after", "withdrawal_id", "reversal_of", "created_at"}

func TestTransactionRepository_NewestFirstUsesInsertionOrder(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTransactionRepository(db)

	// Both entries share a timestamp; only seq can tell them apart.
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older, newer := uuid.New(), uuid.New()
	rows := sqlmock.NewRows(transactionRowColumns).
		AddRow(newer.String(), int64(7), "debit", "200.00", "USD", "rent", "800.00", nil, nil, at).
		AddRow(older.String(), int64(7), "credit", "1000.00", "USD", "salary", "1000.00", nil, nil, at)

	t.Run("recent transactions", func(t *testing.T) {
		dbMock.ExpectQuery(regexp.QuoteMeta("WHERE account_id = $1 ORDER BY seq DESC LIMIT $2")).
			WithArgs(int64(7), 5).
			WillReturnRows(rows)

		got, err := repo.GetRecentTransactions(context.Background(), 7, 5)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer, got[0].ID)
		assert.Equal(t, older, got[1].ID)
		assert.Equal(t, "800", got[0].BalanceAfter.String())
		assert.Nil(t, got[0].WithdrawalID)
	})

	t.Run("statement range", func(t *testing.T) {
		from, to := at.Add(-time.Hour), at.Add(time.Hour)
		dbMock.ExpectQuery(regexp.QuoteMeta("AND created_at < $3 ORDER BY seq DESC")).
			WithArgs(int64(7), from, to).
			WillReturnRows(sqlmock.NewRows(transactionRowColumns))

		got, err := repo.GetTransactionsInRange(context.Background(), 7, from, to)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	assert.NoError(t, dbMock.ExpectationsWereMet())
}
