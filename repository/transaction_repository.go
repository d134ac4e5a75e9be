package repository

import (
	"context"
	"database/sql"
	"secure-bank-api/logger"
	"secure-bank-api/model"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ITransactionRepository defines the contract for transaction database operations.
// There is no update or delete: the ledger is append-only.
type ITransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *sql.Tx, transaction *model.Transaction) error
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	IsReversed(ctx context.Context, tx *sql.Tx, id uuid.UUID) (bool, error)
	GetRecentTransactions(ctx context.Context, accountID int64, limit int) ([]*model.Transaction, error)
	GetTransactionsInRange(ctx context.Context, accountID int64, from, to time.Time) ([]*model.Transaction, error)
	ReconcileBalance(ctx context.Context, accountID int64) (balance, sum decimal.Decimal, err error)
}

// TransactionRepository implements ITransactionRepository.
type TransactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

const transactionColumns = `id, account_id, direction, amount, currency, description, balance_after, withdrawal_id, reversal_of, created_at`

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		t            model.Transaction
		withdrawalID uuid.NullUUID
		reversalOf   uuid.NullUUID
	)
	err := row.Scan(&t.ID, &t.AccountID, &t.Direction, &t.Amount, &t.Currency, &t.Description,
		&t.BalanceAfter, &withdrawalID, &reversalOf, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if withdrawalID.Valid {
		t.WithdrawalID = &withdrawalID.UUID
	}
	if reversalOf.Valid {
		t.ReversalOf = &reversalOf.UUID
	}
	return &t, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func (r *TransactionRepository) CreateTransaction(ctx context.Context, tx *sql.Tx, transaction *model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"account_id":     transaction.AccountID,
		"direction":      transaction.Direction,
		"amount":         transaction.Amount.String(),
	})
	log.Info("Executing query to create a new transaction")

	query := `INSERT INTO transactions (id, account_id, direction, amount, currency, description, balance_after, withdrawal_id, reversal_of, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := tx.ExecContext(ctx, query,
		transaction.ID,
		transaction.AccountID,
		transaction.Direction,
		transaction.Amount,
		transaction.Currency,
		transaction.Description,
		transaction.BalanceAfter,
		nullableUUID(transaction.WithdrawalID),
		nullableUUID(transaction.ReversalOf),
		transaction.CreatedAt,
	)
	if err != nil {
		log.WithError(err).Error("Failed to execute create transaction query")
		return err
	}
	return nil
}

func (r *TransactionRepository) GetTransactionByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("transaction_id", id).Error("Failed to execute get transaction query")
		}
		return nil, err
	}
	return t, nil
}

// IsReversed must run after the owning account is locked so concurrent reversals serialize.
func (r *TransactionRepository) IsReversed(ctx context.Context, tx *sql.Tx, id uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE reversal_of = $1)`, id).Scan(&exists)
	if err != nil {
		logger.Log.WithError(err).WithField("transaction_id", id).Error("Failed to check transaction reversal")
		return false, err
	}
	return exists, nil
}

// GetRecentTransactions returns at most limit transactions, newest first. Newest
// means last inserted: seq follows the account lock order, the clock does not.
func (r *TransactionRepository) GetRecentTransactions(ctx context.Context, accountID int64, limit int) ([]*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1
		ORDER BY seq DESC LIMIT $2`
	return r.query(ctx, logger.Log.WithFields(logrus.Fields{"account_id": accountID, "limit": limit}), query, accountID, limit)
}

// GetTransactionsInRange returns transactions with from <= created_at < to, newest first.
func (r *TransactionRepository) GetTransactionsInRange(ctx context.Context, accountID int64, from, to time.Time) ([]*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY seq DESC`
	return r.query(ctx, logger.Log.WithFields(logrus.Fields{"account_id": accountID, "from": from, "to": to}), query, accountID, from, to)
}

func (r *TransactionRepository) query(ctx context.Context, log *logrus.Entry, query string, args ...interface{}) ([]*model.Transaction, error) {
	log.Debug("Executing query for account transactions")

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for account transactions")
		return nil, err
	}
	defer rows.Close()

	transactions := []*model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan transaction row")
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// ReconcileBalance reads the stored balance and the signed sum of the history in
// one statement, so both come from the same snapshot.
func (r *TransactionRepository) ReconcileBalance(ctx context.Context, accountID int64) (balance, sum decimal.Decimal, err error) {
	query := `SELECT a.balance, COALESCE(SUM(CASE WHEN t.direction = 'credit' THEN t.amount ELSE -t.amount END), 0)
		FROM accounts a LEFT JOIN transactions t ON t.account_id = a.id
		WHERE a.id = $1
		GROUP BY a.id, a.balance`
	if err = r.DB.QueryRowContext(ctx, query, accountID).Scan(&balance, &sum); err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("account_id", accountID).Error("Failed to reconcile account balance")
		}
		return decimal.Zero, decimal.Zero, err
	}
	return balance, sum, nil
}
