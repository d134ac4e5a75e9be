package repository

import (
	"context"
	"database/sql"
	"secure-bank-api/logger"
	"secure-bank-api/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IWithdrawalRepository defines the contract for withdrawal database operations.
type IWithdrawalRepository interface {
	CreateWithdrawal(ctx context.Context, tx *sql.Tx, w *model.Withdrawal) error
	GetWithdrawalByID(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error)
	GetWithdrawalForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, tx *sql.Tx, w *model.Withdrawal) error
	ListWithdrawals(ctx context.Context, status model.WithdrawalStatus, limit int) ([]*model.Withdrawal, error)
	ListWithdrawalsByAccount(ctx context.Context, accountID int64) ([]*model.Withdrawal, error)
}

type WithdrawalRepository struct {
	DB *sql.DB
}

func NewWithdrawalRepository(db *sql.DB) *WithdrawalRepository {
	return &WithdrawalRepository{DB: db}
}

const withdrawalColumns = `id, account_id, account_number, user_id, amount, currency, description, status, stages,
	rejected_by, rejection_reason, transaction_id, created_at, updated_at, finalized_at`

func scanWithdrawal(row rowScanner) (*model.Withdrawal, error) {
	var (
		w             model.Withdrawal
		transactionID uuid.NullUUID
		finalizedAt   sql.NullTime
	)
	err := row.Scan(&w.ID, &w.AccountID, &w.AccountNumber, &w.UserID, &w.Amount, &w.Currency, &w.Description,
		&w.Status, &w.Stages, &w.RejectedBy, &w.RejectionReason, &transactionID, &w.CreatedAt, &w.UpdatedAt, &finalizedAt)
	if err != nil {
		return nil, err
	}
	if transactionID.Valid {
		w.TransactionID = &transactionID.UUID
	}
	if finalizedAt.Valid {
		w.FinalizedAt = &finalizedAt.Time
	}
	return &w, nil
}

func nullableTime(w *model.Withdrawal) sql.NullTime {
	if w.FinalizedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *w.FinalizedAt, Valid: true}
}

func (r *WithdrawalRepository) CreateWithdrawal(ctx context.Context, tx *sql.Tx, w *model.Withdrawal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"withdrawal_id":  w.ID,
		"account_number": w.AccountNumber,
		"amount":         w.Amount.String(),
	})
	log.Info("Executing query to create a new withdrawal")

	query := `INSERT INTO withdrawals (id, account_id, account_number, user_id, amount, currency, description, status, stages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := tx.ExecContext(ctx, query,
		w.ID, w.AccountID, w.AccountNumber, w.UserID, w.Amount, w.Currency, w.Description, w.Status, w.Stages, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create withdrawal query")
		return err
	}
	return nil
}

func (r *WithdrawalRepository) GetWithdrawalByID(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`
	w, err := scanWithdrawal(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("withdrawal_id", id).Error("Failed to execute get withdrawal query")
		}
		return nil, err
	}
	return w, nil
}

// GetWithdrawalForUpdate locks the withdrawal row; callers lock it before the account row.
func (r *WithdrawalRepository) GetWithdrawalForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1 FOR UPDATE`
	w, err := scanWithdrawal(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("withdrawal_id", id).Error("Failed to execute get withdrawal for update query")
		}
		return nil, err
	}
	return w, nil
}

func (r *WithdrawalRepository) UpdateWithdrawal(ctx context.Context, tx *sql.Tx, w *model.Withdrawal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"withdrawal_id": w.ID,
		"status":        w.Status,
		"current_stage": w.CurrentStage(),
	})
	log.Info("Executing query to update withdrawal")

	query := `UPDATE withdrawals SET status = $1, stages = $2, rejected_by = $3, rejection_reason = $4,
		transaction_id = $5, updated_at = $6, finalized_at = $7 WHERE id = $8`
	res, err := tx.ExecContext(ctx, query,
		w.Status, w.Stages, w.RejectedBy, w.RejectionReason, nullableUUID(w.TransactionID), w.UpdatedAt, nullableTime(w), w.ID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update withdrawal query")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListWithdrawals returns withdrawals oldest first. An empty status lists every status.
func (r *WithdrawalRepository) ListWithdrawals(ctx context.Context, status model.WithdrawalStatus, limit int) ([]*model.Withdrawal, error) {
	log := logger.Log.WithFields(logrus.Fields{"status": status, "limit": limit})
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE ($1 = '' OR status = $1)
		ORDER BY created_at ASC, id ASC LIMIT $2`
	return r.list(ctx, log, query, string(status), limit)
}

// ListWithdrawalsByAccount returns an account's withdrawals, newest first.
func (r *WithdrawalRepository) ListWithdrawalsByAccount(ctx context.Context, accountID int64) ([]*model.Withdrawal, error) {
	log := logger.Log.WithField("account_id", accountID)
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE account_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, log, query, accountID)
}

func (r *WithdrawalRepository) list(ctx context.Context, log *logrus.Entry, query string, args ...interface{}) ([]*model.Withdrawal, error) {
	log.Debug("Executing query to list withdrawals")

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to execute list withdrawals query")
		return nil, err
	}
	defer rows.Close()

	withdrawals := []*model.Withdrawal{}
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan withdrawal row")
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}
