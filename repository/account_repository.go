package repository

import (
	"context"
	"database/sql"
	"secure-bank-api/logger"
	"secure-bank-api/model"

	"github.com/sirupsen/logrus"
)

// IAccountRepository defines the contract for account database operations.
type IAccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByNumber(ctx context.Context, accountNumber string) (*model.Account, error)
	GetAccountsByUserID(ctx context.Context, userID int64) ([]*model.Account, error)
	GetAccountForUpdate(ctx context.Context, tx *sql.Tx, accountNumber string) (*model.Account, error)
	GetAccountByIDForUpdate(ctx context.Context, tx *sql.Tx, accountID int64) (*model.Account, error)
	UpdateAccountBalances(ctx context.Context, tx *sql.Tx, account *model.Account) error
}

type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

const accountColumns = `id, user_id, account_number, account_type, currency, balance, reserved, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	acc := &model.Account{}
	err := row.Scan(&acc.ID, &acc.UserID, &acc.AccountNumber, &acc.Type, &acc.Currency, &acc.Balance, &acc.Reserved, &acc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// CreateAccount adds a new account to the database.
func (r *AccountRepository) CreateAccount(ctx context.Context, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":        account.UserID,
		"account_number": account.AccountNumber,
		"currency":       account.Currency,
	})
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts (user_id, account_number, account_type, currency) VALUES ($1, $2, $3, $4)
		RETURNING id, balance, reserved, created_at`
	err := r.DB.QueryRowContext(ctx, query, account.UserID, account.AccountNumber, account.Type, account.Currency).
		Scan(&account.ID, &account.Balance, &account.Reserved, &account.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}
	return nil
}

// GetAccountByNumber reads an account without locking it.
func (r *AccountRepository) GetAccountByNumber(ctx context.Context, accountNumber string) (*model.Account, error) {
	log := logger.Log.WithField("account_number", accountNumber)
	log.Debug("Executing query to get account by number")

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	acc, err := scanAccount(r.DB.QueryRowContext(ctx, query, accountNumber))
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get account by number query")
		}
		return nil, err
	}
	return acc, nil
}

// GetAccountsByUserID retrieves all accounts for a specific user.
func (r *AccountRepository) GetAccountsByUserID(ctx context.Context, userID int64) ([]*model.Account, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Debug("Executing query to get accounts by user ID")

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for accounts by user ID")
		return nil, err
	}
	defer rows.Close()

	accounts := []*model.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan account row")
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// GetAccountForUpdate locks the account row for the rest of tx.
func (r *AccountRepository) GetAccountForUpdate(ctx context.Context, tx *sql.Tx, accountNumber string) (*model.Account, error) {
	log := logger.Log.WithField("account_number", accountNumber)
	log.Debug("Executing query to get account for update")

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE`
	acc, err := scanAccount(tx.QueryRowContext(ctx, query, accountNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Account not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get account for update query")
		}
		return nil, err
	}
	return acc, nil
}

// GetAccountByIDForUpdate is GetAccountForUpdate keyed by the surrogate id.
func (r *AccountRepository) GetAccountByIDForUpdate(ctx context.Context, tx *sql.Tx, accountID int64) (*model.Account, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Debug("Executing query to get account by id for update")

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	acc, err := scanAccount(tx.QueryRowContext(ctx, query, accountID))
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get account by id for update query")
		}
		return nil, err
	}
	return acc, nil
}

// UpdateAccountBalances persists balance and reserved together.
func (r *AccountRepository) UpdateAccountBalances(ctx context.Context, tx *sql.Tx, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":   account.ID,
		"new_balance":  account.Balance.String(),
		"new_reserved": account.Reserved.String(),
	})
	log.Info("Executing query to update account balance")

	query := `UPDATE accounts SET balance = $1, reserved = $2 WHERE id = $3`
	res, err := tx.ExecContext(ctx, query, account.Balance, account.Reserved, account.ID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update account balance query")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
