package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"secure-bank-api/logger"
	"secure-bank-api/model"
	"secure-bank-api/repository"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

var ErrInvalidPeriod = errors.New("statement period start must not be after its end")

// LedgerService owns every balance mutation. Each one locks the account row,
// applies the model rule, appends the transaction and enqueues its event in a
// single database transaction.
type LedgerService struct {
	db              *sql.DB
	accountRepo     repository.IAccountRepository
	transactionRepo repository.ITransactionRepository
	notifier        INotifier
	now             func() time.Time
}

func NewLedgerService(db *sql.DB, accountRepo repository.IAccountRepository, transactionRepo repository.ITransactionRepository, notifier INotifier) *LedgerService {
	return &LedgerService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		notifier:        notifier,
		now:             time.Now,
	}
}

type mutation func(account *model.Account, now time.Time) (*model.Transaction, error)

func (s *LedgerService) Credit(ctx context.Context, accountNumber string, amount decimal.Decimal, currency, description string) (*model.Transaction, error) {
	return s.apply(ctx, accountNumber, "credit", amount, func(a *model.Account, now time.Time) (*model.Transaction, error) {
		return a.Credit(amount, currency, description, now)
	})
}

// Debit spends available funds; reserved funds are untouchable here.
func (s *LedgerService) Debit(ctx context.Context, accountNumber string, amount decimal.Decimal, currency, description string) (*model.Transaction, error) {
	return s.apply(ctx, accountNumber, "debit", amount, func(a *model.Account, now time.Time) (*model.Transaction, error) {
		return a.Debit(amount, currency, description, now)
	})
}

func (s *LedgerService) apply(ctx context.Context, accountNumber, op string, amount decimal.Decimal, fn mutation) (*model.Transaction, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_number": accountNumber,
		"operation":      op,
		"amount":         amount.String(),
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("could not begin transaction", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(ctx, tx, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, storageError("could not lock account", err)
	}

	transaction, err := fn(account, s.now().UTC())
	if err != nil {
		log.WithError(err).Info("Ledger operation refused")
		return nil, err
	}

	if err := s.record(ctx, tx, account, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("could not commit transaction", err)
	}

	log.WithField("balance", account.Balance.String()).Info("Ledger operation committed")
	return transaction, nil
}

// record persists an already-applied mutation inside tx.
func (s *LedgerService) record(ctx context.Context, tx *sql.Tx, account *model.Account, transaction *model.Transaction) error {
	if err := s.accountRepo.UpdateAccountBalances(ctx, tx, account); err != nil {
		return storageError("could not update balance", err)
	}
	if err := s.transactionRepo.CreateTransaction(ctx, tx, transaction); err != nil {
		return storageError("could not create transaction record", err)
	}
	return s.notifier.Enqueue(ctx, tx, model.TransactionEvent(account, transaction))
}

// SettleWithdrawalTx is the only debit that may consume a reservation. It runs
// inside the caller's transaction; the caller holds the withdrawal and account locks.
func (s *LedgerService) SettleWithdrawalTx(ctx context.Context, tx *sql.Tx, account *model.Account, w *model.Withdrawal) (*model.Transaction, error) {
	description := fmt.Sprintf("Withdrawal %s", w.ID)
	if w.Description != "" {
		description = fmt.Sprintf("%s: %s", description, w.Description)
	}

	transaction, err := account.SettleReservation(w.Amount, w.Currency, description, s.now().UTC())
	if err != nil {
		return nil, err
	}
	withdrawalID := w.ID
	transaction.WithdrawalID = &withdrawalID

	if err := s.record(ctx, tx, account, transaction); err != nil {
		if repository.IsUniqueViolation(err, "transactions_withdrawal_id_key") {
			return nil, model.ErrAlreadyFinalized
		}
		return nil, err
	}
	return transaction, nil
}

// ReverseTransaction appends the opposite-direction entry for a transaction.
func (s *LedgerService) ReverseTransaction(ctx context.Context, transactionID uuid.UUID, reversedBy, reason string) (*model.Transaction, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"reversed_by":    reversedBy,
	})

	original, err := s.transactionRepo.GetTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, storageError("could not load transaction", err)
	}
	if original.WithdrawalID != nil || original.ReversalOf != nil {
		return nil, ErrNotReversible
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("could not begin transaction", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountByIDForUpdate(ctx, tx, original.AccountID)
	if err != nil {
		return nil, storageError("could not lock account", err)
	}

	reversed, err := s.transactionRepo.IsReversed(ctx, tx, transactionID)
	if err != nil {
		return nil, storageError("could not check reversal", err)
	}
	if reversed {
		return nil, ErrAlreadyReversed
	}

	description := fmt.Sprintf("Reversal of %s by %s: %s", transactionID, reversedBy, reason)
	now := s.now().UTC()
	var compensating *model.Transaction
	if original.Direction == model.DirectionCredit {
		compensating, err = account.Debit(original.Amount, original.Currency, description, now)
	} else {
		compensating, err = account.Credit(original.Amount, original.Currency, description, now)
	}
	if err != nil {
		return nil, err
	}
	compensating.ReversalOf = &transactionID

	if err := s.record(ctx, tx, account, compensating); err != nil {
		if repository.IsUniqueViolation(err, "transactions_reversal_of_key") {
			return nil, ErrAlreadyReversed
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("could not commit transaction", err)
	}

	log.WithField("reversal_id", compensating.ID).Info("Transaction reversed")
	return compensating, nil
}

func (s *LedgerService) lookup(ctx context.Context, accountNumber string) (*model.Account, error) {
	account, err := s.accountRepo.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, storageError("could not look up account", err)
	}
	return account, nil
}

// ClampLimit bounds a page size to 1..max, substituting def for non-positive values.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// RecentTransactions returns the newest transactions first.
func (s *LedgerService) RecentTransactions(ctx context.Context, accountNumber string, limit int) ([]*model.Transaction, error) {
	account, err := s.lookup(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.GetRecentTransactions(ctx, account.ID, ClampLimit(limit, DefaultRecentLimit, MaxRecentLimit))
	if err != nil {
		return nil, storageError("could not load transactions", err)
	}
	return transactions, nil
}

// Statement lists transactions in [from, to). The balances are the current ones.
func (s *LedgerService) Statement(ctx context.Context, accountNumber string, from, to time.Time) (*model.Statement, error) {
	if from.After(to) {
		return nil, ErrInvalidPeriod
	}
	account, err := s.lookup(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.GetTransactionsInRange(ctx, account.ID, from, to)
	if err != nil {
		return nil, storageError("could not load transactions", err)
	}
	return &model.Statement{
		AccountNumber: account.AccountNumber,
		Type:          account.Type,
		Currency:      account.Currency,
		Balance:       account.Balance,
		Reserved:      account.Reserved,
		Available:     account.Available(),
		From:          from,
		To:            to,
		Transactions:  transactions,
	}, nil
}

// Reconcile checks that the stored balance equals the signed sum of the history.
func (s *LedgerService) Reconcile(ctx context.Context, accountNumber string) (*model.Reconciliation, error) {
	account, err := s.lookup(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	balance, sum, err := s.transactionRepo.ReconcileBalance(ctx, account.ID)
	if err != nil {
		return nil, storageError("could not sum transactions", err)
	}
	result := &model.Reconciliation{
		AccountNumber:  account.AccountNumber,
		Balance:        balance,
		TransactionSum: sum,
		Consistent:     balance.Equal(sum),
	}
	if !result.Consistent {
		logger.Log.WithFields(logrus.Fields{
			"account_number":  account.AccountNumber,
			"balance":         balance.String(),
			"transaction_sum": sum.String(),
		}).Error("Ledger invariant violated")
	}
	return result, nil
}
