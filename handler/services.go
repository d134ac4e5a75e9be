package handler

import (
	"context"
	"secure-bank-api/model"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService is implemented by service.LedgerService.
type LedgerService interface {
	Credit(ctx context.Context, accountNumber string, amount decimal.Decimal, currency, description string) (*model.Transaction, error)
	Debit(ctx context.Context, accountNumber string, amount decimal.Decimal, currency, description string) (*model.Transaction, error)
	RecentTransactions(ctx context.Context, accountNumber string, limit int) ([]*model.Transaction, error)
	Statement(ctx context.Context, accountNumber string, from, to time.Time) (*model.Statement, error)
	ReverseTransaction(ctx context.Context, transactionID uuid.UUID, reversedBy, reason string) (*model.Transaction, error)
	Reconcile(ctx context.Context, accountNumber string) (*model.Reconciliation, error)
}

// WithdrawalService is implemented by service.WithdrawalService.
type WithdrawalService interface {
	Initiate(ctx context.Context, req model.InitiateWithdrawalRequest, requester model.Requester) (*model.Withdrawal, error)
	VerifyStage(ctx context.Context, id uuid.UUID, index int, verifiedBy, remarks string) (*model.Withdrawal, error)
	Reject(ctx context.Context, id uuid.UUID, rejectedBy, reason string) (*model.Withdrawal, error)
	List(ctx context.Context, status model.WithdrawalStatus, limit int) ([]model.WithdrawalSummary, error)
	Get(ctx context.Context, id uuid.UUID, requester model.Requester) (*model.Withdrawal, error)
	ListForAccount(ctx context.Context, accountNumber string, requester model.Requester) ([]*model.Withdrawal, error)
}

// AccountRegistry is implemented by service.AccountRegistry.
type AccountRegistry interface {
	Ref(ctx context.Context, accountNumber string) (model.AccountRef, error)
	Open(ctx context.Context, userID int64, accountType model.AccountType, currency string) (*model.Account, error)
	ListForUser(ctx context.Context, userID int64) ([]*model.Account, error)
}

// StageCatalog is implemented by service.StageCatalog.
type StageCatalog interface {
	Templates() []model.StageTemplate
}
