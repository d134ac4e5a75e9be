// file: model/request.go

package model

import "github.com/shopspring/decimal"

// InitiateWithdrawalRequest is the body of POST /api/withdrawals.
type InitiateWithdrawalRequest struct {
	AccountNumber string          `json:"accountNumber" validate:"required,numeric,len=10"`
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Currency      string          `json:"currency" validate:"required,iso4217"`
	Description   string          `json:"description" validate:"max=255"`
}

// VerifyStageRequest is the body of POST /api/withdrawals/{id}/stages/{n}/verify.
type VerifyStageRequest struct {
	VerifiedBy string `json:"verifiedBy" validate:"required,max=100"`
	Remarks    string `json:"remarks" validate:"max=500"`
}

// RejectWithdrawalRequest is the body of POST /api/withdrawals/{id}/reject.
type RejectWithdrawalRequest struct {
	RejectedBy string `json:"rejectedBy" validate:"required,max=100"`
	Reason     string `json:"reason" validate:"required,max=500"`
}

// LedgerEntryRequest is the body of the admin credit and debit endpoints.
type LedgerEntryRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Currency    string          `json:"currency" validate:"required,iso4217"`
	Description string          `json:"description" validate:"required,max=255"`
}

// OpenAccountRequest is the body of POST /api/admin/accounts.
type OpenAccountRequest struct {
	UserID   int64       `json:"userId" validate:"required,gt=0"`
	Type     AccountType `json:"type" validate:"omitempty,oneof=savings current"`
	Currency string      `json:"currency" validate:"required,iso4217"`
}

// ReverseTransactionRequest is the body of POST /api/admin/transactions/{id}/reverse.
type ReverseTransactionRequest struct {
	ReversedBy string `json:"reversedBy" validate:"required,max=100"`
	Reason     string `json:"reason" validate:"required,max=255"`
}
