package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Opposite is used when building compensating transactions.
func (d Direction) Opposite() Direction {
	if d == DirectionCredit {
		return DirectionDebit
	}
	return DirectionCredit
}

// Transaction is an immutable ledger entry.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    int64           `json:"accountId"`
	Direction    Direction       `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	WithdrawalID *uuid.UUID      `json:"withdrawalId,omitempty"`
	ReversalOf   *uuid.UUID      `json:"reversalOf,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// SignedAmount is positive for credits and negative for debits.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// SumSigned folds a transaction history into the balance it implies.
func SumSigned(txs []*Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.SignedAmount())
	}
	return sum
}

// Statement is an account's transactions over a period, with the balance as of now.
type Statement struct {
	AccountNumber string          `json:"accountNumber"`
	Type          AccountType     `json:"type"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	Reserved      decimal.Decimal `json:"reserved"`
	Available     decimal.Decimal `json:"available"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Transactions  []*Transaction  `json:"transactions"`
}

// Reconciliation compares the stored balance with the transaction history.
type Reconciliation struct {
	AccountNumber  string          `json:"accountNumber"`
	Balance        decimal.Decimal `json:"balance"`
	TransactionSum decimal.Decimal `json:"transactionSum"`
	Consistent     bool            `json:"consistent"`
}
