package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeSavings AccountType = "savings"
	AccountTypeCurrent AccountType = "current"
)

// Account is the ledger aggregate. Balance always equals the signed sum of its
// transactions; Reserved is the part of Balance held by pending withdrawals.
type Account struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	AccountNumber string          `json:"accountNumber"`
	Type          AccountType     `json:"type"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	Reserved      decimal.Decimal `json:"reserved"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// AccountRef is the immutable part of an account, safe to cache.
type AccountRef struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"userId"`
	AccountNumber string      `json:"accountNumber"`
	Type          AccountType `json:"type"`
	Currency      string      `json:"currency"`
}

func (a *Account) Ref() AccountRef {
	return AccountRef{
		ID:            a.ID,
		UserID:        a.UserID,
		AccountNumber: a.AccountNumber,
		Type:          a.Type,
		Currency:      a.Currency,
	}
}

// Available is the balance not held by reservations.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.Reserved)
}

func (a *Account) checkRequest(amount decimal.Decimal, currency string) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if currency != a.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

// Credit increases the balance and returns the transaction to append.
func (a *Account) Credit(amount decimal.Decimal, currency, description string, now time.Time) (*Transaction, error) {
	if err := a.checkRequest(amount, currency); err != nil {
		return nil, err
	}
	a.Balance = a.Balance.Add(amount)
	return a.newTransaction(DirectionCredit, amount, description, now), nil
}

// Debit decreases the balance. Reserved funds cannot be spent by a plain debit.
func (a *Account) Debit(amount decimal.Decimal, currency, description string, now time.Time) (*Transaction, error) {
	if err := a.checkRequest(amount, currency); err != nil {
		return nil, err
	}
	if amount.GreaterThan(a.Available()) {
		return nil, ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return a.newTransaction(DirectionDebit, amount, description, now), nil
}

// Reserve holds amount for a pending withdrawal.
func (a *Account) Reserve(amount decimal.Decimal, currency string) error {
	if err := a.checkRequest(amount, currency); err != nil {
		return err
	}
	if amount.GreaterThan(a.Available()) {
		return ErrInsufficientFunds
	}
	a.Reserved = a.Reserved.Add(amount)
	return nil
}

// Release returns a reservation to the available balance. Releasing more than
// is reserved leaves the account untouched.
func (a *Account) Release(amount decimal.Decimal) error {
	if amount.GreaterThan(a.Reserved) {
		return ErrReservationMissing
	}
	a.Reserved = a.Reserved.Sub(amount)
	return nil
}

// SettleReservation debits a previously reserved amount.
func (a *Account) SettleReservation(amount decimal.Decimal, currency, description string, now time.Time) (*Transaction, error) {
	if err := a.checkRequest(amount, currency); err != nil {
		return nil, err
	}
	if amount.GreaterThan(a.Reserved) {
		return nil, ErrReservationMissing
	}
	if amount.GreaterThan(a.Balance) {
		return nil, ErrInsufficientFunds
	}
	a.Reserved = a.Reserved.Sub(amount)
	a.Balance = a.Balance.Sub(amount)
	return a.newTransaction(DirectionDebit, amount, description, now), nil
}

func (a *Account) newTransaction(dir Direction, amount decimal.Decimal, description string, now time.Time) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		AccountID:    a.ID,
		Direction:    dir,
		Amount:       amount,
		Currency:     a.Currency,
		Description:  description,
		BalanceAfter: a.Balance,
		CreatedAt:    now,
	}
}
