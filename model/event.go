package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventBalanceCredited         EventType = "balance.credited"
	EventBalanceDebited          EventType = "balance.debited"
	EventWithdrawalInitiated     EventType = "withdrawal.initiated"
	EventWithdrawalStageVerified EventType = "withdrawal.stage_verified"
	EventWithdrawalCompleted     EventType = "withdrawal.completed"
	EventWithdrawalRejected      EventType = "withdrawal.rejected"
)

// Event is what the notification dispatcher is told about a committed change.
type Event struct {
	Type          EventType        `json:"type"`
	AccountNumber string           `json:"accountNumber"`
	UserID        int64            `json:"userId"`
	WithdrawalID  *uuid.UUID       `json:"withdrawalId,omitempty"`
	TransactionID *uuid.UUID       `json:"transactionId,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	Stage         int              `json:"stage,omitempty"`
	Actor         string           `json:"actor,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	OccurredAt    time.Time        `json:"occurredAt"`
}

// TransactionEvent describes a ledger mutation.
func TransactionEvent(account *Account, t *Transaction) Event {
	typ := EventBalanceCredited
	if t.Direction == DirectionDebit {
		typ = EventBalanceDebited
	}
	id := t.ID
	balance := t.BalanceAfter
	return Event{
		Type:          typ,
		AccountNumber: account.AccountNumber,
		UserID:        account.UserID,
		WithdrawalID:  t.WithdrawalID,
		TransactionID: &id,
		Amount:        t.Amount,
		Currency:      t.Currency,
		Balance:       &balance,
		OccurredAt:    t.CreatedAt,
	}
}

// WithdrawalEvent describes a workflow transition.
func WithdrawalEvent(typ EventType, w *Withdrawal, stage int, actor, reason string, now time.Time) Event {
	id := w.ID
	return Event{
		Type:          typ,
		AccountNumber: w.AccountNumber,
		UserID:        w.UserID,
		WithdrawalID:  &id,
		TransactionID: w.TransactionID,
		Amount:        w.Amount,
		Currency:      w.Currency,
		Stage:         stage,
		Actor:         actor,
		Reason:        reason,
		OccurredAt:    now,
	}
}
