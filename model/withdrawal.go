package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

// Withdrawal owns its stage sequence. Status leaves pending exactly once.
type Withdrawal struct {
	ID              uuid.UUID        `json:"withdrawalId"`
	AccountID       int64            `json:"-"`
	AccountNumber   string           `json:"accountNumber"`
	UserID          int64            `json:"userId"`
	Amount          decimal.Decimal  `json:"amount"`
	Currency        string           `json:"currency"`
	Description     string           `json:"description,omitempty"`
	Status          WithdrawalStatus `json:"status"`
	Stages          Stages           `json:"stages"`
	RejectedBy      string           `json:"rejectedBy,omitempty"`
	RejectionReason string           `json:"rejectionReason,omitempty"`
	TransactionID   *uuid.UUID       `json:"transactionId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	FinalizedAt     *time.Time       `json:"finalizedAt,omitempty"`
}

// NewWithdrawal builds a pending withdrawal whose stages are copies of the templates.
func NewWithdrawal(account *Account, amount decimal.Decimal, description string, templates []StageTemplate, now time.Time) *Withdrawal {
	stages := make(Stages, len(templates))
	for i, t := range templates {
		stages[i] = Stage{Index: t.Index, Name: t.Name, Description: t.Description}
	}
	return &Withdrawal{
		ID:            uuid.New(),
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
		UserID:        account.UserID,
		Amount:        amount,
		Currency:      account.Currency,
		Description:   description,
		Status:        WithdrawalPending,
		Stages:        stages,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (w *Withdrawal) IsFinal() bool {
	return w.Status == WithdrawalCompleted || w.Status == WithdrawalRejected
}

// CurrentStage is the index of the first unverified stage, or 0 when none remain.
func (w *Withdrawal) CurrentStage() int {
	for _, s := range w.Stages {
		if !s.Verified {
			return s.Index
		}
	}
	return 0
}

// AllVerified reports whether every stage is verified.
func (w *Withdrawal) AllVerified() bool {
	return len(w.Stages) > 0 && w.CurrentStage() == 0
}

// VerifyStage marks stage index verified. It returns true when this was the
// last outstanding stage and the withdrawal is ready to settle.
func (w *Withdrawal) VerifyStage(index int, verifiedBy, remarks string, now time.Time) (bool, error) {
	if w.IsFinal() {
		return false, ErrAlreadyFinalized
	}
	if index < 1 || index > len(w.Stages) {
		return false, ErrStageNotFound
	}
	stage := &w.Stages[index-1]
	if stage.Verified {
		return false, ErrAlreadyVerified
	}
	if index > 1 && !w.Stages[index-2].Verified {
		return false, ErrOutOfOrderStage
	}
	verifiedAt := now
	stage.Verified = true
	stage.VerifiedBy = verifiedBy
	stage.VerifiedAt = &verifiedAt
	stage.Remarks = remarks
	w.UpdatedAt = now
	return w.AllVerified(), nil
}

// Complete finalizes a fully verified withdrawal with its settling transaction.
func (w *Withdrawal) Complete(transactionID uuid.UUID, now time.Time) error {
	if w.IsFinal() {
		return ErrAlreadyFinalized
	}
	if !w.AllVerified() {
		return ErrStagesIncomplete
	}
	finalizedAt := now
	w.Status = WithdrawalCompleted
	w.TransactionID = &transactionID
	w.FinalizedAt = &finalizedAt
	w.UpdatedAt = now
	return nil
}

// Reject cancels a pending withdrawal. Rejecting a rejected withdrawal is a
// no-op and reports changed=false.
func (w *Withdrawal) Reject(rejectedBy, reason string, now time.Time) (bool, error) {
	switch w.Status {
	case WithdrawalRejected:
		return false, nil
	case WithdrawalCompleted:
		return false, ErrAlreadyFinalized
	}
	finalizedAt := now
	w.Status = WithdrawalRejected
	w.RejectedBy = rejectedBy
	w.RejectionReason = reason
	w.FinalizedAt = &finalizedAt
	w.UpdatedAt = now
	return true, nil
}

// WithdrawalSummary is the list view used by the admin queue.
type WithdrawalSummary struct {
	ID            uuid.UUID        `json:"withdrawalId"`
	AccountNumber string           `json:"accountNumber"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	Status        WithdrawalStatus `json:"status"`
	CurrentStage  int              `json:"currentStage"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func (w *Withdrawal) Summary() WithdrawalSummary {
	return WithdrawalSummary{
		ID:            w.ID,
		AccountNumber: w.AccountNumber,
		Amount:        w.Amount,
		Currency:      w.Currency,
		Status:        w.Status,
		CurrentStage:  w.CurrentStage(),
		CreatedAt:     w.CreatedAt,
	}
}
