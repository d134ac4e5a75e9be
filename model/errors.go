// file: model/errors.go

package model

import "errors"

// Domain rule violations. They are caller-facing and never fatal.
var (
	ErrInvalidAmount      = errors.New("amount must be a positive number with at most two decimal places")
	ErrCurrencyMismatch   = errors.New("currency does not match the account currency")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrStageNotFound      = errors.New("stage not found")
	ErrOutOfOrderStage    = errors.New("previous stage must be verified first")
	ErrAlreadyVerified    = errors.New("stage is already verified")
	ErrAlreadyFinalized   = errors.New("withdrawal is already finalized")
	ErrStagesIncomplete   = errors.New("not all stages are verified")
	ErrReservationMissing = errors.New("reserved funds do not cover the withdrawal")
)
