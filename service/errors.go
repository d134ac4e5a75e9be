package service

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrWithdrawalNotFound     = errors.New("withdrawal not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrPermissionDenied       = errors.New("you can only act on your own accounts")
	ErrDebitFailed            = errors.New("final stage debit failed")
	ErrStorageUnavailable     = errors.New("storage is temporarily unavailable")
	ErrAlreadyReversed        = errors.New("transaction has already been reversed")
	ErrNotReversible          = errors.New("transaction cannot be reversed")
	ErrIndexOutOfRange        = errors.New("stage index out of range")
	ErrAccountNumberExhausted = errors.New("could not allocate a unique account number")
)

// storageError marks err as an infrastructure failure so it is never mistaken for a business outcome.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
