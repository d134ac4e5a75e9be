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
	"github.com/sirupsen/logrus"
)

const (
	DefaultWithdrawalListLimit = 50
	MaxWithdrawalListLimit     = 200
)

// ISettler performs the final-stage debit inside the workflow's transaction.
type ISettler interface {
	SettleWithdrawalTx(ctx context.Context, tx *sql.Tx, account *model.Account, w *model.Withdrawal) (*model.Transaction, error)
}

// IAccountResolver resolves account identity for ownership checks.
type IAccountResolver interface {
	Ref(ctx context.Context, accountNumber string) (model.AccountRef, error)
}

// WithdrawalService drives the staged approval workflow. Funds are reserved at
// initiation, released on rejection and debited exactly once on the final stage.
// Rows are always locked withdrawal first, then account.
type WithdrawalService struct {
	db             *sql.DB
	accountRepo    repository.IAccountRepository
	withdrawalRepo repository.IWithdrawalRepository
	settler        ISettler
	accounts       IAccountResolver
	catalog        *StageCatalog
	notifier       INotifier
	now            func() time.Time
}

func NewWithdrawalService(
	db *sql.DB,
	accountRepo repository.IAccountRepository,
	withdrawalRepo repository.IWithdrawalRepository,
	settler ISettler,
	accounts IAccountResolver,
	catalog *StageCatalog,
	notifier INotifier,
) *WithdrawalService {
	return &WithdrawalService{
		db:             db,
		accountRepo:    accountRepo,
		withdrawalRepo: withdrawalRepo,
		settler:        settler,
		accounts:       accounts,
		catalog:        catalog,
		notifier:       notifier,
		now:            time.Now,
	}
}

// Initiate reserves the amount and opens a pending withdrawal with a fresh copy of the stage catalog.
func (s *WithdrawalService) Initiate(ctx context.Context, req model.InitiateWithdrawalRequest, requester model.Requester) (*model.Withdrawal, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_number": req.AccountNumber,
		"amount":         req.Amount.String(),
		"requester_id":   requester.UserID,
	})
	log.Info("Starting withdrawal initiation")

	if err := model.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("could not begin transaction", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(ctx, tx, req.AccountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, storageError("could not lock account", err)
	}
	if !requester.IsAdmin() && account.UserID != requester.UserID {
		log.Warn("Permission denied for withdrawal initiation")
		return nil, ErrPermissionDenied
	}

	if err := account.Reserve(req.Amount, req.Currency); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	w := model.NewWithdrawal(account, req.Amount, req.Description, s.catalog.Templates(), now)

	if err := s.accountRepo.UpdateAccountBalances(ctx, tx, account); err != nil {
		return nil, storageError("could not reserve funds", err)
	}
	if err := s.withdrawalRepo.CreateWithdrawal(ctx, tx, w); err != nil {
		return nil, storageError("could not create withdrawal", err)
	}
	if err := s.notifier.Enqueue(ctx, tx, model.WithdrawalEvent(model.EventWithdrawalInitiated, w, 0, "", "", now)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("could not commit transaction", err)
	}

	log.WithField("withdrawal_id", w.ID).Info("Withdrawal initiated")
	return w, nil
}

func (s *WithdrawalService) lockWithdrawal(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Withdrawal, error) {
	w, err := s.withdrawalRepo.GetWithdrawalForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, storageError("could not lock withdrawal", err)
	}
	return w, nil
}

// VerifyStage verifies one stage. Verifying the last stage settles the
// withdrawal in the same transaction; if the debit fails nothing is kept.
func (s *WithdrawalService) VerifyStage(ctx context.Context, id uuid.UUID, index int, verifiedBy, remarks string) (*model.Withdrawal, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"withdrawal_id": id,
		"stage":         index,
		"verified_by":   verifiedBy,
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("could not begin transaction", err)
	}
	defer tx.Rollback()

	w, err := s.lockWithdrawal(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	final, err := w.VerifyStage(index, verifiedBy, remarks, now)
	if err != nil {
		log.WithError(err).Info("Stage verification refused")
		return nil, err
	}

	if final {
		account, err := s.accountRepo.GetAccountByIDForUpdate(ctx, tx, w.AccountID)
		if err != nil {
			return nil, storageError("could not lock account", err)
		}
		transaction, err := s.settler.SettleWithdrawalTx(ctx, tx, account, w)
		if err != nil {
			log.WithError(err).Error("Final stage debit failed, rolling back")
			if errors.Is(err, ErrStorageUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrDebitFailed, err)
		}
		if err := w.Complete(transaction.ID, now); err != nil {
			return nil, err
		}
	}

	if err := s.withdrawalRepo.UpdateWithdrawal(ctx, tx, w); err != nil {
		return nil, storageError("could not update withdrawal", err)
	}
	if err := s.notifier.Enqueue(ctx, tx, model.WithdrawalEvent(model.EventWithdrawalStageVerified, w, index, verifiedBy, remarks, now)); err != nil {
		return nil, err
	}
	if final {
		if err := s.notifier.Enqueue(ctx, tx, model.WithdrawalEvent(model.EventWithdrawalCompleted, w, index, verifiedBy, "", now)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("could not commit transaction", err)
	}

	if final {
		log.WithField("transaction_id", w.TransactionID).Info("Withdrawal completed")
	} else {
		log.Info("Stage verified")
	}
	return w, nil
}

// Reject cancels a pending withdrawal and releases its reservation.
// Rejecting an already rejected withdrawal returns it unchanged.
func (s *WithdrawalService) Reject(ctx context.Context, id uuid.UUID, rejectedBy, reason string) (*model.Withdrawal, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"withdrawal_id": id,
		"rejected_by":   rejectedBy,
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("could not begin transaction", err)
	}
	defer tx.Rollback()

	w, err := s.lockWithdrawal(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	changed, err := w.Reject(rejectedBy, reason, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return w, nil
	}

	account, err := s.accountRepo.GetAccountByIDForUpdate(ctx, tx, w.AccountID)
	if err != nil {
		return nil, storageError("could not lock account", err)
	}
	if err := account.Release(w.Amount); err != nil {
		log.WithError(err).WithField("reserved", account.Reserved.String()).Error("Reservation does not cover the rejected withdrawal")
		return nil, err
	}

	if err := s.accountRepo.UpdateAccountBalances(ctx, tx, account); err != nil {
		return nil, storageError("could not release funds", err)
	}
	if err := s.withdrawalRepo.UpdateWithdrawal(ctx, tx, w); err != nil {
		return nil, storageError("could not update withdrawal", err)
	}
	if err := s.notifier.Enqueue(ctx, tx, model.WithdrawalEvent(model.EventWithdrawalRejected, w, w.CurrentStage(), rejectedBy, reason, now)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("could not commit transaction", err)
	}

	log.Info("Withdrawal rejected")
	return w, nil
}

// List returns withdrawal summaries, oldest first. An empty status lists all.
func (s *WithdrawalService) List(ctx context.Context, status model.WithdrawalStatus, limit int) ([]model.WithdrawalSummary, error) {
	withdrawals, err := s.withdrawalRepo.ListWithdrawals(ctx, status, ClampLimit(limit, DefaultWithdrawalListLimit, MaxWithdrawalListLimit))
	if err != nil {
		return nil, storageError("could not list withdrawals", err)
	}
	summaries := make([]model.WithdrawalSummary, len(withdrawals))
	for i, w := range withdrawals {
		summaries[i] = w.Summary()
	}
	return summaries, nil
}

// Get returns a withdrawal to its owner or an admin.
func (s *WithdrawalService) Get(ctx context.Context, id uuid.UUID, requester model.Requester) (*model.Withdrawal, error) {
	w, err := s.withdrawalRepo.GetWithdrawalByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, storageError("could not load withdrawal", err)
	}
	if !requester.IsAdmin() && w.UserID != requester.UserID {
		return nil, ErrPermissionDenied
	}
	return w, nil
}

// ListForAccount returns the withdrawals of one account, newest first.
func (s *WithdrawalService) ListForAccount(ctx context.Context, accountNumber string, requester model.Requester) ([]*model.Withdrawal, error) {
	ref, err := s.accounts.Ref(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && ref.UserID != requester.UserID {
		return nil, ErrPermissionDenied
	}
	withdrawals, err := s.withdrawalRepo.ListWithdrawalsByAccount(ctx, ref.ID)
	if err != nil {
		return nil, storageError("could not list withdrawals", err)
	}
	return withdrawals, nil
}
