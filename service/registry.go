package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"secure-bank-api/logger"
	"secure-bank-api/model"
	"secure-bank-api/repository"
	"time"

	"github.com/sirupsen/logrus"
)

const maxAccountNumberAttempts = 5

// AccountRegistry resolves account numbers. Only the immutable AccountRef is
// cached; balances are always read from the database.
type AccountRegistry struct {
	repo  repository.IAccountRepository
	cache ICacheClient
	ttl   time.Duration
}

// NewAccountRegistry builds the registry. A nil cache disables caching.
func NewAccountRegistry(repo repository.IAccountRepository, cache ICacheClient, ttl time.Duration) *AccountRegistry {
	return &AccountRegistry{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

func refCacheKey(accountNumber string) string {
	return fmt.Sprintf("account:ref:%s", accountNumber)
}

// Lookup returns the current account state.
func (r *AccountRegistry) Lookup(ctx context.Context, accountNumber string) (*model.Account, error) {
	account, err := r.repo.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, storageError("could not look up account", err)
	}
	return account, nil
}

// Ref resolves the identity of an account using a cache-aside strategy.
func (r *AccountRegistry) Ref(ctx context.Context, accountNumber string) (model.AccountRef, error) {
	key := refCacheKey(accountNumber)
	log := logger.Log.WithField("account_number", accountNumber)

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, key).Result()
		if err == nil {
			var ref model.AccountRef
			if err := json.Unmarshal([]byte(cached), &ref); err == nil {
				return ref, nil
			}
			log.Warn("Discarding undecodable account reference from cache")
		}
	}

	account, err := r.Lookup(ctx, accountNumber)
	if err != nil {
		return model.AccountRef{}, err
	}
	ref := account.Ref()

	if r.cache != nil {
		if data, err := json.Marshal(ref); err == nil {
			if err := r.cache.Set(ctx, key, data, r.ttl).Err(); err != nil {
				log.WithError(err).Warn("Failed to cache account reference")
			}
		}
	}
	return ref, nil
}

// Open creates an account with a fresh random account number.
func (r *AccountRegistry) Open(ctx context.Context, userID int64, accountType model.AccountType, currency string) (*model.Account, error) {
	if accountType == "" {
		accountType = model.AccountTypeSavings
	}
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":      userID,
		"account_type": accountType,
		"currency":     currency,
	})

	for attempt := 1; attempt <= maxAccountNumberAttempts; attempt++ {
		account := &model.Account{
			UserID:        userID,
			AccountNumber: generateAccountNumber(),
			Type:          accountType,
			Currency:      currency,
		}
		err := r.repo.CreateAccount(ctx, account)
		if err == nil {
			log.WithField("account_number", account.AccountNumber).Info("Account opened")
			return account, nil
		}
		if !repository.IsUniqueViolation(err, "accounts_account_number_key") {
			return nil, storageError("could not create account", err)
		}
		log.WithField("attempt", attempt).Warn("Account number collision, retrying")
	}
	return nil, ErrAccountNumberExhausted
}

// ListForUser returns the accounts a user owns.
func (r *AccountRegistry) ListForUser(ctx context.Context, userID int64) ([]*model.Account, error) {
	accounts, err := r.repo.GetAccountsByUserID(ctx, userID)
	if err != nil {
		return nil, storageError("could not list accounts", err)
	}
	return accounts, nil
}

// generateAccountNumber returns a 10-digit number without a leading zero.
func generateAccountNumber() string {
	return fmt.Sprintf("%d", 1_000_000_000+rand.Int64N(9_000_000_000))
}
