package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"secure-bank-api/model"
	"secure-bank-api/service"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_OpenAccount(t *testing.T) {
	t.Run("opens a savings account", func(t *testing.T) {
		registry := new(MockRegistry)
		account := &model.Account{ID: 7, UserID: ownerID, AccountNumber: accountNumber, Type: model.AccountTypeSavings, Currency: "USD", Balance: decimal.Zero, Reserved: decimal.Zero}
		registry.On("Open", mock.Anything, ownerID, model.AccountTypeSavings, "USD").Return(account, nil)

		rr := do(NewAccountHandler(registry).OpenAccount, request{
			method:    http.MethodPost,
			target:    "/api/admin/accounts",
			body:      `{"userId":42,"type":"savings","currency":"USD"}`,
			requester: admin(),
		})

		require.Equal(t, http.StatusCreated, rr.Code)
		var got model.Account
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, accountNumber, got.AccountNumber)
		assert.True(t, got.Balance.IsZero())
	})

	t.Run("unknown account type", func(t *testing.T) {
		rr := do(NewAccountHandler(new(MockRegistry)).OpenAccount, request{
			method:    http.MethodPost,
			target:    "/api/admin/accounts",
			body:      `{"userId":42,"type":"checking","currency":"USD"}`,
			requester: admin(),
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Message, "type")
	})

	t.Run("number space exhausted", func(t *testing.T) {
		registry := new(MockRegistry)
		registry.On("Open", mock.Anything, ownerID, model.AccountType(""), "USD").Return(nil, service.ErrAccountNumberExhausted)

		rr := do(NewAccountHandler(registry).OpenAccount, request{
			method:    http.MethodPost,
			target:    "/api/admin/accounts",
			body:      `{"userId":42,"currency":"USD"}`,
			requester: admin(),
		})

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.True(t, decodeError(t, rr).Retryable)
	})
}

func TestAccountHandler_ListAccounts(t *testing.T) {
	t.Run("lists the caller's accounts", func(t *testing.T) {
		registry := new(MockRegistry)
		registry.On("ListForUser", mock.Anything, ownerID).Return([]*model.Account{
			{ID: 7, UserID: ownerID, AccountNumber: accountNumber, Currency: "USD"},
		}, nil)

		rr := do(NewAccountHandler(registry).ListAccounts, request{method: http.MethodGet, target: "/api/accounts", requester: owner()})

		require.Equal(t, http.StatusOK, rr.Code)
		var got []model.Account
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})

	t.Run("storage failure", func(t *testing.T) {
		registry := new(MockRegistry)
		registry.On("ListForUser", mock.Anything, ownerID).Return(nil, fmt.Errorf("could not list accounts: %w", service.ErrStorageUnavailable))

		rr := do(NewAccountHandler(registry).ListAccounts, request{method: http.MethodGet, target: "/api/accounts", requester: owner()})

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestStageHandler_ListStages(t *testing.T) {
	catalog := staticCatalog{
		{Index: 1, Name: "Identity verification"},
		{Index: 2, Name: "Fraud screening"},
	}

	rr := do(NewStageHandler(catalog).ListStages, request{method: http.MethodGet, target: "/api/stages", requester: owner()})

	require.Equal(t, http.StatusOK, rr.Code)
	var got []model.StageTemplate
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, []model.StageTemplate(catalog), got)
}
