package router_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"secure-bank-api/app"
	"secure-bank-api/config"
	"secure-bank-api/db"
	"secure-bank-api/handler"
	"secure-bank-api/logger"
	"secure-bank-api/model"
	"secure-bank-api/router"
	"secure-bank-api/service"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "integration-secret"

var (
	testApp         *app.TestApp
	authService     *service.AuthService
	testRedisClient *redis.Client
)

func TestMain(m *testing.M) {
	logger.Init()
	authService = service.NewAuthService(testSecret)

	if os.Getenv("RUN_INTEGRATION") != "true" {
		os.Exit(m.Run())
	}

	config.LoadConfig("../")
	config.AppConfig.JWT.SecretKey = testSecret
	config.AppConfig.Database.Name += "_test"

	database, err := sql.Open("postgres", config.AppConfig.DSN())
	if err != nil {
		log.Fatalf("could not connect to test database: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err = database.Ping(); err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		log.Fatalf("database not ready: %v", err)
	}
	if err := db.RunMigrations("file://../db/migrations", config.AppConfig.MigrationURL()); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if config.AppConfig.Redis.Enabled {
		testRedisClient = redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.Redis.Host + ":" + config.AppConfig.Redis.Port,
			Password: config.AppConfig.Redis.Password,
			DB:       1, // Use a separate DB for test isolation.
		})
		if err := testRedisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("could not connect to test redis: %v", err)
		}
	}

	testApp = app.NewTestApp(database, testRedisClient)

	exitCode := m.Run()

	database.Close()
	if testRedisClient != nil {
		testRedisClient.Close()
	}
	os.Exit(exitCode)
}

// --- Routing, no database required ---

func offlineRouter() http.Handler {
	return router.NewRouter(router.Handlers{
		Health:       handler.NewHealthHandler(nil),
		Accounts:     handler.NewAccountHandler(nil),
		Transactions: handler.NewTransactionHandler(nil, nil),
		Withdrawals:  handler.NewWithdrawalHandler(nil),
		Stages:       handler.NewStageHandler(nil),
	}, authService)
}

func TestHealthCheck(t *testing.T) {
	rr := httptest.NewRecorder()
	offlineRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"API is healthy and running"}`, rr.Body.String())
}

func TestRouteProtection(t *testing.T) {
	r := offlineRouter()
	userToken := issue(t, 42, model.RoleUser)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		code   int
	}{
		{"api requires a token", http.MethodGet, "/api/accounts", "", http.StatusUnauthorized},
		{"withdrawal queue is admin only", http.MethodGet, "/api/withdrawals", userToken, http.StatusForbidden},
		{"verification is admin only", http.MethodPost, "/api/withdrawals/4b0c5a6e-0e53-4d43-9a3c-5f3f2f1b8f10/stages/1/verify", userToken, http.StatusForbidden},
		{"rejection is admin only", http.MethodPost, "/api/withdrawals/4b0c5a6e-0e53-4d43-9a3c-5f3f2f1b8f10/reject", userToken, http.StatusForbidden},
		{"credit is admin only", http.MethodPost, "/api/admin/accounts/1234567890/credit", userToken, http.StatusForbidden},
		{"reversal is admin only", http.MethodPost, "/api/admin/transactions/4b0c5a6e-0e53-4d43-9a3c-5f3f2f1b8f10/reverse", userToken, http.StatusForbidden},
		{"unknown method", http.MethodDelete, "/api/withdrawals", userToken, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

// --- Integration helpers ---

func requireIntegration(t *testing.T) {
	t.Helper()
	if testApp == nil {
		t.Skip("set RUN_INTEGRATION=true to run against PostgreSQL")
	}
}

func issue(t *testing.T, userID int64, role model.Role) string {
	t.Helper()
	token, err := authService.IssueToken(userID, role, time.Hour)
	require.NoError(t, err)
	return token
}

func call(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	testApp.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type fixture struct {
	adminToken string
	userToken  string
	userID     int64
	account    model.Account
}

// newFixture opens a USD account for a fresh user and credits it with balance.
func newFixture(t *testing.T, balance int64) fixture {
	t.Helper()
	f := fixture{
		adminToken: issue(t, 1, model.RoleAdmin),
		userID:     rand.Int64N(1_000_000_000) + 1_000,
	}
	f.userToken = issue(t, f.userID, model.RoleUser)

	rr := call(t, http.MethodPost, "/api/admin/accounts", f.adminToken, `{"userId":`+strconv.FormatInt(f.userID, 10)+`,"currency":"USD"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	f.account = decode[model.Account](t, rr)

	if balance > 0 {
		rr = call(t, http.MethodPost, "/api/admin/accounts/"+f.account.AccountNumber+"/credit", f.adminToken,
			`{"amount":`+strconv.FormatInt(balance, 10)+`,"currency":"USD","description":"Opening deposit"}`)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	return f
}

func (f fixture) statement(t *testing.T) model.Statement {
	t.Helper()
	rr := call(t, http.MethodGet, "/api/accounts/"+f.account.AccountNumber+"/statement", f.userToken, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[model.Statement](t, rr)
}

func (f fixture) initiate(t *testing.T, amount int64) *httptest.ResponseRecorder {
	t.Helper()
	return call(t, http.MethodPost, "/api/withdrawals", f.userToken,
		`{"accountNumber":"`+f.account.AccountNumber+`","amount":`+strconv.FormatInt(amount, 10)+`,"currency":"USD"}`)
}

func (f fixture) verify(t *testing.T, id string, stage int) *httptest.ResponseRecorder {
	t.Helper()
	return call(t, http.MethodPost, "/api/withdrawals/"+id+"/stages/"+strconv.Itoa(stage)+"/verify", f.adminToken,
		`{"verifiedBy":"ops-`+strconv.Itoa(stage)+`"}`)
}

func (f fixture) reconcile(t *testing.T) model.Reconciliation {
	t.Helper()
	rr := call(t, http.MethodGet, "/api/admin/accounts/"+f.account.AccountNumber+"/reconcile", f.adminToken, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[model.Reconciliation](t, rr)
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// --- Integration suites ---

func TestWithdrawalApproval_Integration(t *testing.T) {
	requireIntegration(t)
	f := newFixture(t, 1000)

	rr := f.initiate(t, 500)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	w := decode[model.Withdrawal](t, rr)
	assert.Equal(t, model.WithdrawalPending, w.Status)
	require.Len(t, w.Stages, service.DefaultStageCount)
	for _, s := range w.Stages {
		assert.False(t, s.Verified)
	}
	id := w.ID.String()

	t.Run("stages must be verified in order", func(t *testing.T) {
		rr := f.verify(t, id, 3)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "OutOfOrderStage")
	})

	t.Run("nine stages leave the balance untouched", func(t *testing.T) {
		for stage := 1; stage <= 9; stage++ {
			require.Equal(t, http.StatusOK, f.verify(t, id, stage).Code, "stage %d", stage)
		}
		st := f.statement(t)
		assert.True(t, st.Balance.Equal(amount(1000)))
		assert.True(t, st.Reserved.Equal(amount(500)))
		assert.True(t, st.Available.Equal(amount(500)))
	})

	t.Run("the last stage debits exactly once", func(t *testing.T) {
		rr := f.verify(t, id, 10)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		completed := decode[model.Withdrawal](t, rr)
		assert.Equal(t, model.WithdrawalCompleted, completed.Status)
		require.NotNil(t, completed.TransactionID)

		assert.Equal(t, http.StatusConflict, f.verify(t, id, 10).Code)

		st := f.statement(t)
		assert.True(t, st.Balance.Equal(amount(500)))
		assert.True(t, st.Reserved.IsZero())
		assert.True(t, f.reconcile(t).Consistent)
	})
}

func TestWithdrawalRejection_Integration(t *testing.T) {
	requireIntegration(t)
	f := newFixture(t, 1000)

	rr := f.initiate(t, 500)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	id := decode[model.Withdrawal](t, rr).ID.String()
	for stage := 1; stage <= 4; stage++ {
		require.Equal(t, http.StatusOK, f.verify(t, id, stage).Code)
	}

	rr = call(t, http.MethodPost, "/api/withdrawals/"+id+"/reject", f.adminToken, `{"rejectedBy":"ops","reason":"customer request"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, model.WithdrawalRejected, decode[model.Withdrawal](t, rr).Status)

	st := f.statement(t)
	assert.True(t, st.Balance.Equal(amount(1000)))
	assert.True(t, st.Reserved.IsZero())

	rr = f.verify(t, id, 5)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "AlreadyFinalizedWithdrawal")
}

func TestConcurrentWithdrawals_Integration(t *testing.T) {
	requireIntegration(t)
	f := newFixture(t, 1000)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	bodies := make([]string, 2)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rr := f.initiate(t, 600)
			codes[i], bodies[i] = rr.Code, rr.Body.String()
		}(i)
	}
	wg.Wait()

	created := -1
	for i, code := range codes {
		if code == http.StatusCreated {
			require.Equal(t, -1, created, "both withdrawals were accepted")
			created = i
			continue
		}
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, bodies[i], "InsufficientFunds")
	}
	require.NotEqual(t, -1, created, "neither withdrawal was accepted")

	var w model.Withdrawal
	require.NoError(t, json.Unmarshal([]byte(bodies[created]), &w))
	for stage := 1; stage <= service.DefaultStageCount; stage++ {
		require.Equal(t, http.StatusOK, f.verify(t, w.ID.String(), stage).Code)
	}

	st := f.statement(t)
	assert.True(t, st.Balance.Equal(amount(400)))
	assert.True(t, f.reconcile(t).Consistent)
}

func TestCreditThenRecentTransactions_Integration(t *testing.T) {
	requireIntegration(t)
	f := newFixture(t, 300)

	rr := call(t, http.MethodPost, "/api/admin/accounts/"+f.account.AccountNumber+"/credit", f.adminToken,
		`{"amount":200,"currency":"USD","description":"Deposit"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	credit := decode[model.Transaction](t, rr)

	rr = call(t, http.MethodGet, "/api/accounts/"+f.account.AccountNumber+"/transactions?limit=1", f.userToken, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	recent := decode[[]model.Transaction](t, rr)
	require.Len(t, recent, 1)
	assert.Equal(t, credit.ID, recent[0].ID)
	assert.Equal(t, "Deposit", recent[0].Description)
	assert.True(t, recent[0].Amount.Equal(amount(200)))

	assert.True(t, f.statement(t).Balance.Equal(amount(500)))
}

func TestReverseTransaction_Integration(t *testing.T) {
	requireIntegration(t)
	f := newFixture(t, 100)

	rr := call(t, http.MethodPost, "/api/admin/accounts/"+f.account.AccountNumber+"/credit", f.adminToken,
		`{"amount":50,"currency":"USD","description":"Duplicate deposit"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[model.Transaction](t, rr).ID.String()

	rr = call(t, http.MethodPost, "/api/admin/transactions/"+id+"/reverse", f.adminToken, `{"reversedBy":"ops","reason":"duplicate"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	reversal := decode[model.Transaction](t, rr)
	assert.Equal(t, model.DirectionDebit, reversal.Direction)

	rr = call(t, http.MethodPost, "/api/admin/transactions/"+id+"/reverse", f.adminToken, `{"reversedBy":"ops","reason":"duplicate"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	assert.True(t, f.statement(t).Balance.Equal(amount(100)))
	assert.True(t, f.reconcile(t).Consistent)
}

func TestAccountOwnership_Integration(t *testing.T) {
	requireIntegration(t)
	f := newFixture(t, 100)
	stranger := issue(t, f.userID+1, model.RoleUser)

	rr := call(t, http.MethodGet, "/api/accounts/"+f.account.AccountNumber+"/statement", stranger, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = call(t, http.MethodPost, "/api/withdrawals", stranger,
		`{"accountNumber":"`+f.account.AccountNumber+`","amount":10,"currency":"USD"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = call(t, http.MethodGet, "/api/accounts", f.userToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	accounts := decode[[]model.Account](t, rr)
	require.Len(t, accounts, 1)
	assert.Equal(t, f.account.AccountNumber, accounts[0].AccountNumber)
}
