package router

import (
	"net/http"
	"secure-bank-api/common"
	_ "secure-bank-api/docs"
	"secure-bank-api/handler"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health       *handler.HealthHandler
	Accounts     *handler.AccountHandler
	Transactions *handler.TransactionHandler
	Withdrawals  *handler.WithdrawalHandler
	Stages       *handler.StageHandler
}

type appHandlerFunc = func(http.ResponseWriter, *http.Request) *common.AppError

func NewRouter(h Handlers, tokens handler.TokenParser) http.Handler {
	mux := http.NewServeMux()

	auth := handler.AuthMiddleware(tokens)
	authed := func(fn appHandlerFunc) http.Handler {
		return auth(handler.ErrorHandlingMiddleware(fn))
	}
	admin := func(fn appHandlerFunc) http.Handler {
		return auth(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(fn)))
	}

	mux.Handle("GET /health", handler.ErrorHandlingMiddleware(h.Health.HealthCheck))
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	mux.Handle("GET /api/stages", authed(h.Stages.ListStages))

	mux.Handle("GET /api/accounts", authed(h.Accounts.ListAccounts))
	mux.Handle("GET /api/accounts/{accountNumber}/statement", authed(h.Transactions.Statement))
	mux.Handle("GET /api/accounts/{accountNumber}/transactions", authed(h.Transactions.RecentTransactions))
	mux.Handle("GET /api/accounts/{accountNumber}/withdrawals", authed(h.Withdrawals.ListForAccount))

	mux.Handle("POST /api/withdrawals", authed(h.Withdrawals.Initiate))
	mux.Handle("GET /api/withdrawals", admin(h.Withdrawals.List))
	mux.Handle("GET /api/withdrawals/{id}", authed(h.Withdrawals.Get))
	mux.Handle("POST /api/withdrawals/{id}/stages/{n}/verify", admin(h.Withdrawals.VerifyStage))
	mux.Handle("POST /api/withdrawals/{id}/reject", admin(h.Withdrawals.Reject))

	mux.Handle("POST /api/admin/accounts", admin(h.Accounts.OpenAccount))
	mux.Handle("POST /api/admin/accounts/{accountNumber}/credit", admin(h.Transactions.Credit))
	mux.Handle("POST /api/admin/accounts/{accountNumber}/debit", admin(h.Transactions.Debit))
	mux.Handle("GET /api/admin/accounts/{accountNumber}/reconcile", admin(h.Transactions.Reconcile))
	mux.Handle("POST /api/admin/transactions/{id}/reverse", admin(h.Transactions.ReverseTransaction))

	return mux
}
