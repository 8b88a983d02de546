package routers

import (
	"fmt"

	"github.com/betsterhq/wallet-service/internal/di"
	http2 "github.com/betsterhq/wallet-service/internal/infrastructure/api/http"
	"github.com/betsterhq/wallet-service/internal/infrastructure/api/middlewares"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(container *di.Container) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Logger)

	// Set up v1 routes with a path prefix
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Route(fmt.Sprintf("/{%s}", http2.UserIDParam), func(r chi.Router) {
				r.Use(middlewares.UserValidationMiddleware(container.WalletInteractor))
				r.Route("/transactions", func(r chi.Router) {
					th := container.TransactionHandler
					r.Post("/", th.CreateTransaction)
					r.Get("/", th.ListTransactions)
				})
				r.Route("/balance", func(r chi.Router) {
					bh := container.BalanceHandler
					r.Get("/", bh.GetBalance)
				})
			})
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Route(fmt.Sprintf("/{%s}", http2.TransactionIDParam), func(r chi.Router) {
				th := container.TransactionHandler
				r.Post("/settlement", th.SettleTransaction)
			})
		})
	})

	return router
}
