package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/betsterhq/wallet-service/internal/errors"
	http2 "github.com/betsterhq/wallet-service/internal/infrastructure/api/http"
	"github.com/betsterhq/wallet-service/internal/usecases/interactor"
	"github.com/betsterhq/wallet-service/pkg/log"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type BalanceHandler struct {
	interactor *interactor.WalletInteractor
	logger     *zerolog.Logger
}

func NewBalanceHandler(interactor *interactor.WalletInteractor) *BalanceHandler {
	logger := log.GetLogger()
	return &BalanceHandler{interactor: interactor, logger: &logger}
}

// GetBalance returns the user's current wallet balance. The identity layer
// calls this after settlement to refresh its cached view.
func (bh *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, http2.UserIDParam)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	balance, err := bh.interactor.GetBalance(ctx, userID)
	if err != nil {
		bh.logger.Error().Err(err).Msg("failed to get balance")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(struct {
		Balance decimal.Decimal `json:"balance"`
	}{Balance: balance})
}
