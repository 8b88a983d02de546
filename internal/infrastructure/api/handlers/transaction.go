package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/betsterhq/wallet-service/internal/errors"
	http2 "github.com/betsterhq/wallet-service/internal/infrastructure/api/http"
	"github.com/betsterhq/wallet-service/internal/usecases/dtos"
	"github.com/betsterhq/wallet-service/internal/usecases/interactor"
	"github.com/betsterhq/wallet-service/pkg/log"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type TransactionHandler struct {
	interactor *interactor.TransactionInteractor
	logger     *zerolog.Logger
}

func NewTransactionHandler(interactor *interactor.TransactionInteractor) *TransactionHandler {
	logger := log.GetLogger()
	return &TransactionHandler{interactor: interactor, logger: &logger}
}

// CreateTransaction opens a pending transaction for the user in the URL.
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateTransactionDTO
	err := json.NewDecoder(r.Body).Decode(&dto)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError("body", errors.ErrInvalidRequestBody))
		return
	}

	userID := chi.URLParam(r, http2.UserIDParam)
	transaction, err := h.interactor.Create(userID, &dto)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedCreateTransaction)
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transaction)
}

// SettleTransaction moves a pending transaction to completed or failed.
func (h *TransactionHandler) SettleTransaction(w http.ResponseWriter, r *http.Request) {
	var dto dtos.SettleTransactionDTO
	err := json.NewDecoder(r.Body).Decode(&dto)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError("body", errors.ErrInvalidRequestBody))
		return
	}

	transactionID := chi.URLParam(r, http2.TransactionIDParam)
	if transactionID == "" {
		errors.HandleHTTPError(w, errors.NewValidationError("transactionId", errors.ErrTransactionIDRequired))
		return
	}

	transaction, err := h.interactor.Settle(transactionID, &dto)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedSettleTransaction)
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transaction)
}

// ListTransactions returns the user's transaction history, newest first.
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, http2.UserIDParam)

	transactions, err := h.interactor.History(userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list transactions")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transactions)
}
