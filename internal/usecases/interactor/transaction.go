package interactor

import (
	"context"
	"time"

	"github.com/betsterhq/wallet-service/internal/domain/models"
	"github.com/betsterhq/wallet-service/internal/domain/repositories"
	apperrors "github.com/betsterhq/wallet-service/internal/errors"
	"github.com/betsterhq/wallet-service/internal/usecases/dtos"
	"github.com/betsterhq/wallet-service/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const requestTimeout = 5 * time.Second

type TransactionInteractor struct {
	transactionRepository repositories.TransactionRepository
	walletRepository      repositories.WalletRepository
	logger                *zerolog.Logger
}

func NewTransactionInteractor(transactionRepository repositories.TransactionRepository, walletRepository repositories.WalletRepository) *TransactionInteractor {
	l := log.GetLogger()
	return &TransactionInteractor{
		transactionRepository: transactionRepository,
		walletRepository:      walletRepository,
		logger:                &l,
	}
}

// Create validates and persists a new pending transaction for the user.
func (i *TransactionInteractor) Create(userID string, dto *dtos.CreateTransactionDTO) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	txType := models.TransactionType(dto.Type)
	if _, ok := models.ValidTypes[txType]; !ok {
		i.logger.Error().Str("type", dto.Type).Msg("Invalid transaction type")
		return nil, apperrors.NewValidationError("type", "must be deposit or withdrawal")
	}

	amount, err := decimal.NewFromString(dto.Amount.String())
	if err != nil {
		i.logger.Error().Err(err).Msg("Failed to parse amount")
		return nil, apperrors.NewValidationError("amount", "must be a number")
	}
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount", "must be a positive number")
	}

	transaction := &models.Transaction{
		UserID:    userID,
		Amount:    amount.Round(2),
		Type:      txType,
		Status:    models.StatusPending,
		PaymentID: dto.PaymentID,
	}

	created, err := i.transactionRepository.Create(ctx, transaction)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Settle moves a pending transaction to a terminal status. When the target
// status is completed the wallet delta is applied in the same database
// transaction, so callers never observe a settled row without its balance
// effect.
func (i *TransactionInteractor) Settle(transactionID string, dto *dtos.SettleTransactionDTO) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	status := models.TransactionStatus(dto.Status)
	if _, ok := models.TerminalStatuses[status]; !ok {
		i.logger.Error().Str("status", dto.Status).Msg("Invalid settlement status")
		return nil, apperrors.NewValidationError("status", "must be completed or failed")
	}

	settled, err := i.transactionRepository.Settle(ctx, transactionID, status, dto.ReceiptID)
	if err != nil {
		return nil, err
	}

	return settled, nil
}

// History returns the user's most recent transactions, newest first.
func (i *TransactionInteractor) History(userID string) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	return i.transactionRepository.ListByUser(ctx, userID)
}
