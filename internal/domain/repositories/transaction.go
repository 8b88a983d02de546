package repositories

import (
	"context"
	"time"

	"github.com/betsterhq/wallet-service/internal/domain/models"
)

const (
	SerializationError   = "40001"
	ForeignKeyViolation  = "23503"
	CheckViolation       = "23514"
	UniqueViolationError = "23505"
)

// HistoryLimit caps the number of records a history read returns.
const HistoryLimit = 100

type TransactionRepository interface {
	// Create inserts a pending transaction and returns the persisted record
	// with its generated id and timestamps.
	Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)

	// GetByID returns the transaction or nil when no such record exists.
	GetByID(ctx context.Context, id string) (*models.Transaction, error)

	// Settle transitions a pending transaction to the given terminal status
	// and, when the status is completed, applies the signed amount to the
	// owner's wallet balance in the same database transaction. A transaction
	// that is already terminal is not re-transitioned.
	Settle(ctx context.Context, id string, status models.TransactionStatus, receiptID string) (*models.Transaction, error)

	// ListByUser returns the user's most recent transactions, newest first,
	// capped at HistoryLimit.
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)

	// FailStalePending marks pending transactions created before the cutoff
	// as failed and returns their ids. The wallet is never touched.
	FailStalePending(ctx context.Context, cutoff time.Time) ([]string, error)
}
