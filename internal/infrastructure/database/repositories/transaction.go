package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/betsterhq/wallet-service/internal/domain/models"
	"github.com/betsterhq/wallet-service/internal/domain/repositories"
	apperrors "github.com/betsterhq/wallet-service/internal/errors"
	"github.com/betsterhq/wallet-service/pkg/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type TransactionRepositoryImpl struct {
	db     *pgxpool.Pool
	logger *zerolog.Logger
}

// NewTransactionRepositoryImpl creates new instance of TransactionRepositoryImpl.
func NewTransactionRepositoryImpl(db *pgxpool.Pool) repositories.TransactionRepository {
	l := log.GetLogger()
	return &TransactionRepositoryImpl{
		db:     db,
		logger: &l,
	}
}

const transactionColumns = `id, user_id, amount, type, status, COALESCE(payment_id, ''), COALESCE(receipt_id, ''), created_at, updated_at`

const createTransaction = `
INSERT INTO transactions (user_id, amount, type, status, payment_id)
VALUES ($1, $2::NUMERIC(12,2), $3, 'pending', NULLIF($4, ''))
RETURNING ` + transactionColumns + `;`

// Create inserts a new pending transaction and returns the persisted record.
func (r *TransactionRepositoryImpl) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	row := r.db.QueryRow(ctx, createTransaction, tx.UserID, tx.Amount, tx.Type, tx.PaymentID)

	created, err := scanTransaction(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.SQLState() {
			case repositories.ForeignKeyViolation:
				return nil, apperrors.NewNotFoundError("user", tx.UserID)
			case repositories.CheckViolation:
				return nil, apperrors.NewValidationError("amount", "must be a positive number")
			}
		}
		return nil, apperrors.NewPersistenceError("create transaction", err)
	}

	return created, nil
}

// Settle transitions the transaction to a terminal status and applies the
// signed amount to the owner's wallet when the target status is completed.
// The status write and the balance mutation commit as one unit: a completed
// row without its wallet effect cannot be observed. The pending guard in the
// target CTE makes a second settlement of the same id a no-op, which the
// caller sees as AlreadySettledError.
const settleTransaction = `
WITH target AS (
  SELECT id, user_id, amount, type
  FROM transactions
  WHERE id = $1 AND status = 'pending'
  FOR UPDATE
),
settled AS (
  UPDATE transactions t
  SET status = $2,
      receipt_id = COALESCE(NULLIF($3, ''), t.receipt_id),
      updated_at = now()
  FROM target
  WHERE t.id = target.id
  RETURNING t.id, t.user_id, t.amount, t.type, t.status, t.payment_id, t.receipt_id, t.created_at, t.updated_at
),
wallet AS (
  UPDATE profiles p
  SET wallet_balance = p.wallet_balance + (CASE WHEN s.type = 'deposit' THEN s.amount ELSE -s.amount END)
  FROM settled s
  WHERE $2 = 'completed'
    AND p.id = s.user_id
    AND p.wallet_balance + (CASE WHEN s.type = 'deposit' THEN s.amount ELSE -s.amount END) >= 0
  RETURNING p.id
)
SELECT s.id, s.user_id, s.amount, s.type, s.status,
       COALESCE(s.payment_id, ''), COALESCE(s.receipt_id, ''),
       s.created_at, s.updated_at,
       EXISTS (SELECT 1 FROM wallet) AS balance_applied
FROM settled s;`

func (r *TransactionRepositoryImpl) Settle(ctx context.Context, id string, status models.TransactionStatus, receiptID string) (*models.Transaction, error) {
	for {
		settled, err := r.settleOnce(ctx, id, status, receiptID)

		if err == nil {
			return settled, nil
		}

		if isSerializationError(err) {
			// retry transaction if serialization error occurs (SQLSTATE 40001)
			continue
		}

		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissing(ctx, id)
		}
		if apperrors.Is(err, apperrors.NewInsufficientFundsError()) {
			return nil, err
		}
		return nil, apperrors.NewPersistenceError("settle transaction", err)
	}
}

func (r *TransactionRepositoryImpl) settleOnce(ctx context.Context, id string, status models.TransactionStatus, receiptID string) (*models.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, err
	}

	settled := &models.Transaction{}
	var balanceApplied bool
	err = tx.QueryRow(ctx, settleTransaction, id, status, receiptID).Scan(
		&settled.ID,
		&settled.UserID,
		&settled.Amount,
		&settled.Type,
		&settled.Status,
		&settled.PaymentID,
		&settled.ReceiptID,
		&settled.CreatedAt,
		&settled.UpdatedAt,
		&balanceApplied,
	)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}

	if status == models.StatusCompleted && !balanceApplied {
		// rolling back keeps the row pending, so the settlement can be retried
		tx.Rollback(ctx)
		return nil, apperrors.NewInsufficientFundsError()
	}

	if err = tx.Commit(ctx); err != nil {
		tx.Rollback(ctx)
		return nil, err
	}

	return settled, nil
}

// classifyMissing distinguishes an unknown transaction id from one that is
// already terminal, both of which the settle query reports as no rows.
func (r *TransactionRepositoryImpl) classifyMissing(ctx context.Context, id string) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NewNotFoundError("transaction", id)
	}
	return apperrors.NewAlreadySettledError(existing.ID, string(existing.Status))
}

const listByUser = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2;`

// ListByUser returns the user's most recent transactions, newest first.
func (r *TransactionRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, listByUser, userID, repositories.HistoryLimit)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list transactions", err)
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		err = rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Status, &t.PaymentID, &t.ReceiptID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, apperrors.NewPersistenceError("list transactions", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("list transactions", err)
	}

	return transactions, nil
}

// GetByID returns transaction by id, or nil when it does not exist.
func (r *TransactionRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)

	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewPersistenceError("get transaction", err)
	}

	return t, nil
}

const failStalePending = `
UPDATE transactions
SET status = 'failed', updated_at = now()
WHERE status = 'pending' AND created_at < $1
RETURNING id;`

// FailStalePending fails pending transactions older than the cutoff. Failed
// transactions never touch the wallet, so no balance arithmetic is needed.
func (r *TransactionRepositoryImpl) FailStalePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, failStalePending, cutoff)
	if err != nil {
		return nil, apperrors.NewPersistenceError("fail stale pending", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, apperrors.NewPersistenceError("fail stale pending", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("fail stale pending", err)
	}

	return ids, nil
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Status, &t.PaymentID, &t.ReceiptID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == repositories.SerializationError
}
