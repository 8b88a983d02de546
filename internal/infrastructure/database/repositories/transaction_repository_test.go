package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/betsterhq/wallet-service/internal/config"
	"github.com/betsterhq/wallet-service/internal/domain/models"
	apperr "github.com/betsterhq/wallet-service/internal/errors"
	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

// setupDB connects to the test database and skips the test when none is
// reachable, so the suite stays runnable without infrastructure.
func setupDB(t *testing.T) {
	t.Helper()
	cnf := config.Load()

	pgxConfig, err := pgxpool.ParseConfig(cnf.DSN())
	require.NoError(t, err)

	pgxConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err = pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		t.Skipf("database not available: %v", err)
	}
	if err = db.Ping(ctx); err != nil {
		db.Close()
		t.Skipf("database not available: %v", err)
	}
}

func createProfile(t *testing.T, balance float64) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		context.Background(),
		"INSERT INTO profiles (username, wallet_balance) VALUES ($1, $2) RETURNING id",
		"test-"+uuid.New().String()[:8],
		balance,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func getBalance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	err := db.QueryRow(context.Background(), "SELECT wallet_balance FROM profiles WHERE id = $1", userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

func createPending(t *testing.T, repo *TransactionRepositoryImpl, userID string, amount float64, txType models.TransactionType) *models.Transaction {
	t.Helper()
	tx, err := repo.Create(context.Background(), &models.Transaction{
		UserID:    userID,
		Amount:    decimal.NewFromFloat(amount),
		Type:      txType,
		PaymentID: uuid.New().String(),
	})
	require.NoError(t, err)
	return tx
}

func TestCreate(t *testing.T) {
	setupDB(t)
	defer db.Close()

	repo := NewTransactionRepositoryImpl(db).(*TransactionRepositoryImpl)

	t.Run("successful creation", func(t *testing.T) {
		userID := createProfile(t, 0)

		tx := createPending(t, repo, userID, 500, models.TypeDeposit)

		assert.NotEmpty(t, tx.ID)
		assert.Equal(t, models.StatusPending, tx.Status)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(500)))
		assert.False(t, tx.CreatedAt.IsZero())

		assert.True(t, getBalance(t, userID).Equal(decimal.Zero), "creation must not touch the wallet")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.Create(context.Background(), &models.Transaction{
			UserID: uuid.New().String(),
			Amount: decimal.NewFromInt(10),
			Type:   models.TypeDeposit,
		})

		assert.True(t, apperr.Is(err, &apperr.NotFoundError{}))
	})

	t.Run("non-positive amount rejected by the store", func(t *testing.T) {
		userID := createProfile(t, 0)

		_, err := repo.Create(context.Background(), &models.Transaction{
			UserID: userID,
			Amount: decimal.NewFromInt(-5),
			Type:   models.TypeDeposit,
		})

		assert.True(t, apperr.Is(err, &apperr.ValidationError{}))
	})
}

func TestSettle(t *testing.T) {
	setupDB(t)
	defer db.Close()

	repo := NewTransactionRepositoryImpl(db).(*TransactionRepositoryImpl)

	t.Run("completed deposit credits the wallet", func(t *testing.T) {
		userID := createProfile(t, 0)
		tx := createPending(t, repo, userID, 500, models.TypeDeposit)

		settled, err := repo.Settle(context.Background(), tx.ID, models.StatusCompleted, "rcpt_1")
		require.NoError(t, err)

		assert.Equal(t, models.StatusCompleted, settled.Status)
		assert.Equal(t, "rcpt_1", settled.ReceiptID)
		assert.True(t, settled.UpdatedAt.After(tx.UpdatedAt) || settled.UpdatedAt.Equal(tx.UpdatedAt))
		assert.True(t, getBalance(t, userID).Equal(decimal.NewFromInt(500)))
	})

	t.Run("completed withdrawal debits the wallet", func(t *testing.T) {
		userID := createProfile(t, 500)
		tx := createPending(t, repo, userID, 200, models.TypeWithdrawal)

		_, err := repo.Settle(context.Background(), tx.ID, models.StatusCompleted, "")
		require.NoError(t, err)

		assert.True(t, getBalance(t, userID).Equal(decimal.NewFromInt(300)))
	})

	t.Run("failed settlement leaves the wallet alone", func(t *testing.T) {
		userID := createProfile(t, 100)
		tx := createPending(t, repo, userID, 50, models.TypeDeposit)

		settled, err := repo.Settle(context.Background(), tx.ID, models.StatusFailed, "")
		require.NoError(t, err)

		assert.Equal(t, models.StatusFailed, settled.Status)
		assert.True(t, getBalance(t, userID).Equal(decimal.NewFromInt(100)))
	})

	t.Run("unknown transaction id", func(t *testing.T) {
		_, err := repo.Settle(context.Background(), uuid.New().String(), models.StatusCompleted, "")
		assert.True(t, apperr.Is(err, &apperr.NotFoundError{}))
	})

	t.Run("terminal transaction cannot re-settle", func(t *testing.T) {
		userID := createProfile(t, 0)
		tx := createPending(t, repo, userID, 100, models.TypeDeposit)

		_, err := repo.Settle(context.Background(), tx.ID, models.StatusCompleted, "")
		require.NoError(t, err)

		_, err = repo.Settle(context.Background(), tx.ID, models.StatusCompleted, "")
		assert.True(t, apperr.Is(err, &apperr.AlreadySettledError{}))

		assert.True(t, getBalance(t, userID).Equal(decimal.NewFromInt(100)), "delta must apply exactly once")
	})

	t.Run("concurrent completions apply the delta exactly once", func(t *testing.T) {
		userID := createProfile(t, 0)
		tx := createPending(t, repo, userID, 500, models.TypeDeposit)

		n := 20
		results := make(chan error, n)
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				_, err := repo.Settle(context.Background(), tx.ID, models.StatusCompleted, uuid.New().String())
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		successCount := 0
		for err := range results {
			if err == nil {
				successCount++
			} else {
				assert.True(t, apperr.Is(err, &apperr.AlreadySettledError{}))
			}
		}

		assert.Equal(t, 1, successCount)
		assert.True(t, getBalance(t, userID).Equal(decimal.NewFromInt(500)))
	})

	t.Run("withdrawal beyond balance aborts atomically", func(t *testing.T) {
		userID := createProfile(t, 100)
		tx := createPending(t, repo, userID, 200, models.TypeWithdrawal)

		_, err := repo.Settle(context.Background(), tx.ID, models.StatusCompleted, "")
		assert.True(t, apperr.Is(err, &apperr.InsufficientFundsError{}))

		current, err := repo.GetByID(context.Background(), tx.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, current.Status, "the status write must roll back with the balance")
		assert.True(t, getBalance(t, userID).Equal(decimal.NewFromInt(100)))
	})

	t.Run("concurrent settlements for one user keep the balance exact", func(t *testing.T) {
		userID := createProfile(t, 1000)

		n := 50
		transactions := make([]*models.Transaction, n)
		expected := decimal.NewFromInt(1000)
		for i := 0; i < n; i++ {
			txType := models.TypeDeposit
			amount := float64(i%10 + 1)
			if i%2 == 0 {
				txType = models.TypeWithdrawal
				expected = expected.Sub(decimal.NewFromFloat(amount))
			} else {
				expected = expected.Add(decimal.NewFromFloat(amount))
			}
			transactions[i] = createPending(t, repo, userID, amount, txType)
		}

		var wg sync.WaitGroup
		wg.Add(n)
		for _, tx := range transactions {
			go func(id string) {
				defer wg.Done()
				_, err := repo.Settle(context.Background(), id, models.StatusCompleted, "")
				assert.NoError(t, err)
			}(tx.ID)
		}
		wg.Wait()

		assert.True(t, getBalance(t, userID).Equal(expected))
	})
}

func TestListByUser(t *testing.T) {
	setupDB(t)
	defer db.Close()

	repo := NewTransactionRepositoryImpl(db).(*TransactionRepositoryImpl)

	t.Run("empty without transactions", func(t *testing.T) {
		userID := createProfile(t, 0)

		list, err := repo.ListByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("newest first, owner only, capped at 100", func(t *testing.T) {
		userID := createProfile(t, 0)
		otherID := createProfile(t, 0)

		for i := 0; i < 105; i++ {
			createPending(t, repo, userID, float64(i+1), models.TypeDeposit)
		}
		createPending(t, repo, otherID, 999, models.TypeDeposit)

		list, err := repo.ListByUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, list, 100)

		for i, tx := range list {
			assert.Equal(t, userID, tx.UserID)
			if i > 0 {
				assert.False(t, tx.CreatedAt.After(list[i-1].CreatedAt))
			}
		}
	})
}

func TestFailStalePending(t *testing.T) {
	setupDB(t)
	defer db.Close()

	repo := NewTransactionRepositoryImpl(db).(*TransactionRepositoryImpl)

	t.Run("only stale pending rows are failed", func(t *testing.T) {
		userID := createProfile(t, 0)
		stale := createPending(t, repo, userID, 10, models.TypeDeposit)
		settled := createPending(t, repo, userID, 20, models.TypeDeposit)
		_, err := repo.Settle(context.Background(), settled.ID, models.StatusCompleted, "")
		require.NoError(t, err)

		ids, err := repo.FailStalePending(context.Background(), time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Contains(t, ids, stale.ID)
		assert.NotContains(t, ids, settled.ID)

		current, err := repo.GetByID(context.Background(), stale.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFailed, current.Status)

		assert.True(t, getBalance(t, userID).Equal(decimal.NewFromInt(20)), "sweeping must not touch the wallet")
	})
}
