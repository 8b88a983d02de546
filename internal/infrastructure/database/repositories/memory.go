package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/betsterhq/wallet-service/internal/domain/models"
	"github.com/betsterhq/wallet-service/internal/domain/repositories"
	apperrors "github.com/betsterhq/wallet-service/internal/errors"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory implementation of the transaction and wallet
// repositories used for unit testing the use case and API layers without a
// running database. It keeps the same settlement semantics as the pgx
// implementation: the pending check, the status write and the balance
// mutation happen under one lock.
type MemoryStore struct {
	mu           sync.Mutex
	seq          int
	transactions map[string]*models.Transaction
	profiles     map[string]*models.Profile
	balanceErr   error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*models.Transaction),
		profiles:     make(map[string]*models.Profile),
	}
}

// SeedProfile registers a user with an opening balance and returns its id.
func (m *MemoryStore) SeedProfile(username string, balance decimal.Decimal) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := fmt.Sprintf("user-%04d", m.seq)
	m.profiles[id] = &models.Profile{ID: id, Username: username, WalletBalance: balance}
	return id
}

// WithBalanceError forces the next balance mutations to fail, simulating a
// wallet-side store failure during settlement.
func (m *MemoryStore) WithBalanceError(err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balanceErr = err
	return m
}

func (m *MemoryStore) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[tx.UserID]; !ok {
		return nil, apperrors.NewNotFoundError("user", tx.UserID)
	}

	m.seq++
	now := time.Now().Add(time.Duration(m.seq) * time.Microsecond)
	created := &models.Transaction{
		ID:        fmt.Sprintf("tx-%04d", m.seq),
		UserID:    tx.UserID,
		Amount:    tx.Amount,
		Type:      tx.Type,
		Status:    models.StatusPending,
		PaymentID: tx.PaymentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.transactions[created.ID] = created

	out := *created
	return &out, nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return nil, nil
	}
	out := *tx
	return &out, nil
}

func (m *MemoryStore) Settle(ctx context.Context, id string, status models.TransactionStatus, receiptID string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("transaction", id)
	}
	if tx.Status != models.StatusPending {
		return nil, apperrors.NewAlreadySettledError(tx.ID, string(tx.Status))
	}

	if status == models.StatusCompleted {
		if m.balanceErr != nil {
			// the status write and the balance mutation are one unit; the
			// transaction stays pending when the wallet side fails
			return nil, apperrors.NewPersistenceError("settle transaction", m.balanceErr)
		}
		profile := m.profiles[tx.UserID]
		next := profile.WalletBalance.Add(tx.SignedAmount())
		if next.IsNegative() {
			return nil, apperrors.NewInsufficientFundsError()
		}
		profile.WalletBalance = next
	}

	tx.Status = status
	if receiptID != "" {
		tx.ReceiptID = receiptID
	}
	tx.UpdatedAt = time.Now()

	out := *tx
	return &out, nil
}

func (m *MemoryStore) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.Transaction, 0)
	for _, tx := range m.transactions {
		if tx.UserID == userID {
			result = append(result, *tx)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > repositories.HistoryLimit {
		result = result[:repositories.HistoryLimit]
	}
	return result, nil
}

func (m *MemoryStore) FailStalePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0)
	for _, tx := range m.transactions {
		if tx.Status == models.StatusPending && tx.CreatedAt.Before(cutoff) {
			tx.Status = models.StatusFailed
			tx.UpdatedAt = time.Now()
			ids = append(ids, tx.ID)
		}
	}
	return ids, nil
}

func (m *MemoryStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.profiles[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("user", userID)
	}
	out := *profile
	return &out, nil
}

func (m *MemoryStore) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.profiles[userID]
	if !ok {
		return decimal.Decimal{}, apperrors.NewNotFoundError("user", userID)
	}
	return profile.WalletBalance, nil
}
