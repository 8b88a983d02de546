package repositories

import (
	"context"
	"errors"

	"github.com/betsterhq/wallet-service/internal/domain/models"
	"github.com/betsterhq/wallet-service/internal/domain/repositories"
	apperrors "github.com/betsterhq/wallet-service/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type WalletRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewWalletRepositoryImpl(db *pgxpool.Pool) repositories.WalletRepository {
	return &WalletRepositoryImpl{
		db: db,
	}
}

func (r *WalletRepositoryImpl) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := r.db.QueryRow(
		ctx,
		"SELECT id, COALESCE(username, ''), wallet_balance FROM profiles WHERE id = $1",
		userID,
	).Scan(&profile.ID, &profile.Username, &profile.WalletBalance)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user", userID)
		}
		return nil, apperrors.NewPersistenceError("get profile", err)
	}

	return profile, nil
}

func (r *WalletRepositoryImpl) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(
		ctx,
		"SELECT wallet_balance FROM profiles WHERE id = $1",
		userID,
	).Scan(&balance)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, apperrors.NewNotFoundError("user", userID)
		}
		return decimal.Decimal{}, apperrors.NewPersistenceError("get balance", err)
	}

	return balance, nil
}
