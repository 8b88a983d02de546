package repositories

import (
	"context"

	"github.com/betsterhq/wallet-service/internal/domain/models"
	"github.com/shopspring/decimal"
)

type WalletRepository interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}
