package interactor

import (
	"context"

	"github.com/betsterhq/wallet-service/internal/domain/repositories"
	"github.com/shopspring/decimal"
)

type WalletInteractor struct {
	walletRepository repositories.WalletRepository
}

func NewWalletInteractor(repository repositories.WalletRepository) *WalletInteractor {
	return &WalletInteractor{walletRepository: repository}
}

func (w *WalletInteractor) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, err := w.walletRepository.GetProfile(ctx, id)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (w *WalletInteractor) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	return w.walletRepository.GetBalance(ctx, id)
}
