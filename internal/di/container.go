package di

import (
	"strconv"
	"time"

	"github.com/betsterhq/wallet-service/internal/config"
	"github.com/betsterhq/wallet-service/internal/infrastructure/api/handlers"
	"github.com/betsterhq/wallet-service/internal/infrastructure/database/repositories"
	"github.com/betsterhq/wallet-service/internal/usecases/interactor"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	TransactionHandler     *handlers.TransactionHandler
	BalanceHandler         *handlers.BalanceHandler
	WalletInteractor       *interactor.WalletInteractor
	PendingSweepInteractor *interactor.PendingSweepInteractor
}

// NewContainer creates a new Container instance.
func NewContainer(db *pgxpool.Pool, sweepCfg config.Sweep) *Container {
	transactionRepository := repositories.NewTransactionRepositoryImpl(db)
	walletRepository := repositories.NewWalletRepositoryImpl(db)

	transactionInteractor := interactor.NewTransactionInteractor(transactionRepository, walletRepository)
	transactionHandler := handlers.NewTransactionHandler(transactionInteractor)

	walletInteractor := interactor.NewWalletInteractor(walletRepository)
	balanceHandler := handlers.NewBalanceHandler(walletInteractor)

	maxAgeMinutes, err := strconv.Atoi(sweepCfg.MaxAge)
	if err != nil {
		maxAgeMinutes = 30
	}
	pendingSweepInteractor := interactor.NewPendingSweepInteractor(transactionRepository, time.Duration(maxAgeMinutes)*time.Minute)

	return &Container{
		TransactionHandler:     transactionHandler,
		BalanceHandler:         balanceHandler,
		WalletInteractor:       walletInteractor,
		PendingSweepInteractor: pendingSweepInteractor,
	}
}
