package interactor

import (
	"context"
	"time"

	"github.com/betsterhq/wallet-service/internal/domain/repositories"
	apperrors "github.com/betsterhq/wallet-service/internal/errors"
	"github.com/betsterhq/wallet-service/pkg/log"
	"github.com/rs/zerolog"
)

// PendingSweepInteractor fails pending transactions the payment gateway never
// confirmed. A failed transaction never mutates the wallet, so sweeping is a
// pure status write.
type PendingSweepInteractor struct {
	transactionRepository repositories.TransactionRepository
	maxAge                time.Duration
	logger                *zerolog.Logger
}

func NewPendingSweepInteractor(transactionRepository repositories.TransactionRepository, maxAge time.Duration) *PendingSweepInteractor {
	l := log.GetLogger()
	return &PendingSweepInteractor{
		transactionRepository: transactionRepository,
		maxAge:                maxAge,
		logger:                &l,
	}
}

// Execute fails every pending transaction older than the configured age.
func (s *PendingSweepInteractor) Execute(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	cutoff := time.Now().Add(-s.maxAge)
	ids, err := s.transactionRepository.FailStalePending(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg(apperrors.ErrFailedPendingSweep)
		return err
	}

	for _, id := range ids {
		s.logger.Info().Str("transaction_id", id).Msg("Stale pending transaction failed")
	}

	return nil
}
