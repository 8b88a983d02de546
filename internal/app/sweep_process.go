package app

import (
	"context"
	"strconv"
	"time"

	"github.com/betsterhq/wallet-service/internal/config"
)

type PendingSweepHandler interface {
	Execute(ctx context.Context) error
}

// PendingSweepProcess periodically fails pending transactions whose payment
// confirmation never arrived.
type PendingSweepProcess struct {
	handler PendingSweepHandler
	config  config.Sweep
}

func NewPendingSweepProcess(h PendingSweepHandler, cfg config.Sweep) *PendingSweepProcess {
	return &PendingSweepProcess{handler: h, config: cfg}
}

// Run runs the sweep on the configured interval until the context ends.
func (p *PendingSweepProcess) Run(ctx context.Context) error {
	interval, err := strconv.Atoi(p.config.Interval)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.handler.Execute(ctx)
		}
	}
}
