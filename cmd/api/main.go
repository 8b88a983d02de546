package main

import (
	"context"

	"github.com/betsterhq/wallet-service/internal/app"
	"github.com/betsterhq/wallet-service/internal/config"
	"github.com/betsterhq/wallet-service/internal/di"
	"github.com/betsterhq/wallet-service/internal/errors"
	"github.com/betsterhq/wallet-service/internal/infrastructure/api/routers"
	"github.com/betsterhq/wallet-service/internal/infrastructure/database/db_client"
	"github.com/betsterhq/wallet-service/pkg/log"
)

const (
	appName = "wallet-service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	log.Init(appName, log.WithConsoleLogger())
	logger := log.GetLogger()

	pgClient := db_client.NewPGClient(cfg.PostgreSQL)
	db, err := pgClient.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToConnectToTheDatabase)
	}

	container := di.NewContainer(db, cfg.Sweep)

	sweep := app.NewPendingSweepProcess(container.PendingSweepInteractor, cfg.Sweep)
	go sweep.Run(ctx)

	router := routers.NewRouter(container)
	service := app.NewService(cfg)
	service.Run(ctx, router)
}
