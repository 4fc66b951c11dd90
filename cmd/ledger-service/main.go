package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/finternet/finternet-backend/api"
	"github.com/finternet/finternet-backend/services/ledger"
	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/finternet/finternet-backend/services/monitoring/metrics"
	"github.com/finternet/finternet-backend/utils"
)

const (
	serviceName = "ledger-service"
	defaultPort = 8002
)

func main() {
	config, err := utils.LoadConfig(utils.EnvPath, defaultPort)
	if err != nil {
		panic(fmt.Sprintf("Could not load config: %v", err))
	}
	if config.ServiceName == "" {
		config.ServiceName = serviceName
	}

	logger := logging.NewLogger(config)
	logger.WithField("config", config.Redact()).Info("starting ledger service")

	m := metrics.New(config.ServiceName)

	idempotency, closeStore, err := api.NewIdempotencyStore(config, logger)
	if err != nil {
		logger.WithError(err).Fatal("could not set up idempotency store")
	}
	defer closeStore()

	server := api.NewServer(config, logger, m, idempotency).Mount(
		api.NewLedgerRoutes(ledger.NewLedgerService(logger, m)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("server stopped with error")
		return
	}
	logger.Info("ledger service stopped")
}
