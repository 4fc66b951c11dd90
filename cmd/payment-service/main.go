package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finternet/finternet-backend/api"
	"github.com/finternet/finternet-backend/services/currency"
	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/finternet/finternet-backend/services/monitoring/metrics"
	"github.com/finternet/finternet-backend/services/monitoring/tasks"
	"github.com/finternet/finternet-backend/services/notification"
	"github.com/finternet/finternet-backend/services/payment"
	"github.com/finternet/finternet-backend/utils"
)

const (
	serviceName = "payment-service"
	defaultPort = 8003

	// how long pending settlements get to finish after the listener closes
	settlementDrain = 5 * time.Second
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
	logger.WithField("config", config.Redact()).Info("starting payment service")

	m := metrics.New(config.ServiceName)

	provider, err := currency.NewRateProviderFromConfig(config, logger)
	if err != nil {
		logger.WithError(err).Fatal("could not set up rate provider")
	}
	rates := currency.NewCurrencyService(provider, config.RatesCacheTTL, logger)

	notifier, err := newNotifier(config, logger)
	if err != nil {
		logger.WithError(err).Fatal("could not set up settlement notifier")
	}

	scheduler := tasks.NewTaskScheduler(logger)
	store := payment.NewPaymentStore()
	settler := payment.NewSettler(scheduler, store, config.SettlementDelay, notifier, logger, m)
	payments := payment.NewPaymentService(store, rates, settler, logger, m)

	idempotency, closeStore, err := api.NewIdempotencyStore(config, logger)
	if err != nil {
		logger.WithError(err).Fatal("could not set up idempotency store")
	}
	defer closeStore()

	server := api.NewServer(config, logger, m, idempotency).Mount(
		api.NewPaymentRoutes(payments),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("server stopped with error")
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), settlementDrain)
	defer cancel()
	if err := scheduler.Shutdown(drainCtx); err != nil {
		logger.WithError(err).Warn("some settlements did not run before shutdown")
	}
	logger.Info("payment service stopped")
}

func newNotifier(c *utils.Config, l *logging.Logger) (notification.Notifier, error) {
	logNotifier := notification.NewLogNotifier(l)
	if c.SettlementTopicARN == "" {
		return logNotifier, nil
	}

	sns, err := notification.NewSNSNotifier(c)
	if err != nil {
		return nil, err
	}
	l.WithField("topic", c.SettlementTopicARN).Info("publishing settlements to SNS")
	return notification.MultiNotifier{logNotifier, sns}, nil
}
