package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"plaque-payments/internal/client"
	"plaque-payments/internal/config"
	"plaque-payments/internal/credential"
	"plaque-payments/internal/logger"
	"plaque-payments/internal/metrics"
	"plaque-payments/internal/repository"
	"plaque-payments/internal/server"
	"plaque-payments/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := client.InitSqliteClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("init ledger database", zap.Error(err))
	}

	engineMetrics := metrics.NewEngineMetrics()
	directoryClient := client.NewPesepayClient(&cfg.Pesepay)
	storeClient := client.NewStoreClient(&cfg.Store)
	ledgerRepo := repository.NewLedgerRepository(db)

	checkoutService := service.NewCheckoutService(
		directoryClient,
		storeClient,
		ledgerRepo,
		engineMetrics,
		log,
		cfg.Checkout.SupportContact,
	)
	reconciler := service.NewReconciler(storeClient, ledgerRepo, engineMetrics, log)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if cfg.Poll.Interval > 0 && cfg.Store.ServiceToken != "" {
		go reconciler.RunPeriodic(rootCtx, cfg.Poll.Interval, credential.Static(cfg.Store.ServiceToken))
		log.Info("periodic reconciliation enabled", zap.Duration("interval", cfg.Poll.Interval))
	}

	srv := server.NewServer(checkoutService, reconciler, log)
	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")
	rootCancel()

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
