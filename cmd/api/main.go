package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	tclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/uzzysan/Klauzule-zakazane/internal/api"
	"github.com/uzzysan/Klauzule-zakazane/internal/config"
	"github.com/uzzysan/Klauzule-zakazane/internal/storage"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("postgres connect failed", zap.Error(err))
	}
	defer db.Close()

	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		logger.Fatal("temporal dial failed", zap.Error(err))
	}
	defer tc.Close()

	s := api.NewServer(cfg, db, tc, logger)
	logger.Info("api listening",
		zap.String("addr", cfg.APIAddr),
		zap.String("index_backend", cfg.IndexBackend))
	if err := http.ListenAndServe(cfg.APIAddr, s.Routes()); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}
