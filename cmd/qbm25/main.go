package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qbm25/internal/config"
	dbRedis "github.com/kailas-cloud/qbm25/internal/db/redis"
	logpkg "github.com/kailas-cloud/qbm25/internal/logger"
	"github.com/kailas-cloud/qbm25/internal/metrics"
	cataloguerepo "github.com/kailas-cloud/qbm25/internal/repository/catalogue"
	collectionrepo "github.com/kailas-cloud/qbm25/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/qbm25/internal/repository/document"
	"github.com/kailas-cloud/qbm25/internal/repository/keyspace"
	searchrepo "github.com/kailas-cloud/qbm25/internal/repository/search"
	chiTransport "github.com/kailas-cloud/qbm25/internal/transport/chi"
	batchuc "github.com/kailas-cloud/qbm25/internal/usecase/batch"
	catalogueuc "github.com/kailas-cloud/qbm25/internal/usecase/catalogue"
	collectionuc "github.com/kailas-cloud/qbm25/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/qbm25/internal/usecase/document"
	healthuc "github.com/kailas-cloud/qbm25/internal/usecase/health"
	scoreuc "github.com/kailas-cloud/qbm25/internal/usecase/score"
	"github.com/kailas-cloud/qbm25/internal/usecase/script"
	searchuc "github.com/kailas-cloud/qbm25/internal/usecase/search"
	"github.com/kailas-cloud/qbm25/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting qbm25 API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("key_prefix", cfg.Storage.KeyPrefix),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	keys := keyspace.New(cfg.Storage.KeyPrefix)
	collRepo := collectionrepo.New(store, keys).WithIndexOptions(collectionrepo.IndexOptions{
		Language:  cfg.Storage.Language,
		Stopwords: cfg.Storage.Stopwords,
	})
	docRepo := documentrepo.New(store, keys)
	searchRepo := searchrepo.New(store, keys)
	catRepo := cataloguerepo.New(store, keys)

	scripts := script.Default()
	recorder := metrics.MustScoring(prometheus.DefaultRegisterer)

	svc := chiTransport.Services{
		Collections: collectionuc.New(collRepo, docRepo),
		Documents: documentuc.New(docRepo, collRepo).
			WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize),
		Batch:     batchuc.New(docRepo, collRepo).WithMaxBatchSize(cfg.Search.MaxBatchSize),
		Search:    searchuc.New(searchRepo, collRepo, scripts, recorder, cfg.Scoring.Workers, logger),
		Score:     scoreuc.New(scripts, recorder, logger),
		Catalogue: catalogueuc.New(catRepo, collRepo, logger),
		Health:    healthuc.New(store, scripts),
	}
	logger.Info("Scripts registered", zap.Strings("scripts", scripts.Names()))

	server := chiTransport.NewServer(svc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:      cfg.Auth.APIKeys,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
