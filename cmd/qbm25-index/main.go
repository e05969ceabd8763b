// Command qbm25-index loads a CSV of documents into a fresh collection.
//
//	qbm25-index -collection products -file data.csv [-env local]
//
// The CSV needs a header row naming its columns: id, content, units and values.
// Rows without an id get a random UUID.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qbm25/internal/config"
	dbRedis "github.com/kailas-cloud/qbm25/internal/db/redis"
	logpkg "github.com/kailas-cloud/qbm25/internal/logger"
	collectionrepo "github.com/kailas-cloud/qbm25/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/qbm25/internal/repository/document"
	"github.com/kailas-cloud/qbm25/internal/repository/keyspace"
	batchuc "github.com/kailas-cloud/qbm25/internal/usecase/batch"
	collectionuc "github.com/kailas-cloud/qbm25/internal/usecase/collection"
)

func main() {
	var (
		collection = flag.String("collection", "", "target collection (dropped and recreated)")
		file       = flag.String("file", "", "path to the CSV file")
		env        = flag.String("env", config.GetEnv(), "config environment (local, dev, prod)")
		batchSize  = flag.Int("batch", 0, "rows per batch (default: search.max_batch_size)")
	)
	flag.Parse()

	if *collection == "" || *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*env, *collection, *file, *batchSize); err != nil {
		fmt.Fprintln(os.Stderr, "qbm25-index:", err)
		os.Exit(1)
	}
}

func run(env, collection, path string, batchSize int) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	keys := keyspace.New(cfg.Storage.KeyPrefix)
	collRepo := collectionrepo.New(store, keys).WithIndexOptions(collectionrepo.IndexOptions{
		Language:  cfg.Storage.Language,
		Stopwords: cfg.Storage.Stopwords,
	})
	docRepo := documentrepo.New(store, keys)

	batchSvc := batchuc.New(docRepo, collRepo).WithMaxBatchSize(cfg.Search.MaxBatchSize)
	if batchSize <= 0 || batchSize > batchSvc.MaxSize() {
		batchSize = batchSvc.MaxSize()
	}

	start := time.Now()
	ix := newIndexer(collectionuc.New(collRepo, docRepo), batchSvc, batchSize, logger)
	sum, err := ix.Run(ctx, collection, f)
	if err != nil {
		return err
	}

	logger.Info("Indexing finished",
		zap.String("collection", collection),
		zap.Int("created", sum.Created),
		zap.Int("updated", sum.Updated),
		zap.Int("failed", sum.Failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
