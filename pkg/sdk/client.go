package qbm25

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/qbm25/internal/db"
	dbRedis "github.com/kailas-cloud/qbm25/internal/db/redis"
	dombatch "github.com/kailas-cloud/qbm25/internal/domain/batch"
	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
	"github.com/kailas-cloud/qbm25/internal/domain/search/request"
	"github.com/kailas-cloud/qbm25/internal/domain/search/result"
	"github.com/kailas-cloud/qbm25/internal/metrics"
	cataloguerepo "github.com/kailas-cloud/qbm25/internal/repository/catalogue"
	collectionrepo "github.com/kailas-cloud/qbm25/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/qbm25/internal/repository/document"
	"github.com/kailas-cloud/qbm25/internal/repository/keyspace"
	searchrepo "github.com/kailas-cloud/qbm25/internal/repository/search"
	batchuc "github.com/kailas-cloud/qbm25/internal/usecase/batch"
	catalogueuc "github.com/kailas-cloud/qbm25/internal/usecase/catalogue"
	collectionuc "github.com/kailas-cloud/qbm25/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/qbm25/internal/usecase/document"
	healthuc "github.com/kailas-cloud/qbm25/internal/usecase/health"
	scoreuc "github.com/kailas-cloud/qbm25/internal/usecase/score"
	"github.com/kailas-cloud/qbm25/internal/usecase/script"
	searchuc "github.com/kailas-cloud/qbm25/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type collectionUseCase interface {
	Create(ctx context.Context, name string) (domcol.Collection, error)
	Get(ctx context.Context, name string) (domcol.Collection, error)
	Describe(ctx context.Context, name string) (collectionuc.Info, error)
	List(ctx context.Context) ([]domcol.Collection, error)
	Delete(ctx context.Context, name string) error
}

type documentUseCase interface {
	Upsert(ctx context.Context, col string, doc *domdoc.Document) (bool, error)
	Get(ctx context.Context, col, id string) (domdoc.Document, error)
	List(ctx context.Context, col, cursor string, limit int) ([]domdoc.Document, string, error)
	Delete(ctx context.Context, col, id string) error
	Count(ctx context.Context, col string) (int, error)
}

type batchUseCase interface {
	Upsert(ctx context.Context, col string, items []batchuc.Item) ([]dombatch.Result, error)
}

type searchUseCase interface {
	Search(ctx context.Context, col string, req *request.Request) ([]result.Result, error)
}

type scoreUseCase interface {
	Score(
		ctx context.Context, lang, source string, params map[string]any, items []scoreuc.Item,
	) ([]scoreuc.Scored, error)
	Scripts() []string
}

type catalogueUseCase interface {
	Units(ctx context.Context, col string) ([]string, error)
	Rebuild(ctx context.Context, col string) ([]string, error)
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the qbm25 SDK entry point.
type Client struct {
	store     db.Store
	collSvc   collectionUseCase
	docSvc    documentUseCase
	batchSvc  batchUseCase
	searchSvc searchUseCase
	scoreSvc  scoreUseCase
	catSvc    catalogueUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a qbm25 Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("qbm25: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("qbm25: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("qbm25: database not ready: %w", err)
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	// scoring metrics only exist when the caller asked for Prometheus;
	// a nil *metrics.Scoring records nothing
	var rec *metrics.Scoring
	if cfg.metricsReg != nil {
		rec, err = metrics.NewScoring(cfg.metricsReg)
		if err != nil {
			return nil, fmt.Errorf("qbm25: %w", err)
		}
	}

	keys := keyspace.New(cfg.keyPrefix)
	collRepo := collectionrepo.New(store, keys)
	if cfg.language != "" || cfg.stopwords != nil {
		collRepo = collRepo.WithIndexOptions(collectionrepo.IndexOptions{
			Language:  cfg.language,
			Stopwords: cfg.stopwords,
		})
	}
	docRepo := documentrepo.New(store, keys)
	searchRepo := searchrepo.New(store, keys)
	catRepo := cataloguerepo.New(store, keys)

	scripts := script.Default()

	batchSvc := batchuc.New(docRepo, collRepo)
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}

	return &Client{
		store:     store,
		collSvc:   collectionuc.New(collRepo, docRepo),
		docSvc:    documentuc.New(docRepo, collRepo),
		batchSvc:  batchSvc,
		searchSvc: searchuc.New(searchRepo, collRepo, scripts, rec, cfg.workers, nil),
		scoreSvc:  scoreuc.New(scripts, rec, nil),
		catSvc:    catalogueuc.New(catRepo, collRepo, nil),
		healthSvc: healthuc.New(store, scripts),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Collections returns the collection management service.
func (c *Client) Collections() *CollectionService {
	return &CollectionService{svc: c.collSvc, units: c.catSvc, obs: c.obs}
}

// Documents returns the document service for a given collection.
func (c *Client) Documents(collection string) *DocumentService {
	return &DocumentService{
		collection: collection,
		docSvc:     c.docSvc,
		batchSvc:   c.batchSvc,
		obs:        c.obs,
	}
}

// Search starts a query against a given collection.
func (c *Client) Search(collection string) *SearchBuilder {
	return &SearchBuilder{collection: collection, svc: c.searchSvc, obs: c.obs}
}

// Scripts lists the registered rescoring scripts.
func (c *Client) Scripts() []string {
	return c.scoreSvc.Scripts()
}

// Score runs a script over items without touching storage. Items whose attributes
// cannot be paired keep their normalized score and report outcome "mismatch".
func (c *Client) Score(ctx context.Context, s Script, items []ScoreItem) (_ []ScoreResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("score", start, err) }()

	scored, err := c.scoreSvc.Score(ctx, s.Lang, s.Source, s.Params, toScoreItems(items))
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	return fromScored(scored), nil
}
