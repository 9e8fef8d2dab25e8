// Package bootstrap wires the infrastructure adapters into the use cases
// for both binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/adapters/http"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/config"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/ports"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/usecase"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/infrastructure/llm/gemini"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/infrastructure/queue/nats"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/infrastructure/repository/postgres"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/infrastructure/resilience"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/infrastructure/vector/qdrant"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/observability/metrics"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/redact"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/retrieval/hybrid"
)

const serviceAPI = "faq-api"

// SwappableRetriever holds the retriever built over the current corpus
// snapshot and swaps it atomically when a reindex event arrives. Requests
// in flight keep the retriever they resolved.
type SwappableRetriever struct {
	current atomic.Pointer[hybrid.Retriever]
}

func (s *SwappableRetriever) Retriever() ports.Retriever {
	return s.current.Load()
}

func (s *SwappableRetriever) swap(r *hybrid.Retriever) {
	s.current.Store(r)
}

// App is the wired API server.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Handler http.Handler
	Metrics *metrics.ServerMetrics

	queue      *nats.Queue
	retrievers *SwappableRetriever
	repo       *postgres.PassageRepository
	embedder   *gemini.Embedder
	vectors    *qdrant.Client

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewPassageRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init reindex queue: %w", err)
	}

	executor := resilience.NewExecutorWithLogger(resilience.DefaultConfig(), logger)
	geminiClient, err := gemini.New(ctx, gemini.Config{
		APIKey:     cfg.GeminiAPIKey,
		GenModel:   cfg.GeminiGenModel,
		EmbedModel: cfg.GeminiEmbedModel,
		EmbedDim:   cfg.EmbeddingDim,
		Executor:   executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	embedder := gemini.NewEmbedder(geminiClient)
	model := gemini.NewModelClient(geminiClient)

	vectors := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	serverMetrics := metrics.NewServerMetrics(serviceAPI)

	app := &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    serverMetrics,
		queue:      queue,
		retrievers: &SwappableRetriever{},
		repo:       repo,
		embedder:   embedder,
		vectors:    vectors,
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}

	if err := app.RebuildRetriever(ctx); err != nil {
		return nil, fmt.Errorf("build initial retriever: %w", err)
	}

	askUC := usecase.NewAskUseCase(
		redact.New(),
		model,
		app.retrievers,
		logger,
		usecase.AskConfig{
			TopK:            cfg.TopK,
			RelaxMinResults: cfg.RelaxMinResults,
			Observer:        serverMetrics.Pipeline(serviceAPI),
		},
	)

	router := httpadapter.NewRouter(askUC, httpadapter.Options{
		APIKey:         cfg.APIKey,
		RateLimitRPS:   cfg.APIRateLimitRPS,
		RateLimitBurst: cfg.APIRateLimitBurst,
		MaxInFlight:    cfg.APIMaxInFlight,
		QueueTimeout:   200 * time.Millisecond,
		MetricsHandler: serverMetrics.Handler(),
		Instrument: func(next http.Handler) http.Handler {
			return serverMetrics.Middleware(serviceAPI, next)
		},
	})
	app.Handler = router.Handler()

	return app, nil
}

// RebuildRetriever loads the current corpus snapshot and swaps in a fresh
// hybrid retriever. An empty corpus yields a retriever that answers from
// semantic search alone.
func (a *App) RebuildRetriever(ctx context.Context) error {
	corpus, err := a.repo.ListAll(ctx)
	if err != nil {
		a.Metrics.RecordRetrieverSwap(serviceAPI, err)
		return fmt.Errorf("load corpus snapshot: %w", err)
	}

	retriever := hybrid.New(a.embedder, a.vectors, corpus, hybrid.Config{
		VectorWeight: a.Config.VectorWeight,
		BM25Weight:   a.Config.BM25Weight,
	})
	a.retrievers.swap(retriever)
	a.Metrics.RecordRetrieverSwap(serviceAPI, nil)
	a.Logger.Info("retriever rebuilt", "passages", len(corpus))
	return nil
}

// ListenReindexEvents blocks, rebuilding the retriever for every published
// snapshot until the context is canceled.
func (a *App) ListenReindexEvents(ctx context.Context) error {
	return a.queue.SubscribeReindexRequested(ctx, func(ctx context.Context, snapshotID string) error {
		a.Logger.Info("reindex event received", "snapshot_id", snapshotID)
		return a.RebuildRetriever(ctx)
	})
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// IndexerApp is the wired one-shot corpus indexer.
type IndexerApp struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.IndexerMetrics

	ReindexUC ports.CorpusIndexer

	closeFn func()
}

func NewIndexer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*IndexerApp, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewPassageRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init reindex queue: %w", err)
	}

	executor := resilience.NewExecutorWithLogger(resilience.DefaultConfig(), logger)
	geminiClient, err := gemini.New(ctx, gemini.Config{
		APIKey:     cfg.GeminiAPIKey,
		GenModel:   cfg.GeminiGenModel,
		EmbedModel: cfg.GeminiEmbedModel,
		EmbedDim:   cfg.EmbeddingDim,
		Executor:   executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}

	vectors := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	reindexUC := usecase.NewReindexUseCase(
		repo,
		gemini.NewEmbedder(geminiClient),
		vectors,
		queue,
		logger,
		0,
	)

	return &IndexerApp{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.NewIndexerMetrics("faq-indexer"),
		ReindexUC: reindexUC,
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *IndexerApp) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
