package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dchaplinsky/edrdr/internal/application/handlers"
	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/domain/services"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/cache"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/config"
	embedder "github.com/dchaplinsky/edrdr/internal/infrastructure/embedder/openai"
	llm "github.com/dchaplinsky/edrdr/internal/infrastructure/llm/openai"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/metrics"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/relationaldb/sqlite"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Registry *services.RegistryService
	History  *services.HistoryService
	Reports  *services.ReportService
	Indexer  *services.MassRegistrationIndexer
	Computer *services.SnapshotComputer
	Batch    *services.BatchRunner
	Lists    *handlers.ListsHandler
}

// internalDeps holds all dependencies including low-level components.
type internalDeps struct {
	Deps
	db *sqlite.Repository
}

// workspaceDir returns the --dir flag or the current directory.
func workspaceDir() (string, error) {
	if globalDir != "" {
		return globalDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}

// newLogger builds the stderr text logger at the configured level.
func newLogger(level string) (*slog.Logger, error) {
	if globalLogLevel != "" {
		level = globalLogLevel
	}
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// withDeps loads config and builds dependencies, then calls the provided function.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	return withInternalDeps(ctx, func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including the database.
func withInternalDeps(ctx context.Context, fn func(*internalDeps) error) error {
	dir, err := workspaceDir()
	if err != nil {
		return err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}

	db, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	m := metrics.New()
	computer := services.NewSnapshotComputer(db, db, services.NewMatcher(cfg.Matching),
		services.WithWatchList(db),
		services.WithOwnershipChain(db),
		services.WithCharterCapital(db),
		services.WithMetrics(m),
		services.WithLogger(logger),
	)
	indexer, err := services.NewMassRegistrationIndexer(db, cfg.Snapshot.MassCacheSize)
	if err != nil {
		return fmt.Errorf("creating mass registration index: %w", err)
	}
	registry := services.NewRegistryService(db, db, db, db, db, db)

	deps := &internalDeps{
		Deps: Deps{
			Config:   cfg,
			Logger:   logger,
			Metrics:  m,
			Registry: registry,
			History:  services.NewHistoryService(db, db),
			Reports:  services.NewReportService(db, db),
			Indexer:  indexer,
			Computer: computer,
			Batch:    services.NewBatchRunner(db, db, db, indexer, computer, logger),
			Lists:    handlers.NewListsHandler(registry),
		},
		db: db,
	}

	return fn(deps)
}

// withImportHandler builds the import handler. With extract set, the OpenAI
// extractor is wired behind an in-process cache and, when configured, Redis.
func withImportHandler(ctx context.Context, extract bool, fn func(*handlers.ImportHandler) error) error {
	return withInternalDeps(ctx, func(d *internalDeps) error {
		if !extract {
			svc := services.NewImportService(d.db, d.db, d.db, nil, nil, d.Logger)
			return fn(handlers.NewImportHandler(svc))
		}

		extractor, err := llm.NewClient(d.Config.LLM)
		if err != nil {
			return fmt.Errorf("creating extraction client: %w", err)
		}

		var backing ports.ExtractionCache
		rc, err := cache.NewRedisCache(ctx, d.Config.Redis)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		if rc != nil {
			defer rc.Close()
			backing = rc
		}
		memo, err := cache.NewMemoryCache(cache.DefaultMemorySize, backing)
		if err != nil {
			return err
		}

		svc := services.NewImportService(d.db, d.db, d.db, extractor, memo, d.Logger)
		return fn(handlers.NewImportHandler(svc))
	})
}

// withSearch connects the embedder and the search index. With rebuild set
// the collection is dropped first.
func withSearch(ctx context.Context, rebuild bool, fn func(*Deps, *services.IndexService, *qdrant.Repository) error) error {
	return withInternalDeps(ctx, func(d *internalDeps) error {
		emb, err := embedder.NewEmbedder(d.Config.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		repo, err := qdrant.NewRepository(d.Config.Qdrant, d.Config.CollectionName(indexDataset))
		if err != nil {
			return fmt.Errorf("creating qdrant repository: %w", err)
		}
		defer repo.Close()

		if rebuild {
			if err := repo.DeleteCollection(ctx); err != nil {
				return err
			}
		}
		if err := repo.EnsureCollection(ctx, emb.Dimensions()); err != nil {
			return fmt.Errorf("ensuring collection: %w", err)
		}

		return fn(&d.Deps, services.NewIndexService(d.db, d.db, emb, repo), repo)
	})
}

// resolveRevision returns id, or the latest accepted revision when id is zero.
func resolveRevision(ctx context.Context, d *Deps, id int64) (entities.RevisionID, error) {
	if id != 0 {
		return entities.RevisionID(id), nil
	}
	reports, err := d.Registry.Revisions(ctx)
	if err != nil {
		return 0, err
	}
	revisions := make([]entities.Revision, 0, len(reports))
	for _, r := range reports {
		revisions = append(revisions, r.Revision)
	}
	latest, ok := services.NewTimeline(revisions).Latest()
	if !ok {
		return 0, fmt.Errorf("%w: no accepted revisions", entities.ErrRevisionNotFound)
	}
	return latest.ID, nil
}
