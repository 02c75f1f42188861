package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// BatchOptions selects what a batch run computes.
type BatchOptions struct {
	RevisionID entities.RevisionID
	Companies  []entities.CompanyID
	Force      bool
	Limit      int
	Workers    int
	MassCutoff int
}

// CompanyFailure is a company whose snapshot could not be computed.
type CompanyFailure struct {
	CompanyID entities.CompanyID `json:"company_id"`
	Error     string             `json:"error"`
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	RunID      string              `json:"run_id"`
	RevisionID entities.RevisionID `json:"revision_id"`
	Computed   int                 `json:"computed"`
	Failed     []CompanyFailure    `json:"failed,omitempty"`
	Cancelled  bool                `json:"cancelled"`
}

// BatchRunner computes snapshots for many companies in parallel.
type BatchRunner struct {
	facts    ports.FactStore
	watch    ports.WatchList
	audit    ports.AuditLog
	indexer  *MassRegistrationIndexer
	computer *SnapshotComputer
	logger   *slog.Logger
}

// NewBatchRunner creates a new BatchRunner. watch and audit may be nil.
func NewBatchRunner(
	facts ports.FactStore,
	watch ports.WatchList,
	audit ports.AuditLog,
	indexer *MassRegistrationIndexer,
	computer *SnapshotComputer,
	logger *slog.Logger,
) *BatchRunner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BatchRunner{
		facts:    facts,
		watch:    watch,
		audit:    audit,
		indexer:  indexer,
		computer: computer,
		logger:   logger,
	}
}

// Prepare builds the read-only inputs for a revision. A zero revision
// selects the latest accepted one.
func (b *BatchRunner) Prepare(
	ctx context.Context,
	revisionID entities.RevisionID,
	massCutoff int,
) (SnapshotInputs, entities.RevisionID, error) {
	revisions, err := b.facts.ListRevisions(ctx)
	if err != nil {
		return SnapshotInputs{}, 0, fmt.Errorf("loading revisions: %w", err)
	}
	timeline := NewTimeline(revisions)

	if revisionID == 0 {
		latest, ok := timeline.Latest()
		if !ok {
			return SnapshotInputs{}, 0, fmt.Errorf("%w: no accepted revisions", entities.ErrRevisionNotFound)
		}
		revisionID = latest.ID
	}
	if !timeline.Contains(revisionID) {
		return SnapshotInputs{}, 0, fmt.Errorf("%w: %d is not an accepted revision", entities.ErrRevisionNotFound, revisionID)
	}

	mass, err := b.indexer.AddressesAbove(ctx, revisionID, massCutoff)
	if err != nil {
		return SnapshotInputs{}, 0, fmt.Errorf("building mass registration index: %w", err)
	}

	var latestYear int
	if b.watch != nil {
		if latestYear, err = b.watch.LatestDeclarationYear(ctx); err != nil {
			return SnapshotInputs{}, 0, fmt.Errorf("loading declaration year: %w", err)
		}
	}

	return SnapshotInputs{Timeline: timeline, Mass: mass, LatestDeclarationYear: latestYear}, revisionID, nil
}

// Run computes snapshots for the selected companies. Each worker owns one
// company's read, compute and write cycle; a failing company is recorded
// and the run continues. Cancellation stops the run between companies.
func (b *BatchRunner) Run(ctx context.Context, opts BatchOptions) (*BatchResult, error) {
	in, revisionID, err := b.Prepare(ctx, opts.RevisionID, opts.MassCutoff)
	if err != nil {
		return nil, err
	}

	companies := opts.Companies
	if len(companies) == 0 {
		if companies, err = b.facts.CompanyIDsAt(ctx, revisionID); err != nil {
			return nil, fmt.Errorf("listing companies: %w", err)
		}
	}
	if opts.Limit > 0 && len(companies) > opts.Limit {
		companies = companies[:opts.Limit]
	}

	result := &BatchResult{RunID: uuid.NewString(), RevisionID: revisionID}
	logger := b.logger.With("run_id", result.RunID, "revision_id", revisionID)
	logger.InfoContext(ctx, "snapshot batch started", "companies", len(companies), "force", opts.Force)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))

	for _, companyID := range companies {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			_, err := b.computer.ComputeSnapshot(gctx, companyID, revisionID, opts.Force, in)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.ErrorContext(gctx, "snapshot failed", "company_id", companyID, "error", err)
				result.Failed = append(result.Failed, CompanyFailure{CompanyID: companyID, Error: err.Error()})
				return nil
			}
			result.Computed++
			if opts.Force && b.audit != nil {
				details := map[string]any{"run_id": result.RunID, "revision": int64(revisionID)}
				if err := b.audit.LogAction(gctx, entities.AuditSnapshotForced, companyID, details); err != nil {
					logger.WarnContext(gctx, "audit log failed", "company_id", companyID, "error", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.Cancelled = ctx.Err() != nil
	slices.SortFunc(result.Failed, func(a, b CompanyFailure) int { return cmp.Compare(a.CompanyID, b.CompanyID) })

	if b.audit != nil && !result.Cancelled {
		details := map[string]any{
			"run_id":   result.RunID,
			"revision": int64(revisionID),
			"computed": result.Computed,
			"failed":   len(result.Failed),
			"force":    opts.Force,
		}
		if err := b.audit.LogAction(ctx, entities.AuditSnapshotComputed, 0, details); err != nil {
			logger.WarnContext(ctx, "audit log failed", "error", err)
		}
	}

	logger.InfoContext(ctx, "snapshot batch finished",
		"computed", result.Computed,
		"failed", len(result.Failed),
		"cancelled", result.Cancelled,
	)
	return result, nil
}
