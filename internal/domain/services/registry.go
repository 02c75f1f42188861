package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/parsers"
)

// RevisionReport is a revision together with its fact counts.
type RevisionReport struct {
	entities.Revision
	ports.RevisionCounts
}

// RegistryService manages revisions and the external lists the snapshot
// computation reads.
type RegistryService struct {
	facts  ports.FactStore
	writer ports.FactWriter
	watch   ports.WatchList
	chain   ports.OwnershipChain
	capital ports.CapitalStore
	audit   ports.AuditLog
}

// NewRegistryService creates a new RegistryService. audit may be nil.
func NewRegistryService(
	facts ports.FactStore,
	writer ports.FactWriter,
	watch ports.WatchList,
	chain ports.OwnershipChain,
	capital ports.CapitalStore,
	audit ports.AuditLog,
) *RegistryService {
	return &RegistryService{facts: facts, writer: writer, watch: watch, chain: chain, capital: capital, audit: audit}
}

// AddRevision registers or updates a revision.
func (s *RegistryService) AddRevision(ctx context.Context, rev entities.Revision) error {
	if rev.ID <= 0 {
		return fmt.Errorf("revision id must be positive, got %d", rev.ID)
	}
	if rev.Created.IsZero() {
		return fmt.Errorf("revision %d: creation time is required", rev.ID)
	}
	if err := s.writer.SaveRevision(ctx, &rev); err != nil {
		return fmt.Errorf("saving revision: %w", err)
	}
	return nil
}

// Revisions lists every registered revision in timeline order with its fact
// counts. Revisions outside the timeline follow the accepted ones.
func (s *RegistryService) Revisions(ctx context.Context) ([]RevisionReport, error) {
	revisions, err := s.facts.ListRevisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading revisions: %w", err)
	}
	stats, err := s.writer.RevisionStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting facts: %w", err)
	}

	timeline := NewTimeline(revisions)
	out := make([]RevisionReport, 0, len(revisions))
	for _, r := range timeline.Revisions() {
		out = append(out, RevisionReport{Revision: r, RevisionCounts: stats[r.ID]})
	}
	var rest []entities.Revision
	for _, r := range revisions {
		if !timeline.Contains(r.ID) {
			rest = append(rest, r)
		}
	}
	slices.SortFunc(rest, func(a, b entities.Revision) int {
		if a.Before(b) {
			return -1
		}
		if b.Before(a) {
			return 1
		}
		return 0
	})
	for _, r := range rest {
		out = append(out, RevisionReport{Revision: r, RevisionCounts: stats[r.ID]})
	}
	return out, nil
}

// BrokenRevisions returns accepted revisions with fewer than minRecords
// company records or persons, usually a sign of a truncated dump.
func (s *RegistryService) BrokenRevisions(ctx context.Context, minRecords int) ([]RevisionReport, error) {
	all, err := s.Revisions(ctx)
	if err != nil {
		return nil, err
	}
	var broken []RevisionReport
	for _, r := range all {
		if !r.Accepted() {
			continue
		}
		if r.Companies < minRecords || r.Persons < minRecords {
			broken = append(broken, r)
		}
	}
	return broken, nil
}

// LoadWatchList replaces the watch-list. Rows naming unknown companies or
// roles are skipped and reported.
func (s *RegistryService) LoadWatchList(ctx context.Context, rows []parsers.RawWatchEntry) (int, []ImportError, error) {
	known := s.companyLookup(ctx)
	var (
		entries []entities.WatchEntry
		errs    []ImportError
	)
	for _, row := range rows {
		role, err := entities.ParseRole(row.Role)
		if err != nil {
			errs = append(errs, ImportError{Line: row.LineNum, Field: "person_type", Value: row.Role, Message: err.Error()})
			continue
		}
		if strings.TrimSpace(row.Name) == "" {
			errs = append(errs, ImportError{Line: row.LineNum, Field: "pep", Message: "missing required field: pep"})
			continue
		}
		ok, err := known(entities.CompanyID(row.CompanyID))
		if err != nil {
			return 0, nil, err
		}
		if !ok {
			errs = append(errs, ImportError{
				Line:    row.LineNum,
				Field:   "edrpou",
				Value:   fmt.Sprint(row.CompanyID),
				Message: fmt.Sprintf("company %d not found", row.CompanyID),
			})
			continue
		}
		entries = append(entries, entities.WatchEntry{
			CompanyID:       entities.CompanyID(row.CompanyID),
			Name:            strings.TrimSpace(row.Name),
			Years:           row.Years,
			URL:             row.URL,
			FromDeclaration: row.FromDeclaration,
			Role:            role,
		})
	}

	if err := s.watch.ReplaceWatchList(ctx, entries); err != nil {
		return 0, nil, fmt.Errorf("saving watch-list: %w", err)
	}
	s.logAction(ctx, entities.AuditWatchListLoaded, len(entries), len(errs))
	return len(entries), errs, nil
}

// LoadOwnershipLinks replaces the company-to-company ownership links.
func (s *RegistryService) LoadOwnershipLinks(ctx context.Context, rows []parsers.RawOwnershipLink) (int, []ImportError, error) {
	known := s.companyLookup(ctx)
	var (
		links []entities.OwnershipLink
		errs  []ImportError
	)
	for _, row := range rows {
		if row.OwnerID <= 0 {
			errs = append(errs, ImportError{Line: row.LineNum, Field: "owner", Message: "missing required field: owner"})
			continue
		}
		ok, err := known(entities.CompanyID(row.CompanyID))
		if err != nil {
			return 0, nil, err
		}
		if !ok {
			errs = append(errs, ImportError{
				Line:    row.LineNum,
				Field:   "edrpou",
				Value:   fmt.Sprint(row.CompanyID),
				Message: fmt.Sprintf("company %d not found", row.CompanyID),
			})
			continue
		}
		links = append(links, entities.OwnershipLink{
			CompanyID:   entities.CompanyID(row.CompanyID),
			OwnerID:     entities.CompanyID(row.OwnerID),
			Description: row.Description,
		})
	}

	if err := s.chain.ReplaceOwnershipLinks(ctx, links); err != nil {
		return 0, nil, fmt.Errorf("saving ownership links: %w", err)
	}
	s.logAction(ctx, entities.AuditOwnershipLoaded, len(links), len(errs))
	return len(links), errs, nil
}

// LoadCharterCapital replaces the stored charter capital. Codes lose their
// leading zeros; rows with a bad code or amount, or naming an unknown
// company, are skipped and reported. Non-positive amounts are ignored.
func (s *RegistryService) LoadCharterCapital(ctx context.Context, rows []parsers.RawCharterCapital) (int, []ImportError, error) {
	known := s.companyLookup(ctx)
	var (
		amounts []entities.CharterCapital
		errs    []ImportError
	)
	for _, row := range rows {
		code := strings.TrimLeft(row.Code, "0")
		id, err := strconv.ParseInt(code, 10, 64)
		if err != nil || id <= 0 {
			errs = append(errs, ImportError{Line: row.LineNum, Field: "code", Value: row.Code, Message: "cannot identify company by code"})
			continue
		}
		amount, err := strconv.ParseFloat(strings.Replace(row.Capital, ",", ".", 1), 64)
		if err != nil {
			errs = append(errs, ImportError{Line: row.LineNum, Field: "capital", Value: row.Capital, Message: "invalid amount"})
			continue
		}
		if amount <= 0 {
			continue
		}
		ok, err := known(entities.CompanyID(id))
		if err != nil {
			return 0, nil, err
		}
		if !ok {
			errs = append(errs, ImportError{
				Line:    row.LineNum,
				Field:   "code",
				Value:   row.Code,
				Message: fmt.Sprintf("company %d not found", id),
			})
			continue
		}
		amounts = append(amounts, entities.CharterCapital{CompanyID: entities.CompanyID(id), Amount: amount})
	}

	if err := s.capital.ReplaceCharterCapital(ctx, amounts); err != nil {
		return 0, nil, fmt.Errorf("saving charter capital: %w", err)
	}
	s.logAction(ctx, entities.AuditCapitalLoaded, len(amounts), len(errs))
	return len(amounts), errs, nil
}

func (s *RegistryService) companyLookup(ctx context.Context) func(entities.CompanyID) (bool, error) {
	seen := make(map[entities.CompanyID]bool)
	return func(id entities.CompanyID) (bool, error) {
		if ok, cached := seen[id]; cached {
			return ok, nil
		}
		records, err := s.facts.CompanyRecords(ctx, id)
		if err != nil {
			return false, fmt.Errorf("looking up company %d: %w", id, err)
		}
		seen[id] = len(records) > 0
		return seen[id], nil
	}
}

func (s *RegistryService) logAction(ctx context.Context, action string, loaded, rejected int) {
	if s.audit == nil {
		return
	}
	_ = s.audit.LogAction(ctx, action, 0, map[string]any{"loaded": loaded, "rejected": rejected})
}
