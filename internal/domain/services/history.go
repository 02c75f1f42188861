package services

import (
	"context"
	"fmt"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// HistoryService exposes a company's grouped fact history and its
// snapshot records.
type HistoryService struct {
	facts     ports.FactStore
	snapshots ports.SnapshotStore
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(facts ports.FactStore, snapshots ports.SnapshotStore) *HistoryService {
	return &HistoryService{facts: facts, snapshots: snapshots}
}

func (s *HistoryService) timeline(ctx context.Context) (*Timeline, error) {
	revisions, err := s.facts.ListRevisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading revisions: %w", err)
	}
	return NewTimeline(revisions), nil
}

// CompanyPeriods groups the company's record history.
func (s *HistoryService) CompanyPeriods(
	ctx context.Context,
	companyID entities.CompanyID,
) ([]entities.Period[entities.CompanyRecord], error) {
	timeline, err := s.timeline(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.facts.CompanyRecords(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading company records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %d", entities.ErrCompanyNotFound, companyID)
	}
	return Group(timeline, CompanyRecordsByRevision(records), RecordHash, ByStatusPriority)
}

// PersonPeriods groups the company's person history, restricted to the
// given roles when any are passed.
func (s *HistoryService) PersonPeriods(
	ctx context.Context,
	companyID entities.CompanyID,
	roles ...entities.Role,
) ([]entities.Period[entities.Roster], error) {
	timeline, err := s.timeline(ctx)
	if err != nil {
		return nil, err
	}
	persons, err := s.facts.Persons(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading persons: %w", err)
	}
	return Group(timeline, RostersByRevision(persons, roles...), RosterHash, SingleRoster)
}

// Snapshots returns every SnapshotFlags record of the company ordered by revision.
func (s *HistoryService) Snapshots(ctx context.Context, companyID entities.CompanyID) ([]entities.SnapshotFlags, error) {
	flags, err := s.snapshots.ListSnapshots(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return flags, nil
}
