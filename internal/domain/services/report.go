package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// DefaultSampleSize is how many company IDs a report line lists.
const DefaultSampleSize = 10

// ReportLine is one counted property of the companies at a revision.
type ReportLine struct {
	Key         string               `json:"key"`
	Description string               `json:"description"`
	Count       int                  `json:"count"`
	Sample      []entities.CompanyID `json:"sample,omitempty"`
	Breakdown   map[string]int       `json:"breakdown,omitempty"`
}

// Report summarizes the snapshots of one revision.
type Report struct {
	RevisionID entities.RevisionID `json:"revision_id"`
	Companies  int                 `json:"companies"`
	Lines      []ReportLine        `json:"lines"`
}

type reportPredicate struct {
	key, description string
	match            func(entities.SnapshotFlags) bool
}

var reportPredicates = []reportPredicate{
	{"with_bo", "Companies with a beneficial owner", func(f entities.SnapshotFlags) bool { return f.HasBo }},
	{"with_bo_person", "Companies with a natural person as beneficial owner", func(f entities.SnapshotFlags) bool { return f.HasBoPersons }},
	{"with_bo_company", "Companies with a legal entity as beneficial owner", func(f entities.SnapshotFlags) bool { return f.HasBoCompanies }},
	{"with_dereferenced_bo", "Companies whose beneficial owner was dereferenced", func(f entities.SnapshotFlags) bool { return f.HasDereferencedBo }},
	{"only_persons_founder_no_bo", "Only natural persons as founders and no beneficial owner", func(f entities.SnapshotFlags) bool {
		return f.HasOnlyPersonsFounder && !f.HasBo
	}},
	{"only_company_founder_no_bo", "Only legal entities as founders and no beneficial owner", func(f entities.SnapshotFlags) bool {
		return f.HasOnlyCompaniesFounder && !f.HasBo
	}},
	{"only_persons_bo_same_head", "Only natural persons as beneficial owners, one of them is the head", func(f entities.SnapshotFlags) bool {
		return f.HasOnlyPersonsBo && f.HasSamePersonAsBoAndHead
	}},
	{"only_persons_bo_similar_head", "Only natural persons as beneficial owners, one of them resembles the head", func(f entities.SnapshotFlags) bool {
		return f.HasOnlyPersonsBo && f.HasVerySimilarPersonAsBoAndHead
	}},
	{"same_bo_and_founder", "Same person is beneficial owner and founder", func(f entities.SnapshotFlags) bool { return f.HasSamePersonAsBoAndFounder }},
	{"bo_in_crimea", "Beneficial owner in Crimea", func(f entities.SnapshotFlags) bool { return f.HasBoInCrimea }},
	{"bo_on_occupied_soil", "Beneficial owner on occupied territory", func(f entities.SnapshotFlags) bool { return f.HasBoOnOccupiedSoil }},
	{"changes_in_bo", "Beneficial owners changed", func(f entities.SnapshotFlags) bool { return f.HasChangesInBo }},
	{"changes_in_founders_not_bo", "Founders changed but beneficial owners did not", func(f entities.SnapshotFlags) bool {
		return f.HasChangesInOwnership && !f.HasChangesInBo
	}},
	{"changes_in_bo_not_founders", "Beneficial owners changed but founders did not", func(f entities.SnapshotFlags) bool {
		return f.HasChangesInBo && !f.HasChangesInOwnership
	}},
	{"acting_no_bo_stated", "Acting companies that explicitly state there is no beneficial owner", func(f entities.SnapshotFlags) bool {
		return f.IsActingAndExplicitlyStatedNoBo
	}},
	{"mass_registered", "Registered at a mass registration address", func(f entities.SnapshotFlags) bool { return f.IsMassRegistered }},
	{"pep_owner", "Declared politically exposed owner", func(f entities.SnapshotFlags) bool { return f.HasPepOwner }},
	{"pep_discrepancy", "Declared owner missing from the registry", func(f entities.SnapshotFlags) bool { return f.HasDiscrepancyWithDeclarations }},
	{"undeclared_pep_owner", "Undeclared politically exposed owner", func(f entities.SnapshotFlags) bool { return f.HasUndeclaredPepOwner }},
	{"self_owned", "Owns itself directly", func(f entities.SnapshotFlags) bool { return f.SelfOwned }},
	{"self_owned_indirect", "Owns itself through other companies", func(f entities.SnapshotFlags) bool { return f.SelfOwnedIndirect }},
}

// ExportRow is one company in an export. Status is "ok", "not_computed" or "not_found".
type ExportRow struct {
	CompanyID entities.CompanyID      `json:"company_id"`
	Status    string                  `json:"status"`
	Flags     *entities.SnapshotFlags `json:"flags,omitempty"`
}

// Export row statuses.
const (
	ExportOK          = "ok"
	ExportNotComputed = "not_computed"
	ExportNotFound    = "not_found"
)

// ReportService summarizes and exports computed snapshots.
type ReportService struct {
	facts     ports.FactStore
	snapshots ports.SnapshotStore
}

// NewReportService creates a new ReportService.
func NewReportService(facts ports.FactStore, snapshots ports.SnapshotStore) *ReportService {
	return &ReportService{facts: facts, snapshots: snapshots}
}

// Generate counts the companies matching each report predicate at the revision.
func (s *ReportService) Generate(ctx context.Context, revisionID entities.RevisionID, sampleSize int) (*Report, error) {
	flags, err := s.snapshots.ListSnapshotsAt(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	report := &Report{RevisionID: revisionID}
	for _, f := range flags {
		if !f.NotPresentInRevision {
			report.Companies++
		}
	}

	for _, p := range reportPredicates {
		line := ReportLine{Key: p.key, Description: p.description}
		for _, f := range flags {
			if f.NotPresentInRevision || !p.match(f) {
				continue
			}
			line.Count++
			if len(line.Sample) < sampleSize {
				line.Sample = append(line.Sample, f.CompanyID)
			}
		}
		report.Lines = append(report.Lines, line)
	}

	foreign := ReportLine{Key: "foreign_bo", Description: "Beneficial owners outside Ukraine", Breakdown: map[string]int{}}
	for _, f := range flags {
		if len(f.AllBoCountries) == 0 {
			continue
		}
		foreign.Count++
		if len(foreign.Sample) < sampleSize {
			foreign.Sample = append(foreign.Sample, f.CompanyID)
		}
		for _, c := range f.AllBoCountries {
			foreign.Breakdown[c]++
		}
	}
	report.Lines = append(report.Lines, foreign)

	return report, nil
}

// Export returns a row per company. Without explicit companies every
// snapshot of the revision is exported; requested companies without a
// snapshot are reported as not computed or not found instead of dropped.
func (s *ReportService) Export(
	ctx context.Context,
	revisionID entities.RevisionID,
	companies []entities.CompanyID,
) ([]ExportRow, error) {
	if len(companies) == 0 {
		flags, err := s.snapshots.ListSnapshotsAt(ctx, revisionID)
		if err != nil {
			return nil, fmt.Errorf("listing snapshots: %w", err)
		}
		rows := make([]ExportRow, 0, len(flags))
		for i := range flags {
			rows = append(rows, ExportRow{CompanyID: flags[i].CompanyID, Status: ExportOK, Flags: &flags[i]})
		}
		return rows, nil
	}

	ids := slices.Clone(companies)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	rows := make([]ExportRow, 0, len(ids))
	for _, id := range ids {
		f, err := s.snapshots.GetSnapshot(ctx, id, revisionID)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot of %d: %w", id, err)
		}
		if f != nil {
			rows = append(rows, ExportRow{CompanyID: id, Status: ExportOK, Flags: f})
			continue
		}
		records, err := s.facts.CompanyRecords(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading company %d: %w", id, err)
		}
		status := ExportNotComputed
		if len(records) == 0 {
			status = ExportNotFound
		}
		rows = append(rows, ExportRow{CompanyID: id, Status: status})
	}
	return rows, nil
}
