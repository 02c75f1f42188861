package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/mocks"
)

func reportLine(t *testing.T, r *Report, key string) ReportLine {
	t.Helper()
	for _, l := range r.Lines {
		if l.Key == key {
			return l
		}
	}
	t.Fatalf("no report line %q", key)
	return ReportLine{}
}

func TestReportService_Generate(t *testing.T) {
	store := mocks.NewSnapshotStore()
	save := func(f entities.SnapshotFlags) {
		f.RevisionID = 1
		require.NoError(t, store.SaveSnapshot(t.Context(), &f))
	}
	save(entities.SnapshotFlags{CompanyID: 1, HasBo: true, HasBoPersons: true, HasOnlyPersonsBo: true, HasSamePersonAsBoAndHead: true})
	save(entities.SnapshotFlags{CompanyID: 2, HasBo: true, HasBoCompanies: true, AllBoCountries: []string{"кіпр"}})
	save(entities.SnapshotFlags{CompanyID: 3, HasOnlyPersonsFounder: true, HasChangesInOwnership: true})
	save(entities.SnapshotFlags{CompanyID: 4, HasBo: true, AllBoCountries: []string{"кіпр", "беліз"}})
	save(entities.SnapshotFlags{CompanyID: 5, NotPresentInRevision: true, HasBo: true})
	require.NoError(t, store.SaveSnapshot(t.Context(), &entities.SnapshotFlags{CompanyID: 6, RevisionID: 2, HasBo: true}))

	svc := NewReportService(mocks.NewFactStore(), store)
	report, err := svc.Generate(t.Context(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Companies)
	assert.Len(t, report.Lines, len(reportPredicates)+1)

	withBo := reportLine(t, report, "with_bo")
	assert.Equal(t, 3, withBo.Count)
	assert.Equal(t, []entities.CompanyID{1, 2}, withBo.Sample)

	assert.Equal(t, 1, reportLine(t, report, "only_persons_bo_same_head").Count)
	assert.Equal(t, 1, reportLine(t, report, "only_persons_founder_no_bo").Count)
	assert.Equal(t, 1, reportLine(t, report, "changes_in_founders_not_bo").Count)
	assert.Zero(t, reportLine(t, report, "changes_in_bo").Count)

	foreign := reportLine(t, report, "foreign_bo")
	assert.Equal(t, 2, foreign.Count)
	assert.Equal(t, map[string]int{"кіпр": 2, "беліз": 1}, foreign.Breakdown)
}

func TestReportService_Export(t *testing.T) {
	facts := mocks.NewFactStore()
	facts.AddRecord(companyRecord(2, "c", registered, "", 1))
	store := mocks.NewSnapshotStore()
	require.NoError(t, store.SaveSnapshot(t.Context(), &entities.SnapshotFlags{CompanyID: 1, RevisionID: 1, HasBo: true}))
	svc := NewReportService(facts, store)

	rows, err := svc.Export(t.Context(), 1, []entities.CompanyID{3, 1, 2, 1})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, ExportOK, rows[0].Status)
	require.NotNil(t, rows[0].Flags)
	assert.True(t, rows[0].Flags.HasBo)
	assert.Equal(t, ExportNotComputed, rows[1].Status)
	assert.Nil(t, rows[1].Flags)
	assert.Equal(t, ExportNotFound, rows[2].Status)
}

func TestReportService_ExportAll(t *testing.T) {
	store := mocks.NewSnapshotStore()
	for _, id := range []entities.CompanyID{2, 1} {
		require.NoError(t, store.SaveSnapshot(t.Context(), &entities.SnapshotFlags{CompanyID: id, RevisionID: 1}))
	}
	svc := NewReportService(mocks.NewFactStore(), store)

	rows, err := svc.Export(t.Context(), 1, nil)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, entities.CompanyID(1), rows[0].CompanyID)
	assert.Equal(t, entities.CompanyID(2), rows[1].CompanyID)
}
