package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

func groupRecords(t *testing.T, tl *Timeline, records ...entities.CompanyRecord) []entities.Period[entities.CompanyRecord] {
	t.Helper()
	periods, err := Group(tl, CompanyRecordsByRevision(records), RecordHash, ByStatusPriority)
	require.NoError(t, err)
	return periods
}

func spans[F any](periods []entities.Period[F]) [][3]any {
	out := make([][3]any, 0, len(periods))
	for _, p := range periods {
		out = append(out, [3]any{p.Start, p.End, p.Hash})
	}
	return out
}

func TestGroup_HashChangeStartsNewPeriod(t *testing.T) {
	tl := NewTimeline(revisions(1, 2, 3))
	periods := groupRecords(t, tl,
		companyRecord(100, "H1", registered, "", 1, 2),
		companyRecord(100, "H2", registered, "", 3),
	)

	assert.Equal(t, [][3]any{
		{entities.RevisionID(1), entities.RevisionID(2), "H1"},
		{entities.RevisionID(3), entities.RevisionID(3), "H2"},
	}, spans(periods))
}

func TestGroup_GapBreaksPeriodWithSameHash(t *testing.T) {
	tl := NewTimeline(revisions(1, 2, 3))
	periods := groupRecords(t, tl, companyRecord(100, "H1", registered, "", 1, 3))

	assert.Equal(t, [][3]any{
		{entities.RevisionID(1), entities.RevisionID(1), "H1"},
		{entities.RevisionID(3), entities.RevisionID(3), "H1"},
	}, spans(periods))
}

func TestGroup_LeadingAndTrailingGapsProduceNoPeriods(t *testing.T) {
	tl := NewTimeline(revisions(1, 2, 3, 4, 5))
	periods := groupRecords(t, tl, companyRecord(100, "H1", registered, "", 2, 3))

	require.Len(t, periods, 1)
	assert.Equal(t, entities.RevisionID(2), periods[0].Start)
	assert.Equal(t, entities.RevisionID(3), periods[0].End)
}

func TestGroup_Empty(t *testing.T) {
	periods, err := Group(NewTimeline(revisions(1, 2)), map[entities.RevisionID][]entities.CompanyRecord{}, RecordHash, ByStatusPriority)
	require.NoError(t, err)
	assert.Empty(t, periods)
}

func TestGroup_Deterministic(t *testing.T) {
	tl := NewTimeline(revisions(1, 2, 3, 4, 5, 6))
	records := []entities.CompanyRecord{
		companyRecord(100, "a", registered, "", 1, 2, 5),
		companyRecord(100, "b", "припинено", "", 2, 3, 6),
		companyRecord(100, "c", "в стані припинення", "", 3, 4),
	}

	first := groupRecords(t, tl, records...)
	second := groupRecords(t, tl, records...)
	assert.Equal(t, first, second)
}

func TestGroup_CoverageAndOrdering(t *testing.T) {
	tl := NewTimeline(revisions(1, 2, 3, 4, 5, 6, 7))
	records := []entities.CompanyRecord{
		companyRecord(100, "a", registered, "", 1, 2, 6),
		companyRecord(100, "b", registered, "", 3),
		companyRecord(100, "c", registered, "", 7),
	}
	periods := groupRecords(t, tl, records...)
	byRev := CompanyRecordsByRevision(records)

	pos := make(map[entities.RevisionID]int)
	for i, r := range tl.Revisions() {
		pos[r.ID] = i
	}

	covered := make(map[entities.RevisionID]int)
	for i, p := range periods {
		if i > 0 {
			assert.Greater(t, pos[p.Start], pos[periods[i-1].End], "periods must not overlap")
		}
		for _, r := range tl.Revisions()[pos[p.Start] : pos[p.End]+1] {
			covered[r.ID]++
		}
	}
	for _, r := range tl.Revisions() {
		_, hasData := byRev[r.ID]
		if hasData {
			assert.Equal(t, 1, covered[r.ID], "revision %d must be in exactly one period", r.ID)
		} else {
			assert.Zero(t, covered[r.ID], "gap revision %d must not be in a period", r.ID)
		}
	}
}

func TestGroup_IgnoredRevisionFactsAreSkipped(t *testing.T) {
	revs := revisions(1, 2, 3)
	revs[1].Ignore = true
	periods := groupRecords(t, NewTimeline(revs), companyRecord(100, "H1", registered, "", 1, 2, 3))

	require.Len(t, periods, 1, "an ignored revision is not a gap")
	assert.Equal(t, entities.RevisionID(1), periods[0].Start)
	assert.Equal(t, entities.RevisionID(3), periods[0].End)
}

func TestGroup_UnknownRevisionIsFatal(t *testing.T) {
	tl := NewTimeline(revisions(1, 2))
	_, err := Group(tl,
		CompanyRecordsByRevision([]entities.CompanyRecord{companyRecord(100, "H1", registered, "", 1, 9)}),
		RecordHash, ByStatusPriority)
	assert.ErrorIs(t, err, entities.ErrUnknownRevision)
}

func TestByStatusPriority(t *testing.T) {
	tests := []struct {
		name     string
		records  []entities.CompanyRecord
		expected string
	}{
		{
			name: "registered beats terminated",
			records: []entities.CompanyRecord{
				companyRecord(1, "t", "припинено", "", 1),
				companyRecord(1, "r", "Зареєстровано", "", 1),
			},
			expected: "r",
		},
		{
			name: "bankruptcy beats being terminated",
			records: []entities.CompanyRecord{
				companyRecord(1, "x", "в стані припинення", "", 1),
				companyRecord(1, "y", "порушено справу про банкрутство", "", 1),
			},
			expected: "y",
		},
		{
			name: "statuses outside the order rank last",
			records: []entities.CompanyRecord{
				companyRecord(1, "l", "ліквідація", "", 1),
				companyRecord(1, "t", "припинено", "", 1),
			},
			expected: "t",
		},
		{
			name: "equal priority falls back to hash",
			records: []entities.CompanyRecord{
				companyRecord(1, "b", registered, "", 1),
				companyRecord(1, "a", registered, "", 1),
			},
			expected: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ByStatusPriority(tt.records)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rec.Hash)
		})
	}
}

func TestByStatusPriority_UnknownStatus(t *testing.T) {
	_, err := ByStatusPriority([]entities.CompanyRecord{
		companyRecord(1, "a", registered, "", 1),
		companyRecord(1, "b", "на ремонті", "", 1),
	})
	assert.ErrorIs(t, err, entities.ErrUnknownStatus)
}

func TestGroup_Rosters(t *testing.T) {
	tl := NewTimeline(revisions(1, 2, 3, 4))
	persons := []entities.Person{
		person(100, "p1", entities.RoleOwner, []string{"Петров Петро"}, 1, 2, 3, 4),
		person(100, "p2", entities.RoleFounder, []string{"Сидоренко Олена"}, 1, 2),
		person(100, "p3", entities.RoleFounder, []string{"Коваленко Ольга"}, 3, 4),
		person(100, "h1", entities.RoleHead, []string{"Шевченко Тарас"}, 1, 2, 3, 4),
	}

	periods, err := Group(tl, RostersByRevision(persons, entities.RoleOwner, entities.RoleFounder), RosterHash, SingleRoster)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, []string{"Сидоренко Олена"}, periods[0].Fact.NamesByRole(entities.RoleFounder))
	assert.Equal(t, []string{"Коваленко Ольга"}, periods[1].Fact.NamesByRole(entities.RoleFounder))
	assert.Equal(t, []string{"Петров Петро"}, periods[1].Fact.NamesByRole(entities.RoleOwner))

	all, err := Group(tl, RostersByRevision(persons), RosterHash, SingleRoster)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []string{"Шевченко Тарас"}, all[0].Fact.NamesByRole(entities.RoleHead))
}
