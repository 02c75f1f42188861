package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/mocks"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/parsers"
)

func companyObs(rev, company int64, name, status string) parsers.RawObservation {
	return parsers.RawObservation{RevisionID: rev, CompanyID: company, Kind: parsers.KindCompany, Name: name, Status: status, Location: hub}
}

func personObs(rev, company int64, role, raw string, names ...string) parsers.RawObservation {
	return parsers.RawObservation{RevisionID: rev, CompanyID: company, Kind: parsers.KindPerson, Role: role, RawRecord: raw, Names: names}
}

func TestImportService_MergesIdenticalFacts(t *testing.T) {
	facts := mocks.NewFactStore()
	facts.Revisions = revisions(1, 2)
	audit := &mocks.AuditLog{}
	svc := NewImportService(facts, facts, audit, nil, nil, nil)

	obs := []parsers.RawObservation{
		companyObs(1, 100, "ТОВ Ромашка", "зареєстровано"),
		companyObs(2, 100, "ТОВ  Ромашка", "Зареєстровано"),
		personObs(1, 100, "owner", "", "Петров Петро"),
		personObs(2, 100, "owner", "", "Петров Петро"),
		personObs(2, 100, "head", "", "Коваленко Ольга"),
	}

	result, err := svc.Import(t.Context(), obs, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Companies)
	assert.Equal(t, 3, result.Persons)
	assert.Empty(t, result.Errors)

	require.Len(t, facts.Records[100], 1)
	assert.Equal(t, []entities.RevisionID{1, 2}, facts.Records[100][0].Revisions)
	require.Len(t, facts.People[100], 2)
	assert.Equal(t, []entities.RevisionID{1, 2}, facts.People[100][0].Revisions)

	require.Len(t, audit.Entries, 1)
	assert.Equal(t, entities.AuditImport, audit.Entries[0].Action)
}

func TestImportService_ValidationErrors(t *testing.T) {
	facts := mocks.NewFactStore()
	facts.Revisions = revisions(1)
	svc := NewImportService(facts, facts, nil, nil, nil, nil)

	obs := []parsers.RawObservation{
		companyObs(9, 100, "ТОВ Ромашка", "зареєстровано"),
		companyObs(1, 0, "ТОВ Ромашка", "зареєстровано"),
		companyObs(1, 100, " ", "зареєстровано"),
		companyObs(1, 100, "ТОВ Ромашка", "на ремонті"),
		personObs(1, 100, "auditor", ""),
		{RevisionID: 1, CompanyID: 100, Kind: "branch"},
		companyObs(1, 100, "ТОВ Ромашка", "зареєстровано"),
	}

	result, err := svc.Import(t.Context(), obs, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Companies)
	require.Len(t, result.Errors, 6)
	fields := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		fields[i] = e.Field
		assert.Equal(t, i+1, e.Line)
	}
	assert.Equal(t, []string{"revision_id", "company_id", "name", "status", "role", "kind"}, fields)
	assert.Len(t, facts.Records[100], 1)
}

func TestImportService_DryRun(t *testing.T) {
	facts := mocks.NewFactStore()
	facts.Revisions = revisions(1)
	svc := NewImportService(facts, facts, nil, nil, nil, nil)

	result, err := svc.Import(t.Context(), []parsers.RawObservation{companyObs(1, 100, "ТОВ Ромашка", "зареєстровано")}, ImportOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Companies)
	assert.Empty(t, facts.Records)
}

func TestImportService_Extraction(t *testing.T) {
	facts := mocks.NewFactStore()
	facts.Revisions = revisions(1)
	const (
		named     = "Петров Петро Петрович, Україна, м. Київ"
		reference = "ТОВ Альфа, Кіпр, Нікосія"
		withCode  = "ТОВ Бета, код ЄДРПОУ 12345678"
	)
	extractor := &mocks.PersonExtractor{Results: map[string]*ports.ExtractedPerson{
		named:     {Names: []string{"Петров Петро Петрович"}, Addresses: []string{"м. Київ"}, Countries: []string{"Україна"}},
		reference: {Countries: []string{"Кіпр"}, HasReference: true},
		withCode:  {HasReference: true},
	}}
	cache := mocks.NewExtractionCache()
	svc := NewImportService(facts, facts, nil, extractor, cache, nil)

	obs := []parsers.RawObservation{
		personObs(1, 100, "owner", named),
		personObs(1, 200, "owner", named),
		personObs(1, 100, "owner", reference),
		personObs(1, 100, "owner", withCode),
		personObs(1, 100, "founder", "", "Шевченко Тарас"),
	}
	result, err := svc.Import(t.Context(), obs, ImportOptions{Extract: true})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Extracted)
	assert.Equal(t, 3, extractor.ExtractCallCount)
	assert.Len(t, cache.Items, 3)

	byRaw := make(map[string]entities.Person)
	for _, p := range facts.People[100] {
		byRaw[p.RawRecord] = p
	}
	assert.Equal(t, []string{"Петров Петро Петрович"}, byRaw[named].Names)
	assert.False(t, byRaw[named].WasDereferenced)
	assert.True(t, byRaw[reference].WasDereferenced)
	assert.Equal(t, []string{"Кіпр"}, byRaw[reference].Countries)
	assert.False(t, byRaw[withCode].WasDereferenced)
}

func TestImportService_ExtractionFailure(t *testing.T) {
	facts := mocks.NewFactStore()
	facts.Revisions = revisions(1)
	extractor := &mocks.PersonExtractor{Err: errors.New("rate limited")}
	svc := NewImportService(facts, facts, nil, extractor, nil, nil)

	_, err := svc.Import(t.Context(), []parsers.RawObservation{personObs(1, 100, "owner", "щось")}, ImportOptions{Extract: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Empty(t, facts.People)
}

func TestImportService_CacheErrorsAreNotFatal(t *testing.T) {
	facts := mocks.NewFactStore()
	facts.Revisions = revisions(1)
	cache := mocks.NewExtractionCache()
	cache.GetErr = errors.New("connection refused")
	cache.SetErr = errors.New("connection refused")
	extractor := &mocks.PersonExtractor{}
	svc := NewImportService(facts, facts, nil, extractor, cache, nil)

	result, err := svc.Import(t.Context(), []parsers.RawObservation{personObs(1, 100, "owner", "щось")}, ImportOptions{Extract: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Extracted)
	assert.Equal(t, 1, extractor.ExtractCallCount)
}
