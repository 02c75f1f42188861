package handlers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/mocks"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/domain/services"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/config"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/relationaldb/sqlite"
)

func newFactStore(ids ...entities.RevisionID) *mocks.FactStore {
	facts := mocks.NewFactStore()
	base := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range ids {
		facts.Revisions = append(facts.Revisions, entities.Revision{
			ID:       id,
			Created:  base.AddDate(0, i, 0),
			Imported: true,
		})
	}
	return facts
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newImportHandler(facts *mocks.FactStore, extractor *mocks.PersonExtractor) *ImportHandler {
	var svc *services.ImportService
	if extractor != nil {
		svc = services.NewImportService(facts, facts, nil, extractor, nil, nil)
	} else {
		svc = services.NewImportService(facts, facts, nil, nil, nil, nil)
	}
	return NewImportHandler(svc)
}

func TestImportHandler_Handle_JSONFile(t *testing.T) {
	facts := newFactStore(1)
	handler := newImportHandler(facts, nil)

	path := writeFile(t, "obs.json", `[
		{"revision_id": 1, "company_id": 100, "kind": "company", "name": "ТОВ Ромашка", "status": "зареєстровано"},
		{"revision_id": 1, "company_id": 100, "kind": "person", "role": "owner", "names": ["Петров Петро"]}
	]`)

	result, err := handler.Handle(t.Context(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Companies)
	assert.Equal(t, 1, result.Persons)
	assert.Empty(t, result.Errors)
	assert.Len(t, facts.Records[100], 1)
	assert.Len(t, facts.People[100], 1)
}

func TestImportHandler_Handle_CSVFile(t *testing.T) {
	facts := newFactStore(1)
	handler := newImportHandler(facts, nil)

	path := writeFile(t, "obs.csv", "revision_id,company_id,kind,name,status\n1,100,company,ТОВ Ромашка,зареєстровано\n")

	result, err := handler.Handle(t.Context(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Companies)
}

func TestImportHandler_Handle_ExplicitFormat(t *testing.T) {
	facts := newFactStore(1)
	handler := newImportHandler(facts, nil)

	path := writeFile(t, "obs.txt", `[{"revision_id": 1, "company_id": 100, "kind": "company", "name": "ТОВ Ромашка", "status": "зареєстровано"}]`)

	_, err := handler.Handle(t.Context(), path, ImportOptions{Format: "auto"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")

	result, err := handler.Handle(t.Context(), path, ImportOptions{Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Companies)
}

func TestImportHandler_Handle_DryRun(t *testing.T) {
	facts := newFactStore(1)
	handler := newImportHandler(facts, nil)

	path := writeFile(t, "obs.json", `[
		{"revision_id": 1, "company_id": 100, "kind": "company", "name": "ТОВ Ромашка", "status": "зареєстровано"},
		{"revision_id": 9, "company_id": 100, "kind": "company", "name": "ТОВ Ромашка", "status": "зареєстровано"}
	]`)

	result, err := handler.Handle(t.Context(), path, ImportOptions{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Companies)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "revision_id", result.Errors[0].Field)
	assert.Empty(t, facts.Records)
}

func TestImportHandler_Handle_Extract(t *testing.T) {
	facts := newFactStore(1)
	extractor := &mocks.PersonExtractor{}
	handler := newImportHandler(facts, extractor)

	path := writeFile(t, "obs.json", `[
		{"revision_id": 1, "company_id": 100, "kind": "person", "role": "owner", "raw_record": "Петров Петро, Україна"}
	]`)

	result, err := handler.Handle(t.Context(), path, ImportOptions{Extract: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Extracted)
}

func TestImportHandler_Handle_ExtractAfterPlainImport(t *testing.T) {
	ctx := t.Context()
	db, err := sqlite.NewRepository(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(ctx))

	base := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []entities.RevisionID{1, 2} {
		require.NoError(t, db.SaveRevision(ctx, &entities.Revision{ID: id, Created: base.AddDate(0, i, 0), Imported: true}))
	}

	const raw = "Петров Петро Петрович, Україна, м. Київ"
	extractor := &mocks.PersonExtractor{Results: map[string]*ports.ExtractedPerson{
		raw: {Names: []string{"Петров Петро Петрович"}, Addresses: []string{"м. Київ"}, Countries: []string{"україна"}},
	}}

	plain := NewImportHandler(services.NewImportService(db, db, db, nil, nil, nil))
	_, err = plain.Handle(ctx, writeFile(t, "rev1.json", `[
		{"revision_id": 1, "company_id": 100, "kind": "person", "role": "owner", "raw_record": "`+raw+`"}
	]`), ImportOptions{})
	require.NoError(t, err)

	withExtract := NewImportHandler(services.NewImportService(db, db, db, extractor, nil, nil))
	result, err := withExtract.Handle(ctx, writeFile(t, "rev2.json", `[
		{"revision_id": 2, "company_id": 100, "kind": "person", "role": "owner", "raw_record": "`+raw+`"}
	]`), ImportOptions{Extract: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Extracted)

	persons, err := db.Persons(ctx, 100)
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, []string{"Петров Петро Петрович"}, persons[0].Names)
	assert.Equal(t, []string{"м. Київ"}, persons[0].Addresses)
	assert.Equal(t, []string{"україна"}, persons[0].Countries)
	assert.Equal(t, []entities.RevisionID{1, 2}, persons[0].Revisions)
}

func TestImportHandler_Handle_EmptyFile(t *testing.T) {
	handler := newImportHandler(newFactStore(1), nil)

	result, err := handler.Handle(t.Context(), writeFile(t, "obs.json", `[]`), ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Companies)
}

func TestImportHandler_Handle_FileNotFound(t *testing.T) {
	handler := newImportHandler(newFactStore(1), nil)

	_, err := handler.Handle(t.Context(), "/nonexistent/obs.json", ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening file")
}

func TestImportHandler_Handle_InvalidJSON(t *testing.T) {
	handler := newImportHandler(newFactStore(1), nil)

	_, err := handler.Handle(t.Context(), writeFile(t, "obs.json", `{not json`), ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing file")
}
