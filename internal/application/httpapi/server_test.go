package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/mocks"
	"github.com/dchaplinsky/edrdr/internal/domain/services"
)

func newTestServer(t *testing.T, metrics http.Handler) (http.Handler, *mocks.SnapshotStore) {
	t.Helper()

	facts := mocks.NewFactStore()
	base := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []entities.RevisionID{1, 2} {
		facts.Revisions = append(facts.Revisions, entities.Revision{ID: id, DatasetID: "edr", Created: base.AddDate(0, i, 0), Imported: true})
	}
	facts.AddRecord(entities.CompanyRecord{
		Hash:      "r1",
		CompanyID: 100,
		Name:      "ТОВ Ромашка",
		Location:  "м. Київ, вул. Хрещатик, 1",
		Status:    "зареєстровано",
		Revisions: []entities.RevisionID{1, 2},
	})
	facts.AddPerson(entities.Person{
		Hash:      "p1",
		CompanyID: 100,
		Role:      entities.RoleOwner,
		Names:     []string{"Петров Петро Петрович"},
		Revisions: []entities.RevisionID{1, 2},
	})
	facts.AddPerson(entities.Person{
		Hash:      "p2",
		CompanyID: 100,
		Role:      entities.RoleHead,
		Names:     []string{"Коваленко Ольга"},
		Revisions: []entities.RevisionID{2},
	})

	snapshots := mocks.NewSnapshotStore()
	computer := services.NewSnapshotComputer(facts, snapshots, services.NewMatcher(services.DefaultMatchingConfig()))
	indexer, err := services.NewMassRegistrationIndexer(facts, 4)
	require.NoError(t, err)

	srv := New(Config{
		Registry:   services.NewRegistryService(facts, facts, &mocks.WatchList{}, &mocks.OwnershipChain{}, &mocks.CapitalStore{}, nil),
		History:    services.NewHistoryService(facts, snapshots),
		Batch:      services.NewBatchRunner(facts, nil, nil, indexer, computer, nil),
		Computer:   computer,
		Metrics:    metrics,
		MassCutoff: 100,
	})
	return srv.Routes(), snapshots
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Revisions(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/revisions")

	require.Equal(t, http.StatusOK, rec.Code)
	var got []struct {
		ID        int64 `json:"revision_id"`
		Companies int   `json:"companies"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestServer_CompanyPeriods(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/companies/100/periods")
	require.Equal(t, http.StatusOK, rec.Code)
	var periods []entities.Period[entities.CompanyRecord]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&periods))
	require.Len(t, periods, 1)
	assert.Equal(t, entities.RevisionID(1), periods[0].Start)
	assert.Equal(t, entities.RevisionID(2), periods[0].End)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/companies/999/periods").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/companies/abc/periods").Code)
}

func TestServer_PersonPeriods(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/companies/100/persons/periods?role=owner")
	require.Equal(t, http.StatusOK, rec.Code)
	var periods []entities.Period[entities.Roster]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&periods))
	require.Len(t, periods, 1)
	assert.Equal(t, []string{"Петров Петро Петрович"}, periods[0].Fact.NamesByRole(entities.RoleOwner))

	rec = do(t, h, http.MethodGet, "/companies/100/persons/periods")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&periods))
	assert.Len(t, periods, 2)

	rec = do(t, h, http.MethodGet, "/companies/100/persons/periods?role=owner,boss")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown person role")
}

func TestServer_ComputeSnapshot(t *testing.T) {
	h, snapshots := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/companies/100/snapshots")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/companies/100/snapshots/2")
	require.Equal(t, http.StatusOK, rec.Code)
	var flags entities.SnapshotFlags
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&flags))
	assert.Equal(t, entities.CompanyID(100), flags.CompanyID)
	assert.Equal(t, entities.RevisionID(2), flags.RevisionID)
	assert.True(t, flags.HasBo)
	assert.True(t, flags.HasBoPersons)
	assert.Equal(t, 1, snapshots.SaveCallCount)

	rec = do(t, h, http.MethodPost, "/companies/100/snapshots/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, snapshots.SaveCallCount)

	rec = do(t, h, http.MethodPost, "/companies/100/snapshots/2?force=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, snapshots.SaveCallCount)

	rec = do(t, h, http.MethodGet, "/companies/100/snapshots")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []entities.SnapshotFlags
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))
	assert.Len(t, all, 1)
}

func TestServer_ComputeSnapshotErrors(t *testing.T) {
	h, _ := newTestServer(t, nil)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/companies/100/snapshots/99").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/companies/100/snapshots/x").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/companies/100/snapshots/2").Code)
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("edrdr_snapshots_computed_total 0\n"))
	})

	h, _ := newTestServer(t, metrics)
	rec := do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "edrdr_snapshots_computed_total"))

	h, _ = newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics").Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entities.ErrCompanyNotFound, http.StatusNotFound},
		{entities.ErrRevisionNotFound, http.StatusNotFound},
		{entities.ErrUnknownStatus, http.StatusUnprocessableEntity},
		{entities.ErrUnknownRevision, http.StatusUnprocessableEntity},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
