package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/services"
)

func exportRows() []services.ExportRow {
	return []services.ExportRow{
		{
			CompanyID: 100,
			Status:    services.ExportOK,
			Flags: &entities.SnapshotFlags{
				CompanyID:         100,
				RevisionID:        7,
				Status:            entities.StatusRegistered,
				IsActing:          true,
				HasBo:             true,
				HasBoPersons:      true,
				OwnerPersonsCount: 2,
				AllBoCountries:    []string{"кіпр", "беліз"},
				CharterCapital:    25000.5,
			},
		},
		{CompanyID: 200, Status: services.ExportNotComputed},
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatJSON(&buf, exportRows()))

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	require.Len(t, parsed, 2)
	assert.Equal(t, float64(100), parsed[0]["company_id"])
	assert.Equal(t, "ok", parsed[0]["status"])
	flags, ok := parsed[0]["flags"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, flags["has_bo"])
	assert.Equal(t, float64(7), flags["revision_id"])
	assert.Equal(t, 25000.5, flags["charter_capital"])

	assert.Equal(t, "not_computed", parsed[1]["status"])
	assert.NotContains(t, parsed[1], "flags")
}

func TestFormatJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatJSON(&buf, []services.ExportRow{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatCSV(&buf, exportRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])

	row := make(map[string]string, len(csvHeader))
	for i, h := range csvHeader {
		row[h] = records[1][i]
	}
	assert.Equal(t, "100", row["company_id"])
	assert.Equal(t, "7", row["revision_id"])
	assert.Equal(t, "ok", row["status"])
	assert.Equal(t, "зареєстровано", row["company_status"])
	assert.Equal(t, "true", row["has_bo"])
	assert.Equal(t, "false", row["has_bo_companies"])
	assert.Equal(t, "2", row["owner_persons_count"])
	assert.Equal(t, "кіпр;беліз", row["all_bo_countries"])
	assert.Equal(t, "25000.5", row["charter_capital"])
}

func TestFormatCSV_MissingSnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatCSV(&buf, exportRows()[1:]))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "200", records[1][0])
	assert.Empty(t, records[1][1])
	assert.Equal(t, "not_computed", records[1][2])
	assert.Empty(t, records[1][3])
}

func TestWriteExport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, writeExport("json", path, exportRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var parsed []services.ExportRow
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Len(t, parsed, 2)
}

func TestWriteExport_UnknownFormat(t *testing.T) {
	err := writeExport("markdown", "", exportRows())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
