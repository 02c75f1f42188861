package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// SaveSnapshot writes the whole record, replacing any existing one.
func (r *Repository) SaveSnapshot(ctx context.Context, flags *entities.SnapshotFlags) error {
	data, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	query := `
		INSERT INTO snapshots (company_id, revision_id, computed_at, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(company_id, revision_id) DO UPDATE SET
			computed_at = excluded.computed_at,
			data = excluded.data
	`
	_, err = r.db.ExecContext(ctx, query,
		int64(flags.CompanyID),
		int64(flags.RevisionID),
		flags.ComputedAt.UTC(),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the record for (company, revision), or nil if none exists.
func (r *Repository) GetSnapshot(
	ctx context.Context,
	companyID entities.CompanyID,
	revisionID entities.RevisionID,
) (*entities.SnapshotFlags, error) {
	query := `SELECT data FROM snapshots WHERE company_id = ? AND revision_id = ?`

	var data string
	err := r.db.QueryRowContext(ctx, query, int64(companyID), int64(revisionID)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// ListSnapshots returns a company's records ordered by revision.
func (r *Repository) ListSnapshots(ctx context.Context, companyID entities.CompanyID) ([]entities.SnapshotFlags, error) {
	query := `
		SELECT data FROM snapshots
		WHERE company_id = ?
		ORDER BY revision_id
	`
	return r.querySnapshots(ctx, query, int64(companyID))
}

// ListSnapshotsAt returns every record of the revision ordered by company.
func (r *Repository) ListSnapshotsAt(ctx context.Context, revisionID entities.RevisionID) ([]entities.SnapshotFlags, error) {
	query := `
		SELECT data FROM snapshots
		WHERE revision_id = ?
		ORDER BY company_id
	`
	return r.querySnapshots(ctx, query, int64(revisionID))
}

func (r *Repository) querySnapshots(ctx context.Context, query string, args ...any) ([]entities.SnapshotFlags, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []entities.SnapshotFlags
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		f, err := decodeSnapshot(data)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func decodeSnapshot(data string) (*entities.SnapshotFlags, error) {
	var f entities.SnapshotFlags
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &f, nil
}
