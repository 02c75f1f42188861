package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// LogAction logs an action to the audit log. A zero company ID records a
// store-wide action.
func (r *Repository) LogAction(ctx context.Context, action string, companyID entities.CompanyID, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var company sql.NullInt64
	if companyID != 0 {
		company = sql.NullInt64{Int64: int64(companyID), Valid: true}
	}

	query := `INSERT INTO audit_log (action, company_id, details, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, action, company, detailsJSON, timeNow().UTC())
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog finds audit log entries for a company. A zero company ID
// selects the store-wide entries.
func (r *Repository) FindAuditLog(ctx context.Context, companyID entities.CompanyID) ([]entities.AuditEntry, error) {
	if companyID == 0 {
		query := `
			SELECT id, action, company_id, details, created_at
			FROM audit_log
			WHERE company_id IS NULL
			ORDER BY created_at DESC, id DESC
		`
		return r.queryAuditLog(ctx, query)
	}
	query := `
		SELECT id, action, company_id, details, created_at
		FROM audit_log
		WHERE company_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return r.queryAuditLog(ctx, query, int64(companyID))
}

// FindAuditLogByAction finds audit log entries by action type.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, company_id, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, limit)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var (
			entry   entities.AuditEntry
			company sql.NullInt64
			details sql.NullString
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&company,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.CompanyID = entities.CompanyID(company.Int64)

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
