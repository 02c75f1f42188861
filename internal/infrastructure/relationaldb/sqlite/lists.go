package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// ReplaceWatchList swaps the whole watch-list for the given entries.
func (r *Repository) ReplaceWatchList(ctx context.Context, entries []entities.WatchEntry) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM watch_list`); err != nil {
			return fmt.Errorf("clearing watch-list: %w", err)
		}
		for _, e := range entries {
			years, err := json.Marshal(e.Years)
			if err != nil {
				return fmt.Errorf("marshaling years: %w", err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO watch_list (company_id, name, years, url, from_declaration, role)
				VALUES (?, ?, ?, ?, ?, ?)
			`, int64(e.CompanyID), e.Name, string(years), e.URL, boolToInt(e.FromDeclaration), e.Role.String())
			if err != nil {
				return fmt.Errorf("saving watch-list entry: %w", err)
			}
		}
		return nil
	})
}

// WatchEntries returns the watch-list entries of a company.
func (r *Repository) WatchEntries(ctx context.Context, companyID entities.CompanyID) ([]entities.WatchEntry, error) {
	query := `
		SELECT company_id, name, years, url, from_declaration, role
		FROM watch_list
		WHERE company_id = ?
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, int64(companyID))
	if err != nil {
		return nil, fmt.Errorf("querying watch-list: %w", err)
	}
	defer rows.Close()

	var entries []entities.WatchEntry
	for rows.Next() {
		var (
			e           entities.WatchEntry
			years, role string
		)
		if err := rows.Scan(&e.CompanyID, &e.Name, &years, &e.URL, &e.FromDeclaration, &role); err != nil {
			return nil, fmt.Errorf("scanning watch-list entry: %w", err)
		}
		if err := json.Unmarshal([]byte(years), &e.Years); err != nil {
			return nil, fmt.Errorf("unmarshaling years: %w", err)
		}
		if e.Role, err = entities.ParseRole(role); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LatestDeclarationYear returns the newest declaration year in the list, or 0.
func (r *Repository) LatestDeclarationYear(ctx context.Context) (int, error) {
	query := `
		SELECT COALESCE(MAX(CAST(y.value AS INTEGER)), 0)
		FROM watch_list w, json_each(w.years) y
		WHERE w.from_declaration = 1
	`
	var year int
	if err := r.db.QueryRowContext(ctx, query).Scan(&year); err != nil {
		return 0, fmt.Errorf("querying declaration year: %w", err)
	}
	return year, nil
}

// ReplaceOwnershipLinks swaps all company-to-company ownership links.
func (r *Repository) ReplaceOwnershipLinks(ctx context.Context, links []entities.OwnershipLink) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ownership_links`); err != nil {
			return fmt.Errorf("clearing ownership links: %w", err)
		}
		for _, l := range links {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO ownership_links (company_id, owner_id, description)
				VALUES (?, ?, ?)
				ON CONFLICT(company_id, owner_id) DO UPDATE SET description = excluded.description
			`, int64(l.CompanyID), int64(l.OwnerID), l.Description)
			if err != nil {
				return fmt.Errorf("saving ownership link: %w", err)
			}
		}
		return nil
	})
}

// SelfOwnershipDepth walks owners of owners up to maxDepth levels and
// returns the length of the shortest chain leading back to the company.
func (r *Repository) SelfOwnershipDepth(ctx context.Context, companyID entities.CompanyID, maxDepth int) (int, error) {
	query := `
		WITH RECURSIVE chain(owner_id, depth) AS (
			SELECT owner_id, 1 FROM ownership_links WHERE company_id = ?1
			UNION
			SELECT l.owner_id, c.depth + 1
			FROM ownership_links l
			JOIN chain c ON l.company_id = c.owner_id
			WHERE c.depth < ?2 AND c.owner_id <> ?1
		)
		SELECT COALESCE(MIN(depth), 0) FROM chain WHERE owner_id = ?1
	`
	var depth int
	if err := r.db.QueryRowContext(ctx, query, int64(companyID), maxDepth).Scan(&depth); err != nil {
		return 0, fmt.Errorf("resolving ownership chain of %d: %w", companyID, err)
	}
	return depth, nil
}

// ReplaceCharterCapital swaps all stored charter capital amounts.
func (r *Repository) ReplaceCharterCapital(ctx context.Context, amounts []entities.CharterCapital) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM charter_capital`); err != nil {
			return fmt.Errorf("clearing charter capital: %w", err)
		}
		for _, a := range amounts {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO charter_capital (company_id, amount)
				VALUES (?, ?)
				ON CONFLICT(company_id) DO UPDATE SET amount = excluded.amount
			`, int64(a.CompanyID), a.Amount)
			if err != nil {
				return fmt.Errorf("saving charter capital: %w", err)
			}
		}
		return nil
	})
}

// CharterCapital returns the stored capital of a company, or 0.
func (r *Repository) CharterCapital(ctx context.Context, companyID entities.CompanyID) (float64, error) {
	var amount float64
	err := r.db.QueryRowContext(ctx, `SELECT amount FROM charter_capital WHERE company_id = ?`, int64(companyID)).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying charter capital of %d: %w", companyID, err)
	}
	return amount, nil
}
