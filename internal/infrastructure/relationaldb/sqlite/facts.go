package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// SaveRevision saves or updates a revision.
func (r *Repository) SaveRevision(ctx context.Context, rev *entities.Revision) error {
	query := `
		INSERT INTO revisions (id, dataset_id, created, imported, ignored, url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			dataset_id = excluded.dataset_id,
			created = excluded.created,
			imported = excluded.imported,
			ignored = excluded.ignored,
			url = excluded.url
	`
	_, err := r.db.ExecContext(ctx, query,
		int64(rev.ID),
		rev.DatasetID,
		rev.Created.UTC(),
		boolToInt(rev.Imported),
		boolToInt(rev.Ignore),
		rev.URL,
	)
	if err != nil {
		return fmt.Errorf("saving revision: %w", err)
	}
	return nil
}

// ListRevisions lists every registered revision ordered by creation time.
func (r *Repository) ListRevisions(ctx context.Context) ([]entities.Revision, error) {
	query := `
		SELECT id, dataset_id, created, imported, ignored, url
		FROM revisions
		ORDER BY created ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying revisions: %w", err)
	}
	defer rows.Close()

	revisions := make([]entities.Revision, 0, 64)
	for rows.Next() {
		var rev entities.Revision
		if err := rows.Scan(&rev.ID, &rev.DatasetID, &rev.Created, &rev.Imported, &rev.Ignore, &rev.URL); err != nil {
			return nil, fmt.Errorf("scanning revision: %w", err)
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

// MergeCompanyRecord stores the record under its hash and adds its revisions.
func (r *Repository) MergeCompanyRecord(ctx context.Context, rec *entities.CompanyRecord) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO company_records (company_id, hash, name, short_name, location, profile, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(company_id, hash) DO NOTHING
		`, int64(rec.CompanyID), rec.Hash, rec.Name, rec.ShortName, rec.Location, rec.Profile, rec.Status)
		if err != nil {
			return fmt.Errorf("saving company record: %w", err)
		}
		for _, id := range rec.Revisions {
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO company_record_revisions (company_id, hash, revision_id)
				VALUES (?, ?, ?)
			`, int64(rec.CompanyID), rec.Hash, int64(id))
			if err != nil {
				return fmt.Errorf("saving company record revision: %w", err)
			}
		}
		return nil
	})
}

// MergePerson stores the person under its hash and adds its revisions.
// A stored nameless person takes the extracted fields of a later merge.
func (r *Repository) MergePerson(ctx context.Context, p *entities.Person) error {
	names, err := encodeList(p.Names)
	if err != nil {
		return err
	}
	addresses, err := encodeList(p.Addresses)
	if err != nil {
		return err
	}
	countries, err := encodeList(p.Countries)
	if err != nil {
		return err
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO persons (company_id, hash, role, names, addresses, countries,
				raw_record, share, bo_is_absent, was_dereferenced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(company_id, hash) DO UPDATE SET
				names = excluded.names,
				addresses = excluded.addresses,
				countries = excluded.countries,
				was_dereferenced = excluded.was_dereferenced
			WHERE persons.names = '[]' AND excluded.names <> '[]'
		`,
			int64(p.CompanyID),
			p.Hash,
			p.Role.String(),
			names,
			addresses,
			countries,
			p.RawRecord,
			p.Share,
			boolToInt(p.BOIsAbsent),
			boolToInt(p.WasDereferenced),
		)
		if err != nil {
			return fmt.Errorf("saving person: %w", err)
		}
		for _, id := range p.Revisions {
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO person_revisions (company_id, hash, revision_id)
				VALUES (?, ?, ?)
			`, int64(p.CompanyID), p.Hash, int64(id))
			if err != nil {
				return fmt.Errorf("saving person revision: %w", err)
			}
		}
		return nil
	})
}

const companyRecordColumns = `
	SELECT r.company_id, r.hash, r.name, r.short_name, r.location, r.profile, r.status,
		(SELECT group_concat(rr.revision_id) FROM company_record_revisions rr
			WHERE rr.company_id = r.company_id AND rr.hash = r.hash)
	FROM company_records r
`

// CompanyRecords returns every stored version of a company's attributes.
func (r *Repository) CompanyRecords(ctx context.Context, companyID entities.CompanyID) ([]entities.CompanyRecord, error) {
	query := companyRecordColumns + `
		WHERE r.company_id = ?
		ORDER BY r.hash
	`
	return r.queryCompanyRecords(ctx, query, int64(companyID))
}

// CompanyRecordsAt returns every company record observed in the revision.
func (r *Repository) CompanyRecordsAt(ctx context.Context, revisionID entities.RevisionID) ([]entities.CompanyRecord, error) {
	query := companyRecordColumns + `
		JOIN company_record_revisions cur
			ON cur.company_id = r.company_id AND cur.hash = r.hash AND cur.revision_id = ?
		ORDER BY r.company_id, r.hash
	`
	return r.queryCompanyRecords(ctx, query, int64(revisionID))
}

func (r *Repository) queryCompanyRecords(ctx context.Context, query string, args ...any) ([]entities.CompanyRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying company records: %w", err)
	}
	defer rows.Close()

	var records []entities.CompanyRecord
	for rows.Next() {
		var (
			rec  entities.CompanyRecord
			revs sql.NullString
		)
		if err := rows.Scan(
			&rec.CompanyID,
			&rec.Hash,
			&rec.Name,
			&rec.ShortName,
			&rec.Location,
			&rec.Profile,
			&rec.Status,
			&revs,
		); err != nil {
			return nil, fmt.Errorf("scanning company record: %w", err)
		}
		if rec.Revisions, err = parseRevisionSet(revs.String); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CompanyIDsAt returns the companies with records in the revision, ascending.
func (r *Repository) CompanyIDsAt(ctx context.Context, revisionID entities.RevisionID) ([]entities.CompanyID, error) {
	query := `
		SELECT DISTINCT company_id
		FROM company_record_revisions
		WHERE revision_id = ?
		ORDER BY company_id
	`
	rows, err := r.db.QueryContext(ctx, query, int64(revisionID))
	if err != nil {
		return nil, fmt.Errorf("querying companies: %w", err)
	}
	defer rows.Close()

	var ids []entities.CompanyID
	for rows.Next() {
		var id entities.CompanyID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning company id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Persons returns every stored person version of a company.
func (r *Repository) Persons(ctx context.Context, companyID entities.CompanyID) ([]entities.Person, error) {
	query := `
		SELECT p.company_id, p.hash, p.role, p.names, p.addresses, p.countries,
			p.raw_record, p.share, p.bo_is_absent, p.was_dereferenced,
			(SELECT group_concat(pr.revision_id) FROM person_revisions pr
				WHERE pr.company_id = p.company_id AND pr.hash = p.hash)
		FROM persons p
		WHERE p.company_id = ?
		ORDER BY p.hash
	`
	rows, err := r.db.QueryContext(ctx, query, int64(companyID))
	if err != nil {
		return nil, fmt.Errorf("querying persons: %w", err)
	}
	defer rows.Close()

	var persons []entities.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, *p)
	}
	return persons, rows.Err()
}

func scanPerson(rows *sql.Rows) (*entities.Person, error) {
	var (
		p                           entities.Person
		role                        string
		names, addresses, countries string
		revs                        sql.NullString
	)
	if err := rows.Scan(
		&p.CompanyID,
		&p.Hash,
		&role,
		&names,
		&addresses,
		&countries,
		&p.RawRecord,
		&p.Share,
		&p.BOIsAbsent,
		&p.WasDereferenced,
		&revs,
	); err != nil {
		return nil, fmt.Errorf("scanning person: %w", err)
	}

	var err error
	if p.Role, err = entities.ParseRole(role); err != nil {
		return nil, fmt.Errorf("person %s: %w", p.Hash, err)
	}
	if p.Names, err = decodeList(names); err != nil {
		return nil, err
	}
	if p.Addresses, err = decodeList(addresses); err != nil {
		return nil, err
	}
	if p.Countries, err = decodeList(countries); err != nil {
		return nil, err
	}
	if p.Revisions, err = parseRevisionSet(revs.String); err != nil {
		return nil, err
	}
	return &p, nil
}

// RevisionStats counts company records and persons per revision.
func (r *Repository) RevisionStats(ctx context.Context) (map[entities.RevisionID]ports.RevisionCounts, error) {
	stats := make(map[entities.RevisionID]ports.RevisionCounts)

	count := func(table string, add func(*ports.RevisionCounts, int)) error {
		rows, err := r.db.QueryContext(ctx,
			`SELECT revision_id, COUNT(*) FROM `+table+` GROUP BY revision_id`)
		if err != nil {
			return fmt.Errorf("counting %s: %w", table, err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				id entities.RevisionID
				n  int
			)
			if err := rows.Scan(&id, &n); err != nil {
				return fmt.Errorf("scanning %s count: %w", table, err)
			}
			c := stats[id]
			add(&c, n)
			stats[id] = c
		}
		return rows.Err()
	}

	if err := count("company_record_revisions", func(c *ports.RevisionCounts, n int) { c.Companies = n }); err != nil {
		return nil, err
	}
	if err := count("person_revisions", func(c *ports.RevisionCounts, n int) { c.Persons = n }); err != nil {
		return nil, err
	}
	return stats, nil
}
