// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// FactStore provides revisions and the per-company fact history.
type FactStore interface {
	// ListRevisions returns every registered revision, accepted or not.
	ListRevisions(ctx context.Context) ([]entities.Revision, error)

	// CompanyRecords returns every observed version of a company's attributes.
	CompanyRecords(ctx context.Context, companyID entities.CompanyID) ([]entities.CompanyRecord, error)

	// Persons returns every observed person version attached to the company.
	Persons(ctx context.Context, companyID entities.CompanyID) ([]entities.Person, error)

	// CompanyRecordsAt returns all company records observed in the revision.
	CompanyRecordsAt(ctx context.Context, revisionID entities.RevisionID) ([]entities.CompanyRecord, error)

	// CompanyIDsAt returns the companies with at least one record in the revision, ascending.
	CompanyIDsAt(ctx context.Context, revisionID entities.RevisionID) ([]entities.CompanyID, error)
}

// FactWriter persists revisions and merges observed facts.
type FactWriter interface {
	// SaveRevision inserts or updates a revision.
	SaveRevision(ctx context.Context, rev *entities.Revision) error

	// MergeCompanyRecord stores the record under its hash, adding its
	// revisions to the existing revision set.
	MergeCompanyRecord(ctx context.Context, rec *entities.CompanyRecord) error

	// MergePerson stores the person under its hash, adding its revisions
	// to the existing revision set.
	MergePerson(ctx context.Context, p *entities.Person) error

	// RevisionStats counts company records and persons per revision.
	RevisionStats(ctx context.Context) (map[entities.RevisionID]RevisionCounts, error)
}

// RevisionCounts is the number of facts observed in one revision.
type RevisionCounts struct {
	Companies int `json:"companies"`
	Persons   int `json:"persons"`
}
