package ports

import (
	"context"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// SnapshotStore persists SnapshotFlags records.
type SnapshotStore interface {
	// GetSnapshot returns the record for (company, revision), or nil if none exists.
	GetSnapshot(ctx context.Context, companyID entities.CompanyID, revisionID entities.RevisionID) (*entities.SnapshotFlags, error)

	// SaveSnapshot writes the whole record atomically, replacing any existing one.
	SaveSnapshot(ctx context.Context, flags *entities.SnapshotFlags) error

	// ListSnapshots returns a company's records ordered by revision.
	ListSnapshots(ctx context.Context, companyID entities.CompanyID) ([]entities.SnapshotFlags, error)

	// ListSnapshotsAt returns every record computed for the revision, ordered by company.
	ListSnapshotsAt(ctx context.Context, revisionID entities.RevisionID) ([]entities.SnapshotFlags, error)
}

// AuditLog records actions taken against the store.
type AuditLog interface {
	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action string, companyID entities.CompanyID, details map[string]any) error

	// FindAuditLog finds audit log entries for a company.
	FindAuditLog(ctx context.Context, companyID entities.CompanyID) ([]entities.AuditEntry, error)
}
