// Package entities contains core domain data structures.
package entities

import "time"

// RevisionID identifies one full publication of the registry.
type RevisionID int64

// Revision is a single periodic re-export of the registry.
type Revision struct {
	ID        RevisionID `json:"revision_id"`
	DatasetID string     `json:"dataset_id"`
	Created   time.Time  `json:"created"`
	Imported  bool       `json:"imported"`
	Ignore    bool       `json:"ignore"`
	URL       string     `json:"url,omitempty"`
}

// Accepted reports whether the revision belongs to the timeline.
func (r Revision) Accepted() bool {
	return r.Imported && !r.Ignore
}

// Before orders revisions by creation time, then by ID.
func (r Revision) Before(other Revision) bool {
	if !r.Created.Equal(other.Created) {
		return r.Created.Before(other.Created)
	}
	return r.ID < other.ID
}
