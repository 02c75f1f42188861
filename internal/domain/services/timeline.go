package services

import (
	"fmt"
	"slices"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// Timeline is the ordered sequence of accepted revisions. Revisions that are
// ignored or not yet imported stay addressable but are not part of the order.
type Timeline struct {
	order []entities.Revision
	pos   map[entities.RevisionID]int
	known map[entities.RevisionID]entities.Revision
}

// NewTimeline builds a timeline from every registered revision.
func NewTimeline(revisions []entities.Revision) *Timeline {
	t := &Timeline{
		pos:   make(map[entities.RevisionID]int),
		known: make(map[entities.RevisionID]entities.Revision, len(revisions)),
	}
	for _, r := range revisions {
		t.known[r.ID] = r
		if r.Accepted() {
			t.order = append(t.order, r)
		}
	}
	slices.SortFunc(t.order, func(a, b entities.Revision) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})
	for i, r := range t.order {
		t.pos[r.ID] = i
	}
	return t
}

// Revisions returns the accepted revisions in order.
func (t *Timeline) Revisions() []entities.Revision {
	return slices.Clone(t.order)
}

// Len returns the number of accepted revisions.
func (t *Timeline) Len() int {
	return len(t.order)
}

// Contains reports whether the revision is part of the ordered timeline.
func (t *Timeline) Contains(id entities.RevisionID) bool {
	_, ok := t.pos[id]
	return ok
}

// Known reports whether the revision was ever registered, accepted or not.
func (t *Timeline) Known(id entities.RevisionID) bool {
	_, ok := t.known[id]
	return ok
}

// Get returns a registered revision by ID.
func (t *Timeline) Get(id entities.RevisionID) (entities.Revision, bool) {
	r, ok := t.known[id]
	return r, ok
}

// Latest returns the newest accepted revision.
func (t *Timeline) Latest() (entities.Revision, bool) {
	if len(t.order) == 0 {
		return entities.Revision{}, false
	}
	return t.order[len(t.order)-1], true
}

// Until returns the timeline truncated after the given revision.
func (t *Timeline) Until(id entities.RevisionID) (*Timeline, error) {
	i, ok := t.pos[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d is not an accepted revision", entities.ErrRevisionNotFound, id)
	}
	prefix := &Timeline{
		order: t.order[:i+1:i+1],
		pos:   make(map[entities.RevisionID]int, i+1),
		known: t.known,
	}
	for j, r := range prefix.order {
		prefix.pos[r.ID] = j
	}
	return prefix, nil
}

// check verifies that a fact's revision is at least known.
func (t *Timeline) check(id entities.RevisionID) error {
	if !t.Known(id) {
		return fmt.Errorf("%w: %d", entities.ErrUnknownRevision, id)
	}
	return nil
}
