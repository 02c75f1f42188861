package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// HashFunc returns the content hash of a fact.
type HashFunc[F any] func(F) string

// TieBreak picks the authoritative fact among several valid in one revision.
type TieBreak[F any] func([]F) (F, error)

// Group collapses a fact history into the minimal ordered list of periods.
// A revision without facts closes the open period; gaps produce no period.
// Facts keyed by a revision that was never registered are rejected.
func Group[F any](
	timeline *Timeline,
	perRevision map[entities.RevisionID][]F,
	hashOf HashFunc[F],
	tiebreak TieBreak[F],
) ([]entities.Period[F], error) {
	for id := range perRevision {
		if err := timeline.check(id); err != nil {
			return nil, err
		}
	}

	var (
		periods []entities.Period[F]
		open    *entities.Period[F]
	)
	flush := func() {
		if open != nil {
			periods = append(periods, *open)
			open = nil
		}
	}

	for _, rev := range timeline.order {
		facts := perRevision[rev.ID]
		if len(facts) == 0 {
			flush()
			continue
		}
		fact, err := tiebreak(facts)
		if err != nil {
			return nil, fmt.Errorf("resolving revision %d: %w", rev.ID, err)
		}
		hash := hashOf(fact)
		if open != nil && open.Hash == hash {
			open.End = rev.ID
			continue
		}
		flush()
		open = &entities.Period[F]{Start: rev.ID, End: rev.ID, Hash: hash, Fact: fact}
	}
	flush()

	return periods, nil
}

// CompanyRecordsByRevision indexes records by every revision they were observed in.
func CompanyRecordsByRevision(records []entities.CompanyRecord) map[entities.RevisionID][]entities.CompanyRecord {
	out := make(map[entities.RevisionID][]entities.CompanyRecord)
	for _, r := range records {
		for _, id := range r.Revisions {
			out[id] = append(out[id], r)
		}
	}
	return out
}

// RostersByRevision indexes persons, optionally restricted to roles, into one
// roster per revision.
func RostersByRevision(persons []entities.Person, roles ...entities.Role) map[entities.RevisionID][]entities.Roster {
	byRev := make(map[entities.RevisionID]entities.Roster)
	for _, p := range persons {
		if len(roles) > 0 && !slices.Contains(roles, p.Role) {
			continue
		}
		for _, id := range p.Revisions {
			byRev[id] = append(byRev[id], p)
		}
	}
	out := make(map[entities.RevisionID][]entities.Roster, len(byRev))
	for id, roster := range byRev {
		slices.SortFunc(roster, func(a, b entities.Person) int { return strings.Compare(a.Hash, b.Hash) })
		out[id] = []entities.Roster{roster}
	}
	return out
}

// RecordHash is the HashFunc for company records.
func RecordHash(r entities.CompanyRecord) string { return r.Hash }

// RosterHash is the HashFunc for rosters: the sorted member hashes joined.
func RosterHash(r entities.Roster) string {
	hashes := make([]string, len(r))
	for i, p := range r {
		hashes[i] = p.Hash
	}
	slices.Sort(hashes)
	return strings.Join(hashes, ",")
}

// ByStatusPriority is the TieBreak for company records. The record with the
// highest status priority wins; equal priorities fall back to the smaller hash.
func ByStatusPriority(records []entities.CompanyRecord) (entities.CompanyRecord, error) {
	type ranked struct {
		rec      entities.CompanyRecord
		priority int
	}
	ranks := make([]ranked, 0, len(records))
	for _, r := range records {
		status, err := entities.ParseStatus(r.Status)
		if err != nil {
			return entities.CompanyRecord{}, fmt.Errorf("company %d record %s: %w", r.CompanyID, r.Hash, err)
		}
		ranks = append(ranks, ranked{rec: r, priority: status.Priority()})
	}
	slices.SortStableFunc(ranks, func(a, b ranked) int {
		if a.priority != b.priority {
			return b.priority - a.priority
		}
		return strings.Compare(a.rec.Hash, b.rec.Hash)
	})
	return ranks[0].rec, nil
}

// SingleRoster is the TieBreak for rosters, which are already one per revision.
func SingleRoster(rosters []entities.Roster) (entities.Roster, error) {
	return rosters[0], nil
}
