package entities

// Period is a maximal run of consecutive timeline revisions over which the
// authoritative fact hash stays the same.
type Period[F any] struct {
	Start RevisionID `json:"start_revision"`
	End   RevisionID `json:"end_revision"`
	Hash  string     `json:"hash"`
	Fact  F          `json:"fact"`
}

// Roster is the set of persons valid in one revision, treated as a single fact.
type Roster []Person

// NamesByRole returns the distinct names of persons in the role, in roster order.
func (r Roster) NamesByRole(role Role) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, p := range r {
		if p.Role != role {
			continue
		}
		for _, n := range p.Names {
			if _, ok := seen[n]; ok || n == "" {
				continue
			}
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	return names
}
