package entities

import (
	"bytes"
	"encoding/json"
	"time"
)

// Change describes the first genuine change of a person-name set between
// two consecutive periods.
type Change struct {
	Revision RevisionID `json:"revision"`
	Before   []string   `json:"before"`
	After    []string   `json:"after"`
	Ratio    int        `json:"ratio"`
}

// NamePair is a fuzzy match between two names of different roles.
type NamePair struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// SnapshotFlags is the derived ownership state of a company as of one revision.
// A record is written once and only replaced by a forced recomputation.
type SnapshotFlags struct {
	CompanyID  CompanyID  `json:"company_id"`
	RevisionID RevisionID `json:"revision_id"`
	ComputedAt time.Time  `json:"computed_at"`

	NotPresentInRevision bool   `json:"not_present_in_revision"`
	Status               Status `json:"status"`
	IsActing             bool   `json:"is_acting"`

	IsMassRegistered  bool `json:"is_mass_registered"`
	MassRegistrations int  `json:"mass_registrations,omitempty"`

	HasBo               bool `json:"has_bo"`
	HasBoPersons        bool `json:"has_bo_persons"`
	HasBoCompanies      bool `json:"has_bo_companies"`
	HasDereferencedBo   bool `json:"has_dereferenced_bo"`
	HasOnlyPersonsBo    bool `json:"has_only_persons_bo"`
	HasOnlyCompaniesBo  bool `json:"has_only_companies_bo"`
	HasFounderPersons   bool `json:"has_founder_persons"`
	HasFounderCompanies bool `json:"has_founder_companies"`

	HasOnlyPersonsFounder   bool `json:"has_only_persons_founder"`
	HasOnlyCompaniesFounder bool `json:"has_only_companies_founder"`

	AllOwnerPersons     []string `json:"all_owner_persons,omitempty"`
	AllFounderPersons   []string `json:"all_founder_persons,omitempty"`
	AllHeadPersons      []string `json:"all_head_persons,omitempty"`
	AllBoCountries      []string `json:"all_bo_countries,omitempty"`
	OwnerPersonsCount   int      `json:"owner_persons_count"`
	FounderPersonsCount int      `json:"founder_persons_count"`

	IsActingAndExplicitlyStatedNoBo bool `json:"is_acting_and_explicitly_stated_no_bo"`

	HasBoInCrimea          bool `json:"has_bo_in_crimea"`
	HasBoInOccupiedDonetsk bool `json:"has_bo_in_occupied_donetsk"`
	HasBoInOccupiedLuhansk bool `json:"has_bo_in_occupied_luhansk"`
	HasBoOnOccupiedSoil    bool `json:"has_bo_on_occupied_soil"`

	HasSamePersonAsBoAndFounder   bool `json:"has_same_person_as_bo_and_founder"`
	HasSamePersonAsBoAndHead      bool `json:"has_same_person_as_bo_and_head"`
	HasSamePersonAsFounderAndHead bool `json:"has_same_person_as_founder_and_head"`

	HasVerySimilarPersonAsBoAndFounder   bool       `json:"has_very_similar_person_as_bo_and_founder"`
	HasVerySimilarPersonAsBoAndHead      bool       `json:"has_very_similar_person_as_bo_and_head"`
	HasVerySimilarPersonAsFounderAndHead bool       `json:"has_very_similar_person_as_founder_and_head"`
	AllSimilarFounderAndBo               []NamePair `json:"all_similar_founder_and_bo,omitempty"`
	AllSimilarHeadAndBo                  []NamePair `json:"all_similar_head_and_bo,omitempty"`
	AllSimilarHeadAndFounder             []NamePair `json:"all_similar_head_and_founder,omitempty"`

	HasChangesInOwnership bool    `json:"has_changes_in_ownership"`
	OwnershipChange       *Change `json:"ownership_change,omitempty"`
	HasChangesInBo        bool    `json:"has_changes_in_bo"`
	BoChange              *Change `json:"bo_change,omitempty"`

	HasPepOwner                    bool `json:"has_pep_owner"`
	HasDiscrepancyWithDeclarations bool `json:"has_discrepancy_with_declarations"`
	HasUndeclaredPepOwner          bool `json:"has_undeclared_pep_owner"`
	HadPepOwnerInThePast           bool `json:"had_pep_owner_in_the_past"`

	SelfOwned         bool `json:"self_owned"`
	SelfOwnedIndirect bool `json:"self_owned_indirect"`

	// CharterCapital is copied from the capital list when the record is
	// computed; 0 when unknown.
	CharterCapital float64 `json:"charter_capital,omitempty"`
}

// Equivalent reports whether two records carry the same derived state,
// ignoring the computation timestamp. Records are compared in their stored
// JSON form, so a nil list and an empty one are the same state.
func (s SnapshotFlags) Equivalent(other SnapshotFlags) bool {
	a, b := s, other
	a.ComputedAt, b.ComputedAt = time.Time{}, time.Time{}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}
