package entities

import "slices"

// WatchEntry associates a politically exposed person with a company.
type WatchEntry struct {
	CompanyID       CompanyID `json:"company_id"`
	Name            string    `json:"name"`
	Years           []int     `json:"years,omitempty"`
	URL             string    `json:"url,omitempty"`
	FromDeclaration bool      `json:"from_declaration"`
	Role            Role      `json:"role"`
}

// DeclaredIn reports whether the association was declared in the given year.
func (w WatchEntry) DeclaredIn(year int) bool {
	return w.FromDeclaration && slices.Contains(w.Years, year)
}

// CharterCapital is the declared charter capital of a company.
type CharterCapital struct {
	CompanyID CompanyID `json:"company_id"`
	Amount    float64   `json:"amount"`
}

// OwnershipLink records that a company is owned by another company.
type OwnershipLink struct {
	CompanyID   CompanyID `json:"company_id"`
	OwnerID     CompanyID `json:"owner_id"`
	Description string    `json:"description,omitempty"`
}
