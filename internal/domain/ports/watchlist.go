package ports

import (
	"context"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// WatchList looks up politically exposed persons associated with companies.
type WatchList interface {
	// WatchEntries returns the associations of a company.
	WatchEntries(ctx context.Context, companyID entities.CompanyID) ([]entities.WatchEntry, error)

	// LatestDeclarationYear returns the newest year any declaration covers, or 0.
	LatestDeclarationYear(ctx context.Context) (int, error)

	// ReplaceWatchList swaps the whole list for the given entries.
	ReplaceWatchList(ctx context.Context, entries []entities.WatchEntry) error
}

// OwnershipChain classifies self-ownership of a company.
type OwnershipChain interface {
	// SelfOwnershipDepth returns the length of the shortest ownership cycle
	// through the company, up to maxDepth, or 0 if there is none.
	SelfOwnershipDepth(ctx context.Context, companyID entities.CompanyID, maxDepth int) (int, error)

	// ReplaceOwnershipLinks swaps all company-to-company ownership links.
	ReplaceOwnershipLinks(ctx context.Context, links []entities.OwnershipLink) error
}

// CapitalStore holds the declared charter capital of companies.
type CapitalStore interface {
	// CharterCapital returns the capital of a company, or 0 when unknown.
	CharterCapital(ctx context.Context, companyID entities.CompanyID) (float64, error)

	// ReplaceCharterCapital swaps all stored amounts for the given ones.
	ReplaceCharterCapital(ctx context.Context, amounts []entities.CharterCapital) error
}
