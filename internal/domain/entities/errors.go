package entities

import "errors"

var (
	// ErrUnknownStatus is returned when a company status label is not in the catalogue.
	ErrUnknownStatus = errors.New("unknown company status")

	// ErrUnknownRole is returned when a person role tag is not head, founder or owner.
	ErrUnknownRole = errors.New("unknown person role")

	// ErrUnknownRevision is returned when a fact references a revision the registry never published.
	ErrUnknownRevision = errors.New("fact references unknown revision")

	// ErrTooManyVariants is returned when a name list comparison exceeds the variant cap.
	ErrTooManyVariants = errors.New("too many name variants to compare")

	// ErrCompanyNotFound is returned when a company has no records at all.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrRevisionNotFound is returned when a revision is not registered.
	ErrRevisionNotFound = errors.New("revision not found")
)
