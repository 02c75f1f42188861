package entities

import (
	"crypto/sha1"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
)

// CompanyID is the company's state registration code (EDRPOU).
type CompanyID int64

// CompanyRecord is one observed version of a company's attributes.
// Hash is derived from the normalized fields and identifies the version
// across revisions.
type CompanyRecord struct {
	Hash      string       `json:"hash"`
	CompanyID CompanyID    `json:"company_id"`
	Name      string       `json:"name"`
	ShortName string       `json:"short_name,omitempty"`
	Location  string       `json:"location,omitempty"`
	Profile   string       `json:"profile,omitempty"`
	Status    string       `json:"status"`
	Revisions []RevisionID `json:"revisions"`
}

// Person is one observed version of a person attached to a company in a role.
type Person struct {
	Hash            string       `json:"hash"`
	CompanyID       CompanyID    `json:"company_id"`
	Role            Role         `json:"role"`
	Names           []string     `json:"names"`
	Addresses       []string     `json:"addresses,omitempty"`
	Countries       []string     `json:"countries,omitempty"`
	RawRecord       string       `json:"raw_record,omitempty"`
	Share           string       `json:"share,omitempty"`
	BOIsAbsent      bool         `json:"bo_is_absent,omitempty"`
	WasDereferenced bool         `json:"was_dereferenced,omitempty"`
	Revisions       []RevisionID `json:"revisions"`
}

// ObservedIn reports whether the fact was seen in the given revision.
func (r CompanyRecord) ObservedIn(id RevisionID) bool {
	return slices.Contains(r.Revisions, id)
}

// ObservedIn reports whether the person was seen in the given revision.
func (p Person) ObservedIn(id RevisionID) bool {
	return slices.Contains(p.Revisions, id)
}

// HasNames reports whether at least one non-blank name is present.
func (p Person) HasNames() bool {
	for _, n := range p.Names {
		if strings.TrimSpace(n) != "" {
			return true
		}
	}
	return false
}

// ComputeHash derives the content hash of the record from its normalized fields.
func (r CompanyRecord) ComputeHash() string {
	return contentHash(
		"company",
		NormalizeField(r.Name),
		NormalizeField(r.ShortName),
		NormalizeField(r.Location),
		NormalizeField(r.Profile),
		NormalizeField(r.Status),
	)
}

// ComputeHash derives the content hash of the person from its normalized fields.
// The company code participates so identical persons of different companies
// never collide.
func (p Person) ComputeHash() string {
	parts := []string{
		"person",
		p.Role.String(),
		strconv.FormatInt(int64(p.CompanyID), 10),
		NormalizeField(p.RawRecord),
		NormalizeField(p.Share),
	}
	parts = append(parts, normalizeList(p.Names)...)
	parts = append(parts, "|")
	parts = append(parts, normalizeList(p.Addresses)...)
	parts = append(parts, "|")
	parts = append(parts, normalizeList(p.Countries)...)
	if p.BOIsAbsent {
		parts = append(parts, "bo-absent")
	}
	return contentHash(parts...)
}

// NormalizeField lowercases the value and collapses runs of whitespace.
func NormalizeField(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := NormalizeField(v); n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

func contentHash(parts ...string) string {
	h := sha1.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
