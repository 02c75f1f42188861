// Package parsers provides parsers for importing registry observations and
// external lists from various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// Observation kinds.
const (
	KindCompany = "company"
	KindPerson  = "person"
)

// RawObservation is one fact seen in one revision, before validation.
type RawObservation struct {
	RevisionID int64  `json:"revision_id"`
	CompanyID  int64  `json:"company_id"`
	Kind       string `json:"kind"`

	// Company fields.
	Name      string `json:"name,omitempty"`
	ShortName string `json:"short_name,omitempty"`
	Location  string `json:"location,omitempty"`
	Profile   string `json:"profile,omitempty"`
	Status    string `json:"status,omitempty"`

	// Person fields.
	Role            string   `json:"role,omitempty"`
	Names           []string `json:"names,omitempty"`
	Addresses       []string `json:"addresses,omitempty"`
	Countries       []string `json:"countries,omitempty"`
	RawRecord       string   `json:"raw_record,omitempty"`
	Share           string   `json:"share,omitempty"`
	BOIsAbsent      bool     `json:"bo_is_absent,omitempty"`
	WasDereferenced bool     `json:"was_dereferenced,omitempty"`

	LineNum int `json:"-"` // Line number in source file (set by parser)
}

// Parser defines the interface for parsing observations from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawObservation, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
