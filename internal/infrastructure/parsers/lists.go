package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RawWatchEntry is one row of a politically exposed persons list.
type RawWatchEntry struct {
	CompanyID       int64
	Name            string
	Years           []int
	URL             string
	FromDeclaration bool
	Role            string
	LineNum         int
}

// RawOwnershipLink is one row of a company-owned-by-company list.
type RawOwnershipLink struct {
	CompanyID   int64
	OwnerID     int64
	Description string
	LineNum     int
}

// RawCharterCapital is one row of a charter capital list.
type RawCharterCapital struct {
	Code    string
	Capital string
	LineNum int
}

// ParseWatchList reads a CSV with columns edrpou, pep, years, url,
// from_declaration and an optional person_type (owner by default).
// Years are comma separated, e.g. "2017, 2018".
func ParseWatchList(r io.Reader) ([]RawWatchEntry, error) {
	reader := csv.NewReader(r)
	colIndex, err := readHeader(reader, "edrpou", "pep")
	if err != nil {
		return nil, err
	}

	var entries []RawWatchEntry
	err = readRecords(reader, func(record []string, lineNum int) error {
		companyID, err := parseInt(record, colIndex, "edrpou", lineNum)
		if err != nil {
			return err
		}
		years, err := parseYears(getColumn(record, colIndex, "years"))
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		role := getColumn(record, colIndex, "person_type")
		if role == "" {
			role = "owner"
		}
		entries = append(entries, RawWatchEntry{
			CompanyID:       companyID,
			Name:            getColumn(record, colIndex, "pep"),
			Years:           years,
			URL:             getColumn(record, colIndex, "url"),
			FromDeclaration: parseBool(getColumn(record, colIndex, "from_declaration")),
			Role:            role,
			LineNum:         lineNum,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseOwnershipLinks reads a CSV with columns edrpou, owner, description.
func ParseOwnershipLinks(r io.Reader) ([]RawOwnershipLink, error) {
	reader := csv.NewReader(r)
	colIndex, err := readHeader(reader, "edrpou", "owner")
	if err != nil {
		return nil, err
	}

	var links []RawOwnershipLink
	err = readRecords(reader, func(record []string, lineNum int) error {
		companyID, err := parseInt(record, colIndex, "edrpou", lineNum)
		if err != nil {
			return err
		}
		ownerID, err := parseInt(record, colIndex, "owner", lineNum)
		if err != nil {
			return err
		}
		links = append(links, RawOwnershipLink{
			CompanyID:   companyID,
			OwnerID:     ownerID,
			Description: getColumn(record, colIndex, "description"),
			LineNum:     lineNum,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// ParseCharterCapital reads a CSV with columns code and capital. Values are
// kept as written; the registry validates them row by row.
func ParseCharterCapital(r io.Reader) ([]RawCharterCapital, error) {
	reader := csv.NewReader(r)
	colIndex, err := readHeader(reader, "code", "capital")
	if err != nil {
		return nil, err
	}

	var rows []RawCharterCapital
	err = readRecords(reader, func(record []string, lineNum int) error {
		rows = append(rows, RawCharterCapital{
			Code:    getColumn(record, colIndex, "code"),
			Capital: getColumn(record, colIndex, "capital"),
			LineNum: lineNum,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func parseYears(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", part, err)
		}
		years = append(years, y)
	}
	return years, nil
}
