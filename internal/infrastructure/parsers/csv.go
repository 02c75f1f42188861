package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// listSeparator splits multi-valued CSV cells.
const listSeparator = ";"

// CSVParser parses observations from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed observations.
// Expected columns: revision_id, company_id, kind, and the company or person
// fields. Names, addresses and countries are separated by semicolons.
func (p *CSVParser) Parse(r io.Reader) ([]RawObservation, error) {
	reader := csv.NewReader(r)

	colIndex, err := readHeader(reader, "revision_id", "company_id", "kind")
	if err != nil {
		return nil, err
	}

	var obs []RawObservation
	err = readRecords(reader, func(record []string, lineNum int) error {
		o, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return err
		}
		obs = append(obs, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obs, nil
}

// parseRecord converts a CSV record to a RawObservation.
func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (RawObservation, error) {
	revisionID, err := parseInt(record, colIndex, "revision_id", lineNum)
	if err != nil {
		return RawObservation{}, err
	}
	companyID, err := parseInt(record, colIndex, "company_id", lineNum)
	if err != nil {
		return RawObservation{}, err
	}

	return RawObservation{
		RevisionID:      revisionID,
		CompanyID:       companyID,
		Kind:            getColumn(record, colIndex, "kind"),
		Name:            getColumn(record, colIndex, "name"),
		ShortName:       getColumn(record, colIndex, "short_name"),
		Location:        getColumn(record, colIndex, "location"),
		Profile:         getColumn(record, colIndex, "profile"),
		Status:          getColumn(record, colIndex, "status"),
		Role:            getColumn(record, colIndex, "role"),
		Names:           splitList(getColumn(record, colIndex, "names")),
		Addresses:       splitList(getColumn(record, colIndex, "addresses")),
		Countries:       splitList(getColumn(record, colIndex, "countries")),
		RawRecord:       getColumn(record, colIndex, "raw_record"),
		Share:           getColumn(record, colIndex, "share"),
		BOIsAbsent:      parseBool(getColumn(record, colIndex, "bo_is_absent")),
		WasDereferenced: parseBool(getColumn(record, colIndex, "was_dereferenced")),
		LineNum:         lineNum,
	}, nil
}

// readHeader reads the CSV header row and checks the required columns.
func readHeader(reader *csv.Reader, required ...string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}

	for _, col := range required {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords feeds every data row to fn along with its line number.
func readRecords(reader *csv.Reader, fn func(record []string, lineNum int) error) error {
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		if err := fn(record, lineNum); err != nil {
			return err
		}
	}
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func parseInt(record []string, colIndex map[string]int, col string, lineNum int) (int64, error) {
	s := getColumn(record, colIndex, col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s value %q: %w", lineNum, col, s, err)
	}
	return v, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on", "так":
		return true
	}
	return false
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
