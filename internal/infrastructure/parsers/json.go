package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses observations from a JSON array.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed observations.
func (p *JSONParser) Parse(r io.Reader) ([]RawObservation, error) {
	var obs []RawObservation

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&obs); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Set line numbers (array index + 1, 1-indexed)
	for i := range obs {
		obs[i].LineNum = i + 1
	}

	return obs, nil
}
