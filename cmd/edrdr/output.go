package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func joinIDs(ids []entities.CompanyID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ", ")
}

func parseCompanyID(s string) (entities.CompanyID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid company id %q", s)
	}
	return entities.CompanyID(id), nil
}

func toCompanyIDs(ids []int64) []entities.CompanyID {
	out := make([]entities.CompanyID, 0, len(ids))
	for _, id := range ids {
		out = append(out, entities.CompanyID(id))
	}
	return out
}
