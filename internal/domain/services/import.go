package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/parsers"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun  bool // Validate without saving
	Extract bool // Run the person extractor on nameless raw records
}

// ImportError represents an error for a specific observation during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Companies int
	Persons   int
	Extracted int
	Errors    []ImportError
}

// ImportService merges observed registry facts into the fact store. Facts
// with identical content collapse into one fact whose revision set grows.
type ImportService struct {
	facts     ports.FactStore
	writer    ports.FactWriter
	audit     ports.AuditLog
	extractor ports.PersonExtractor
	cache     ports.ExtractionCache
	logger    *slog.Logger
}

// NewImportService creates a new import service. audit, extractor and cache may be nil.
func NewImportService(
	facts ports.FactStore,
	writer ports.FactWriter,
	audit ports.AuditLog,
	extractor ports.PersonExtractor,
	cache ports.ExtractionCache,
	logger *slog.Logger,
) *ImportService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ImportService{
		facts:     facts,
		writer:    writer,
		audit:     audit,
		extractor: extractor,
		cache:     cache,
		logger:    logger,
	}
}

// Import validates and merges raw observations.
func (s *ImportService) Import(ctx context.Context, obs []parsers.RawObservation, opts ImportOptions) (*ImportResult, error) {
	revisions, err := s.facts.ListRevisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading revisions: %w", err)
	}
	known := make(map[entities.RevisionID]bool, len(revisions))
	for _, r := range revisions {
		known[r.ID] = true
	}

	result := &ImportResult{}
	var (
		records []entities.CompanyRecord
		persons []entities.Person
	)

	for i := range obs {
		raw := &obs[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}
		if ierr := validateObservation(raw, lineNum, known); ierr != nil {
			result.Errors = append(result.Errors, *ierr)
			continue
		}

		switch raw.Kind {
		case parsers.KindCompany:
			records = append(records, toCompanyRecord(raw))
		case parsers.KindPerson:
			p, err := toPerson(raw)
			if err != nil {
				result.Errors = append(result.Errors, ImportError{Line: lineNum, Field: "role", Value: raw.Role, Message: err.Error()})
				continue
			}
			persons = append(persons, p)
		}
	}

	if opts.Extract && s.extractor != nil {
		for i := range persons {
			extracted, err := s.extract(ctx, &persons[i])
			if err != nil {
				return nil, err
			}
			if extracted {
				result.Extracted++
			}
		}
	}

	result.Companies = len(records)
	result.Persons = len(persons)
	if opts.DryRun {
		return result, nil
	}

	for i := range records {
		if err := s.writer.MergeCompanyRecord(ctx, &records[i]); err != nil {
			return nil, fmt.Errorf("saving company record: %w", err)
		}
	}
	for i := range persons {
		if err := s.writer.MergePerson(ctx, &persons[i]); err != nil {
			return nil, fmt.Errorf("saving person: %w", err)
		}
	}

	if s.audit != nil {
		details := map[string]any{
			"companies": result.Companies,
			"persons":   result.Persons,
			"extracted": result.Extracted,
			"errors":    len(result.Errors),
		}
		if err := s.audit.LogAction(ctx, entities.AuditImport, 0, details); err != nil {
			s.logger.WarnContext(ctx, "audit log failed", "error", err)
		}
	}

	return result, nil
}

// validateObservation validates a single observation and returns an error if invalid.
func validateObservation(raw *parsers.RawObservation, lineNum int, known map[entities.RevisionID]bool) *ImportError {
	if raw.RevisionID <= 0 {
		return &ImportError{Line: lineNum, Field: "revision_id", Message: "missing required field: revision_id"}
	}
	if !known[entities.RevisionID(raw.RevisionID)] {
		return &ImportError{
			Line:    lineNum,
			Field:   "revision_id",
			Value:   fmt.Sprint(raw.RevisionID),
			Message: fmt.Sprintf("revision %d is not registered", raw.RevisionID),
		}
	}
	if raw.CompanyID <= 0 {
		return &ImportError{Line: lineNum, Field: "company_id", Message: "missing required field: company_id"}
	}

	switch raw.Kind {
	case parsers.KindCompany:
		if strings.TrimSpace(raw.Name) == "" {
			return &ImportError{Line: lineNum, Field: "name", Message: "missing required field: name"}
		}
		if _, err := entities.ParseStatus(raw.Status); err != nil {
			return &ImportError{Line: lineNum, Field: "status", Value: raw.Status, Message: err.Error()}
		}
	case parsers.KindPerson:
		if _, err := entities.ParseRole(raw.Role); err != nil {
			return &ImportError{Line: lineNum, Field: "role", Value: raw.Role, Message: err.Error()}
		}
	default:
		return &ImportError{
			Line:    lineNum,
			Field:   "kind",
			Value:   raw.Kind,
			Message: fmt.Sprintf("invalid kind %q (valid: company, person)", raw.Kind),
		}
	}
	return nil
}

func toCompanyRecord(raw *parsers.RawObservation) entities.CompanyRecord {
	rec := entities.CompanyRecord{
		CompanyID: entities.CompanyID(raw.CompanyID),
		Name:      strings.TrimSpace(raw.Name),
		ShortName: strings.TrimSpace(raw.ShortName),
		Location:  strings.TrimSpace(raw.Location),
		Profile:   strings.TrimSpace(raw.Profile),
		Status:    strings.ToLower(strings.TrimSpace(raw.Status)),
		Revisions: []entities.RevisionID{entities.RevisionID(raw.RevisionID)},
	}
	rec.Hash = rec.ComputeHash()
	return rec
}

func toPerson(raw *parsers.RawObservation) (entities.Person, error) {
	role, err := entities.ParseRole(raw.Role)
	if err != nil {
		return entities.Person{}, err
	}
	p := entities.Person{
		CompanyID:       entities.CompanyID(raw.CompanyID),
		Role:            role,
		Names:           raw.Names,
		Addresses:       raw.Addresses,
		Countries:       raw.Countries,
		RawRecord:       strings.TrimSpace(raw.RawRecord),
		Share:           strings.TrimSpace(raw.Share),
		BOIsAbsent:      raw.BOIsAbsent,
		WasDereferenced: raw.WasDereferenced,
		Revisions:       []entities.RevisionID{entities.RevisionID(raw.RevisionID)},
	}
	p.Hash = p.ComputeHash()
	return p, nil
}

// extract fills a nameless person from its raw record. The hash is kept so
// the fact identity does not depend on whether extraction ran.
func (s *ImportService) extract(ctx context.Context, p *entities.Person) (bool, error) {
	if p.HasNames() || p.RawRecord == "" || p.BOIsAbsent {
		return false, nil
	}

	var (
		result *ports.ExtractedPerson
		err    error
	)
	if s.cache != nil {
		if result, err = s.cache.Get(ctx, p.RawRecord); err != nil {
			s.logger.WarnContext(ctx, "extraction cache read failed", "error", err)
		}
	}
	if result == nil {
		if result, err = s.extractor.Extract(ctx, p.RawRecord); err != nil {
			return false, fmt.Errorf("extracting person of company %d: %w", p.CompanyID, err)
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, p.RawRecord, result); err != nil {
				s.logger.WarnContext(ctx, "extraction cache write failed", "error", err)
			}
		}
	}

	p.Names = result.Names
	p.Addresses = append(p.Addresses, result.Addresses...)
	p.Countries = append(p.Countries, result.Countries...)
	if p.Role == entities.RoleOwner && !p.HasNames() && result.HasReference &&
		!strings.Contains(strings.ToLower(p.RawRecord), "єдрпоу") {
		p.WasDereferenced = true
	}
	return true, nil
}
