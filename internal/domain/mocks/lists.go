package mocks

import (
	"context"
	"sync"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// WatchList is a mock implementation of ports.WatchList.
type WatchList struct {
	Entries    []entities.WatchEntry
	LatestYear int
	Err        error
}

// WatchEntries returns the configured entries of the company.
func (m *WatchList) WatchEntries(_ context.Context, companyID entities.CompanyID) ([]entities.WatchEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.WatchEntry
	for _, e := range m.Entries {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

// LatestDeclarationYear returns the configured year.
func (m *WatchList) LatestDeclarationYear(_ context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.LatestYear, nil
}

// ReplaceWatchList replaces the configured entries.
func (m *WatchList) ReplaceWatchList(_ context.Context, entries []entities.WatchEntry) error {
	if m.Err != nil {
		return m.Err
	}
	m.Entries = entries
	return nil
}

// OwnershipChain is a mock implementation of ports.OwnershipChain.
type OwnershipChain struct {
	Depths map[entities.CompanyID]int
	Links  []entities.OwnershipLink
	Err    error
}

// SelfOwnershipDepth returns the configured depth, or 0.
func (m *OwnershipChain) SelfOwnershipDepth(_ context.Context, companyID entities.CompanyID, maxDepth int) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if d := m.Depths[companyID]; d <= maxDepth {
		return d, nil
	}
	return 0, nil
}

// ReplaceOwnershipLinks records the links.
func (m *OwnershipChain) ReplaceOwnershipLinks(_ context.Context, links []entities.OwnershipLink) error {
	if m.Err != nil {
		return m.Err
	}
	m.Links = links
	return nil
}

// CapitalStore is a mock implementation of ports.CapitalStore.
type CapitalStore struct {
	Amounts map[entities.CompanyID]float64
	Err     error
}

// CharterCapital returns the configured amount, or 0.
func (m *CapitalStore) CharterCapital(_ context.Context, companyID entities.CompanyID) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Amounts[companyID], nil
}

// ReplaceCharterCapital replaces the configured amounts.
func (m *CapitalStore) ReplaceCharterCapital(_ context.Context, amounts []entities.CharterCapital) error {
	if m.Err != nil {
		return m.Err
	}
	m.Amounts = make(map[entities.CompanyID]float64, len(amounts))
	for _, a := range amounts {
		m.Amounts[a.CompanyID] = a.Amount
	}
	return nil
}

// AuditLog is a mock implementation of ports.AuditLog.
type AuditLog struct {
	mu      sync.Mutex
	Entries []entities.AuditEntry
	Err     error
}

// LogAction records the action.
func (m *AuditLog) LogAction(_ context.Context, action string, companyID entities.CompanyID, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, entities.AuditEntry{
		ID:        int64(len(m.Entries) + 1),
		Action:    action,
		CompanyID: companyID,
		Details:   details,
	})
	return nil
}

// FindAuditLog returns the recorded entries of a company.
func (m *AuditLog) FindAuditLog(_ context.Context, companyID entities.CompanyID) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.AuditEntry
	for _, e := range m.Entries {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}
