package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotFlags_Equivalent(t *testing.T) {
	base := SnapshotFlags{
		CompanyID:       100,
		RevisionID:      2,
		ComputedAt:      time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
		HasBo:           true,
		AllOwnerPersons: []string{"Петров Петро"},
	}

	tests := []struct {
		name   string
		modify func(*SnapshotFlags)
		want   bool
	}{
		{"identical", func(*SnapshotFlags) {}, true},
		{"computed at differs", func(f *SnapshotFlags) { f.ComputedAt = f.ComputedAt.Add(time.Hour) }, true},
		{"empty list equals nil", func(f *SnapshotFlags) { f.AllFounderPersons = []string{} }, true},
		{"flag differs", func(f *SnapshotFlags) { f.HasBo = false }, false},
		{"names differ", func(f *SnapshotFlags) { f.AllOwnerPersons = []string{"Іванов Іван"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base
			tt.modify(&other)
			assert.Equal(t, tt.want, base.Equivalent(other))
			assert.Equal(t, tt.want, other.Equivalent(base))
		})
	}
}
