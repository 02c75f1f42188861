package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchaplinsky/edrdr/internal/domain/mocks"
)

const hub = "м. Київ, вул. Хрещатик, 1"

func TestMassRegistrationIndexer_AddressesAbove(t *testing.T) {
	facts := mocks.NewFactStore()
	facts.AddRecord(companyRecord(1, "a", registered, hub, 1))
	facts.AddRecord(companyRecord(2, "b", registered, "  М. КИЇВ,  вул. Хрещатик, 1", 1))
	facts.AddRecord(companyRecord(3, "c", registered, "м. Львів, пл. Ринок, 1", 1))
	// Company 4 moved: only the authoritative record counts.
	facts.AddRecord(companyRecord(4, "d1", "припинено", hub, 1))
	facts.AddRecord(companyRecord(4, "d2", registered, "м. Львів, пл. Ринок, 1", 1))
	facts.AddRecord(companyRecord(5, "e", registered, hub, 2))

	indexer, err := NewMassRegistrationIndexer(facts, 4)
	require.NoError(t, err)

	idx, err := indexer.AddressesAbove(t.Context(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"м. київ, вул. хрещатик, 1": 2,
		"м. львів, пл. ринок, 1":    2,
	}, idx.Counts)

	n, ok := idx.Lookup("м. київ, вул. хрещатик, 1")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	idx, err = indexer.AddressesAbove(t.Context(), 1, 3)
	require.NoError(t, err)
	assert.Empty(t, idx.Counts)
}

func TestMassRegistrationIndexer_Cached(t *testing.T) {
	facts := mocks.NewFactStore()
	facts.AddRecord(companyRecord(1, "a", registered, hub, 1))

	indexer, err := NewMassRegistrationIndexer(facts, 1)
	require.NoError(t, err)

	first, err := indexer.AddressesAbove(t.Context(), 1, 1)
	require.NoError(t, err)

	facts.AddRecord(companyRecord(2, "b", registered, hub, 1))
	second, err := indexer.AddressesAbove(t.Context(), 1, 1)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, second.Counts["м. київ, вул. хрещатик, 1"])
}

func TestMassRegistrationIndexer_UnknownStatusIsLeftOut(t *testing.T) {
	facts := mocks.NewFactStore()
	facts.AddRecord(companyRecord(1, "a", "невідомо що", hub, 1))
	facts.AddRecord(companyRecord(2, "b", registered, hub, 1))

	indexer, err := NewMassRegistrationIndexer(facts, 1)
	require.NoError(t, err)

	idx, err := indexer.AddressesAbove(t.Context(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"м. київ, вул. хрещатик, 1": 1}, idx.Counts)
}

func TestMassIndex_NilLookup(t *testing.T) {
	var idx *MassIndex
	_, ok := idx.Lookup(hub)
	assert.False(t, ok)
}
