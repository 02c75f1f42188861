package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

func newTestMatcher() *Matcher {
	return NewMatcher(DefaultMatchingConfig())
}

func TestJaro(t *testing.T) {
	tests := []struct {
		a, b     string
		expected float64
	}{
		{"MARTHA", "MARHTA", 0.9444},
		{"DIXON", "DICKSONX", 0.7667},
		{"", "", 1},
		{"abc", "", 0},
		{"abc", "xyz", 0},
		{"петров", "петров", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.expected, jaroStrings(tt.a, tt.b), 0.0001)
		})
	}
}

func TestMatcher_NamesMatch(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"identical", "Петров Петро Петрович", "Петров Петро Петрович", true},
		{"case and spacing", "ПЕТРОВ  Петро петрович ", "петров петро петрович", true},
		{"hyphen as space", "Квітка-Основ'яненко Григорій", "Квітка Основяненко Григорій", true},
		{"latin i look-alike", "Коваленко Ольга Петрівна", "Коваленко Ольга Петрiвна", true},
		{"abbreviated record", "Шевченко Тарас Григорович", "Шевченко Тарас", true},
		{"reordered tokens", "Іванов Іван Іванович", "Іван Іванович Іванов", true},
		{"different people", "Петров Петро Петрович", "Сидоренко Олена Іванівна", false},
	}

	m := newTestMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.NamesMatch(tt.a, tt.b))
		})
	}
}

func TestMatcher_NamesMatchIsAsymmetric(t *testing.T) {
	m := newTestMatcher()

	// Only the second argument is permuted, so the concatenated form matches
	// a spaced reordering but not the other way round.
	a, b := "іванпетров", "петров іван"
	assert.True(t, m.NamesMatch(a, b))
	assert.False(t, m.NamesMatch(b, a))

	assert.True(t, m.MatchEither(a, b))
	assert.True(t, m.MatchEither(b, a))
}

func TestMatcher_Similarity(t *testing.T) {
	m := newTestMatcher()

	assert.InDelta(t, 1.0, m.Similarity("Іванов Іван Іванович", "Іван Іванович Іванов"), 1e-9)
	assert.InDelta(t, 1.0, m.Similarity("Шевченко Тарас Григорович", "Шевченко Тарас"), 1e-9)
	assert.Less(t, m.Similarity("Петров Петро Петрович", "Сидоренко Олена Іванівна"), 0.6)
}

func TestMatcher_ListsMatch(t *testing.T) {
	m := newTestMatcher()

	pairs, err := m.ListsMatch(
		[]string{"Іванов Іван Іванович", "Петров Петро Петрович"},
		[]string{"Сидоренко Олена", "Іван Іванович Іванов"},
	)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Іванов Іван Іванович", pairs[0].A)
	assert.Equal(t, "Іван Іванович Іванов", pairs[0].B)
	assert.Greater(t, pairs[0].Score, 0.93)
}

func variants(prefix string, n int) []string {
	letters := []rune("абвгдежзиклмнопрстуфхцчшщюяґ")
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %c%c", prefix, letters[i%len(letters)], letters[(i/len(letters))%len(letters)])
	}
	return out
}

func TestMatcher_ListsMatchGuard(t *testing.T) {
	m := newTestMatcher()

	_, err := m.ListsMatch(variants("олена", 40), variants("петро", 30))
	assert.ErrorIs(t, err, entities.ErrTooManyVariants)

	_, err = m.ListsMatch(variants("олена", 31), variants("петро", 30))
	assert.NoError(t, err)
}

func TestMatcher_ConfigurableThresholds(t *testing.T) {
	cfg := DefaultMatchingConfig()
	cfg.MaxVariants = 4
	m := NewMatcher(cfg)

	_, err := m.ListsMatch(variants("а", 3), variants("б", 2))
	assert.ErrorIs(t, err, entities.ErrTooManyVariants)

	cfg = DefaultMatchingConfig()
	cfg.MinPrefixLen = 100
	strict := NewMatcher(cfg)
	assert.True(t, newTestMatcher().NamesMatch("Шевченко Тарас Григорович", "Шевченко Тарас"))
	assert.Less(t, strict.Similarity("Шевченко Тарас Григорович", "Шевченко Тарас"), 1.0)
}

func TestPermute_LexicographicAndCapped(t *testing.T) {
	var got [][]int
	permute(3, 100, func(idx []int) {
		got = append(got, append([]int(nil), idx...))
	})
	assert.Equal(t, [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}, got)

	count := 0
	permute(8, 5040, func([]int) { count++ })
	assert.Equal(t, 5040, count)
}
