package services

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// MatchingConfig holds the tuned thresholds of the name matcher.
type MatchingConfig struct {
	RejectBelow       float64 `yaml:"reject_below"`
	SmartLimit        float64 `yaml:"smart_limit"`
	StraightLimit     float64 `yaml:"straight_limit"`
	MinPairLimit      float64 `yaml:"min_pair_limit"`
	ListCutoff        float64 `yaml:"list_cutoff"`
	MaxVariants       int     `yaml:"max_variants"`
	MinPrefixLen      int     `yaml:"min_prefix_len"`
	MaxSplits         int     `yaml:"max_splits"`
	NoiseRatio        int     `yaml:"noise_ratio"`
	DeclarationCutoff float64 `yaml:"declaration_cutoff"`
}

// DefaultMatchingConfig returns the thresholds the matcher was calibrated with.
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		RejectBelow:       0.60,
		SmartLimit:        0.95,
		StraightLimit:     0.93,
		MinPairLimit:      0.8,
		ListCutoff:        0.93,
		MaxVariants:       1000,
		MinPrefixLen:      10,
		MaxSplits:         7,
		NoiseRatio:        90,
		DeclarationCutoff: 0.93,
	}
}

// Matcher compares person names. It holds no state beyond its thresholds and
// is safe for concurrent use.
type Matcher struct {
	cfg     MatchingConfig
	permCap int
}

// NewMatcher creates a Matcher with the given thresholds.
func NewMatcher(cfg MatchingConfig) *Matcher {
	permCap := 1
	for i := 2; i <= cfg.MaxSplits; i++ {
		permCap *= i
	}
	return &Matcher{cfg: cfg, permCap: permCap}
}

var slugReplacer = strings.NewReplacer(
	" ", "", ".", "", `"`, "", "'", "", "`", "", "’", "", "ʼ", "",
	"є", "е", "і", "и", "ї", "и", "i", "и", "ь", "",
	"a", "а", "e", "е", "o", "о", "p", "р", "c", "с", "x", "х", "y", "у",
)

func normalizeName(s string) string {
	s = norm.NFC.String(strings.ToLower(s))
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

func slugifyName(s string) string {
	s = slugReplacer.Replace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
}

// NamesMatch reports whether b is a variant of a. Only b's tokens are
// reordered on the fuzzy path, so NamesMatch(a, b) may differ from
// NamesMatch(b, a); use MatchEither for a symmetric verdict.
func (m *Matcher) NamesMatch(a, b string) bool {
	a, b = normalizeName(a), normalizeName(b)
	sa, sb := slugifyName(a), slugifyName(b)

	if m.slugsMatch(sa, sb) {
		return true
	}

	ra, rb := []rune(sa), []rune(sb)
	forward := jaro(ra, rb)
	if forward < m.cfg.RejectBelow {
		return false
	}
	if forward > m.cfg.SmartLimit || jaro(rb, ra) > m.cfg.SmartLimit {
		return true
	}

	return m.compareTwoNames(a, b)
}

// MatchEither is the symmetric form of NamesMatch.
func (m *Matcher) MatchEither(a, b string) bool {
	return m.NamesMatch(a, b) || m.NamesMatch(b, a)
}

// Similarity is the best Jaro score observed between the two names on any
// path NamesMatch takes, in both directions. Exact and prefix slug matches
// score 1.
func (m *Matcher) Similarity(a, b string) float64 {
	a, b = normalizeName(a), normalizeName(b)
	sa, sb := slugifyName(a), slugifyName(b)
	if m.slugsMatch(sa, sb) {
		return 1
	}
	best := max(jaroStrings(sa, sb), jaroStrings(sb, sa))
	if best < m.cfg.RejectBelow {
		return best
	}
	return max(best, m.bestPermutation(a, b), m.bestPermutation(b, a))
}

// ListsMatch returns every cross pair whose similarity exceeds the list
// cutoff. It refuses to compare more than MaxVariants pairs.
func (m *Matcher) ListsMatch(as, bs []string) ([]entities.NamePair, error) {
	if len(as)*len(bs) > m.cfg.MaxVariants {
		return nil, fmt.Errorf("%w: %d x %d", entities.ErrTooManyVariants, len(as), len(bs))
	}
	var pairs []entities.NamePair
	for _, a := range as {
		for _, b := range bs {
			if score := m.Similarity(a, b); score > m.cfg.ListCutoff {
				pairs = append(pairs, entities.NamePair{A: a, B: b, Score: score})
			}
		}
	}
	return pairs, nil
}

func (m *Matcher) slugsMatch(sa, sb string) bool {
	if sa == sb {
		return true
	}
	if strings.HasPrefix(sa, sb) && len([]rune(sb)) >= m.cfg.MinPrefixLen {
		return true
	}
	return strings.HasPrefix(sb, sa) && len([]rune(sa)) >= m.cfg.MinPrefixLen
}

func (m *Matcher) compareTwoNames(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	straight := jaro(ra, rb)
	if straight > m.cfg.SmartLimit {
		return true
	}

	if straight > m.cfg.StraightLimit {
		tokensA, tokensB := strings.Split(a, " "), strings.Split(b, " ")
		minPair := 1.0
		for i := 0; i < min(len(tokensA), len(tokensB)); i++ {
			minPair = min(minPair, jaroStrings(tokensA[i], tokensB[i]))
		}
		if minPair > m.cfg.MinPairLimit {
			return true
		}
	}

	return m.bestPermutation(a, b) > m.cfg.SmartLimit
}

// bestPermutation returns the best Jaro score between a and any reordering
// of b's tokens, visiting at most MaxSplits! orderings.
func (m *Matcher) bestPermutation(a, b string) float64 {
	ra := []rune(a)
	tokens := strings.Split(b, " ")
	best := 0.0
	permute(len(tokens), m.permCap, func(idx []int) {
		var sb strings.Builder
		for i, k := range idx {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(tokens[k])
		}
		best = max(best, jaro(ra, []rune(sb.String())))
	})
	return best
}

// permute calls visit with index orderings of n elements in lexicographic
// order, stopping after limit orderings.
func permute(n, limit int, visit func([]int)) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for count := 0; count < limit; count++ {
		visit(idx)
		i := n - 2
		for i >= 0 && idx[i] >= idx[i+1] {
			i--
		}
		if i < 0 {
			return
		}
		j := n - 1
		for idx[j] <= idx[i] {
			j--
		}
		idx[i], idx[j] = idx[j], idx[i]
		for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
			idx[l], idx[r] = idx[r], idx[l]
		}
	}
}
