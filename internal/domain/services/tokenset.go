package services

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenSetRatio scores two strings 0..100 by comparing their token sets,
// so reordered or repeated words do not lower the score. A single-letter
// token on one side is first expanded to an unmatched word on the other
// side starting with that letter, so "петров п. п." and
// "петров петро петрович" compare as equal.
func TokenSetRatio(a, b string) int {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	ta, tb = expandInitials(ta, tb), expandInitials(tb, ta)

	setA, setB := tokenSet(ta), tokenSet(tb)
	var inter, onlyA, onlyB []string
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	slices.Sort(inter)
	slices.Sort(onlyA)
	slices.Sort(onlyB)

	sect := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	return max(
		indelRatio(sect, combinedA),
		indelRatio(sect, combinedB),
		indelRatio(combinedA, combinedB),
	)
}

func tokenize(s string) []string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Fields(s)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func expandInitials(tokens, other []string) []string {
	own := tokenSet(tokens)
	candidates := slices.Clone(other)
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)
	used := make(map[string]bool)

	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t
		if utf8.RuneCountInString(t) != 1 {
			continue
		}
		for _, c := range candidates {
			if _, mine := own[c]; mine || used[c] || utf8.RuneCountInString(c) < 2 {
				continue
			}
			if strings.HasPrefix(c, t) {
				out[i] = c
				used[c] = true
				break
			}
		}
	}
	return out
}

// indelRatio is 100 * 2*LCS / (len(a)+len(b)), rounded.
func indelRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(rb)]
	total := len(ra) + len(rb)
	return (200*lcs + total/2) / total
}
