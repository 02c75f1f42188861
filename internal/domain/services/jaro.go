package services

// jaro returns the Jaro similarity of two rune strings in [0, 1].
func jaro(a, b []rune) float64 {
	la, lb := len(a), len(b)
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}

	window := max(la, lb)/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, la)
	matchedB := make([]bool, lb)
	matches := 0
	for i := range a {
		lo := max(0, i-window)
		hi := min(lb-1, i+window)
		for j := lo; j <= hi; j++ {
			if matchedB[j] || a[i] != b[j] {
				continue
			}
			matchedA[i], matchedB[j] = true, true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	mismatched := 0
	k := 0
	for i := range a {
		if !matchedA[i] {
			continue
		}
		for !matchedB[k] {
			k++
		}
		if a[i] != b[k] {
			mismatched++
		}
		k++
	}

	m := float64(matches)
	t := float64(mismatched) / 2
	return (m/float64(la) + m/float64(lb) + (m-t)/m) / 3
}

func jaroStrings(a, b string) float64 {
	return jaro([]rune(a), []rune(b))
}
