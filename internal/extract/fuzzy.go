package extract

// PartialRatio scores how well the shorter string fits inside the longer one
// on a 0-100 scale. Every alignment of the shorter string against the longer
// one is compared with the Indel similarity 100*2*LCS/(len(a)+len(b)), including
// alignments that hang over either end, and the best score wins.
func PartialRatio(a, b string) float64 {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}
	if len(s1) > len(s2) {
		s1, s2 = s2, s1
	}

	m, n := len(s1), len(s2)
	best := 0.0

	consider := func(window []rune) bool {
		if r := indelRatio(s1, window); r > best {
			best = r
		}
		return best == 100
	}

	for i := 0; i+m <= n; i++ {
		if consider(s2[i : i+m]) {
			return best
		}
	}
	for k := 1; k < m; k++ {
		if consider(s2[:k]) || consider(s2[n-k:]) {
			return best
		}
	}

	return best
}

func indelRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 100 * float64(2*lcsLength(a, b)) / float64(total)
}

func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
