package interview

// matchRatio measures how much of two strings is shared, as
// 2*LCS / (len(a)+len(b)) over runes. 1.0 means identical, 0.0 disjoint.
// Inputs are truncated to a fixed window so the quadratic DP stays cheap
// on very long answers.
func matchRatio(a, b string) float64 {
	const window = 2000
	ra := truncateRunes([]rune(a), window)
	rb := truncateRunes([]rune(b), window)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	return 2.0 * float64(lcs(ra, rb)) / float64(len(ra)+len(rb))
}

func truncateRunes(r []rune, n int) []rune {
	if len(r) > n {
		return r[:n]
	}
	return r
}

// lcs is the classic longest-common-subsequence length with two rolling rows.
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
