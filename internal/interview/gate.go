package interview

// Gate decides whether enough material has been collected. Both conditions
// must hold: answer count and total answer length (in runes, summed across
// all themes).
type Gate struct {
	MinAnswers    int
	MinTotalChars int
}

// Sufficient reports whether the collected material clears both thresholds.
func (g Gate) Sufficient(answerCount, totalChars int) bool {
	return answerCount >= g.MinAnswers && totalChars >= g.MinTotalChars
}
