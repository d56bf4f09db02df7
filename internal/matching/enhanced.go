package matching

// CalculateEnhancedScore blends the original whole-document similarity with
// whatever combo sub-scores have landed so far. Absent sub-scores are left
// out and the remaining weights are renormalized, so the blend stays a
// weighted mean at every stage of the pipeline. The result is clamped to
// [0, 1].
func CalculateEnhancedScore(originalScore float64, subScores map[string]float64) float64 {
	weightSum := originalScoreWeight
	weighted := originalScoreWeight * originalScore

	for _, key := range comboKeys {
		score, ok := subScores[key]
		if !ok {
			continue
		}
		combo := comboTable[key]
		weightSum += combo.Weight
		weighted += combo.Weight * score
	}

	enhanced := weighted / weightSum
	if enhanced < 0 {
		return 0
	}
	if enhanced > 1 {
		return 1
	}
	return enhanced
}
