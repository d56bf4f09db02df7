package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEnhancedScore(t *testing.T) {
	t.Run("no sub-scores returns original", func(t *testing.T) {
		assert.InDelta(t, 0.8, CalculateEnhancedScore(0.8, nil), 1e-9)
		assert.InDelta(t, 0.8, CalculateEnhancedScore(0.8, map[string]float64{}), 1e-9)
	})

	t.Run("all scores equal keeps the value", func(t *testing.T) {
		subs := map[string]float64{"A": 0.6, "B": 0.6, "C": 0.6, "D": 0.6, "E": 0.6, "F": 0.6}
		assert.InDelta(t, 0.6, CalculateEnhancedScore(0.6, subs), 1e-9)
	})

	t.Run("full weighted blend", func(t *testing.T) {
		subs := map[string]float64{"A": 1, "B": 1, "C": 1, "D": 1, "E": 1, "F": 1}
		// 0.4*0.5 + 0.6*1.0 over total weight 1.0
		assert.InDelta(t, 0.8, CalculateEnhancedScore(0.5, subs), 1e-9)
	})

	t.Run("partial sub-scores renormalize", func(t *testing.T) {
		// only A landed: (0.40*0.5 + 0.15*1.0) / 0.55
		got := CalculateEnhancedScore(0.5, map[string]float64{"A": 1})
		assert.InDelta(t, 0.35/0.55, got, 1e-9)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		got := CalculateEnhancedScore(0.5, map[string]float64{"Z": 1})
		assert.InDelta(t, 0.5, got, 1e-9)
	})

	t.Run("result stays in unit range", func(t *testing.T) {
		for _, original := range []float64{-0.2, 0, 0.5, 1, 1.3} {
			for _, sub := range []float64{-0.5, 0, 0.5, 1, 2} {
				got := CalculateEnhancedScore(original, map[string]float64{"A": sub, "D": sub})
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, 1.0)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		subs := map[string]float64{"A": 0.3, "C": 0.9, "F": 0.1}
		first := CalculateEnhancedScore(0.7, subs)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, CalculateEnhancedScore(0.7, subs))
		}
	})
}

func TestComboTable(t *testing.T) {
	t.Run("unknown combo is an error", func(t *testing.T) {
		_, err := ResolveCombo("Z")
		assert.Error(t, err)
	})

	t.Run("known combos resolve", func(t *testing.T) {
		for _, key := range []string{"A", "B", "C", "D", "E", "F"} {
			c, err := ResolveCombo(key)
			assert.NoError(t, err)
			assert.Equal(t, key, c.Key)
			assert.NotEmpty(t, c.JobRel)
			assert.NotEmpty(t, c.CandidateRel)
		}
	})

	t.Run("weights sum to one with the original score", func(t *testing.T) {
		total := originalScoreWeight
		for _, c := range AllCombos() {
			total += c.Weight
		}
		assert.InDelta(t, 1.0, total, 1e-9)
	})

	t.Run("evaluation order is stable", func(t *testing.T) {
		combos := AllCombos()
		assert.Len(t, combos, 6)
		for i, key := range []string{"A", "B", "C", "D", "E", "F"} {
			assert.Equal(t, key, combos[i].Key)
		}
	})
}
