package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		v := []float32{0.5, 0.3, 0.2}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{0, 1}
		assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-9)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		a := []float32{1, 2}
		b := []float32{-1, -2}
		assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-9)
	})

	t.Run("mismatched lengths yield zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	})

	t.Run("zero vector yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	})

	t.Run("empty vectors yield zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	})
}

func TestVectorFormatting(t *testing.T) {
	vec := []float32{0.25, -1.5, 3}

	formatted := formatVector(vec)
	assert.Equal(t, "[0.25,-1.5,3]", formatted)

	parsed, err := parseVector(formatted)
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	for i := range vec {
		assert.InDelta(t, vec[i], parsed[i], 1e-6)
	}
}

func TestParseVectorRejectsGarbage(t *testing.T) {
	_, err := parseVector("[1,two,3]")
	assert.Error(t, err)
}

func TestParseVectorEmpty(t *testing.T) {
	parsed, err := parseVector("[]")
	require.NoError(t, err)
	assert.Empty(t, parsed)
}
