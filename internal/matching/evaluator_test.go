package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-match/internal/graph"
)

type fakeRelations struct {
	jobValues  map[string][]string
	candValues map[string][]string
}

func (f *fakeRelations) JobRelationValues(_ context.Context, _ int64, relType string) ([]string, error) {
	return f.jobValues[relType], nil
}

func (f *fakeRelations) CandidateRelationValues(_ context.Context, _ int64, relType string) ([]string, error) {
	return f.candValues[relType], nil
}

type fakeTextEmbedder struct {
	calls   int
	vectors map[string][]float32
}

func (f *fakeTextEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0}, nil
}

func TestEvaluateTalentMatchUnknownCombo(t *testing.T) {
	e := NewEvaluator(&fakeRelations{}, &fakeTextEmbedder{})
	_, err := e.EvaluateTalentMatch(context.Background(), 1, 2, "X")
	assert.Error(t, err)
}

func TestEvaluateTalentMatchEmptySideSkipsEmbedding(t *testing.T) {
	relations := &fakeRelations{
		jobValues:  map[string][]string{graph.RelRequiresSkill: {"Go", "Postgres"}},
		candValues: map[string][]string{},
	}
	embedder := &fakeTextEmbedder{}

	e := NewEvaluator(relations, embedder)
	score, err := e.EvaluateTalentMatch(context.Background(), 1, 2, "A")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
	assert.Zero(t, embedder.calls, "no embedding call for an empty side")
}

func TestEvaluateTalentMatchEmbedsJoinedValues(t *testing.T) {
	relations := &fakeRelations{
		jobValues:  map[string][]string{graph.RelRequiresSkill: {"Go", "Postgres"}},
		candValues: map[string][]string{graph.RelHasSkill: {"Go", "Postgres"}},
	}
	embedder := &fakeTextEmbedder{vectors: map[string][]float32{
		"Go, Postgres": {0.6, 0.8},
	}}

	e := NewEvaluator(relations, embedder)
	score, err := e.EvaluateTalentMatch(context.Background(), 1, 2, "A")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.Equal(t, 2, embedder.calls)
}

func TestEvaluateTalentMatchDissimilarSides(t *testing.T) {
	relations := &fakeRelations{
		jobValues:  map[string][]string{graph.RelRequiredCert: {"CISSP"}},
		candValues: map[string][]string{graph.RelHasCertification: {"CPA"}},
	}
	embedder := &fakeTextEmbedder{vectors: map[string][]float32{
		"CISSP": {1, 0},
		"CPA":   {0, 1},
	}}

	e := NewEvaluator(relations, embedder)
	score, err := e.EvaluateTalentMatch(context.Background(), 1, 2, "C")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-9)
}
