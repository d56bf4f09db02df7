package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-match/internal/embedding"
	"talent-match/internal/graph"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) NodeEmbedding(_ context.Context, nodeType, nodeID string) ([]float32, error) {
	return f.vectors[nodeType+"/"+nodeID], nil
}

type fakeIndex struct {
	results       []embedding.NodeScore
	lastType      string
	lastThreshold float64
	callCount     int
}

func (f *fakeIndex) SimilaritySearch(_ context.Context, _ []float32, nodeType string, threshold float64, _ int) ([]embedding.NodeScore, error) {
	f.callCount++
	f.lastType = nodeType
	f.lastThreshold = threshold
	return f.results, nil
}

type fakeMatchStore struct {
	existing map[string]bool
	upserts  []string
}

func pairKey(jobID, candID int64) string { return fmt.Sprintf("%d/%d", jobID, candID) }

func (f *fakeMatchStore) UpsertOriginalScore(_ context.Context, jobID, candID int64, _ float64) error {
	f.upserts = append(f.upserts, pairKey(jobID, candID))
	return nil
}

func (f *fakeMatchStore) MatchPairExists(_ context.Context, jobID, candID int64) (bool, error) {
	return f.existing[pairKey(jobID, candID)], nil
}

type fakeSink struct {
	dispatched []SubScorePayload
}

func (f *fakeSink) Dispatch(_ context.Context, eventType string, payload interface{}) error {
	if eventType == EventSubScore {
		f.dispatched = append(f.dispatched, payload.(SubScorePayload))
	}
	return nil
}

func TestFindJobMatchesSkipsWithoutEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	index := &fakeIndex{}
	store := &fakeMatchStore{existing: map[string]bool{}}
	sink := &fakeSink{}

	o := NewOrchestrator(embedder, index, store, sink, 0.72, 10)

	matches, err := o.FindJobMatches(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, matches)
	assert.Zero(t, index.callCount, "no search should run without a vector")
	assert.Empty(t, store.upserts)
}

func TestFindJobMatchesFansOutCombosForNewPairs(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"job/" + graph.JobNodeID(1): {0.1, 0.2},
	}}
	index := &fakeIndex{results: []embedding.NodeScore{
		{NodeID: graph.CandidateNodeID(7), Similarity: 0.91},
		{NodeID: graph.CandidateNodeID(8), Similarity: 0.85},
	}}
	store := &fakeMatchStore{existing: map[string]bool{
		pairKey(1, 8): true, // already discovered
	}}
	sink := &fakeSink{}

	o := NewOrchestrator(embedder, index, store, sink, 0.72, 10)

	matches, err := o.FindJobMatches(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.True(t, matches[0].New)
	assert.False(t, matches[1].New)
	assert.Equal(t, graph.NodeCandidate, index.lastType)
	assert.Equal(t, 0.72, index.lastThreshold, "configured threshold reaches the search")

	// both pairs get their score refreshed
	assert.Equal(t, []string{pairKey(1, 7), pairKey(1, 8)}, store.upserts)

	// only the new pair fans out, once per combo
	require.Len(t, sink.dispatched, 6)
	seen := map[string]bool{}
	for _, p := range sink.dispatched {
		assert.Equal(t, int64(1), p.JobID)
		assert.Equal(t, int64(7), p.CandidateID)
		assert.False(t, seen[p.Combo], "combo %s dispatched twice", p.Combo)
		seen[p.Combo] = true
	}
}

func TestFindJobMatchesSkipsMalformedNodes(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"job/" + graph.JobNodeID(1): {0.1},
	}}
	index := &fakeIndex{results: []embedding.NodeScore{
		{NodeID: "candidate_notanumber", Similarity: 0.9},
		{NodeID: graph.CandidateNodeID(3), Similarity: 0.8},
	}}
	store := &fakeMatchStore{existing: map[string]bool{}}
	sink := &fakeSink{}

	o := NewOrchestrator(embedder, index, store, sink, 0.72, 10)

	matches, err := o.FindJobMatches(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(3), matches[0].CandidateID)
}

func TestFindCandidateMatchesSearchesJobs(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"candidate/" + graph.CandidateNodeID(5): {0.4, 0.6},
	}}
	index := &fakeIndex{results: []embedding.NodeScore{
		{NodeID: graph.JobNodeID(11), Similarity: 0.77},
	}}
	store := &fakeMatchStore{existing: map[string]bool{}}
	sink := &fakeSink{}

	o := NewOrchestrator(embedder, index, store, sink, 0.72, 10)

	matches, err := o.FindCandidateMatches(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, graph.NodeJob, index.lastType)
	assert.Equal(t, 0.72, index.lastThreshold)
	assert.Equal(t, int64(11), matches[0].JobID)
	assert.Equal(t, int64(5), matches[0].CandidateID)
}
