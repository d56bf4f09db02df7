package matching

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"talent-match/internal/embedding"
	"talent-match/internal/graph"
)

// EventSubScore asks a worker to evaluate one combo for one pair.
const EventSubScore = "match.subscore"

// SubScorePayload is the body of a sub-score evaluation event.
type SubScorePayload struct {
	JobID       int64  `json:"job_id"`
	CandidateID int64  `json:"candidate_id"`
	Combo       string `json:"combo"`
}

// Embedder reads stored node embeddings.
type Embedder interface {
	NodeEmbedding(ctx context.Context, nodeType, nodeID string) ([]float32, error)
}

// VectorIndex runs similarity searches over embedded nodes.
type VectorIndex interface {
	SimilaritySearch(ctx context.Context, queryVec []float32, nodeType string, threshold float64, limit int) ([]embedding.NodeScore, error)
}

// MatchStore persists discovered pairs.
type MatchStore interface {
	UpsertOriginalScore(ctx context.Context, jobID, candidateID int64, score float64) error
	MatchPairExists(ctx context.Context, jobID, candidateID int64) (bool, error)
}

// EventSink receives follow-up work for discovered pairs.
type EventSink interface {
	Dispatch(ctx context.Context, eventType string, payload interface{}) error
}

// Match is one discovered job/candidate pairing.
type Match struct {
	JobID       int64   `json:"job_id"`
	CandidateID int64   `json:"candidate_id"`
	Score       float64 `json:"score"`
	New         bool    `json:"new"`
}

// Orchestrator discovers job/candidate pairs by vector similarity, persists
// them, and fans out per-combo evaluation work for pairs seen for the first
// time.
type Orchestrator struct {
	embedder  Embedder
	index     VectorIndex
	store     MatchStore
	events    EventSink
	threshold float64
	limit     int
}

func NewOrchestrator(embedder Embedder, index VectorIndex, store MatchStore, events EventSink, threshold float64, limit int) *Orchestrator {
	if limit <= 0 {
		limit = 50
	}
	return &Orchestrator{
		embedder:  embedder,
		index:     index,
		store:     store,
		events:    events,
		threshold: threshold,
		limit:     limit,
	}
}

// FindJobMatches searches candidates for the given job. A job that has no
// embedding yet is a quiet no-op: matching waits until the embedding lands.
func (o *Orchestrator) FindJobMatches(ctx context.Context, jobID int64) ([]Match, error) {
	vec, err := o.embedder.NodeEmbedding(ctx, graph.NodeJob, graph.JobNodeID(jobID))
	if err != nil {
		return nil, fmt.Errorf("failed to load job embedding: %w", err)
	}
	if vec == nil {
		log.Printf("[Matching] Job %d has no embedding yet, skipping", jobID)
		return nil, nil
	}

	scores, err := o.index.SimilaritySearch(ctx, vec, graph.NodeCandidate, o.threshold, o.limit)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}

	var matches []Match
	for _, ns := range scores {
		candidateID, err := parseNodeSuffix(ns.NodeID, graph.NodeCandidate)
		if err != nil {
			log.Printf("[Matching] Skipping malformed candidate node %q: %v", ns.NodeID, err)
			continue
		}
		m, err := o.recordPair(ctx, jobID, candidateID, ns.Similarity)
		if err != nil {
			log.Printf("[Matching] Failed to record pair job=%d candidate=%d: %v", jobID, candidateID, err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// FindCandidateMatches searches jobs for the given candidate.
func (o *Orchestrator) FindCandidateMatches(ctx context.Context, candidateID int64) ([]Match, error) {
	vec, err := o.embedder.NodeEmbedding(ctx, graph.NodeCandidate, graph.CandidateNodeID(candidateID))
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate embedding: %w", err)
	}
	if vec == nil {
		log.Printf("[Matching] Candidate %d has no embedding yet, skipping", candidateID)
		return nil, nil
	}

	scores, err := o.index.SimilaritySearch(ctx, vec, graph.NodeJob, o.threshold, o.limit)
	if err != nil {
		return nil, fmt.Errorf("job search failed: %w", err)
	}

	var matches []Match
	for _, ns := range scores {
		jobID, err := parseNodeSuffix(ns.NodeID, graph.NodeJob)
		if err != nil {
			log.Printf("[Matching] Skipping malformed job node %q: %v", ns.NodeID, err)
			continue
		}
		m, err := o.recordPair(ctx, jobID, candidateID, ns.Similarity)
		if err != nil {
			log.Printf("[Matching] Failed to record pair job=%d candidate=%d: %v", jobID, candidateID, err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// recordPair upserts the original score and, for pairs seen for the first
// time, dispatches one sub-score evaluation per combo. Re-discovered pairs
// only refresh the score; their combo work already ran or is in flight.
func (o *Orchestrator) recordPair(ctx context.Context, jobID, candidateID int64, score float64) (Match, error) {
	exists, err := o.store.MatchPairExists(ctx, jobID, candidateID)
	if err != nil {
		return Match{}, err
	}

	if err := o.store.UpsertOriginalScore(ctx, jobID, candidateID, score); err != nil {
		return Match{}, err
	}

	if !exists {
		for _, combo := range AllCombos() {
			payload := SubScorePayload{JobID: jobID, CandidateID: candidateID, Combo: combo.Key}
			if err := o.events.Dispatch(ctx, EventSubScore, payload); err != nil {
				log.Printf("[Matching] Failed to dispatch combo %s for job=%d candidate=%d: %v",
					combo.Key, jobID, candidateID, err)
			}
		}
	}

	return Match{JobID: jobID, CandidateID: candidateID, Score: score, New: !exists}, nil
}

// parseNodeSuffix extracts the relational id from a graph node id such as
// "job_42" or "candidate_7".
func parseNodeSuffix(nodeID, nodeType string) (int64, error) {
	prefix := nodeType + "_"
	if !strings.HasPrefix(nodeID, prefix) {
		return 0, fmt.Errorf("node id %q does not match type %q", nodeID, nodeType)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(nodeID, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("node id %q has non-numeric suffix", nodeID)
	}
	return id, nil
}
