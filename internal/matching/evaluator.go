package matching

import (
	"context"
	"fmt"
	"strings"

	"talent-match/internal/embedding"
)

// RelationReader reads the text values of one relationship type for a job or
// a candidate.
type RelationReader interface {
	JobRelationValues(ctx context.Context, jobID int64, relType string) ([]string, error)
	CandidateRelationValues(ctx context.Context, candidateID int64, relType string) ([]string, error)
}

// TextEmbedder turns free text into an embedding vector.
type TextEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Evaluator computes per-combo sub-scores by embedding the two relation
// value sets and measuring their cosine similarity.
type Evaluator struct {
	relations RelationReader
	embedder  TextEmbedder
}

func NewEvaluator(relations RelationReader, embedder TextEmbedder) *Evaluator {
	return &Evaluator{relations: relations, embedder: embedder}
}

// EvaluateTalentMatch scores one combo for one pair. When either side has no
// values for the combo's relationship the score is 0 and no embedding call
// is made.
func (e *Evaluator) EvaluateTalentMatch(ctx context.Context, jobID, candidateID int64, comboKey string) (float64, error) {
	combo, err := ResolveCombo(comboKey)
	if err != nil {
		return 0, err
	}

	jobValues, err := e.relations.JobRelationValues(ctx, jobID, combo.JobRel)
	if err != nil {
		return 0, fmt.Errorf("failed to read job relations: %w", err)
	}
	candValues, err := e.relations.CandidateRelationValues(ctx, candidateID, combo.CandidateRel)
	if err != nil {
		return 0, fmt.Errorf("failed to read candidate relations: %w", err)
	}
	if len(jobValues) == 0 || len(candValues) == 0 {
		return 0, nil
	}

	jobVec, err := e.embedder.GenerateEmbedding(ctx, strings.Join(jobValues, ", "))
	if err != nil {
		return 0, fmt.Errorf("failed to embed job side: %w", err)
	}
	candVec, err := e.embedder.GenerateEmbedding(ctx, strings.Join(candValues, ", "))
	if err != nil {
		return 0, fmt.Errorf("failed to embed candidate side: %w", err)
	}

	return embedding.CosineSimilarity(jobVec, candVec), nil
}
