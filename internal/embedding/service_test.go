package embedding

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilaritySearchPassesThresholdToQuery(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	s := NewService("test-key", conn)

	mock.ExpectQuery(regexp.QuoteMeta(">= $3")).
		WithArgs("[0.5,0.5]", "candidate", 0.72, 10).
		WillReturnRows(sqlmock.NewRows([]string{"node_id", "similarity"}).
			AddRow("candidate_7", 0.91))

	scores, err := s.SimilaritySearch(context.Background(), []float32{0.5, 0.5}, "candidate", 0.72, 10)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "candidate_7", scores[0].NodeID)
	assert.InDelta(t, 0.91, scores[0].Similarity, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNodeEmbeddingMissingNodeIsNil(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	s := NewService("test-key", conn)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT embedding::text FROM graph_nodes")).
		WithArgs("job", "job_99").
		WillReturnRows(sqlmock.NewRows([]string{"embedding"}))

	vec, err := s.NodeEmbedding(context.Background(), "job", "job_99")
	require.NoError(t, err)
	assert.Nil(t, vec)
}
