package embedding

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	openAIEmbeddingURL = "https://api.openai.com/v1/embeddings"
	embeddingModel     = "text-embedding-3-small"
	embeddingDims      = 1536
)

// Service generates embeddings through the OpenAI API and stores them on
// graph nodes.
type Service struct {
	apiKey     string
	httpClient *http.Client
	db         *sql.DB
}

func NewService(apiKey string, db *sql.DB) *Service {
	return &Service{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		db: db,
	}
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateEmbedding returns the embedding vector for the given text.
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not configured")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	reqBody, err := json.Marshal(embeddingRequest{
		Input: text,
		Model: embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", openAIEmbeddingURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding API returned %d: %s", resp.StatusCode, string(body))
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", result.Error.Message)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("embedding API returned no data")
	}

	vec := result.Data[0].Embedding
	if len(vec) != embeddingDims {
		return nil, fmt.Errorf("unexpected embedding dimension %d", len(vec))
	}
	return vec, nil
}

// EmbedNode generates an embedding for the text and stores it on the graph
// node identified by (nodeType, nodeID).
func (s *Service) EmbedNode(ctx context.Context, nodeType, nodeID, text string) error {
	vec, err := s.GenerateEmbedding(ctx, text)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE graph_nodes
		SET embedding = $1, embedding_model = $2, embedding_created_at = NOW()
		WHERE node_type = $3 AND node_id = $4
	`, formatVector(vec), embeddingModel, nodeType, nodeID)
	if err != nil {
		return fmt.Errorf("failed to store embedding for %s:%s: %w", nodeType, nodeID, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("node %s:%s not found", nodeType, nodeID)
	}
	return nil
}

// NodeEmbedding reads back the stored vector for a node. Nodes without an
// embedding return (nil, nil) so callers can treat them as not yet indexed.
func (s *Service) NodeEmbedding(ctx context.Context, nodeType, nodeID string) ([]float32, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT embedding::text FROM graph_nodes WHERE node_type = $1 AND node_id = $2
	`, nodeType, nodeID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	return parseVector(raw.String)
}

// NodeScore pairs a graph node with its similarity to a query vector.
type NodeScore struct {
	NodeID     string  `json:"node_id"`
	Similarity float64 `json:"similarity"`
}

// SimilaritySearch finds nodes of the given type whose embeddings are at
// least threshold-similar to the query vector, best first.
func (s *Service) SimilaritySearch(ctx context.Context, queryVec []float32, nodeType string, threshold float64, limit int) ([]NodeScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, 1 - (embedding <=> $1) AS similarity
		FROM graph_nodes
		WHERE node_type = $2 AND embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $3
		ORDER BY embedding <=> $1
		LIMIT $4
	`, formatVector(queryVec), nodeType, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	defer rows.Close()

	var scores []NodeScore
	for rows.Next() {
		var ns NodeScore
		if err := rows.Scan(&ns.NodeID, &ns.Similarity); err != nil {
			return nil, err
		}
		scores = append(scores, ns)
	}
	return scores, rows.Err()
}

// EmbedAllPending embeds every node of the given type that has no vector yet.
// Returns the number of nodes embedded. Failures are logged and skipped so a
// single bad node cannot stall the backfill.
func (s *Service) EmbedAllPending(ctx context.Context, nodeType string, limit int) (int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, COALESCE(properties->>'name', node_id)
		FROM graph_nodes
		WHERE node_type = $1 AND embedding IS NULL
		ORDER BY id
		LIMIT $2
	`, nodeType, limit)
	if err != nil {
		return 0, err
	}

	type pending struct {
		nodeID string
		text   string
	}
	var work []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.nodeID, &p.text); err != nil {
			rows.Close()
			return 0, err
		}
		work = append(work, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	embedded := 0
	for _, p := range work {
		if err := s.EmbedNode(ctx, nodeType, p.nodeID, p.text); err != nil {
			log.Printf("[Embedding] Failed to embed %s:%s: %v", nodeType, p.nodeID, err)
			continue
		}
		embedded++
	}
	return embedded, nil
}

// formatVector renders a float32 slice as a pgvector literal.
func formatVector(vec []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// parseVector parses a pgvector text literal back into a float32 slice.
func parseVector(raw string) ([]float32, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	vec := make([]float32, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("malformed vector element %q: %w", p, err)
		}
		vec = append(vec, float32(f))
	}
	return vec, nil
}
