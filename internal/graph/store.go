package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Node labels used in the property graph projection.
const (
	NodeJob            = "job"
	NodeCandidate      = "candidate"
	NodeCompany        = "company"
	NodeSkill          = "skill"
	NodeSoftSkill      = "soft_skill"
	NodeCertification  = "certification"
	NodeEducation      = "education"
	NodeWorkplace      = "workplace"
	NodeRole           = "role"
	NodeBenefit        = "benefit"
	NodeResponsibility = "responsibility"
)

// Relationship types. Job-side relations hang off job nodes, candidate-side
// relations off candidate nodes.
const (
	RelRequiresSkill     = "REQUIRES_SKILL"
	RelPrefersSkill      = "PREFERS_SKILL"
	RelHasSkill          = "HAS_SKILL"
	RelHasSoftSkill      = "HAS_SOFT_SKILL"
	RelWorkedAt          = "WORKED_AT"
	RelStudiedAt         = "STUDIED_AT"
	RelHasCertification  = "HAS_CERTIFICATION"
	RelRequiredCert      = "REQUIRED_CERTIFICATION"
	RelSuitableForRole   = "SUITABLE_FOR_ROLE"
	RelOffersBenefit     = "OFFERS_BENEFIT"
	RelHasResponsibility = "HAS_RESPONSIBILITY"
	RelPostsJob          = "POSTS_JOB"
)

// Entity is a node to be created or updated.
type Entity struct {
	Type       string
	Value      string
	Properties map[string]interface{}
}

// Relationship is a typed edge between two nodes.
type Relationship struct {
	SourceType string
	SourceID   string
	TargetType string
	TargetID   string
	EdgeType   string
	Properties map[string]interface{}
}

// Store issues parameterized reads and writes against the property graph
// tables. Every query uses positional parameters; no query text is ever
// assembled from input values.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// JobNodeID and CandidateNodeID map relational ids onto graph node ids.
func JobNodeID(jobID int64) string { return fmt.Sprintf("job_%d", jobID) }
func CandidateNodeID(candID int64) string { return fmt.Sprintf("candidate_%d", candID) }

// CreateNodes inserts or updates graph nodes.
func (s *Store) CreateNodes(ctx context.Context, entities []Entity) error {
	for _, entity := range entities {
		props, err := json.Marshal(entity.Properties)
		if err != nil {
			return fmt.Errorf("failed to marshal properties: %w", err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO graph_nodes (node_type, node_id, properties)
			VALUES ($1, $2, $3)
			ON CONFLICT (node_type, node_id)
			DO UPDATE SET properties = EXCLUDED.properties
		`, entity.Type, entity.Value, props)

		if err != nil {
			return fmt.Errorf("failed to create node %s:%s: %w", entity.Type, entity.Value, err)
		}
	}

	return nil
}

// CreateEdges inserts relationships between nodes. Edges whose endpoints are
// missing are skipped; duplicates are absorbed by the unique constraint.
func (s *Store) CreateEdges(ctx context.Context, relationships []Relationship) error {
	for _, rel := range relationships {
		var sourceID int64
		err := s.db.QueryRowContext(ctx, `
			SELECT id FROM graph_nodes WHERE node_type = $1 AND node_id = $2
		`, rel.SourceType, rel.SourceID).Scan(&sourceID)
		if err != nil {
			continue
		}

		var targetID int64
		err = s.db.QueryRowContext(ctx, `
			SELECT id FROM graph_nodes WHERE node_type = $1 AND node_id = $2
		`, rel.TargetType, rel.TargetID).Scan(&targetID)
		if err != nil {
			continue
		}

		props, _ := json.Marshal(rel.Properties)
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO graph_edges (source_node_id, target_node_id, edge_type, properties)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (source_node_id, target_node_id, edge_type) DO NOTHING
		`, sourceID, targetID, rel.EdgeType, props)

		if err != nil {
			return fmt.Errorf("failed to create edge: %w", err)
		}
	}

	return nil
}

// RelationValues projects one relationship type of a node into the text
// values of its related nodes (the "name" property bag entry).
func (s *Store) RelationValues(ctx context.Context, nodeType, nodeID, relType string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tn.properties->>'name'
		FROM graph_edges e
		INNER JOIN graph_nodes sn ON e.source_node_id = sn.id
		INNER JOIN graph_nodes tn ON e.target_node_id = tn.id
		WHERE sn.node_type = $1 AND sn.node_id = $2 AND e.edge_type = $3
	`, nodeType, nodeID, relType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v.Valid && v.String != "" {
			values = append(values, v.String)
		}
	}
	return values, rows.Err()
}

// JobRelationValues returns the text values of one job-side relationship.
func (s *Store) JobRelationValues(ctx context.Context, jobID int64, relType string) ([]string, error) {
	return s.RelationValues(ctx, NodeJob, JobNodeID(jobID), relType)
}

// CandidateRelationValues returns the text values of one candidate-side
// relationship.
func (s *Store) CandidateRelationValues(ctx context.Context, candidateID int64, relType string) ([]string, error) {
	return s.RelationValues(ctx, NodeCandidate, CandidateNodeID(candidateID), relType)
}

// RelatedNodes returns the full property bags of a node's related nodes for
// one relationship type.
func (s *Store) RelatedNodes(ctx context.Context, nodeType, nodeID, relType string) ([]Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tn.node_type, tn.node_id, tn.properties
		FROM graph_edges e
		INNER JOIN graph_nodes sn ON e.source_node_id = sn.id
		INNER JOIN graph_nodes tn ON e.target_node_id = tn.id
		WHERE sn.node_type = $1 AND sn.node_id = $2 AND e.edge_type = $3
	`, nodeType, nodeID, relType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		var (
			e     Entity
			props []byte
		)
		if err := rows.Scan(&e.Type, &e.Value, &props); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(props, &e.Properties); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}
