package graph

import (
	"context"
	"fmt"
	"strings"
)

// JobProfile is the denormalized job view projected into the graph.
type JobProfile struct {
	JobID            int64
	Title            string
	Location         string
	CompanyID        int64
	CompanyName      string
	RequiredSkills   []string
	PreferredSkills  []string
	Certifications   []string
	Responsibilities []string
	Roles            []string
	Benefits         []string
}

// Workplace is one employment entry on a candidate profile.
type Workplace struct {
	Name     string
	Position string
}

// School is one education entry on a candidate profile.
type School struct {
	Institution string
	Degree      string
	Field       string
}

// CandidateProfile is the denormalized candidate view projected into the graph.
type CandidateProfile struct {
	CandidateID    int64
	Name           string
	Location       string
	Skills         []string
	SoftSkills     []string
	Certifications []string
	Workplaces     []Workplace
	Schools        []School
}

// BuildJobGraph projects a job posting and its attribute relationships into
// the graph store. Re-projection is safe: nodes upsert and edges dedupe.
func (s *Store) BuildJobGraph(ctx context.Context, p *JobProfile) error {
	jobNode := JobNodeID(p.JobID)

	entities := []Entity{{
		Type:  NodeJob,
		Value: jobNode,
		Properties: map[string]interface{}{
			"job_id":   p.JobID,
			"name":     p.Title,
			"location": p.Location,
		},
	}}
	var relationships []Relationship

	if p.CompanyName != "" {
		companyNode := fmt.Sprintf("company_%d", p.CompanyID)
		entities = append(entities, Entity{
			Type:       NodeCompany,
			Value:      companyNode,
			Properties: map[string]interface{}{"name": p.CompanyName},
		})
		relationships = append(relationships, Relationship{
			SourceType: NodeCompany, SourceID: companyNode,
			TargetType: NodeJob, TargetID: jobNode,
			EdgeType: RelPostsJob, Properties: nil,
		})
	}

	addAll := func(values []string, nodeType, edgeType string) {
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			nodeID := fmt.Sprintf("%s_%s", nodeType, strings.ToLower(v))
			entities = append(entities, Entity{
				Type:       nodeType,
				Value:      nodeID,
				Properties: map[string]interface{}{"name": v},
			})
			relationships = append(relationships, Relationship{
				SourceType: NodeJob, SourceID: jobNode,
				TargetType: nodeType, TargetID: nodeID,
				EdgeType: edgeType,
			})
		}
	}

	addAll(p.RequiredSkills, NodeSkill, RelRequiresSkill)
	addAll(p.PreferredSkills, NodeSkill, RelPrefersSkill)
	addAll(p.Certifications, NodeCertification, RelRequiredCert)
	addAll(p.Responsibilities, NodeResponsibility, RelHasResponsibility)
	addAll(p.Roles, NodeRole, RelSuitableForRole)
	addAll(p.Benefits, NodeBenefit, RelOffersBenefit)

	if err := s.CreateNodes(ctx, entities); err != nil {
		return fmt.Errorf("failed to create job nodes: %w", err)
	}
	if err := s.CreateEdges(ctx, relationships); err != nil {
		return fmt.Errorf("failed to create job edges: %w", err)
	}
	return nil
}

// BuildCandidateGraph projects a candidate profile and its relationships
// into the graph store.
func (s *Store) BuildCandidateGraph(ctx context.Context, p *CandidateProfile) error {
	candNode := CandidateNodeID(p.CandidateID)

	entities := []Entity{{
		Type:  NodeCandidate,
		Value: candNode,
		Properties: map[string]interface{}{
			"candidate_id": p.CandidateID,
			"name":         p.Name,
			"location":     p.Location,
		},
	}}
	var relationships []Relationship

	addAll := func(values []string, nodeType, edgeType string) {
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			nodeID := fmt.Sprintf("%s_%s", nodeType, strings.ToLower(v))
			entities = append(entities, Entity{
				Type:       nodeType,
				Value:      nodeID,
				Properties: map[string]interface{}{"name": v},
			})
			relationships = append(relationships, Relationship{
				SourceType: NodeCandidate, SourceID: candNode,
				TargetType: nodeType, TargetID: nodeID,
				EdgeType: edgeType,
			})
		}
	}

	addAll(p.Skills, NodeSkill, RelHasSkill)
	addAll(p.SoftSkills, NodeSoftSkill, RelHasSoftSkill)
	addAll(p.Certifications, NodeCertification, RelHasCertification)

	for _, w := range p.Workplaces {
		if w.Name == "" {
			continue
		}
		nodeID := fmt.Sprintf("%s_%s", NodeWorkplace, strings.ToLower(w.Name))
		entities = append(entities, Entity{
			Type:       NodeWorkplace,
			Value:      nodeID,
			Properties: map[string]interface{}{"name": w.Name},
		})
		relationships = append(relationships, Relationship{
			SourceType: NodeCandidate, SourceID: candNode,
			TargetType: NodeWorkplace, TargetID: nodeID,
			EdgeType:   RelWorkedAt,
			Properties: map[string]interface{}{"position": w.Position},
		})
	}

	for _, sc := range p.Schools {
		if sc.Institution == "" {
			continue
		}
		nodeID := fmt.Sprintf("%s_%s", NodeEducation, strings.ToLower(sc.Institution))
		entities = append(entities, Entity{
			Type:  NodeEducation,
			Value: nodeID,
			Properties: map[string]interface{}{
				"name":   sc.Institution,
				"degree": sc.Degree,
				"field":  sc.Field,
			},
		})
		relationships = append(relationships, Relationship{
			SourceType: NodeCandidate, SourceID: candNode,
			TargetType: NodeEducation, TargetID: nodeID,
			EdgeType:   RelStudiedAt,
			Properties: map[string]interface{}{"degree": sc.Degree, "field": sc.Field},
		})
	}

	if err := s.CreateNodes(ctx, entities); err != nil {
		return fmt.Errorf("failed to create candidate nodes: %w", err)
	}
	if err := s.CreateEdges(ctx, relationships); err != nil {
		return fmt.Errorf("failed to create candidate edges: %w", err)
	}
	return nil
}
