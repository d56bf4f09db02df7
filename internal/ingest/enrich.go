package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"talent-match/internal/graph"
	"talent-match/internal/llm"
	"talent-match/internal/storage"
)

// Follow-up events emitted once per enrichment. The workflow engine projects
// the graph, generates the embedding and flips the onboarded flag.
const (
	EventCandidateGraph   = "candidate.graph"
	EventCandidateEmbed   = "candidate.embed"
	EventCandidateOnboard = "candidate.onboard"
)

// CandidatePayload identifies the candidate a follow-up event refers to.
type CandidatePayload struct {
	CandidateID int64 `json:"candidate_id"`
}

// Extractor turns resume text into a structured profile.
type Extractor interface {
	ExtractResume(ctx context.Context, resumeText string) (*llm.ResumeExtraction, error)
}

// CandidateStore persists candidate rows and their inferred data.
type CandidateStore interface {
	UpsertCandidate(ctx context.Context, c *storage.Candidate) (int64, error)
	UpdateCandidateInferred(ctx context.Context, id int64, inferred json.RawMessage) error
}

// EventSink receives the enrichment follow-up events.
type EventSink interface {
	Dispatch(ctx context.Context, eventType string, payload interface{}) error
}

// Enricher runs the resume enrichment flow: extract a structured profile,
// persist it, then hand the graph/embedding/onboarding steps to background
// workers.
type Enricher struct {
	extractor Extractor
	store     CandidateStore
	events    EventSink
}

func NewEnricher(extractor Extractor, store CandidateStore, events EventSink) *Enricher {
	return &Enricher{extractor: extractor, store: store, events: events}
}

// EnrichResume extracts a profile from the resume text, upserts the
// candidate under the given email and emits exactly three follow-up events.
// The events are emitted only after the relational writes succeed, so a
// failed extraction never leaves half a pipeline running.
func (e *Enricher) EnrichResume(ctx context.Context, email, resumeRef, resumeText string) (int64, error) {
	extraction, err := e.extractor.ExtractResume(ctx, resumeText)
	if err != nil {
		return 0, fmt.Errorf("resume extraction failed: %w", err)
	}

	location := ""
	if len(extraction.Locations) > 0 {
		location = extraction.Locations[0]
	}

	candidateID, err := e.store.UpsertCandidate(ctx, &storage.Candidate{
		Name:      extraction.Candidate.Name,
		Email:     email,
		Location:  location,
		ResumeRef: resumeRef,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert candidate: %w", err)
	}

	inferred, err := json.Marshal(extraction)
	if err != nil {
		return 0, fmt.Errorf("failed to encode extraction: %w", err)
	}
	if err := e.store.UpdateCandidateInferred(ctx, candidateID, inferred); err != nil {
		return 0, fmt.Errorf("failed to store inferred data: %w", err)
	}

	payload := CandidatePayload{CandidateID: candidateID}
	for _, eventType := range []string{EventCandidateGraph, EventCandidateEmbed, EventCandidateOnboard} {
		if err := e.events.Dispatch(ctx, eventType, payload); err != nil {
			return candidateID, fmt.Errorf("failed to dispatch %s: %w", eventType, err)
		}
	}

	log.Printf("[Ingest] Enriched candidate %d from %s", candidateID, resumeRef)
	return candidateID, nil
}

// GraphProfile converts a stored extraction into the graph projection input.
func GraphProfile(candidateID int64, extraction *llm.ResumeExtraction) *graph.CandidateProfile {
	p := &graph.CandidateProfile{
		CandidateID:    candidateID,
		Name:           extraction.Candidate.Name,
		SoftSkills:     extraction.SoftSkills,
		Certifications: extraction.Certifications,
	}
	if len(extraction.Locations) > 0 {
		p.Location = extraction.Locations[0]
	}
	for _, s := range extraction.Skills {
		p.Skills = append(p.Skills, s.Name)
	}
	for _, c := range extraction.Companies {
		p.Workplaces = append(p.Workplaces, graph.Workplace{Name: c.Name, Position: c.Position})
	}
	for _, ed := range extraction.Education {
		p.Schools = append(p.Schools, graph.School{Institution: ed.Institution, Degree: ed.Degree, Field: ed.Field})
	}
	return p
}

// EmbeddingText flattens an extraction into the text embedded for the
// candidate node. The same shape of text is used for jobs so the two vector
// spaces stay comparable.
func EmbeddingText(extraction *llm.ResumeExtraction) string {
	var parts []string
	if extraction.Candidate.CurrentPosition != "" {
		parts = append(parts, extraction.Candidate.CurrentPosition)
	}
	for _, s := range extraction.Skills {
		parts = append(parts, s.Name)
	}
	parts = append(parts, extraction.SoftSkills...)
	parts = append(parts, extraction.Certifications...)
	for _, c := range extraction.Companies {
		if c.Position != "" {
			parts = append(parts, c.Position)
		}
	}
	return strings.Join(parts, ", ")
}
