package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-match/internal/llm"
	"talent-match/internal/storage"
)

type fakeExtractor struct {
	extraction *llm.ResumeExtraction
	err        error
}

func (f *fakeExtractor) ExtractResume(_ context.Context, _ string) (*llm.ResumeExtraction, error) {
	return f.extraction, f.err
}

type fakeCandidateStore struct {
	upserted  *storage.Candidate
	inferred  json.RawMessage
	nextID    int64
	upsertErr error
}

func (f *fakeCandidateStore) UpsertCandidate(_ context.Context, c *storage.Candidate) (int64, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserted = c
	return f.nextID, nil
}

func (f *fakeCandidateStore) UpdateCandidateInferred(_ context.Context, _ int64, inferred json.RawMessage) error {
	f.inferred = inferred
	return nil
}

type recordingSink struct {
	events []string
	err    error
}

func (r *recordingSink) Dispatch(_ context.Context, eventType string, _ interface{}) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, eventType)
	return nil
}

func sampleExtraction() *llm.ResumeExtraction {
	return &llm.ResumeExtraction{
		Candidate: llm.Candidate{Name: "Ada Lovelace", CurrentPosition: "Staff Engineer"},
		Skills: []llm.Skill{
			{Name: "Go", Confidence: 0.95},
			{Name: "PostgreSQL", Confidence: 0.9},
		},
		SoftSkills:     []string{"Communication"},
		Certifications: []string{"CKA"},
		Companies: []llm.Company{
			{Name: "Initech", Position: "Engineer"},
		},
		Education: []llm.Education{
			{Degree: "BSc", Field: "Mathematics", Institution: "Cambridge"},
		},
		Locations: []string{"London"},
	}
}

func TestEnrichResumeEmitsExactlyThreeEvents(t *testing.T) {
	store := &fakeCandidateStore{nextID: 42}
	sink := &recordingSink{}
	e := NewEnricher(&fakeExtractor{extraction: sampleExtraction()}, store, sink)

	id, err := e.EnrichResume(context.Background(), "ada@example.com", "ada.pdf", "resume text")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	assert.Equal(t, []string{EventCandidateGraph, EventCandidateEmbed, EventCandidateOnboard}, sink.events)

	require.NotNil(t, store.upserted)
	assert.Equal(t, "Ada Lovelace", store.upserted.Name)
	assert.Equal(t, "ada@example.com", store.upserted.Email)
	assert.Equal(t, "London", store.upserted.Location)
	assert.NotEmpty(t, store.inferred)
}

func TestEnrichResumeExtractionFailureEmitsNothing(t *testing.T) {
	sink := &recordingSink{}
	e := NewEnricher(&fakeExtractor{err: errors.New("llm down")}, &fakeCandidateStore{}, sink)

	_, err := e.EnrichResume(context.Background(), "ada@example.com", "ada.pdf", "resume text")
	assert.Error(t, err)
	assert.Empty(t, sink.events)
}

func TestEnrichResumeStoreFailureEmitsNothing(t *testing.T) {
	sink := &recordingSink{}
	store := &fakeCandidateStore{upsertErr: errors.New("db down")}
	e := NewEnricher(&fakeExtractor{extraction: sampleExtraction()}, store, sink)

	_, err := e.EnrichResume(context.Background(), "ada@example.com", "ada.pdf", "resume text")
	assert.Error(t, err)
	assert.Empty(t, sink.events)
}

func TestGraphProfileFlattensExtraction(t *testing.T) {
	p := GraphProfile(7, sampleExtraction())

	assert.Equal(t, int64(7), p.CandidateID)
	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.Equal(t, "London", p.Location)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, p.Skills)
	assert.Equal(t, []string{"Communication"}, p.SoftSkills)
	assert.Equal(t, []string{"CKA"}, p.Certifications)
	require.Len(t, p.Workplaces, 1)
	assert.Equal(t, "Initech", p.Workplaces[0].Name)
	require.Len(t, p.Schools, 1)
	assert.Equal(t, "Cambridge", p.Schools[0].Institution)
}

func TestEmbeddingTextJoinsProfileSignals(t *testing.T) {
	text := EmbeddingText(sampleExtraction())

	assert.Contains(t, text, "Staff Engineer")
	assert.Contains(t, text, "Go")
	assert.Contains(t, text, "Communication")
	assert.Contains(t, text, "CKA")
	assert.Contains(t, text, "Engineer")
}
