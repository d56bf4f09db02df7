package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"talent-match/internal/embedding"
	"talent-match/internal/graph"
	"talent-match/internal/ingest"
	"talent-match/internal/llm"
	"talent-match/internal/matching"
	"talent-match/internal/notify"
	"talent-match/internal/storage"
)

// Engine event types beyond the ingest and matching ones.
const (
	EventJobEnrich      = "job.enrich"
	EventJobMatch       = "job.match"
	EventCandidateMatch = "candidate.match"
)

// JobPayload identifies the job a background event refers to.
type JobPayload struct {
	JobID int64 `json:"job_id"`
}

// Pipeline owns the domain handlers behind the workflow engine and the
// outbox projector.
type Pipeline struct {
	db           *storage.DB
	graph        *graph.Store
	embedder     *embedding.Service
	orchestrator *matching.Orchestrator
	evaluator    *matching.Evaluator
	llm          *llm.Service
	notifier     *notify.Dispatcher
}

func NewPipeline(
	db *storage.DB,
	graphStore *graph.Store,
	embedder *embedding.Service,
	orchestrator *matching.Orchestrator,
	evaluator *matching.Evaluator,
	llmService *llm.Service,
	notifier *notify.Dispatcher,
) *Pipeline {
	return &Pipeline{
		db:           db,
		graph:        graphStore,
		embedder:     embedder,
		orchestrator: orchestrator,
		evaluator:    evaluator,
		llm:          llmService,
		notifier:     notifier,
	}
}

// RegisterEngine binds the background event handlers.
func (p *Pipeline) RegisterEngine(e *Engine) {
	e.Register(ingest.EventCandidateGraph, p.handleCandidateGraph)
	e.Register(ingest.EventCandidateEmbed, p.handleCandidateEmbed)
	e.Register(ingest.EventCandidateOnboard, p.handleCandidateOnboard)
	e.Register(EventCandidateMatch, p.handleCandidateMatch)
	e.Register(EventJobEnrich, p.handleJobEnrich)
	e.Register(EventJobMatch, p.handleJobMatch)
	e.Register(matching.EventSubScore, p.handleSubScore)
}

// RegisterProjector binds the outbox side-effect handlers and the stalled
// pair sweep.
func (p *Pipeline) RegisterProjector(pr *Projector) {
	pr.Register(storage.EventApplicationSubmitted, p.onApplicationSubmitted)
	pr.Register(storage.EventApplicationStatus, p.onApplicationStatus)
	pr.Register(storage.EventInviteSent, p.onInviteSent)
	pr.Register(storage.EventMatchReady, p.onMatchReady)
	pr.RegisterSweep(p.sweepStalledMatches)
}

func (p *Pipeline) candidateExtraction(ctx context.Context, candidateID int64) (*storage.Candidate, *llm.ResumeExtraction, error) {
	candidate, err := p.db.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load candidate %d: %w", candidateID, err)
	}
	if len(candidate.Inferred) == 0 || string(candidate.Inferred) == "null" {
		return nil, nil, fmt.Errorf("candidate %d has no inferred data", candidateID)
	}
	var extraction llm.ResumeExtraction
	if err := json.Unmarshal(candidate.Inferred, &extraction); err != nil {
		return nil, nil, fmt.Errorf("failed to decode inferred data for candidate %d: %w", candidateID, err)
	}
	return candidate, &extraction, nil
}

func (p *Pipeline) handleCandidateGraph(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body ingest.CandidatePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}
	_, extraction, err := p.candidateExtraction(ctx, body.CandidateID)
	if err != nil {
		return nil, err
	}
	if err := p.graph.BuildCandidateGraph(ctx, ingest.GraphProfile(body.CandidateID, extraction)); err != nil {
		return nil, err
	}
	return map[string]int64{"candidate_id": body.CandidateID}, nil
}

func (p *Pipeline) handleCandidateEmbed(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body ingest.CandidatePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}
	_, extraction, err := p.candidateExtraction(ctx, body.CandidateID)
	if err != nil {
		return nil, err
	}
	text := ingest.EmbeddingText(extraction)
	if text == "" {
		return nil, fmt.Errorf("candidate %d has nothing to embed", body.CandidateID)
	}
	nodeID := graph.CandidateNodeID(body.CandidateID)
	if err := p.embedder.EmbedNode(ctx, graph.NodeCandidate, nodeID, text); err != nil {
		return nil, err
	}

	// First matching pass now that the vector exists. Failures here are not
	// fatal to the embed run; matching re-runs whenever jobs are enriched.
	matches, err := p.orchestrator.FindCandidateMatches(ctx, body.CandidateID)
	if err != nil {
		log.Printf("[Workflow] Initial matching for candidate %d failed: %v", body.CandidateID, err)
	}

	return map[string]interface{}{"node_id": nodeID, "matches": len(matches)}, nil
}

func (p *Pipeline) handleCandidateOnboard(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body ingest.CandidatePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}
	if err := p.db.SetCandidateOnboarded(ctx, body.CandidateID); err != nil {
		return nil, err
	}
	return map[string]bool{"onboarded": true}, nil
}

func (p *Pipeline) handleCandidateMatch(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body ingest.CandidatePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}
	matches, err := p.orchestrator.FindCandidateMatches(ctx, body.CandidateID)
	if err != nil {
		return nil, err
	}
	return map[string]int{"matches": len(matches)}, nil
}

// handleJobEnrich runs the job onboarding chain: attribute extraction, graph
// projection, embedding, then a first matching pass.
func (p *Pipeline) handleJobEnrich(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body JobPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	job, err := p.db.GetJobPosting(ctx, body.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job %d: %w", body.JobID, err)
	}

	extraction, err := p.llm.ExtractJobAttributes(ctx, job.Title, job.Description)
	if err != nil {
		return nil, fmt.Errorf("job attribute extraction failed: %w", err)
	}

	inferred, err := json.Marshal(extraction)
	if err != nil {
		return nil, err
	}
	if err := p.db.UpdateJobInferred(ctx, body.JobID, inferred); err != nil {
		return nil, err
	}

	company, err := p.db.GetCompany(ctx, job.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company %d: %w", job.CompanyID, err)
	}

	if err := p.graph.BuildJobGraph(ctx, &graph.JobProfile{
		JobID:            job.ID,
		Title:            job.Title,
		Location:         job.Location,
		CompanyID:        company.ID,
		CompanyName:      company.Name,
		RequiredSkills:   extraction.RequiredSkills,
		PreferredSkills:  extraction.PreferredSkills,
		Certifications:   extraction.Certifications,
		Responsibilities: extraction.Responsibilities,
		Roles:            extraction.Roles,
		Benefits:         extraction.Benefits,
	}); err != nil {
		return nil, fmt.Errorf("job graph projection failed: %w", err)
	}

	text := jobEmbeddingText(job.Title, extraction)
	if err := p.embedder.EmbedNode(ctx, graph.NodeJob, graph.JobNodeID(job.ID), text); err != nil {
		return nil, fmt.Errorf("job embedding failed: %w", err)
	}

	matches, err := p.orchestrator.FindJobMatches(ctx, job.ID)
	if err != nil {
		log.Printf("[Workflow] Initial matching for job %d failed: %v", job.ID, err)
		matches = nil
	}

	return map[string]interface{}{"job_id": job.ID, "matches": len(matches)}, nil
}

func (p *Pipeline) handleJobMatch(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body JobPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}
	matches, err := p.orchestrator.FindJobMatches(ctx, body.JobID)
	if err != nil {
		return nil, err
	}
	return map[string]int{"matches": len(matches)}, nil
}

// handleSubScore evaluates one combo for one pair, then recomputes the
// enhanced score from whatever sub-scores have landed. Once all six combos
// are in, the pair is marked notified exactly once, which queues the
// employer notification through the outbox. Pairs whose combo runs fail
// terminally are picked up by sweepStalledMatches instead.
func (p *Pipeline) handleSubScore(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body matching.SubScorePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	score, err := p.evaluator.EvaluateTalentMatch(ctx, body.JobID, body.CandidateID, body.Combo)
	if err != nil {
		return nil, err
	}
	if err := p.db.SetSubScore(ctx, body.JobID, body.CandidateID, body.Combo, score); err != nil {
		return nil, err
	}

	pair, err := p.db.GetMatchPair(ctx, body.JobID, body.CandidateID)
	if err != nil {
		return nil, err
	}
	subs := pair.SubScores()
	enhanced := matching.CalculateEnhancedScore(pair.OriginalScore, subs)
	if err := p.db.SetEnhancedScore(ctx, body.JobID, body.CandidateID, enhanced); err != nil {
		return nil, err
	}

	if len(subs) == len(matching.AllCombos()) {
		queued, err := p.db.MarkMatchNotified(ctx, body.JobID, body.CandidateID)
		if err != nil {
			return nil, err
		}
		if queued {
			log.Printf("[Workflow] Pair job=%d candidate=%d fully scored, notification queued",
				body.JobID, body.CandidateID)
		}
	}

	return map[string]float64{"score": score, "enhanced": enhanced}, nil
}

// stalledPairWait is how long a scored, unnotified pair may sit without any
// in-flight sub-score run before the sweep notifies it with a partial set.
const stalledPairWait = 2 * time.Minute

// sweepStalledMatches notifies pairs that will never see all six sub-scores
// because one or more combo runs exhausted their retries. The enhanced score
// renormalizes over the sub-scores that did arrive, so a partial set is
// still a valid pairing. MarkMatchNotified keeps the notification
// single-shot even if a late sub-score run races the sweep.
func (p *Pipeline) sweepStalledMatches(ctx context.Context) {
	pairs, err := p.db.StalledUnnotifiedPairs(ctx, matching.EventSubScore, stalledPairWait, 20)
	if err != nil {
		log.Printf("[Workflow] Stalled pair sweep failed: %v", err)
		return
	}
	for _, pair := range pairs {
		queued, err := p.db.MarkMatchNotified(ctx, pair.JobID, pair.CandidateID)
		if err != nil {
			log.Printf("[Workflow] Failed to notify stalled pair job=%d candidate=%d: %v",
				pair.JobID, pair.CandidateID, err)
			continue
		}
		if queued {
			log.Printf("[Workflow] Pair job=%d candidate=%d notified with partial sub-scores",
				pair.JobID, pair.CandidateID)
		}
	}
}

type applicationEvent struct {
	ApplicationID int64  `json:"application_id"`
	CandidateID   int64  `json:"candidate_id"`
	JobID         int64  `json:"job_id"`
	Status        string `json:"status,omitempty"`
}

func (p *Pipeline) onApplicationSubmitted(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body applicationEvent
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	job, err := p.db.GetJobPosting(ctx, body.JobID)
	if err != nil {
		return nil, err
	}
	admin, err := p.db.CompanyAdmin(ctx, job.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("no admin for company %d: %w", job.CompanyID, err)
	}
	candidate, err := p.db.GetCandidate(ctx, body.CandidateID)
	if err != nil {
		return nil, err
	}

	if _, err := p.db.CreateAlert(ctx, &storage.Alert{
		RecipientID: admin.ID,
		Type:        storage.AlertApplication,
		ReferenceID: body.ApplicationID,
	}); err != nil {
		return nil, err
	}

	if err := p.notifier.SendApplication(ctx, notify.ApplicationMail{
		EmployerEmail: admin.Email,
		EmployerName:  admin.Name,
		JobID:         job.ID,
		JobTitle:      job.Title,
		CandidateName: candidate.Name,
	}); err != nil {
		return nil, err
	}
	return nil, nil
}

func (p *Pipeline) onApplicationStatus(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body applicationEvent
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	candidate, err := p.db.GetCandidate(ctx, body.CandidateID)
	if err != nil {
		return nil, err
	}
	job, err := p.db.GetJobPosting(ctx, body.JobID)
	if err != nil {
		return nil, err
	}
	company, err := p.db.GetCompany(ctx, job.CompanyID)
	if err != nil {
		return nil, err
	}

	if err := p.notifier.SendApplicationStatus(ctx, notify.StatusMail{
		CandidateEmail: candidate.Email,
		CandidateName:  candidate.Name,
		CompanyName:    company.Name,
		JobTitle:       job.Title,
		Status:         body.Status,
	}); err != nil {
		return nil, err
	}
	return nil, nil
}

type inviteEvent struct {
	InviteID    int64 `json:"invite_id"`
	EmployerID  int64 `json:"employer_id"`
	CandidateID int64 `json:"candidate_id"`
	JobID       int64 `json:"job_id"`
}

func (p *Pipeline) onInviteSent(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body inviteEvent
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	employer, err := p.db.GetEmployer(ctx, body.EmployerID)
	if err != nil {
		return nil, err
	}
	company, err := p.db.GetCompany(ctx, employer.CompanyID)
	if err != nil {
		return nil, err
	}
	candidate, err := p.db.GetCandidate(ctx, body.CandidateID)
	if err != nil {
		return nil, err
	}
	job, err := p.db.GetJobPosting(ctx, body.JobID)
	if err != nil {
		return nil, err
	}

	if _, err := p.db.CreateAlert(ctx, &storage.Alert{
		RecipientID: candidate.ID,
		Type:        storage.AlertInvite,
		ReferenceID: body.InviteID,
	}); err != nil {
		return nil, err
	}

	if err := p.notifier.SendInvite(ctx, notify.InviteMail{
		CandidateEmail: candidate.Email,
		CandidateName:  candidate.Name,
		CompanyName:    company.Name,
		JobID:          job.ID,
		JobTitle:       job.Title,
	}); err != nil {
		return nil, err
	}
	return nil, nil
}

type matchEvent struct {
	JobID       int64 `json:"job_id"`
	CandidateID int64 `json:"candidate_id"`
}

func (p *Pipeline) onMatchReady(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var body matchEvent
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	pair, err := p.db.GetMatchPair(ctx, body.JobID, body.CandidateID)
	if err != nil {
		return nil, err
	}
	job, err := p.db.GetJobPosting(ctx, body.JobID)
	if err != nil {
		return nil, err
	}
	admin, err := p.db.CompanyAdmin(ctx, job.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("no admin for company %d: %w", job.CompanyID, err)
	}
	candidate, err := p.db.GetCandidate(ctx, body.CandidateID)
	if err != nil {
		return nil, err
	}

	score := pair.OriginalScore
	if pair.EnhancedScore.Valid {
		score = pair.EnhancedScore.Float64
	}

	evaluation := pair.Evaluation
	if evaluation == "" {
		jobSkills, _ := p.graph.JobRelationValues(ctx, body.JobID, graph.RelRequiresSkill)
		candSkills, _ := p.graph.CandidateRelationValues(ctx, body.CandidateID, graph.RelHasSkill)
		evaluation, err = p.llm.EvaluateMatchSummary(ctx, job.Title, jobSkills, candSkills, score)
		if err != nil {
			log.Printf("[Workflow] Match summary for job=%d candidate=%d failed: %v", body.JobID, body.CandidateID, err)
			evaluation = fmt.Sprintf("%s matches %s with score %.2f.", candidate.Name, job.Title, score)
		}
		if err := p.db.SetMatchEvaluation(ctx, body.JobID, body.CandidateID, evaluation); err != nil {
			return nil, err
		}
	}

	if _, err := p.db.CreateAlert(ctx, &storage.Alert{
		RecipientID: admin.ID,
		Type:        storage.AlertMatch,
		ReferenceID: body.JobID,
	}); err != nil {
		return nil, err
	}

	if err := p.notifier.SendMatch(ctx, notify.MatchMail{
		EmployerEmail: admin.Email,
		EmployerName:  admin.Name,
		JobID:         job.ID,
		JobTitle:      job.Title,
		CandidateName: candidate.Name,
		Score:         score,
		Evaluation:    evaluation,
	}); err != nil {
		return nil, err
	}
	return nil, nil
}

func jobEmbeddingText(title string, extraction *llm.JobExtraction) string {
	parts := []string{title}
	parts = append(parts, extraction.RequiredSkills...)
	parts = append(parts, extraction.PreferredSkills...)
	parts = append(parts, extraction.Certifications...)
	parts = append(parts, extraction.Responsibilities...)
	parts = append(parts, extraction.Roles...)
	return strings.Join(parts, ", ")
}
