package storage

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Application lifecycle statuses. Stored as plain text, transitions are
// employer-driven.
const (
	ApplicationSubmitted = "submitted"
	ApplicationReviewed  = "reviewed"
	ApplicationInterview = "interview"
	ApplicationAccepted  = "accepted"
	ApplicationRejected  = "rejected"
)

// Invite statuses.
const (
	InviteSent     = "sent"
	InviteAccepted = "accepted"
	InviteDeclined = "declined"
)

// Alert types surfaced on the dashboard.
const (
	AlertMatch       = "match"
	AlertInvite      = "invite"
	AlertApplication = "application"
)

// Employer roles within a company. A company has at most one admin.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// JobPosting is the relational system-of-record row for a job. The graph
// store holds a denormalized projection used for similarity search.
type JobPosting struct {
	ID               int64           `json:"id"`
	CompanyID        int64           `json:"company_id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Location         string          `json:"location"`
	SalaryMin        int             `json:"salary_min"`
	SalaryMax        int             `json:"salary_max"`
	Clearance        string          `json:"clearance,omitempty"`
	CompensationType string          `json:"compensation_type,omitempty"`
	Active           bool            `json:"active"`
	Static           json.RawMessage `json:"static,omitempty"`
	Inferred         json.RawMessage `json:"inferred,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Candidate is the relational row for a talent profile.
type Candidate struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone,omitempty"`
	Location  string          `json:"location,omitempty"`
	Clearance string          `json:"clearance,omitempty"`
	Onboarded bool            `json:"onboarded"`
	ResumeRef string          `json:"resume_ref,omitempty"`
	Static    json.RawMessage `json:"static,omitempty"`
	Inferred  json.RawMessage `json:"inferred,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Application ties a candidate to a job posting.
type Application struct {
	ID          int64     `json:"id"`
	CandidateID int64     `json:"candidate_id"`
	JobID       int64     `json:"job_id"`
	ResumeRef   string    `json:"resume_ref,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Invite is an employer-initiated contact. Unique per
// (employer, candidate, job) triple.
type Invite struct {
	ID          int64     `json:"id"`
	EmployerID  int64     `json:"employer_id"`
	CandidateID int64     `json:"candidate_id"`
	JobID       int64     `json:"job_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Alert is an in-app notification record, distinct from an emailed one.
type Alert struct {
	ID          int64     `json:"id"`
	RecipientID int64     `json:"recipient_id"`
	Type        string    `json:"type"`
	ReferenceID int64     `json:"reference_id"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// MatchPair holds one (job, candidate) association with its original
// similarity score, up to six sub-evaluation scores and the enhanced score.
// At most one row per pair, enforced by the composite primary key.
type MatchPair struct {
	JobID         int64           `json:"job_id"`
	CandidateID   int64           `json:"candidate_id"`
	OriginalScore float64         `json:"original_score"`
	ScoreA        sql.NullFloat64 `json:"score_a"`
	ScoreB        sql.NullFloat64 `json:"score_b"`
	ScoreC        sql.NullFloat64 `json:"score_c"`
	ScoreD        sql.NullFloat64 `json:"score_d"`
	ScoreE        sql.NullFloat64 `json:"score_e"`
	ScoreF        sql.NullFloat64 `json:"score_f"`
	EnhancedScore sql.NullFloat64 `json:"enhanced_score"`
	Evaluation    string          `json:"evaluation,omitempty"`
	Notified      bool            `json:"notified"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SubScores returns the sub-evaluation scores that have landed, keyed by
// combo letter.
func (p *MatchPair) SubScores() map[string]float64 {
	out := make(map[string]float64, 6)
	for combo, v := range map[string]sql.NullFloat64{
		"A": p.ScoreA, "B": p.ScoreB, "C": p.ScoreC,
		"D": p.ScoreD, "E": p.ScoreE, "F": p.ScoreF,
	} {
		if v.Valid {
			out[combo] = v.Float64
		}
	}
	return out
}

// Company / employer administrative records.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Employer struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// OutboxEvent is a pending side effect recorded in the same transaction as
// the relational write that caused it. The projector worker drains these.
type OutboxEvent struct {
	ID          string          `json:"id"`
	EventType   string          `json:"event_type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	LastError   sql.NullString  `json:"last_error"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt sql.NullTime    `json:"processed_at"`
}

// Outbox event statuses.
const (
	OutboxPending = "pending"
	OutboxDone    = "done"
	OutboxFailed  = "failed"
)

// WorkflowRun is one durable execution of a named background event.
type WorkflowRun struct {
	ID              string          `json:"id"`
	EventType       string          `json:"event_type"`
	Payload         json.RawMessage `json:"payload"`
	Status          string          `json:"status"`
	Output          json.RawMessage `json:"output,omitempty"`
	ErrorMessage    sql.NullString  `json:"error_message"`
	RetryCount      int             `json:"retry_count"`
	MaxRetries      int             `json:"max_retries"`
	CancelRequested bool            `json:"cancel_requested"`
	CreatedAt       time.Time       `json:"created_at"`
	StartedAt       sql.NullTime    `json:"started_at"`
	CompletedAt     sql.NullTime    `json:"completed_at"`
}

// Workflow run statuses, matching the polling contract exposed to clients.
const (
	RunRunning   = "Running"
	RunCompleted = "Completed"
	RunFailed    = "Failed"
	RunCancelled = "Cancelled"
)

// Result is the typed failure/success envelope returned by operations that
// callers surface directly to the UI.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
