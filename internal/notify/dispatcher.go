package notify

import (
	"context"
	"fmt"
	"log"

	"talent-match/internal/storage"
)

// Prefs answers opt-in checks before any mail leaves the system.
type Prefs interface {
	IsOptedIn(ctx context.Context, email, prefType string) (bool, error)
}

// Sender delivers a rendered message to one recipient.
type Sender interface {
	Send(ctx context.Context, to string, msg Message) error
}

// Dispatcher renders and sends the pipeline's notification mails. Every send
// is gated on the recipient's stored preference for that mail type; delivery
// errors propagate so the caller's retry loop can take over.
type Dispatcher struct {
	prefs   Prefs
	sender  Sender
	baseURL string
}

func NewDispatcher(prefs Prefs, sender Sender, baseURL string) *Dispatcher {
	return &Dispatcher{prefs: prefs, sender: sender, baseURL: baseURL}
}

// MatchMail notifies an employer about a completed match evaluation.
type MatchMail struct {
	EmployerEmail string
	EmployerName  string
	JobID         int64
	JobTitle      string
	CandidateName string
	Score         float64
	Evaluation    string
}

func (d *Dispatcher) SendMatch(ctx context.Context, m MatchMail) error {
	return d.deliver(ctx, m.EmployerEmail, storage.PrefMatch, matchTemplate, map[string]string{
		"employer_name":   m.EmployerName,
		"job_title":       m.JobTitle,
		"candidate_name":  m.CandidateName,
		"score":           fmt.Sprintf("%.2f", m.Score),
		"evaluation":      m.Evaluation,
		"dashboard_url":   fmt.Sprintf("%s/dashboard/jobs/%d/matches", d.baseURL, m.JobID),
		"unsubscribe_url": UnsubscribeURL(d.baseURL, m.EmployerEmail, storage.PrefMatch),
	})
}

// InviteMail notifies a candidate that an employer invited them to apply.
type InviteMail struct {
	CandidateEmail string
	CandidateName  string
	CompanyName    string
	JobID          int64
	JobTitle       string
}

func (d *Dispatcher) SendInvite(ctx context.Context, m InviteMail) error {
	return d.deliver(ctx, m.CandidateEmail, storage.PrefInvite, inviteTemplate, map[string]string{
		"candidate_name":  m.CandidateName,
		"company_name":    m.CompanyName,
		"job_title":       m.JobTitle,
		"job_url":         fmt.Sprintf("%s/jobs/%d", d.baseURL, m.JobID),
		"unsubscribe_url": UnsubscribeURL(d.baseURL, m.CandidateEmail, storage.PrefInvite),
	})
}

// ApplicationMail notifies an employer about a new application.
type ApplicationMail struct {
	EmployerEmail string
	EmployerName  string
	JobID         int64
	JobTitle      string
	CandidateName string
}

func (d *Dispatcher) SendApplication(ctx context.Context, m ApplicationMail) error {
	return d.deliver(ctx, m.EmployerEmail, storage.PrefApplication, applicationTemplate, map[string]string{
		"employer_name":   m.EmployerName,
		"job_title":       m.JobTitle,
		"candidate_name":  m.CandidateName,
		"dashboard_url":   fmt.Sprintf("%s/dashboard/jobs/%d/applications", d.baseURL, m.JobID),
		"unsubscribe_url": UnsubscribeURL(d.baseURL, m.EmployerEmail, storage.PrefApplication),
	})
}

// StatusMail notifies a candidate that their application changed status.
type StatusMail struct {
	CandidateEmail string
	CandidateName  string
	CompanyName    string
	JobTitle       string
	Status         string
}

func (d *Dispatcher) SendApplicationStatus(ctx context.Context, m StatusMail) error {
	return d.deliver(ctx, m.CandidateEmail, storage.PrefApplication, applicationStatusTemplate, map[string]string{
		"candidate_name":  m.CandidateName,
		"company_name":    m.CompanyName,
		"job_title":       m.JobTitle,
		"status":          m.Status,
		"unsubscribe_url": UnsubscribeURL(d.baseURL, m.CandidateEmail, storage.PrefApplication),
	})
}

func (d *Dispatcher) deliver(ctx context.Context, to, prefType string, tmpl Template, vars map[string]string) error {
	optedIn, err := d.prefs.IsOptedIn(ctx, to, prefType)
	if err != nil {
		return fmt.Errorf("failed to check preference: %w", err)
	}
	if !optedIn {
		log.Printf("[Notify] Skipping %s mail to %s (unsubscribed)", prefType, to)
		return nil
	}
	return d.sender.Send(ctx, to, tmpl.Render(vars))
}
