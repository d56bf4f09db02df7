package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Outbox event types recorded alongside relational writes.
const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationStatus    = "application.status"
	EventInviteSent           = "invite.sent"
	EventMatchReady           = "match.ready"
)

// RecordApplicationSubmission inserts the application row and its follow-up
// outbox events in one transaction. The outbox replaces the old sequence of
// inline side-effect writes: either everything commits or nothing does, and
// the projector retries the side effects independently.
func (db *DB) RecordApplicationSubmission(ctx context.Context, app *Application) (int64, error) {
	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO applications (candidate_id, job_id, resume_ref, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		app.CandidateID, app.JobID, app.ResumeRef, ApplicationSubmitted,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert application: %w", err)
	}

	payload, err := json.Marshal(map[string]int64{
		"application_id": id,
		"candidate_id":   app.CandidateID,
		"job_id":         app.JobID,
	})
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox (id, event_type, payload) VALUES ($1, $2, $3)`,
		uuid.New().String(), EventApplicationSubmitted, payload,
	)
	if err != nil {
		return 0, fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (db *DB) GetApplication(ctx context.Context, id int64) (*Application, error) {
	app := &Application{}
	err := db.connection.QueryRowContext(ctx,
		`SELECT id, candidate_id, job_id, resume_ref, status, created_at
		 FROM applications WHERE id = $1`, id,
	).Scan(&app.ID, &app.CandidateID, &app.JobID, &app.ResumeRef, &app.Status, &app.CreatedAt)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// validTransitions gates the employer-driven status changes.
var validTransitions = map[string][]string{
	ApplicationSubmitted: {ApplicationReviewed, ApplicationRejected},
	ApplicationReviewed:  {ApplicationInterview, ApplicationRejected},
	ApplicationInterview: {ApplicationAccepted, ApplicationRejected},
}

// UpdateApplicationStatus moves an application through its lifecycle and
// records a status outbox event for candidate notification.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id int64, status string) (*Result, error) {
	app, err := db.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validTransitions[app.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return &Result{Success: false, Message: fmt.Sprintf("cannot move application from %s to %s", app.Status, status)}, nil
	}

	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE applications SET status = $1 WHERE id = $2`, status, id); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"application_id": id,
		"candidate_id":   app.CandidateID,
		"job_id":         app.JobID,
		"status":         status,
	})
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO outbox (id, event_type, payload) VALUES ($1, $2, $3)`,
		uuid.New().String(), EventApplicationStatus, payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &Result{Success: true}, nil
}

// ListApplicationsForJob returns applications for an employer's job view.
func (db *DB) ListApplicationsForJob(ctx context.Context, jobID int64) ([]*Application, error) {
	rows, err := db.connection.QueryContext(ctx,
		`SELECT id, candidate_id, job_id, resume_ref, status, created_at
		 FROM applications WHERE job_id = $1 ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		app := &Application{}
		if err := rows.Scan(&app.ID, &app.CandidateID, &app.JobID, &app.ResumeRef, &app.Status, &app.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}
