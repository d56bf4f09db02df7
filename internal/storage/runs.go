package storage

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// CreateRun records a new workflow run in Running state and returns its id.
func (db *DB) CreateRun(ctx context.Context, eventType string, payload interface{}, maxRetries int) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err = db.connection.ExecContext(ctx,
		`INSERT INTO workflow_runs (id, event_type, payload, status, max_retries, started_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		id, eventType, raw, RunRunning, maxRetries)
	return id, err
}

func (db *DB) GetRun(ctx context.Context, id string) (*WorkflowRun, error) {
	r := &WorkflowRun{}
	err := db.connection.QueryRowContext(ctx,
		`SELECT id, event_type, payload, status, COALESCE(output, 'null'), error_message,
		        retry_count, max_retries, cancel_requested, created_at, started_at, completed_at
		 FROM workflow_runs WHERE id = $1`, id,
	).Scan(&r.ID, &r.EventType, &r.Payload, &r.Status, &r.Output, &r.ErrorMessage,
		&r.RetryCount, &r.MaxRetries, &r.CancelRequested, &r.CreatedAt, &r.StartedAt, &r.CompletedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CompleteRun marks a run finished with its handler output.
func (db *DB) CompleteRun(ctx context.Context, id string, output interface{}) error {
	raw, err := json.Marshal(output)
	if err != nil {
		return err
	}
	_, err = db.connection.ExecContext(ctx,
		`UPDATE workflow_runs SET status = $1, output = $2, completed_at = NOW() WHERE id = $3`,
		RunCompleted, raw, id)
	return err
}

// FailRun marks a run failed after its retries are exhausted.
func (db *DB) FailRun(ctx context.Context, id string, errMsg string) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE workflow_runs SET status = $1, error_message = $2, completed_at = NOW() WHERE id = $3`,
		RunFailed, errMsg, id)
	return err
}

// CancelRun marks the run cancelled and raises the cooperative cancel flag.
func (db *DB) CancelRun(ctx context.Context, id string) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE workflow_runs
		 SET cancel_requested = TRUE,
		     status           = CASE WHEN status = $1 THEN $2 ELSE status END,
		     completed_at     = COALESCE(completed_at, NOW())
		 WHERE id = $3`,
		RunRunning, RunCancelled, id)
	return err
}

// BumpRunRetry increments the retry counter before another attempt.
func (db *DB) BumpRunRetry(ctx context.Context, id string) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE workflow_runs SET retry_count = retry_count + 1 WHERE id = $1`, id)
	return err
}

// IsRunCancelRequested is the cooperative cancellation check workers call
// between steps.
func (db *DB) IsRunCancelRequested(ctx context.Context, id string) (bool, error) {
	var cancelled bool
	err := db.connection.QueryRowContext(ctx,
		`SELECT cancel_requested FROM workflow_runs WHERE id = $1`, id,
	).Scan(&cancelled)
	return cancelled, err
}
