package storage

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// EnqueueOutboxEvent inserts a standalone outbox event outside any larger
// transaction. Used by workers that produce follow-up side effects.
func (db *DB) EnqueueOutboxEvent(ctx context.Context, eventType string, payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err = db.connection.ExecContext(ctx,
		`INSERT INTO outbox (id, event_type, payload) VALUES ($1, $2, $3)`,
		id, eventType, raw)
	return id, err
}

// FetchPendingOutbox returns the oldest pending events up to limit, for the
// projector to process in order.
func (db *DB) FetchPendingOutbox(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := db.connection.QueryContext(ctx,
		`SELECT id, event_type, payload, status, attempts, max_attempts, last_error, created_at, processed_at
		 FROM outbox
		 WHERE status = $1 AND attempts < max_attempts
		 ORDER BY created_at ASC
		 LIMIT $2`,
		OutboxPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		e := &OutboxEvent{}
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.Status, &e.Attempts,
			&e.MaxAttempts, &e.LastError, &e.CreatedAt, &e.ProcessedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkOutboxDone finalizes a successfully processed event.
func (db *DB) MarkOutboxDone(ctx context.Context, id string) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE outbox SET status = $1, processed_at = NOW() WHERE id = $2`,
		OutboxDone, id)
	return err
}

// RecordOutboxFailure bumps the attempt counter; once attempts reach
// max_attempts the event is parked as failed instead of retried forever.
func (db *DB) RecordOutboxFailure(ctx context.Context, id string, errMsg string) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE outbox
		 SET attempts   = attempts + 1,
		     last_error = $1,
		     status     = CASE WHEN attempts + 1 >= max_attempts THEN 'failed' ELSE 'pending' END,
		     processed_at = CASE WHEN attempts + 1 >= max_attempts THEN NOW() ELSE processed_at END
		 WHERE id = $2`,
		errMsg, id)
	return err
}
