package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CheckExistingInvite reports whether an invite already exists for the
// (employer, candidate, job) triple. Always reads the persisted row, never a
// cached result, so a deleted-then-recreated invite is reflected correctly.
func (db *DB) CheckExistingInvite(ctx context.Context, employerID, candidateID, jobID int64) (bool, error) {
	var exists bool
	err := db.connection.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM invites WHERE employer_id = $1 AND candidate_id = $2 AND job_id = $3)`,
		employerID, candidateID, jobID,
	).Scan(&exists)
	return exists, err
}

// CreateInvite inserts an invite after a uniqueness pre-check. A duplicate
// triple returns {success:false} without inserting; the unique constraint
// backstops the race between check and insert.
func (db *DB) CreateInvite(ctx context.Context, inv *Invite) (*Result, error) {
	exists, err := db.CheckExistingInvite(ctx, inv.EmployerID, inv.CandidateID, inv.JobID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &Result{Success: false, Message: "invite already sent for this candidate and job"}, nil
	}

	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO invites (employer_id, candidate_id, job_id, status)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		inv.EmployerID, inv.CandidateID, inv.JobID, InviteSent,
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return &Result{Success: false, Message: "invite already sent for this candidate and job"}, nil
		}
		return nil, fmt.Errorf("insert invite: %w", err)
	}

	payload, _ := json.Marshal(map[string]int64{
		"invite_id":    id,
		"employer_id":  inv.EmployerID,
		"candidate_id": inv.CandidateID,
		"job_id":       inv.JobID,
	})
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO outbox (id, event_type, payload) VALUES ($1, $2, $3)`,
		uuid.New().String(), EventInviteSent, payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	inv.ID = id
	return &Result{Success: true}, nil
}

// UpdateInviteStatus records the candidate's accept/decline decision.
func (db *DB) UpdateInviteStatus(ctx context.Context, id int64, status string) error {
	if status != InviteAccepted && status != InviteDeclined {
		return fmt.Errorf("invalid invite status %q", status)
	}
	_, err := db.connection.ExecContext(ctx,
		`UPDATE invites SET status = $1 WHERE id = $2`, status, id)
	return err
}

func (db *DB) GetInvite(ctx context.Context, id int64) (*Invite, error) {
	inv := &Invite{}
	err := db.connection.QueryRowContext(ctx,
		`SELECT id, employer_id, candidate_id, job_id, status, created_at
		 FROM invites WHERE id = $1`, id,
	).Scan(&inv.ID, &inv.EmployerID, &inv.CandidateID, &inv.JobID, &inv.Status, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}
