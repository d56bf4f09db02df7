package storage

import (
	"context"
	"encoding/json"
)

// UpsertCandidate inserts a candidate keyed by email, updating profile fields
// on conflict. Returns the candidate id either way.
func (db *DB) UpsertCandidate(ctx context.Context, c *Candidate) (int64, error) {
	query := `INSERT INTO candidates (name, email, phone, location, clearance, resume_ref, static)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (email) DO UPDATE
	            SET name       = EXCLUDED.name,
	                phone      = EXCLUDED.phone,
	                location   = EXCLUDED.location,
	                clearance  = EXCLUDED.clearance,
	                resume_ref = EXCLUDED.resume_ref,
	                static     = EXCLUDED.static,
	                updated_at = NOW()
	          RETURNING id`
	var id int64
	err := db.connection.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Location, c.Clearance, c.ResumeRef, nullableJSON(c.Static),
	).Scan(&id)
	return id, err
}

func (db *DB) GetCandidate(ctx context.Context, id int64) (*Candidate, error) {
	c := &Candidate{}
	query := `SELECT id, name, email, phone, location, clearance, onboarded, resume_ref,
	                 COALESCE(static, 'null'), COALESCE(inferred, 'null'), created_at, updated_at
	          FROM candidates WHERE id = $1`
	err := db.connection.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Location, &c.Clearance,
		&c.Onboarded, &c.ResumeRef, &c.Static, &c.Inferred, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (db *DB) GetCandidateByEmail(ctx context.Context, email string) (*Candidate, error) {
	c := &Candidate{}
	query := `SELECT id, name, email, phone, location, clearance, onboarded, resume_ref,
	                 COALESCE(static, 'null'), COALESCE(inferred, 'null'), created_at, updated_at
	          FROM candidates WHERE email = $1`
	err := db.connection.QueryRowContext(ctx, query, email).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Location, &c.Clearance,
		&c.Onboarded, &c.ResumeRef, &c.Static, &c.Inferred, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SetCandidateOnboarded marks the onboarding boolean once enrichment finishes.
func (db *DB) SetCandidateOnboarded(ctx context.Context, id int64) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE candidates SET onboarded = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// UpdateCandidateInferred stores the inferred-data blob from enrichment.
func (db *DB) UpdateCandidateInferred(ctx context.Context, id int64, inferred json.RawMessage) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE candidates SET inferred = $1, updated_at = NOW() WHERE id = $2`, inferred, id)
	return err
}
