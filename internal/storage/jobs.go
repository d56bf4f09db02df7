package storage

import (
	"context"
	"encoding/json"
)

// CreateJobPosting inserts a job row and returns its id.
func (db *DB) CreateJobPosting(ctx context.Context, job *JobPosting) (int64, error) {
	query := `INSERT INTO job_postings
	            (company_id, title, description, location, salary_min, salary_max, clearance, compensation_type, active, static)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	var id int64
	err := db.connection.QueryRowContext(ctx, query,
		job.CompanyID,
		job.Title,
		job.Description,
		job.Location,
		job.SalaryMin,
		job.SalaryMax,
		job.Clearance,
		job.CompensationType,
		job.Active,
		nullableJSON(job.Static),
	).Scan(&id)
	return id, err
}

func (db *DB) GetJobPosting(ctx context.Context, id int64) (*JobPosting, error) {
	job := &JobPosting{}
	query := `SELECT id, company_id, title, description, location, salary_min, salary_max,
	                 clearance, compensation_type, active,
	                 COALESCE(static, 'null'), COALESCE(inferred, 'null'),
	                 created_at, updated_at
	          FROM job_postings WHERE id = $1`
	err := db.connection.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.CompanyID, &job.Title, &job.Description, &job.Location,
		&job.SalaryMin, &job.SalaryMax, &job.Clearance, &job.CompensationType,
		&job.Active, &job.Static, &job.Inferred, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// SetJobActive flips the employer-controlled active flag.
func (db *DB) SetJobActive(ctx context.Context, id int64, active bool) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE job_postings SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	return err
}

// UpdateJobInferred stores the AI-enrichment blob produced during onboarding.
func (db *DB) UpdateJobInferred(ctx context.Context, id int64, inferred json.RawMessage) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE job_postings SET inferred = $1, updated_at = NOW() WHERE id = $2`, inferred, id)
	return err
}

// UpdateJobDescription replaces the description after AI generation.
func (db *DB) UpdateJobDescription(ctx context.Context, id int64, description string) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE job_postings SET description = $1, updated_at = NOW() WHERE id = $2`, description, id)
	return err
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
