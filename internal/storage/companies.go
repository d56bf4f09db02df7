package storage

import (
	"context"
	"fmt"
)

func (db *DB) CreateCompany(ctx context.Context, name string) (int64, error) {
	var id int64
	err := db.connection.QueryRowContext(ctx,
		`INSERT INTO companies (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	return id, err
}

func (db *DB) GetCompany(ctx context.Context, id int64) (*Company, error) {
	c := &Company{}
	err := db.connection.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddEmployer attaches an employer to a company. A company may have at most
// one admin, enforced by a pre-check at insert time.
func (db *DB) AddEmployer(ctx context.Context, e *Employer) (*Result, error) {
	if e.Role != RoleAdmin && e.Role != RoleManager && e.Role != RoleEmployee {
		return &Result{Success: false, Message: fmt.Sprintf("unknown employer role %q", e.Role)}, nil
	}

	if e.Role == RoleAdmin {
		var admins int
		err := db.connection.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM company_employers WHERE company_id = $1 AND role = $2`,
			e.CompanyID, RoleAdmin,
		).Scan(&admins)
		if err != nil {
			return nil, err
		}
		if admins > 0 {
			return &Result{Success: false, Message: "company already has an admin"}, nil
		}
	}

	var id int64
	err := db.connection.QueryRowContext(ctx,
		`INSERT INTO company_employers (company_id, name, email, role) VALUES ($1, $2, $3, $4) RETURNING id`,
		e.CompanyID, e.Name, e.Email, e.Role,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	e.ID = id
	return &Result{Success: true}, nil
}

func (db *DB) GetEmployer(ctx context.Context, id int64) (*Employer, error) {
	e := &Employer{}
	err := db.connection.QueryRowContext(ctx,
		`SELECT id, company_id, name, email, role, created_at FROM company_employers WHERE id = $1`, id,
	).Scan(&e.ID, &e.CompanyID, &e.Name, &e.Email, &e.Role, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CompanyAdmin returns the admin employer for a company, if one exists.
func (db *DB) CompanyAdmin(ctx context.Context, companyID int64) (*Employer, error) {
	e := &Employer{}
	err := db.connection.QueryRowContext(ctx,
		`SELECT id, company_id, name, email, role, created_at
		 FROM company_employers WHERE company_id = $1 AND role = $2 LIMIT 1`,
		companyID, RoleAdmin,
	).Scan(&e.ID, &e.CompanyID, &e.Name, &e.Email, &e.Role, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}
