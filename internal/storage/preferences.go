package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Email preference types. Candidates control invite and resume mails,
// employers control match and application mails.
const (
	PrefInvite      = "invite"
	PrefResume      = "resume"
	PrefMatch       = "match"
	PrefApplication = "app"
)

// KnownPrefType reports whether the unsubscribe type discriminator is one of
// the supported preference keys. Unknown types must be a strict no-op.
func KnownPrefType(prefType string) bool {
	switch prefType {
	case PrefInvite, PrefResume, PrefMatch, PrefApplication:
		return true
	}
	return false
}

// SetEmailPreference upserts the opt-in flag for (email, type). Re-writing
// the same boolean is the idempotent unsubscribe path. An unknown type is
// rejected before any row is written.
func (db *DB) SetEmailPreference(ctx context.Context, email, prefType string, optIn bool) error {
	if !KnownPrefType(prefType) {
		return fmt.Errorf("unknown preference type %q", prefType)
	}
	_, err := db.connection.ExecContext(ctx,
		`INSERT INTO email_preferences (email, pref_type, opt_in)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email, pref_type) DO UPDATE
		   SET opt_in = EXCLUDED.opt_in, updated_at = NOW()`,
		email, prefType, optIn)
	return err
}

// IsOptedIn reports whether the recipient still accepts the given mail type.
// No row means the recipient never unsubscribed, so the default is true.
func (db *DB) IsOptedIn(ctx context.Context, email, prefType string) (bool, error) {
	var optIn bool
	err := db.connection.QueryRowContext(ctx,
		`SELECT opt_in FROM email_preferences WHERE email = $1 AND pref_type = $2`,
		email, prefType,
	).Scan(&optIn)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return optIn, nil
}
