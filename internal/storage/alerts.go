package storage

import "context"

// CreateAlert records an in-app notification for the recipient's dashboard.
func (db *DB) CreateAlert(ctx context.Context, alert *Alert) (int64, error) {
	var id int64
	err := db.connection.QueryRowContext(ctx,
		`INSERT INTO alerts (recipient_id, type, reference_id) VALUES ($1, $2, $3) RETURNING id`,
		alert.RecipientID, alert.Type, alert.ReferenceID,
	).Scan(&id)
	return id, err
}

func (db *DB) ListAlerts(ctx context.Context, recipientID int64) ([]*Alert, error) {
	rows, err := db.connection.QueryContext(ctx,
		`SELECT id, recipient_id, type, reference_id, read, created_at
		 FROM alerts WHERE recipient_id = $1 ORDER BY created_at DESC`, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		a := &Alert{}
		if err := rows.Scan(&a.ID, &a.RecipientID, &a.Type, &a.ReferenceID, &a.Read, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (db *DB) MarkAlertRead(ctx context.Context, id int64) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE alerts SET read = TRUE WHERE id = $1`, id)
	return err
}

func (db *DB) DeleteAlert(ctx context.Context, id int64) error {
	_, err := db.connection.ExecContext(ctx,
		`DELETE FROM alerts WHERE id = $1`, id)
	return err
}
