package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpsertOriginalScore writes the original similarity score for a pair.
// Repeated runs only refresh the original score column; sub-scores and an
// already-enhanced score are never downgraded.
func (db *DB) UpsertOriginalScore(ctx context.Context, jobID, candidateID int64, score float64) error {
	_, err := db.connection.ExecContext(ctx,
		`INSERT INTO matching_sys_pairs (job_id, candidate_id, original_score)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (job_id, candidate_id) DO UPDATE
		   SET original_score = EXCLUDED.original_score,
		       updated_at     = NOW()`,
		jobID, candidateID, score)
	return err
}

// MatchPairExists reports whether the pair row is already present.
func (db *DB) MatchPairExists(ctx context.Context, jobID, candidateID int64) (bool, error) {
	var exists bool
	err := db.connection.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM matching_sys_pairs WHERE job_id = $1 AND candidate_id = $2)`,
		jobID, candidateID,
	).Scan(&exists)
	return exists, err
}

// subScoreColumns whitelists the combo-to-column mapping so the column name
// never comes from input.
var subScoreColumns = map[string]string{
	"A": "score_a",
	"B": "score_b",
	"C": "score_c",
	"D": "score_d",
	"E": "score_e",
	"F": "score_f",
}

// SetSubScore stores one combo's sub-evaluation score on the pair row.
func (db *DB) SetSubScore(ctx context.Context, jobID, candidateID int64, combo string, score float64) error {
	column, ok := subScoreColumns[combo]
	if !ok {
		return fmt.Errorf("unknown combo %q", combo)
	}
	query := fmt.Sprintf(
		`UPDATE matching_sys_pairs SET %s = $1, updated_at = NOW() WHERE job_id = $2 AND candidate_id = $3`,
		column)
	_, err := db.connection.ExecContext(ctx, query, score, jobID, candidateID)
	return err
}

func (db *DB) GetMatchPair(ctx context.Context, jobID, candidateID int64) (*MatchPair, error) {
	p := &MatchPair{}
	err := db.connection.QueryRowContext(ctx,
		`SELECT job_id, candidate_id, original_score,
		        score_a, score_b, score_c, score_d, score_e, score_f,
		        enhanced_score, evaluation, notified, created_at, updated_at
		 FROM matching_sys_pairs WHERE job_id = $1 AND candidate_id = $2`,
		jobID, candidateID,
	).Scan(&p.JobID, &p.CandidateID, &p.OriginalScore,
		&p.ScoreA, &p.ScoreB, &p.ScoreC, &p.ScoreD, &p.ScoreE, &p.ScoreF,
		&p.EnhancedScore, &p.Evaluation, &p.Notified, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (db *DB) SetEnhancedScore(ctx context.Context, jobID, candidateID int64, score float64) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE matching_sys_pairs SET enhanced_score = $1, updated_at = NOW()
		 WHERE job_id = $2 AND candidate_id = $3`,
		score, jobID, candidateID)
	return err
}

func (db *DB) SetMatchEvaluation(ctx context.Context, jobID, candidateID int64, evaluation string) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE matching_sys_pairs SET evaluation = $1, updated_at = NOW()
		 WHERE job_id = $2 AND candidate_id = $3`,
		evaluation, jobID, candidateID)
	return err
}

// MarkMatchNotified flips the notified flag and enqueues the match.ready
// outbox event in one transaction. The WHERE notified = FALSE guard makes the
// notification single-shot per pair even if sub-scores keep arriving.
func (db *DB) MarkMatchNotified(ctx context.Context, jobID, candidateID int64) (bool, error) {
	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE matching_sys_pairs SET notified = TRUE, updated_at = NOW()
		 WHERE job_id = $1 AND candidate_id = $2 AND notified = FALSE`,
		jobID, candidateID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	payload, _ := json.Marshal(map[string]int64{
		"job_id":       jobID,
		"candidate_id": candidateID,
	})
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO outbox (id, event_type, payload) VALUES ($1, $2, $3)`,
		uuid.New().String(), EventMatchReady, payload); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// PairRef identifies one job/candidate pairing.
type PairRef struct {
	JobID       int64 `json:"job_id"`
	CandidateID int64 `json:"candidate_id"`
}

// StalledUnnotifiedPairs returns pairs that have an enhanced score, were
// never notified, and have had no in-flight sub-score run for longer than
// olderThan. Such pairs lost sub-score runs to terminal failures; the
// enhanced score already covers whichever sub-scores did arrive.
func (db *DB) StalledUnnotifiedPairs(ctx context.Context, subScoreEvent string, olderThan time.Duration, limit int) ([]PairRef, error) {
	rows, err := db.connection.QueryContext(ctx,
		`SELECT p.job_id, p.candidate_id
		 FROM matching_sys_pairs p
		 WHERE p.enhanced_score IS NOT NULL
		   AND p.notified = FALSE
		   AND p.updated_at < NOW() - make_interval(secs => $1)
		   AND NOT EXISTS (
		       SELECT 1 FROM workflow_runs r
		       WHERE r.event_type = $2
		         AND r.status = $3
		         AND (r.payload->>'job_id')::BIGINT = p.job_id
		         AND (r.payload->>'candidate_id')::BIGINT = p.candidate_id)
		 ORDER BY p.updated_at
		 LIMIT $4`,
		olderThan.Seconds(), subScoreEvent, RunRunning, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []PairRef
	for rows.Next() {
		var p PairRef
		if err := rows.Scan(&p.JobID, &p.CandidateID); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// ListMatchesForJob returns the persisted pairings for a job, best first.
func (db *DB) ListMatchesForJob(ctx context.Context, jobID int64) ([]*MatchPair, error) {
	rows, err := db.connection.QueryContext(ctx,
		`SELECT job_id, candidate_id, original_score,
		        score_a, score_b, score_c, score_d, score_e, score_f,
		        enhanced_score, evaluation, notified, created_at, updated_at
		 FROM matching_sys_pairs
		 WHERE job_id = $1
		 ORDER BY COALESCE(enhanced_score, original_score) DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []*MatchPair
	for rows.Next() {
		p := &MatchPair{}
		if err := rows.Scan(&p.JobID, &p.CandidateID, &p.OriginalScore,
			&p.ScoreA, &p.ScoreB, &p.ScoreC, &p.ScoreD, &p.ScoreE, &p.ScoreF,
			&p.EnhancedScore, &p.Evaluation, &p.Notified, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}
