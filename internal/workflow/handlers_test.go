package workflow

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-match/internal/matching"
	"talent-match/internal/storage"
)

func newSweepPipeline(t *testing.T) (*Pipeline, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	db := storage.NewDBFromConnection(conn)
	return NewPipeline(db, nil, nil, nil, nil, nil, nil), mock
}

func TestSweepNotifiesPairWithTerminallyFailedSubScores(t *testing.T) {
	p, mock := newSweepPipeline(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM matching_sys_pairs p")).
		WithArgs(stalledPairWait.Seconds(), matching.EventSubScore, storage.RunRunning, 20).
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "candidate_id"}).
			AddRow(int64(1), int64(2)))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matching_sys_pairs SET notified = TRUE")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox")).
		WithArgs(sqlmock.AnyArg(), storage.EventMatchReady, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	p.sweepStalledMatches(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepSkipsAlreadyNotifiedPair(t *testing.T) {
	p, mock := newSweepPipeline(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM matching_sys_pairs p")).
		WithArgs(stalledPairWait.Seconds(), matching.EventSubScore, storage.RunRunning, 20).
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "candidate_id"}).
			AddRow(int64(1), int64(2)))

	// a racing sub-score run notified the pair between select and update
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matching_sys_pairs SET notified = TRUE")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	p.sweepStalledMatches(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet(), "no second outbox event for a notified pair")
}

func TestSweepQuietWhenNothingStalled(t *testing.T) {
	p, mock := newSweepPipeline(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM matching_sys_pairs p")).
		WithArgs(stalledPairWait.Seconds(), matching.EventSubScore, storage.RunRunning, 20).
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "candidate_id"}))

	p.sweepStalledMatches(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}
