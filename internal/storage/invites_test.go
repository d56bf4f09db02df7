package storage

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewDBFromConnection(conn), mock
}

func TestCheckExistingInviteReadsPersistedState(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM invites")).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := db.CheckExistingInvite(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	assert.True(t, exists)

	// after the invite row is gone, the same check reflects the new state
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM invites")).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err = db.CheckExistingInvite(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInviteRejectsDuplicateWithoutInserting(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM invites")).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	result, err := db.CreateInvite(context.Background(), &Invite{
		EmployerID: 1, CandidateID: 2, JobID: 3,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)

	assert.NoError(t, mock.ExpectationsWereMet(), "no insert should be attempted")
}

func TestCreateInviteInsertsWithOutboxEvent(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM invites")).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invites")).
		WithArgs(int64(1), int64(2), int64(3), InviteSent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox")).
		WithArgs(sqlmock.AnyArg(), EventInviteSent, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	inv := &Invite{EmployerID: 1, CandidateID: 2, JobID: 3}
	result, err := db.CreateInvite(context.Background(), inv)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(9), inv.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
