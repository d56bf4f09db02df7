package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-match/internal/notify"
	"talent-match/internal/storage"
)

func newPrefsRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	a := &API{db: storage.NewDBFromConnection(conn)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dashboard/unsub/{recipient}", a.UnsubHandler)
	mux.HandleFunc("GET /dashboard/unsubscribe/{recipient}", a.UnsubscribeHandler)
	return mux, mock
}

func doUnsub(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, storage.Result) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var result storage.Result
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	}
	return rec, result
}

func TestUnsubUnknownTypeTouchesNoPreference(t *testing.T) {
	h, mock := newPrefsRouter(t)
	enc := notify.EncodeRecipient("ada@example.com")

	rec, result := doUnsub(t, h, "/dashboard/unsub/"+enc+"?type=bogus")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, result.Success)
	assert.NoError(t, mock.ExpectationsWereMet(), "no preference row may be written")
}

func TestUnsubRejectsEmployerTypeOnCandidatePath(t *testing.T) {
	h, mock := newPrefsRouter(t)
	enc := notify.EncodeRecipient("ada@example.com")

	rec, result := doUnsub(t, h, "/dashboard/unsub/"+enc+"?type=match")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, result.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsubRecordsCandidateOptOut(t *testing.T) {
	h, mock := newPrefsRouter(t)
	enc := notify.EncodeRecipient("ada@example.com")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO email_preferences")).
		WithArgs("ada@example.com", storage.PrefInvite, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, result := doUnsub(t, h, "/dashboard/unsub/"+enc+"?type=invite")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, result.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsubscribeRecordsEmployerOptOut(t *testing.T) {
	h, mock := newPrefsRouter(t)
	enc := notify.EncodeRecipient("boss@acme.example")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO email_preferences")).
		WithArgs("boss@acme.example", storage.PrefMatch, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, result := doUnsub(t, h, "/dashboard/unsubscribe/"+enc+"?type=match")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, result.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsubRejectsMalformedToken(t *testing.T) {
	h, mock := newPrefsRouter(t)

	rec, _ := doUnsub(t, h, "/dashboard/unsub/not-base64!!?type=invite")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
