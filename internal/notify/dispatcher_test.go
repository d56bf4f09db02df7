package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-match/internal/storage"
)

type fakePrefs struct {
	optedOut map[string]bool
	err      error
}

func (f *fakePrefs) IsOptedIn(_ context.Context, email, prefType string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.optedOut[email+"/"+prefType], nil
}

type fakeSender struct {
	sent []struct {
		To  string
		Msg Message
	}
	err error
}

func (f *fakeSender) Send(_ context.Context, to string, msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, struct {
		To  string
		Msg Message
	}{to, msg})
	return nil
}

func TestDispatcherSkipsUnsubscribedRecipient(t *testing.T) {
	prefs := &fakePrefs{optedOut: map[string]bool{
		"boss@corp.com/" + storage.PrefMatch: true,
	}}
	sender := &fakeSender{}
	d := NewDispatcher(prefs, sender, "https://example.com")

	err := d.SendMatch(context.Background(), MatchMail{
		EmployerEmail: "boss@corp.com",
		EmployerName:  "Boss",
		JobID:         1,
		JobTitle:      "Engineer",
		CandidateName: "Ada",
		Score:         0.9,
	})
	require.NoError(t, err, "an opt-out is not an error")
	assert.Empty(t, sender.sent)
}

func TestDispatcherSendsWhenOptedIn(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(&fakePrefs{}, sender, "https://example.com")

	err := d.SendInvite(context.Background(), InviteMail{
		CandidateEmail: "ada@example.com",
		CandidateName:  "Ada",
		CompanyName:    "Initech",
		JobID:          5,
		JobTitle:       "Staff Engineer",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ada@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Msg.Subject, "Staff Engineer")
	assert.Contains(t, sender.sent[0].Msg.TextBody, "/dashboard/unsub/")
}

func TestDispatcherPropagatesSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	d := NewDispatcher(&fakePrefs{}, sender, "https://example.com")

	err := d.SendApplicationStatus(context.Background(), StatusMail{
		CandidateEmail: "ada@example.com",
		CandidateName:  "Ada",
		CompanyName:    "Initech",
		JobTitle:       "Staff Engineer",
		Status:         storage.ApplicationInterview,
	})
	assert.Error(t, err)
}

func TestDispatcherPropagatesPrefErrors(t *testing.T) {
	prefs := &fakePrefs{err: errors.New("db down")}
	sender := &fakeSender{}
	d := NewDispatcher(prefs, sender, "https://example.com")

	err := d.SendApplication(context.Background(), ApplicationMail{
		EmployerEmail: "boss@corp.com",
		JobID:         1,
		JobTitle:      "Engineer",
		CandidateName: "Ada",
	})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}
