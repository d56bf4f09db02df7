package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipientRoundtrip(t *testing.T) {
	for _, email := range []string{
		"ada@example.com",
		"name.with+tag@sub.example.co",
	} {
		decoded, err := DecodeRecipient(EncodeRecipient(email))
		require.NoError(t, err)
		assert.Equal(t, email, decoded)
	}
}

func TestDecodeRecipientRejectsMalformedInput(t *testing.T) {
	_, err := DecodeRecipient("!!!not-base64!!!")
	assert.Error(t, err)

	// valid base64, but not an email address
	_, err = DecodeRecipient(EncodeRecipient("no-at-sign"))
	assert.Error(t, err)
}

func TestUnsubscribeURLPaths(t *testing.T) {
	base := "https://talent.example.com/"

	assert.Contains(t, UnsubscribeURL(base, "a@b.c", "invite"), "/dashboard/unsub/")
	assert.Contains(t, UnsubscribeURL(base, "a@b.c", "resume"), "/dashboard/unsub/")
	assert.Contains(t, UnsubscribeURL(base, "a@b.c", "match"), "/dashboard/unsubscribe/")
	assert.Contains(t, UnsubscribeURL(base, "a@b.c", "app"), "/dashboard/unsubscribe/")

	url := UnsubscribeURL(base, "a@b.c", "match")
	assert.NotContains(t, url, "//dashboard", "trailing slash trimmed")
	assert.Contains(t, url, "?type=match")
}
