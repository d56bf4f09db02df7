package notify

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeRecipient encodes an email address for use in unsubscribe URLs.
func EncodeRecipient(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(email))
}

// DecodeRecipient reverses EncodeRecipient. Malformed or non-address input
// is rejected so a mangled link cannot flip someone else's preference.
func DecodeRecipient(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("malformed recipient token: %w", err)
	}
	email := string(raw)
	if !strings.Contains(email, "@") {
		return "", fmt.Errorf("decoded recipient %q is not an email address", email)
	}
	return email, nil
}

// UnsubscribeURL builds the preference link embedded in outgoing mail.
// Candidate-facing types (invite, resume) use the short /unsub path,
// employer-facing types (match, app) the /unsubscribe path.
func UnsubscribeURL(baseURL, email, prefType string) string {
	path := "unsubscribe"
	if prefType == "invite" || prefType == "resume" {
		path = "unsub"
	}
	return fmt.Sprintf("%s/dashboard/%s/%s?type=%s",
		strings.TrimSuffix(baseURL, "/"), path, EncodeRecipient(email), prefType)
}
