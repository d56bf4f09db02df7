package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	msg := inviteTemplate.Render(map[string]string{
		"candidate_name":  "Ada",
		"company_name":    "Initech",
		"job_title":       "Staff Engineer",
		"job_url":         "https://example.com/jobs/5",
		"unsubscribe_url": "https://example.com/u/abc?type=invite",
	})

	assert.Equal(t, "Initech invited you to apply for Staff Engineer", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Hi Ada,")
	assert.Contains(t, msg.TextBody, "Initech thinks you could be a fit for Staff Engineer")
	assert.NotContains(t, msg.HTMLBody, "{{", "all placeholders substituted")
	assert.NotContains(t, msg.TextBody, "{{")
}

func TestRenderEscapesHTMLBodyOnly(t *testing.T) {
	msg := matchTemplate.Render(map[string]string{
		"employer_name":   "Bob",
		"job_title":       `<script>alert("x")</script>`,
		"candidate_name":  "Eve & co",
		"score":           "0.91",
		"evaluation":      "solid",
		"dashboard_url":   "https://example.com/d",
		"unsubscribe_url": "https://example.com/u",
	})

	assert.NotContains(t, msg.HTMLBody, "<script>")
	assert.Contains(t, msg.HTMLBody, "&lt;script&gt;")
	assert.Contains(t, msg.HTMLBody, "Eve &amp; co")

	// the plain-text body carries the values verbatim
	assert.Contains(t, msg.TextBody, `<script>alert("x")</script>`)
	assert.Contains(t, msg.TextBody, "Eve & co")
}

func TestAllTemplatesCarryUnsubscribeLink(t *testing.T) {
	for name, tmpl := range map[string]Template{
		"match":       matchTemplate,
		"invite":      inviteTemplate,
		"application": applicationTemplate,
		"status":      applicationStatusTemplate,
	} {
		assert.True(t, strings.Contains(tmpl.HTML, "{{unsubscribe_url}}"), "%s html", name)
		assert.True(t, strings.Contains(tmpl.Text, "{{unsubscribe_url}}"), "%s text", name)
	}
}
