package notify

import (
	"html"
	"strings"
)

// Message is a rendered email ready for delivery.
type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Template holds the subject and both body variants of one mail type.
// Placeholders use {{name}} syntax.
type Template struct {
	Subject string
	HTML    string
	Text    string
}

var matchTemplate = Template{
	Subject: "New candidate match for {{job_title}}",
	HTML: `<html><body>
<p>Hi {{employer_name}},</p>
<p>Our matching pipeline found a strong candidate for <strong>{{job_title}}</strong>.</p>
<p>Candidate: {{candidate_name}}<br>Match score: {{score}}</p>
<p>{{evaluation}}</p>
<p><a href="{{dashboard_url}}">Review the match</a></p>
<p style="font-size:12px;color:#888">No longer want match emails? <a href="{{unsubscribe_url}}">Unsubscribe</a>.</p>
</body></html>`,
	Text: `Hi {{employer_name}},

Our matching pipeline found a strong candidate for {{job_title}}.

Candidate: {{candidate_name}}
Match score: {{score}}

{{evaluation}}

Review the match: {{dashboard_url}}
Unsubscribe from match emails: {{unsubscribe_url}}`,
}

var inviteTemplate = Template{
	Subject: "{{company_name}} invited you to apply for {{job_title}}",
	HTML: `<html><body>
<p>Hi {{candidate_name}},</p>
<p><strong>{{company_name}}</strong> thinks you could be a fit for <strong>{{job_title}}</strong> and invited you to apply.</p>
<p><a href="{{job_url}}">View the position</a></p>
<p style="font-size:12px;color:#888">No longer want invite emails? <a href="{{unsubscribe_url}}">Unsubscribe</a>.</p>
</body></html>`,
	Text: `Hi {{candidate_name}},

{{company_name}} thinks you could be a fit for {{job_title}} and invited you to apply.

View the position: {{job_url}}
Unsubscribe from invite emails: {{unsubscribe_url}}`,
}

var applicationTemplate = Template{
	Subject: "New application for {{job_title}}",
	HTML: `<html><body>
<p>Hi {{employer_name}},</p>
<p><strong>{{candidate_name}}</strong> applied for <strong>{{job_title}}</strong>.</p>
<p><a href="{{dashboard_url}}">Review the application</a></p>
<p style="font-size:12px;color:#888">No longer want application emails? <a href="{{unsubscribe_url}}">Unsubscribe</a>.</p>
</body></html>`,
	Text: `Hi {{employer_name}},

{{candidate_name}} applied for {{job_title}}.

Review the application: {{dashboard_url}}
Unsubscribe from application emails: {{unsubscribe_url}}`,
}

var applicationStatusTemplate = Template{
	Subject: "Your application for {{job_title}} is now {{status}}",
	HTML: `<html><body>
<p>Hi {{candidate_name}},</p>
<p>Your application for <strong>{{job_title}}</strong> at {{company_name}} moved to <strong>{{status}}</strong>.</p>
<p style="font-size:12px;color:#888">No longer want application updates? <a href="{{unsubscribe_url}}">Unsubscribe</a>.</p>
</body></html>`,
	Text: `Hi {{candidate_name}},

Your application for {{job_title}} at {{company_name}} moved to {{status}}.

Unsubscribe from application updates: {{unsubscribe_url}}`,
}

// Render substitutes {{name}} placeholders in both bodies and the subject.
// HTML body values are escaped so user-supplied names and LLM output cannot
// inject markup into the mail.
func (t Template) Render(vars map[string]string) Message {
	return Message{
		Subject:  substitute(t.Subject, vars, false),
		HTMLBody: substitute(t.HTML, vars, true),
		TextBody: substitute(t.Text, vars, false),
	}
}

func substitute(tmpl string, vars map[string]string, escape bool) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		if escape {
			value = html.EscapeString(value)
		}
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
