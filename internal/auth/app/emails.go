package app

import (
	"bytes"
	"fmt"
	"text/template"
	"time"
)

// Темы писем.
const (
	SubjectPasswordReset   = "Password Reset"
	SubjectPasswordChanged = "Your password has been changed"
)

type resetEmailParams struct {
	Email      string
	SiteName   string
	ResetURL   string
	Expiration time.Duration
}

type changedEmailParams struct {
	Email    string
	SiteName string
}

const resetEmailTemplate = `Hi {{.Email}},

You are receiving this because you (or someone else) have requested the reset of the password for your {{.SiteName}} account.

Please open the following link to complete the process:

{{.ResetURL}}

The link is valid for {{printf "%.f" .Expiration.Minutes}} minutes.

If you did not request this, please ignore this email and your password will remain unchanged.
`

const changedEmailTemplate = `Hello,

This is a confirmation that the password for your {{.SiteName}} account {{.Email}} has just been changed.
`

type emailTemplates struct {
	resetTmpl   *template.Template
	changedTmpl *template.Template
}

func mustParseEmailTemplates() *emailTemplates {
	return &emailTemplates{
		resetTmpl:   template.Must(template.New("reset").Parse(resetEmailTemplate)),
		changedTmpl: template.Must(template.New("changed").Parse(changedEmailTemplate)),
	}
}

func (e *emailTemplates) reset(p resetEmailParams) (string, error) {
	return execute(e.resetTmpl, p)
}

func (e *emailTemplates) changed(p changedEmailParams) (string, error) {
	return execute(e.changedTmpl, p)
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
