// Package notify sends transactional email.
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// GmailMailer sends through the Gmail API as the authorized user.
type GmailMailer struct {
	svc  *gmail.Service
	from string
}

func NewGmailMailer(svc *gmail.Service, from string) *GmailMailer {
	return &GmailMailer{svc: svc, from: from}
}

func (m *GmailMailer) Send(ctx context.Context, msg Message) error {
	raw := base64.URLEncoding.EncodeToString(rfc2822(m.from, msg))
	_, err := m.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail send to %s: %w", msg.To, err)
	}
	return nil
}

func rfc2822(from string, msg Message) []byte {
	var b bytes.Buffer
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return b.Bytes()
}

// LogMailer only logs messages. It is used when Gmail is not configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.Named("mail")}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("mail not sent, no transport configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

var welcome = template.Must(template.New("welcome").Parse(`
{{define "seeker"}}Hi {{.Name}},

Your job seeker profile is ready. Complete your skills and resume link so companies can find you.
{{end}}
{{define "company"}}Hi {{.Name}},

{{.Name}} is now on the board. You can start posting jobs right away.
{{end}}
{{define "admin"}}Hi {{.Name}},

An administrator account was created for {{.Email}}.
{{end}}
`))

// Welcome renders the greeting for a new account of the given role.
func Welcome(role, name, email string) (Message, error) {
	if welcome.Lookup(role) == nil {
		return Message{}, fmt.Errorf("no welcome template for role %q", role)
	}
	var body bytes.Buffer
	data := struct{ Name, Email string }{Name: name, Email: email}
	if err := welcome.ExecuteTemplate(&body, role, data); err != nil {
		return Message{}, fmt.Errorf("render welcome: %w", err)
	}
	return Message{
		To:      email,
		Subject: "Welcome to the job board",
		Body:    body.String(),
	}, nil
}
