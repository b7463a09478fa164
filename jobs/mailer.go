package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// SMTPMailer delivers mail over plain SMTP. Pointed at Mailpit in
// development.
type SMTPMailer struct {
	addr string
	from string
}

// NewSMTPMailer constructs SMTPMailer.
func NewSMTPMailer(host string, port int, from string) *SMTPMailer {
	return &SMTPMailer{addr: fmt.Sprintf("%s:%d", host, port), from: from}
}

// Send implements Mailer.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")
	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg.String()))
}

// LogMailer logs instead of sending. Used when SMTP is not configured.
type LogMailer struct {
	Logger *slog.Logger
}

// Send implements Mailer.
func (m LogMailer) Send(_ context.Context, to, subject, _ string) error {
	if m.Logger != nil {
		m.Logger.Info("mail", slog.String("to", to), slog.String("subject", subject))
	}
	return nil
}
