package main

import (
	"context"
	"fmt"
	"log"
	"mime"
	"net/smtp"
	"strings"
	"unicode"

	"github.com/Zachkp/folio/internal/contact"
)

// smtpMailer forwards contact messages to the site owner's inbox.
type smtpMailer struct {
	host, port string
	user, pass string
	to         string
	send       func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func newMailer(cfg Config) *smtpMailer {
	to := cfg.ToEmail
	if to == "" {
		to = cfg.SMTPUser
	}
	return &smtpMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		to:   to,
		send: smtp.SendMail,
	}
}

func (m *smtpMailer) Submit(ctx context.Context, v contact.Values) error {
	if m.user == "" || m.pass == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := composeMail(m.user, m.to, v)
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)

	// net/smtp has no context support; ctx is only checked up front.
	if err := m.send(m.host+":"+m.port, auth, m.user, []string{m.to}, msg); err != nil {
		log.Printf("Error sending email: %v", err)
		return fmt.Errorf("send mail: %w", err)
	}

	log.Printf("Email sent successfully from %s (%s)", v.Name, v.Email)
	return nil
}

func composeMail(from, to string, v contact.Values) []byte {
	subject := mime.QEncoding.Encode("utf-8", "Portfolio Contact: "+headerText(v.Name))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, v.Name, v.Email, v.Message)

	return []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"Reply-To: " + headerText(v.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// headerText turns visitor input into a single header line. Control
// characters, CR and LF included, become spaces.
func headerText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
