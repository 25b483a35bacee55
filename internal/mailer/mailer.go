package mailer

import (
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP. A nil Mailer drops messages,
// so the service runs without an SMTP server in development.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New creates a Mailer, or nil when host is empty.
func New(host string, port int, username, password, from string) *Mailer {
	if host == "" {
		return nil
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers a plain-text message to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	if m == nil {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
