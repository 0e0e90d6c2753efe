package mailer

import (
	"fmt"
	"net/smtp"
	"os"
)

// Mailer sends plain-text mail over SMTP. Callers treat every send as
// best-effort; failures are logged by the notification handlers, not
// returned to users.
type Mailer struct {
	host string
	port string
	from string
	auth smtp.Auth
}

func NewFromEnv() *Mailer {
	host := getEnv("SMTP_HOST", "localhost")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")

	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}

	return &Mailer{
		host: host,
		port: getEnv("SMTP_PORT", "587"),
		from: getEnv("SMTP_FROM", "no-reply@b2connect.store"),
		auth: auth,
	}
}

func (m *Mailer) Send(to, subject, text string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, to, subject, text)
	return smtp.SendMail(m.host+":"+m.port, m.auth, m.from, []string{to}, []byte(msg))
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
