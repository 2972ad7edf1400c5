package infra

import (
	"fmt"
	"net/smtp"

	"cellfie/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends receipt PDFs through the configured SMTP relay.
type Mailer struct {
	from     string
	host     string
	user     string
	password string
	addr     string
	breaker  *Breaker
}

func NewMailer(cfg *config.Config, breaker *Breaker) *Mailer {
	return &Mailer{
		from:     cfg.SMTPUser,
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  breaker,
	}
}

// Enabled is false when no SMTP host is configured; receipts are then only stored.
func (m *Mailer) Enabled() bool { return m != nil && m.host != "" }

// Breaker exposes the circuit breaker for the health endpoint.
func (m *Mailer) Breaker() *Breaker { return m.breaker }

// SendComprobante mails a receipt, attaching the PDF at pdfPath when given.
func (m *Mailer) SendComprobante(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	send := func() error { return e.Send(m.addr, auth) }
	if m.breaker == nil {
		return send()
	}
	return m.breaker.Do(send)
}
