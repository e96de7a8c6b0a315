package services

import (
	"fmt"
	"net/smtp"

	"bcflats_backend/internal/config"
)

// EmailService delivers notification batches over SMTP. It is invoked
// from the worker only; ledger operations never block on it.
type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (s *EmailService) SendEmail(to []string, subject, body string) error {
	if s.host == "" || s.port == "" || s.user == "" || s.password == "" {
		return fmt.Errorf("SMTP credentials not fully configured")
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", to[0], subject, body))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
