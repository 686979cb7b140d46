package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/fachwerk-hq/fachwerk/internal/shared/config"
)

// Mail is one outgoing notification.
type Mail struct {
	To        []string
	Subject   string
	PlainBody string
	HTMLBody  string
}

type Sender interface {
	Send(m Mail) error
}

type SMTPSender struct {
	fromAddress string
	fromName    string
	dialer      *gomail.Dialer
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

func (s *SMTPSender) Send(mail Mail) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromAddress, s.fromName)
	m.SetHeader("To", mail.To...)
	m.SetHeader("Subject", mail.Subject)
	m.SetBody("text/plain", mail.PlainBody)
	if mail.HTMLBody != "" {
		m.AddAlternative("text/html", mail.HTMLBody)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
