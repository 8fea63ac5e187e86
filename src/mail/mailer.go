package mail

import (
	"fmt"
	"net/smtp"
	"strconv"

	"crmBackend/src/config"
)

//go:generate mockgen -source=mailer.go -destination=mocks/mock_mailer.go -package=mocks

// Mailer отправляет исходящую почту
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer реализация Mailer поверх net/smtp
type SMTPMailer struct {
	addr string
	from string
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		addr: cfg.Host + ":" + strconv.Itoa(cfg.Port),
		from: cfg.From,
	}
}

// Send отправляет письмо через настроенный SMTP-сервер
func (m *SMTPMailer) Send(to, subject, body string) error {
	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, to, subject, body)
	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(message))
}
