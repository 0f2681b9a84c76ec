package services

import (
	"context"
	"fmt"
	"io"

	"github.com/go-gomail/gomail"
)

type Attachment struct {
	Name string
	Data []byte
}

type Email struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// SMTPMailer delivers plain-text mail with optional attachments.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, e Email) error {
	if e.To == "" {
		return fmt.Errorf("email has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/plain", e.Body)
	for _, a := range e.Attachments {
		data := a.Data
		msg.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}
