package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

// MailerSendMailer delivers mail through the MailerSend API.  Disabled
// (Send returns an error) when the API key or from address is missing,
// so misconfiguration surfaces in logs instead of silently dropping
// reminders.
type MailerSendMailer struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSendMailer(apiKey, fromName, fromEmail string) *MailerSendMailer {
	m := &MailerSendMailer{
		enabled: apiKey != "" && fromEmail != "",
		from:    mailersend.From{Name: fromName, Email: fromEmail},
	}
	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *MailerSendMailer) Send(toEmail, toName, subject, body string) error {
	if !m.enabled {
		return errors.New("mailersend disabled (missing MAILERSEND_API_KEY or MAIL_FROM)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(body)

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
