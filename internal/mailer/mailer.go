// Package mailer delivers booking reminder and cancellation emails.
// Delivery is best-effort everywhere in this service: callers log a
// failed Send and move on, so a broken mail path can never stall a
// request or a scheduler sweep.
package mailer

import "log"

// Notifier sends a plain-text notification to one recipient.
type Notifier interface {
	Send(toEmail, toName, subject, body string) error
}

// DevMailer logs messages instead of delivering them.  It is the
// default driver so a development setup needs no mail credentials.
type DevMailer struct{}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (d *DevMailer) Send(toEmail, toName, subject, body string) error {
	log.Printf("[dev mail] to=%s (%s) subject=%q body=%q", toEmail, toName, subject, body)
	return nil
}
