package notify

import (
	"fmt"

	"github.com/docentdesk/booking/internal/config"
	"gopkg.in/gomail.v2"
)

// Sender is what the notifier worker needs from an email transport.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
	}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// ConfirmationEmail renders the subject and body for a created booking.
func ConfirmationEmail(msg Message) (subject, body string) {
	subject = fmt.Sprintf("Your booking %s is confirmed", msg.Reference)
	body = fmt.Sprintf(
		`<h1>See you soon, %s!</h1>
<p>Your booking <strong>%s</strong> for <strong>%s</strong> on %s is confirmed.</p>
<p>Tickets: %d &mdash; Total: %.2f %s</p>
<p>Show the QR code from your dashboard at the entrance.</p>`,
		msg.Name, msg.Reference, msg.EventTitle, msg.EventDate.Format("Mon, 2 Jan 2006 15:04"),
		msg.TotalTickets, msg.TotalAmount, msg.Currency,
	)
	return subject, body
}

// CancellationEmail renders the subject and body for a cancelled booking.
func CancellationEmail(msg Message) (subject, body string) {
	subject = fmt.Sprintf("Your booking %s has been cancelled", msg.Reference)
	refund := "No refund applies for this cancellation."
	if msg.RefundAmount > 0 {
		refund = fmt.Sprintf("A refund of %.2f %s will be processed.", msg.RefundAmount, msg.Currency)
	}
	body = fmt.Sprintf(
		`<h1>Booking cancelled</h1>
<p>Your booking <strong>%s</strong> for <strong>%s</strong> has been cancelled.</p>
<p>%s</p>`,
		msg.Reference, msg.EventTitle, refund,
	)
	return subject, body
}
