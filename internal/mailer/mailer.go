package mailer

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	qrcode "github.com/skip2/go-qrcode"
)

//go:embed templates
var templateFS embed.FS

// Mailer delivers customer-facing notifications.
type Mailer interface {
	BookingConfirmed(recipient string, booking *domain.Booking, session *domain.BookingSession) error
}

type SMTPMailer struct {
	dialer *mail.Dialer
	sender string
}

func NewSMTPMailer(host string, port int, username, password, sender string) *SMTPMailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second

	return &SMTPMailer{
		dialer: dialer,
		sender: sender,
	}
}

// BookingConfirmed sends the confirmation email with a QR ticket attached.
// The QR payload is the order reference, which the venue scans at entry.
func (m *SMTPMailer) BookingConfirmed(recipient string, booking *domain.Booking, session *domain.BookingSession) error {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/booking_confirmation.tmpl")
	if err != nil {
		return err
	}

	data := map[string]any{
		"OrderRef":    booking.OrderRef,
		"ShowtimeID":  booking.ShowtimeID,
		"Seats":       session.Seats,
		"Combos":      session.Combos,
		"TotalAmount": booking.TotalAmount.StringFixed(0),
	}

	subject := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(subject, "subject", data)
	if err != nil {
		return err
	}

	htmlBody := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(htmlBody, "htmlBody", data)
	if err != nil {
		return err
	}

	ticket, err := qrcode.Encode(booking.OrderRef, qrcode.Medium, 256)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/html", htmlBody.String())
	msg.Attach("ticket.png", mail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(ticket)
		return err
	}))

	return m.dialer.DialAndSend(msg)
}
