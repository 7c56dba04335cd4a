package mailer

import (
	"sync"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
)

// ConfirmationEmail records one email that would have been sent.
type ConfirmationEmail struct {
	Recipient string
	Booking   *domain.Booking
	Session   *domain.BookingSession
}

// MockMailer records confirmations instead of sending them.
type MockMailer struct {
	mu     sync.RWMutex
	emails []ConfirmationEmail
}

func NewMockMailer() *MockMailer {
	return &MockMailer{
		emails: make([]ConfirmationEmail, 0),
	}
}

func (m *MockMailer) BookingConfirmed(recipient string, booking *domain.Booking, session *domain.BookingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.emails = append(m.emails, ConfirmationEmail{
		Recipient: recipient,
		Booking:   booking,
		Session:   session,
	})

	return nil
}

func (m *MockMailer) SentEmails() []ConfirmationEmail {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emails := make([]ConfirmationEmail, len(m.emails))
	copy(emails, m.emails)

	return emails
}
