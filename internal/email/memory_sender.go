package email

import (
	"context"
	"sync"
)

// SentEmail is an email captured by a MemorySender.
type SentEmail struct {
	From      Address
	Recipient Address
	Subject   string
	Body      string
}

// MemorySender is a Sender that keeps emails in memory instead of sending
// them. It's safe for concurrent use, background workers may send while a
// test inspects the captured emails.
type MemorySender struct {
	mu     sync.Mutex
	emails []SentEmail
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, from, recipient Address, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emails = append(s.emails, SentEmail{
		From:      from,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	})

	return nil
}

// Emails returns a copy of the captured emails in the order they were sent.
func (s *MemorySender) Emails() []SentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SentEmail, len(s.emails))
	copy(out, s.emails)

	return out
}
