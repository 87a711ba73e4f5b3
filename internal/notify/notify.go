// Package notify defines the outbound notification contract. The core
// never depends on real delivery; the default sender only logs.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Sender delivers a message to a recipient.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// MockSender logs the message and reports success. It stands in for a
// real email integration.
type MockSender struct {
	log zerolog.Logger
}

func NewMockSender(log zerolog.Logger) *MockSender {
	return &MockSender{log: log.With().Str("component", "notify").Logger()}
}

func (s *MockSender) Send(ctx context.Context, recipient, subject, body string) error {
	s.log.Info().
		Str("recipient", recipient).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Msg("mock email sent")
	return nil
}
