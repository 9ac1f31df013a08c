package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// ConsoleSender logs emails instead of delivering them. Used in development
// when no SendGrid key is configured.
type ConsoleSender struct {
	log zerolog.Logger
}

// NewConsoleSender creates a ConsoleSender.
func NewConsoleSender(log zerolog.Logger) *ConsoleSender {
	return &ConsoleSender{log: log.With().Str("component", "console_mailer").Logger()}
}

func (s *ConsoleSender) Send(_ context.Context, toName, toAddr, subject, body string) error {
	s.log.Info().
		Str("to", toName+" <"+toAddr+">").
		Str("subject", subject).
		Str("body", body).
		Msg("Email (console)")
	return nil
}
