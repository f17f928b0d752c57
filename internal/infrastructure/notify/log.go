package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// LogSender renders messages and logs their envelope instead of sending
// them. It is used in development and when SMTP is not configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "mail").Logger()}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Body.Execute(io.Discard, msg.Data); err != nil {
		return fmt.Errorf("render %s: %w", msg.Body.Name(), err)
	}
	s.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email suppressed")
	return nil
}
