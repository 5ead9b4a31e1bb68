package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/domain"
)

// LogNotifier writes each notification to the log instead of sending it.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification.
func (p *LogNotifier) Notify(ctx context.Context, n domain.Notification) error {
	p.logger.Info().
		Str("to", n.Recipient.Email).
		Str("account_number", n.Recipient.AccountNumber).
		Str("subject", n.Subject).
		Str("template", string(n.Template)).
		Str("amount", n.Amount.String()).
		Time("created_at", n.CreatedAt).
		Msg("notification")

	return nil
}
