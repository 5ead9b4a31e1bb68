package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/bankledger/internal/domain"
)

// DefaultNotificationChannel is the pub/sub channel notifications go to.
const DefaultNotificationChannel = "ledger:notifications"

// notificationMessage is the wire shape published for each notification.
type notificationMessage struct {
	To        domain.Recipient `json:"to"`
	Subject   string           `json:"subject"`
	Template  string           `json:"template"`
	Amount    string           `json:"amount"`
	CreatedAt string           `json:"created_at"`
}

// Notifier implements usecase.Notifier by publishing JSON messages that a
// mail worker subscribes to.
type Notifier struct {
	client  *redis.Client
	channel string
}

// NewNotifier creates a new Notifier.
func NewNotifier(client *redis.Client, channel string) *Notifier {
	if channel == "" {
		channel = DefaultNotificationChannel
	}
	return &Notifier{client: client, channel: channel}
}

// Notify publishes one notification.
func (n *Notifier) Notify(ctx context.Context, msg domain.Notification) error {
	payload, err := json.Marshal(notificationMessage{
		To:        msg.Recipient,
		Subject:   msg.Subject,
		Template:  string(msg.Template),
		Amount:    msg.Amount.String(),
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return n.client.Publish(ctx, n.channel, payload).Err()
}
