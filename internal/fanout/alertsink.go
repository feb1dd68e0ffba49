package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

// AlertChannelNats is the subscription alert channel name that routes
// matched events to the NATS sink.
const AlertChannelNats = "nats"

// AlertSink is a side channel for matched events, consumed by external
// alerting collaborators.
type AlertSink interface {
	Publish(ctx context.Context, userID string, item *models.NewsItem) error
	Close()
}

// NatsSink publishes matched events to per-user NATS subjects
// (news.alerts.<user_id>).
type NatsSink struct {
	conn *nats.Conn
}

// NewNatsSink connects to the NATS server at url.
func NewNatsSink(url string) (*NatsSink, error) {
	conn, err := nats.Connect(url,
		nats.Name("polyfloat-newsd"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsSink{conn: conn}, nil
}

// Publish sends one matched event for one user.
func (s *NatsSink) Publish(_ context.Context, userID string, item *models.NewsItem) error {
	payload, err := json.Marshal(models.Envelope{
		Type:      models.MessageTypeNewsItem,
		Data:      item,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
	})
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	subject := fmt.Sprintf("news.alerts.%s", userID)
	if err := s.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (s *NatsSink) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}
