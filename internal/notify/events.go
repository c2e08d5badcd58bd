package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/models"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// EventSink publishes a LeadCapturedEvent for downstream consumers.
type EventSink struct {
	pub     Publisher
	subject string
	gymID   string
}

func NewEventSink(pub Publisher, subject, gymID string) *EventSink {
	return &EventSink{pub: pub, subject: subject, gymID: gymID}
}

func (s *EventSink) Channel() string { return ChannelEvent }

func (s *EventSink) Notify(ctx context.Context, lead models.QuoteLead) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: nats: %v", ErrNotificationSendFailed, err)
	}

	data, err := json.Marshal(models.LeadCapturedEvent{
		EventID:     uuid.New().String(),
		LeadID:      lead.ID,
		GymID:       s.gymID,
		Name:        lead.Name,
		Email:       lead.Email,
		ContactTime: lead.ContactTime,
		SubmittedAt: lead.SubmittedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}

	if err := s.pub.Publish(s.subject, data); err != nil {
		return fmt.Errorf("%w: nats: %v", ErrNotificationSendFailed, err)
	}
	return nil
}

// ConnectNATS dials the bus with reconnects enabled.
func ConnectNATS(url, clientName string, log logger.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", map[string]interface{}{"error": err.Error()})
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", map[string]interface{}{"url": c.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Successfully connected to NATS", map[string]interface{}{"url": url})
	return nc, nil
}
