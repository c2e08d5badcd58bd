// Package notify hands captured quote leads to the sales team's channels.
// Every sink is best effort: failures are logged and reported back but never
// change what the user is told.
package notify

import (
	"context"
	"errors"
	"time"

	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/common/metrics"
	"gym-fulfillment/internal/models"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelCRM   = "crm"
	ChannelEvent = "event"
)

// Sink delivers one lead to one channel.
type Sink interface {
	Channel() string
	Notify(ctx context.Context, lead models.QuoteLead) error
}

// Multi fans a lead out to every sink in order.
type Multi struct {
	sinks   []Sink
	timeout time.Duration
	logger  logger.Logger
	now     func() time.Time
}

// NewMulti builds a fan-out. timeout bounds each sink call; zero means the
// caller's context only.
func NewMulti(timeout time.Duration, log logger.Logger, sinks ...Sink) *Multi {
	return &Multi{
		sinks:   sinks,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "notify"}),
		now:     time.Now,
	}
}

// Channels lists the configured channels.
func (m *Multi) Channels() []string {
	out := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		out[i] = s.Channel()
	}
	return out
}

// NotifyLead calls every sink and returns one record per sink.
func (m *Multi) NotifyLead(ctx context.Context, lead models.QuoteLead) []models.LeadNotification {
	results := make([]models.LeadNotification, 0, len(m.sinks))
	for _, sink := range m.sinks {
		status := models.NotificationSent
		if err := m.notifyOne(ctx, sink, lead); err != nil {
			status = models.NotificationFailed
			m.logger.Error("lead notification failed", map[string]interface{}{
				"leadId":  lead.ID,
				"channel": sink.Channel(),
				"error":   err.Error(),
			})
		}
		metrics.LeadNotifications.WithLabelValues(sink.Channel(), status).Inc()
		results = append(results, models.LeadNotification{
			LeadID:  lead.ID,
			Channel: sink.Channel(),
			Status:  status,
			SentAt:  m.now().UTC().Format(time.RFC3339),
		})
	}
	return results
}

func (m *Multi) notifyOne(ctx context.Context, sink Sink, lead models.QuoteLead) (err error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return sink.Notify(ctx, lead)
}
