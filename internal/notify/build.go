package notify

import (
	"context"
	"fmt"
	"time"

	awsclient "gym-fulfillment/internal/common/aws"
	"gym-fulfillment/internal/common/config"
	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/common/zoho"
)

const sinkTimeout = 5 * time.Second

// FromConfig builds the enabled sinks. The returned close function releases
// the NATS connection, if any.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Multi, func(), error) {
	n := cfg.Notifications
	gymName := cfg.Fulfillment.DisplayName()
	var sinks []Sink
	closeFn := func() {}

	if n.SES.Enabled {
		client, err := awsclient.NewSESClient(ctx, n.SES.Region)
		if err != nil {
			return nil, closeFn, fmt.Errorf("ses: %w", err)
		}
		sinks = append(sinks, NewEmailSink(client, n.SES.FromEmail, n.SES.ToEmails, gymName))
	}

	if n.SNS.Enabled {
		client, err := awsclient.NewSNSClient(ctx, n.SNS.Region)
		if err != nil {
			return nil, closeFn, fmt.Errorf("sns: %w", err)
		}
		sinks = append(sinks, NewSMSSink(client, n.SNS.TopicARN, n.SNS.PhoneNumber))
	}

	if n.Zoho.Enabled {
		crm := zoho.NewCRMClient(n.Zoho.BaseURL, n.Zoho.AuthToken, config.GetDuration(n.Zoho.Timeout))
		sinks = append(sinks, NewCRMSink(crm, gymName))
	}

	if n.NATS.Enabled {
		nc, err := ConnectNATS(n.NATS.URL, cfg.App.Name, log)
		if err != nil {
			return nil, closeFn, err
		}
		closeFn = func() {
			if err := nc.Drain(); err != nil {
				nc.Close()
			}
		}
		sinks = append(sinks, NewEventSink(nc, n.NATS.Subject, cfg.Fulfillment.GymID))
	}

	m := NewMulti(sinkTimeout, log, sinks...)
	log.Info("Lead notifications configured", map[string]interface{}{
		"channels": m.Channels(),
	})
	return m, closeFn, nil
}
