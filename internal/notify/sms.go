package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"gym-fulfillment/internal/models"
)

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSSink publishes a short alert to an SNS topic, or directly to a phone
// number when no topic is configured.
type SMSSink struct {
	sns         SNSService
	topicARN    string
	phoneNumber string
}

func NewSMSSink(client SNSService, topicARN, phoneNumber string) *SMSSink {
	return &SMSSink{sns: client, topicARN: topicARN, phoneNumber: phoneNumber}
}

func (s *SMSSink) Channel() string { return ChannelSMS }

func (s *SMSSink) Notify(ctx context.Context, lead models.QuoteLead) error {
	input := &sns.PublishInput{
		Message: aws.String(smsText(lead)),
	}
	if s.topicARN != "" {
		input.TopicArn = aws.String(s.topicARN)
		input.Subject = aws.String("New quote request")
	} else {
		input.PhoneNumber = aws.String(s.phoneNumber)
	}

	if _, err := s.sns.Publish(ctx, input); err != nil {
		return fmt.Errorf("%w: sns: %v", ErrNotificationSendFailed, err)
	}
	return nil
}

func smsText(lead models.QuoteLead) string {
	return fmt.Sprintf("New quote request: %s <%s>, contact %s", lead.Name, lead.Email, contactTimeOrAny(lead.ContactTime))
}
