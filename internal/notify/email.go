package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"gym-fulfillment/internal/models"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSink mails each lead to the sales inbox through SES.
type EmailSink struct {
	ses     SESService
	from    string
	to      []string
	gymName string
}

func NewEmailSink(client SESService, from string, to []string, gymName string) *EmailSink {
	return &EmailSink{ses: client, from: from, to: to, gymName: gymName}
}

func (s *EmailSink) Channel() string { return ChannelEmail }

func (s *EmailSink) Notify(ctx context.Context, lead models.QuoteLead) error {
	subject := fmt.Sprintf("New quote request from %s", lead.Name)
	text := leadSummary(lead, s.gymName)

	_, err := s.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: s.to,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(text)},
				Html: &types.Content{Data: aws.String(leadHTML(lead, s.gymName))},
			},
		},
		Source: aws.String(s.from),
	})
	if err != nil {
		return fmt.Errorf("%w: ses: %v", ErrNotificationSendFailed, err)
	}
	return nil
}

func leadSummary(lead models.QuoteLead, gymName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new quote request was submitted for %s.\n\n", gymName)
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "Preferred contact time: %s\n", contactTimeOrAny(lead.ContactTime))
	fmt.Fprintf(&b, "Submitted: %s\n", lead.SubmittedAt.UTC().Format("2 Jan 2006 15:04 MST"))
	fmt.Fprintf(&b, "Lead ID: %s", lead.ID)
	return b.String()
}

func leadHTML(lead models.QuoteLead, gymName string) string {
	rows := [][2]string{
		{"Name", lead.Name},
		{"Email", lead.Email},
		{"Preferred contact time", contactTimeOrAny(lead.ContactTime)},
		{"Lead ID", lead.ID},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p>A new quote request was submitted for <strong>%s</strong>.</p><table>", html.EscapeString(gymName))
	for _, r := range rows {
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", r[0], html.EscapeString(r[1]))
	}
	b.WriteString("</table>")
	return b.String()
}

func contactTimeOrAny(t string) string {
	if t == "" {
		return "any time"
	}
	return t
}
