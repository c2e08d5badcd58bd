package notify

import (
	"context"
	"fmt"
	"strings"

	"gym-fulfillment/internal/common/zoho"
	"gym-fulfillment/internal/models"
)

const leadSource = "Chatbot"

// LeadCreator is satisfied by *zoho.CRMClient.
type LeadCreator interface {
	CreateLead(ctx context.Context, lead *zoho.Lead) (string, error)
}

// CRMSink creates a lead in Zoho CRM.
type CRMSink struct {
	crm     LeadCreator
	gymName string
}

func NewCRMSink(crm LeadCreator, gymName string) *CRMSink {
	return &CRMSink{crm: crm, gymName: gymName}
}

func (s *CRMSink) Channel() string { return ChannelCRM }

func (s *CRMSink) Notify(ctx context.Context, lead models.QuoteLead) error {
	first, last := splitName(lead.Name)
	_, err := s.crm.CreateLead(ctx, &zoho.Lead{
		Email:       lead.Email,
		FirstName:   first,
		LastName:    last,
		Source:      leadSource,
		Company:     s.gymName,
		Description: fmt.Sprintf("Quote request %s. Preferred contact time: %s", lead.ID, contactTimeOrAny(lead.ContactTime)),
	})
	if err != nil {
		return fmt.Errorf("%w: zoho: %v", ErrNotificationSendFailed, err)
	}
	return nil
}

// splitName puts everything but the last word into the first name. A single
// word becomes the last name since the CRM requires one.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", "Unknown"
	case 1:
		return "", parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
