// internal/models/notification.go
package models

// LeadNotification records the outcome of handing a lead to one sink.
type LeadNotification struct {
	LeadID  string `json:"leadId"`
	Channel string `json:"channel"` // "email", "sms", "crm", "event"
	Status  string `json:"status"`  // "sent", "failed"
	SentAt  string `json:"sentAt"`
}

// Notification statuses.
const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// LeadCapturedEvent is published on the message bus for every stored lead.
type LeadCapturedEvent struct {
	EventID     string `json:"eventId"`
	LeadID      string `json:"leadId"`
	GymID       string `json:"gymId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ContactTime string `json:"contactTime,omitempty"`
	SubmittedAt string `json:"submittedAt"`
}
