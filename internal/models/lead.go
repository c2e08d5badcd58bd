// internal/models/lead.go
package models

import "time"

// QuoteLead is one captured quote request. It is written once and never updated.
type QuoteLead struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	ContactTime string    `json:"contact_time"`
	SubmittedAt time.Time `json:"submission_timestamp"`
}

// ToDocument renders the lead with its stored field names.
func (l QuoteLead) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"name":                 l.Name,
		"email":                l.Email,
		"contact_time":         l.ContactTime,
		"submission_timestamp": l.SubmittedAt.UTC().Format(time.RFC3339),
	}
}
