// internal/models/webhook.go
package models

// WebhookRequest is the inbound fulfillment call. Only the fields the
// dispatcher reads are decoded; everything else the platform sends is ignored.
type WebhookRequest struct {
	IntentInfo  *IntentInfo  `json:"intentInfo,omitempty"`
	SessionInfo *SessionInfo `json:"sessionInfo,omitempty"`
}

type IntentInfo struct {
	DisplayName string `json:"displayName"`
}

type SessionInfo struct {
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// IntentName returns the display name, or "" when the intent block is absent.
func (r *WebhookRequest) IntentName() string {
	if r == nil || r.IntentInfo == nil {
		return ""
	}
	return r.IntentInfo.DisplayName
}

// RawParameters returns the session parameters, or nil when absent.
func (r *WebhookRequest) RawParameters() map[string]interface{} {
	if r == nil || r.SessionInfo == nil {
		return nil
	}
	return r.SessionInfo.Parameters
}

// WebhookResponse is the outbound payload.
type WebhookResponse struct {
	FulfillmentResponse FulfillmentResponse `json:"fulfillmentResponse"`
}

// FulfillmentResponse is an ordered list of messages rendered top to bottom.
type FulfillmentResponse struct {
	Messages []ResponseMessage `json:"messages"`
}

// ResponseMessage carries exactly one of Text or Payload.
type ResponseMessage struct {
	Text    *TextBlock    `json:"text,omitempty"`
	Payload *PayloadBlock `json:"payload,omitempty"`
}

type TextBlock struct {
	Text []string `json:"text"`
}

type PayloadBlock struct {
	RichContent [][]RichContentItem `json:"richContent"`
}

// Rich content item types.
const (
	RichContentChips = "chips"
	RichContentInfo  = "info"
)

// RichContentItem is either a chips row (Options) or an info card
// (Title, Subtitle, Text, ActionLink).
type RichContentItem struct {
	Type       string       `json:"type"`
	Options    []ChipOption `json:"options,omitempty"`
	Title      string       `json:"title,omitempty"`
	Subtitle   string       `json:"subtitle,omitempty"`
	Text       string       `json:"text,omitempty"`
	ActionLink string       `json:"actionLink,omitempty"`
}

type ChipOption struct {
	Text string `json:"text"`
}
