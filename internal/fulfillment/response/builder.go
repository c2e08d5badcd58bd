// Package response assembles the fulfillment payload returned to the
// conversational platform.
package response

import (
	"encoding/json"

	"gym-fulfillment/internal/models"
)

// FallbackText is returned for unrecognized intents and for any request the
// dispatcher cannot handle.
const FallbackText = "I'm sorry, I didn't understand that. Could you please rephrase?"

// Builder appends messages in render order. The zero value is ready to use.
type Builder struct {
	messages []models.ResponseMessage
	// pending rich content rows are flushed into one payload message
	pending []models.RichContentItem
}

func NewBuilder() *Builder {
	return &Builder{}
}

// AddText appends a text message with the given lines.
func (b *Builder) AddText(lines ...string) *Builder {
	b.flush()
	if len(lines) == 0 {
		return b
	}
	b.messages = append(b.messages, models.ResponseMessage{
		Text: &models.TextBlock{Text: append([]string(nil), lines...)},
	})
	return b
}

// AddChips adds a chips row to the current payload message.
func (b *Builder) AddChips(labels ...string) *Builder {
	if len(labels) == 0 {
		return b
	}
	opts := make([]models.ChipOption, len(labels))
	for i, l := range labels {
		opts[i] = models.ChipOption{Text: l}
	}
	b.pending = append(b.pending, models.RichContentItem{Type: models.RichContentChips, Options: opts})
	return b
}

// AddInfoCard adds an info card to the current payload message.
func (b *Builder) AddInfoCard(title, subtitle, text, actionLink string) *Builder {
	b.pending = append(b.pending, models.RichContentItem{
		Type:       models.RichContentInfo,
		Title:      title,
		Subtitle:   subtitle,
		Text:       text,
		ActionLink: actionLink,
	})
	return b
}

// Build returns the response. A builder with no messages yields the fallback
// so the result is never empty.
func (b *Builder) Build() models.WebhookResponse {
	b.flush()
	if len(b.messages) == 0 {
		return Fallback()
	}
	msgs := make([]models.ResponseMessage, len(b.messages))
	copy(msgs, b.messages)
	return models.WebhookResponse{FulfillmentResponse: models.FulfillmentResponse{Messages: msgs}}
}

func (b *Builder) flush() {
	if len(b.pending) == 0 {
		return
	}
	b.messages = append(b.messages, models.ResponseMessage{
		Payload: &models.PayloadBlock{RichContent: [][]models.RichContentItem{b.pending}},
	})
	b.pending = nil
}

// Text is a response with a single text message.
func Text(lines ...string) models.WebhookResponse {
	return NewBuilder().AddText(lines...).Build()
}

// Fallback is the fixed apology response.
func Fallback() models.WebhookResponse {
	return models.WebhookResponse{
		FulfillmentResponse: models.FulfillmentResponse{
			Messages: []models.ResponseMessage{
				{Text: &models.TextBlock{Text: []string{FallbackText}}},
			},
		},
	}
}

// Encode renders resp as JSON. Falls back to the encoded fallback payload if
// resp cannot be marshalled.
func Encode(resp models.WebhookResponse) []byte {
	b, err := json.Marshal(resp)
	if err != nil {
		return FallbackJSON()
	}
	return b
}

// FallbackJSON is the fallback response as JSON.
func FallbackJSON() []byte {
	b, _ := json.Marshal(Fallback())
	return b
}
