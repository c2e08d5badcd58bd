package api

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"gym-fulfillment/internal/common/config"
	"gym-fulfillment/internal/common/metrics"
	"gym-fulfillment/internal/fulfillment/params"
	"gym-fulfillment/internal/fulfillment/response"
	"gym-fulfillment/internal/models"
)

const WebhookPath = "/webhook"

// Webhook accepts any method. Bodies that are missing or malformed are
// answered with the fallback reply, always with HTTP 200.
func (s *Server) Webhook(c *fiber.Ctx) error {
	metrics.WebhookRequestsInFlight.Inc()
	defer metrics.WebhookRequestsInFlight.Dec()

	req, ok := s.decode(c.Body())
	if !ok {
		return writeJSON(c, response.FallbackJSON())
	}

	ctx := c.UserContext()
	if s.cfg.HTTP.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.GetDuration(s.cfg.HTTP.RequestTimeout))
		defer cancel()
	}

	resp := s.dispatcher.Dispatch(ctx, req)
	return writeJSON(c, response.Encode(resp))
}

func (s *Server) decode(body []byte) (models.IntentRequest, bool) {
	if len(body) == 0 {
		s.logger.Warn("Empty webhook body", nil)
		return models.IntentRequest{}, false
	}

	if result := s.validator.ValidateBytes(body); !result.Valid {
		s.logger.Warn("Malformed webhook body", map[string]interface{}{
			"errors": result.GetErrorMessages(),
		})
		return models.IntentRequest{}, false
	}

	var in models.WebhookRequest
	if err := json.Unmarshal(body, &in); err != nil {
		s.logger.Warn("Failed to decode webhook body", map[string]interface{}{"error": err.Error()})
		return models.IntentRequest{}, false
	}

	return models.IntentRequest{
		IntentName: in.IntentName(),
		Parameters: params.ParseAll(in.RawParameters()),
	}, true
}

func writeJSON(c *fiber.Ctx, body []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(body)
}
