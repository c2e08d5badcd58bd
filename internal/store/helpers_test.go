package store

import (
	"testing"

	"gym-fulfillment/internal/common/logger"
)

func gymDocument() Document {
	return Document{
		"name": "Covent Garden Fitness & Wellbeing Gym",
		"membership": map[string]interface{}{
			"anytime": map[string]interface{}{
				"12MonthCommitment": map[string]interface{}{
					"currency":      "GBP",
					"discountPrice": 31.85,
					"originalPrice": 63.70,
				},
				"promotion": map[string]interface{}{
					"active": true,
				},
			},
		},
	}
}

func newTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}
