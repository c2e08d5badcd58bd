package dispatch

import (
	"time"

	"gym-fulfillment/internal/common/config"
)

// Settings are the business constants the intent handlers use.
type Settings struct {
	GymID            string
	GymsCollection   string
	ActivationFee    float64
	MonthlyRemainder float64
	PromotionMonths  int
	FullPriceFrom    string
	JoinURL          string
	// StoreTimeout bounds every store call made by one dispatch. Zero means
	// no bound beyond the caller's context.
	StoreTimeout time.Duration
	Location     *time.Location
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		GymID:            cfg.Fulfillment.GymID,
		GymsCollection:   cfg.Store.GymsCollection,
		ActivationFee:    cfg.Fulfillment.ActivationFee,
		MonthlyRemainder: cfg.Fulfillment.MonthlyRemainder,
		PromotionMonths:  cfg.Fulfillment.PromotionMonths,
		FullPriceFrom:    cfg.Fulfillment.FullPriceFrom,
		JoinURL:          cfg.Fulfillment.JoinURL,
		StoreTimeout:     config.GetDuration(cfg.Fulfillment.StoreTimeout),
		Location:         cfg.App.Location(),
	}
}

// DefaultSettings mirrors the defaults applied by the config loader.
func DefaultSettings() Settings {
	return Settings{
		GymID:            "covent-garden-fitness-wellbeing-gym",
		GymsCollection:   "gyms",
		ActivationFee:    29.00,
		MonthlyRemainder: 31.85,
		PromotionMonths:  3,
		FullPriceFrom:    "Jan 2026",
		StoreTimeout:     3 * time.Second,
		Location:         time.UTC,
	}
}
