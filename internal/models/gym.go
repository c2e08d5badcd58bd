// internal/models/gym.go
package models

// GymPricingRecord is the gym document as stored in the "gyms" collection.
// Pointer fields are optional in storage.
type GymPricingRecord struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name"`
	Membership Membership `json:"membership"`
}

type Membership struct {
	Anytime AnytimeMembership `json:"anytime"`
}

type AnytimeMembership struct {
	TwelveMonth *Plan      `json:"12MonthCommitment,omitempty"`
	OneMonth    *Plan      `json:"1MonthRolling,omitempty"`
	Promotion   *Promotion `json:"promotion,omitempty"`
}

type Plan struct {
	Commitment    string   `json:"commitment,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Period        string   `json:"period,omitempty"`
}

type Promotion struct {
	Active      bool   `json:"active"`
	Description string `json:"description,omitempty"`
	Condition   string `json:"condition,omitempty"`
}

// Dotted paths into a gym document.
const (
	PathGymName           = "name"
	PathTwelveMonth       = "membership.anytime.12MonthCommitment"
	PathOneMonth          = "membership.anytime.1MonthRolling"
	PathPromotion         = "membership.anytime.promotion"
	PathPromotionActive   = PathPromotion + ".active"
	PathPromotionDesc     = PathPromotion + ".description"
	PathPromotionCond     = PathPromotion + ".condition"
	PathTwelveMonthPrice  = PathTwelveMonth + ".discountPrice"
	PathTwelveMonthOrig   = PathTwelveMonth + ".originalPrice"
	PathTwelveMonthCurr   = PathTwelveMonth + ".currency"
	PathTwelveMonthPeriod = PathTwelveMonth + ".period"
	PathTwelveMonthCommit = PathTwelveMonth + ".commitment"
	PathOneMonthPrice     = PathOneMonth + ".price"
	PathOneMonthCurr      = PathOneMonth + ".currency"
	PathOneMonthPeriod    = PathOneMonth + ".period"
	PathOneMonthCommit    = PathOneMonth + ".commitment"
)
