package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/store"
)

const testGymID = "covent-garden-fitness-wellbeing-gym"

func fullGym() store.Document {
	return store.Document{
		"name": "Covent Garden Fitness & Wellbeing Gym",
		"membership": map[string]interface{}{
			"anytime": map[string]interface{}{
				"12MonthCommitment": map[string]interface{}{
					"commitment":    "12 months",
					"currency":      "GBP",
					"discountPrice": 31.85,
					"originalPrice": 63.70,
					"period":        "month",
				},
				"1MonthRolling": map[string]interface{}{
					"commitment": "Rolling monthly, cancel anytime",
					"currency":   "GBP",
					"price":      79.0,
					"period":     "month",
				},
				"promotion": map[string]interface{}{
					"active":      true,
					"description": "50% off a 12-month membership",
					"condition":   "valid for new members joining before 2026",
				},
			},
		},
	}
}

func newAccessor(t *testing.T, docs map[string]store.Document) *Accessor {
	t.Helper()
	mem := store.NewMemory()
	for id, doc := range docs {
		require.NoError(t, mem.Put(context.Background(), "gyms", id, doc))
	}
	return NewAccessor(mem, "gyms", logger.NewTestLogger(t))
}

func TestFetchPricingSummary_Full(t *testing.T) {
	a := newAccessor(t, map[string]store.Document{testGymID: fullGym()})

	summary, found, err := a.FetchPricingSummary(context.Background(), testGymID)
	require.NoError(t, err)
	require.True(t, found)

	want := "Pricing Details for Covent Garden Fitness & Wellbeing Gym\n\n" +
		"Our flexible plans are designed to fit your lifestyle.\n\n" +
		"1. 12-Month Commitment Plan\n" +
		"   - Commitment: 12 months\n" +
		"   - Price: GBP 31.85 per month\n" +
		"   - Original Price: GBP 63.70\n" +
		"   - Promotion: 50% off a 12-month membership (valid for new members joining before 2026)\n" +
		"\n" +
		"2. 1-Month Rolling Plan\n" +
		"   - Commitment: Rolling monthly, cancel anytime\n" +
		"   - Price: GBP 79.00 per month"

	assert.Equal(t, want, summary.Text)
	assert.Equal(t, testGymID, summary.GymID)
	assert.Equal(t, "Covent Garden Fitness & Wellbeing Gym", summary.GymName)
	assert.True(t, summary.PromotionActive)
}

func TestFetchPricingSummary_PromotionInactive(t *testing.T) {
	doc := fullGym()
	doc["membership"].(map[string]interface{})["anytime"].(map[string]interface{})["promotion"].(map[string]interface{})["active"] = false
	a := newAccessor(t, map[string]store.Document{testGymID: doc})

	summary, found, err := a.FetchPricingSummary(context.Background(), testGymID)
	require.NoError(t, err)
	require.True(t, found)
	assert.NotContains(t, summary.Text, "Promotion:")
	assert.NotContains(t, summary.Text, "50% off")
	assert.Contains(t, summary.Text, "   - Original Price: GBP 63.70\n\n2. 1-Month Rolling Plan")
}

func TestFetchPricingSummary_Absent(t *testing.T) {
	a := newAccessor(t, nil)

	summary, found, err := a.FetchPricingSummary(context.Background(), "no-such-gym")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, summary)
}

func TestFetchPricingSummary_StoreUnavailable(t *testing.T) {
	a := NewAccessor(store.NewDisconnected(errors.New("no credentials")), "gyms", logger.NewTestLogger(t))

	_, found, err := a.FetchPricingSummary(context.Background(), testGymID)
	require.Error(t, err)
	assert.False(t, found)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}

func TestProject_MissingLeavesDegrade(t *testing.T) {
	summary := Project(store.Document{
		"membership": map[string]interface{}{
			"anytime": map[string]interface{}{
				"12MonthCommitment": map[string]interface{}{"discountPrice": "31.85"},
				"promotion":         map[string]interface{}{"active": true},
			},
		},
	})

	assert.Contains(t, summary.Text, "Pricing Details for this gym\n")
	assert.Contains(t, summary.Text, "   - Commitment: N/A\n")
	assert.Contains(t, summary.Text, "   - Price: GBP 31.85 per month\n")
	assert.Contains(t, summary.Text, "   - Original Price: GBP N/A\n")
	assert.Contains(t, summary.Text, "   - Promotion: N/A (N/A)\n")
	assert.Contains(t, summary.Text, "   - Price: GBP N/A per month")
}

func TestProject_IntegerPricesAndOtherCurrency(t *testing.T) {
	summary := Project(store.Document{
		"name": "Test Gym",
		"membership": map[string]interface{}{
			"anytime": map[string]interface{}{
				"1MonthRolling": map[string]interface{}{"currency": "EUR", "price": 80, "period": "4 weeks"},
			},
		},
	})
	assert.Contains(t, summary.Text, "   - Price: EUR 80.00 per 4 weeks")
	assert.False(t, summary.PromotionActive)
}

func TestFetchGym(t *testing.T) {
	a := newAccessor(t, map[string]store.Document{testGymID: fullGym()})

	rec, found, err := a.FetchGym(context.Background(), testGymID)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, rec.Membership.Anytime.TwelveMonth)
	require.NotNil(t, rec.Membership.Anytime.TwelveMonth.DiscountPrice)
	assert.InDelta(t, 31.85, *rec.Membership.Anytime.TwelveMonth.DiscountPrice, 0.0001)
	assert.InDelta(t, 63.70, *rec.Membership.Anytime.TwelveMonth.OriginalPrice, 0.0001)
	assert.InDelta(t, 79.0, *rec.Membership.Anytime.OneMonth.Price, 0.0001)
	assert.True(t, rec.Membership.Anytime.Promotion.Active)
	assert.Equal(t, testGymID, rec.ID)

	_, found, err = a.FetchGym(context.Background(), "missing")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "£", CurrencySymbol("GBP"))
	assert.Equal(t, "£", CurrencySymbol(""))
	assert.Equal(t, "€", CurrencySymbol("eur"))
	assert.Equal(t, "$", CurrencySymbol("USD"))
	assert.Equal(t, "CHF ", CurrencySymbol("CHF"))
	assert.Equal(t, "60.85", FormatAmount(29.00+31.85))
}
