package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/fulfillment/pricing"
	"gym-fulfillment/internal/fulfillment/quotes"
	"gym-fulfillment/internal/fulfillment/response"
	"gym-fulfillment/internal/models"
	"gym-fulfillment/internal/notify"
	"gym-fulfillment/internal/store"
)

var fixedNow = time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

func gymDoc(promoActive bool) store.Document {
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
					"active":      promoActive,
					"description": "50% off a 12-month membership",
					"condition":   "valid for new members joining before 2026",
				},
			},
		},
	}
}

func seededMemory(t *testing.T, docs map[string]store.Document) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	for id, doc := range docs {
		require.NoError(t, mem.Put(context.Background(), "gyms", id, doc))
	}
	return mem
}

func newTestRouter(t *testing.T, st store.DocumentStore, settings Settings) *Router {
	t.Helper()
	log := logger.NewTestLogger(t)
	accessor := pricing.NewAccessor(st, "gyms", log)
	repo := quotes.NewRepository(st, "quotes", nil, log)
	return NewRouter(settings, accessor, repo, nil, log).WithClock(func() time.Time { return fixedNow })
}

func defaultRouter(t *testing.T) (*Router, *store.Memory) {
	settings := DefaultSettings()
	mem := seededMemory(t, map[string]store.Document{settings.GymID: gymDoc(true)})
	return newTestRouter(t, mem, settings), mem
}

func texts(resp models.WebhookResponse) []string {
	var out []string
	for _, m := range resp.FulfillmentResponse.Messages {
		if m.Text != nil {
			out = append(out, m.Text.Text...)
		}
	}
	return out
}

func chips(resp models.WebhookResponse) []string {
	var out []string
	for _, m := range resp.FulfillmentResponse.Messages {
		if m.Payload == nil {
			continue
		}
		for _, row := range m.Payload.RichContent {
			for _, item := range row {
				if item.Type != models.RichContentChips {
					continue
				}
				for _, o := range item.Options {
					out = append(out, o.Text)
				}
			}
		}
	}
	return out
}

func TestDispatch_UnrecognizedIntentReturnsFallback(t *testing.T) {
	r, _ := defaultRouter(t)

	for _, intent := range []string{"", "Default Welcome Intent", "viewpricingintent", "ViewPricingIntent "} {
		t.Run(fmt.Sprintf("%q", intent), func(t *testing.T) {
			resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: intent})
			assert.Equal(t, response.Fallback(), resp)
		})
	}
}

func TestDispatch_PricingMembership(t *testing.T) {
	r, _ := defaultRouter(t)

	resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentPricingMembership})

	require.Len(t, resp.FulfillmentResponse.Messages, 2)
	assert.Contains(t, texts(resp)[0], "Membership & Pricing")
	assert.Contains(t, texts(resp)[0], "50% off a 12-month membership until 2026!")
	assert.Equal(t, []string{ChipViewPricing, ChipGetQuote}, chips(resp))
}

func TestDispatch_GetQuote(t *testing.T) {
	r, _ := defaultRouter(t)

	resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentGetQuote})
	require.Len(t, resp.FulfillmentResponse.Messages, 1)
	assert.Equal(t, []string{quotePromptText}, texts(resp))
}

func TestDispatch_ViewPricing(t *testing.T) {
	tests := []struct {
		name        string
		promoActive bool
		wantPromo   bool
	}{
		{"promotion active", true, true},
		{"promotion inactive", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			mem := seededMemory(t, map[string]store.Document{settings.GymID: gymDoc(tt.promoActive)})
			r := newTestRouter(t, mem, settings)

			resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentViewPricing})

			require.Len(t, resp.FulfillmentResponse.Messages, 2)
			text := texts(resp)[0]
			assert.Contains(t, text, "Pricing Details for Covent Garden Fitness & Wellbeing Gym")
			assert.Contains(t, text, "   - Price: GBP 31.85 per month")
			if tt.wantPromo {
				assert.Contains(t, text, "   - Promotion: 50% off a 12-month membership (valid for new members joining before 2026)")
			} else {
				assert.NotContains(t, text, "Promotion:")
			}
			assert.Equal(t, []string{ChipGetQuote, ChipJoinNow}, chips(resp))
		})
	}
}

func TestDispatch_ViewPricing_Degraded(t *testing.T) {
	t.Run("gym absent", func(t *testing.T) {
		r := newTestRouter(t, store.NewMemory(), DefaultSettings())
		resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentViewPricing})
		assert.Equal(t, []string{pricingNotFoundText}, texts(resp))
		assert.Equal(t, []string{ChipGetQuote, ChipJoinNow}, chips(resp))
	})

	t.Run("store unavailable", func(t *testing.T) {
		r := newTestRouter(t, store.NewDisconnected(errors.New("no credentials")), DefaultSettings())
		resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentViewPricing})
		assert.Equal(t, []string{pricingUnavailableText}, texts(resp))
		assert.Equal(t, []string{ChipGetQuote, ChipJoinNow}, chips(resp))
	})
}

func TestDispatch_JoinNow(t *testing.T) {
	r, _ := defaultRouter(t)

	resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentJoinNow})

	want := "We've defaulted the start date to the first available date you can join this gym:\n" +
		"14 June\n\n" +
		"Activation Fee: £29.00\n" +
		"For the remainder of this month: £31.85\n" +
		"Monthly direct debit (Starting 1st July 2025): £31.85\n" +
		"(Just £31.85 per month for 3 months, then £63.70 per month from Jan 2026)\n" +
		"To pay today: £60.85"
	require.NotEmpty(t, texts(resp))
	assert.Equal(t, want, texts(resp)[0])
	assert.Equal(t, []string{ChipGetQuote, ChipViewPricing}, chips(resp))
}

func TestDispatch_JoinNow_PayTodayTotal(t *testing.T) {
	r, _ := defaultRouter(t)
	q := r.joinQuote(&models.Plan{Currency: "GBP", DiscountPrice: floatPtr(31.85)})
	assert.Equal(t, "£60.85", q.payToday)
	assert.Contains(t, q.text, "To pay today: £60.85")
	assert.NotContains(t, q.text, "then")
}

func TestDispatch_JoinNow_NextMonth(t *testing.T) {
	tests := []struct {
		now       time.Time
		wantStart string
		wantNext  string
	}{
		{time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC), "31 January", "Starting 1st February 2025"},
		{time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC), "29 February", "Starting 1st March 2024"},
		{time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC), "30 April", "Starting 1st May 2025"},
		{time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC), "31 December", "Starting 1st January 2026"},
		{time.Date(2025, 7, 1, 0, 30, 0, 0, time.UTC), "1 July", "Starting 1st August 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.now.Format("2006-01-02"), func(t *testing.T) {
			r, _ := defaultRouter(t)
			r.WithClock(func() time.Time { return tt.now })

			resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentJoinNow})
			text := texts(resp)[0]
			assert.Contains(t, text, "\n"+tt.wantStart+"\n\n")
			assert.Contains(t, text, tt.wantNext)
		})
	}
}

func TestDispatch_JoinNow_UsesConfiguredLocation(t *testing.T) {
	settings := DefaultSettings()
	loc := time.FixedZone("UTC+2", 2*60*60)
	settings.Location = loc
	mem := seededMemory(t, map[string]store.Document{settings.GymID: gymDoc(true)})
	r := newTestRouter(t, mem, settings).
		WithClock(func() time.Time { return time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC) })

	text := texts(r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentJoinNow}))[0]
	assert.Contains(t, text, "\n1 July\n\n")
	assert.Contains(t, text, "Starting 1st August 2025")
}

func TestDispatch_JoinNow_InfoCard(t *testing.T) {
	settings := DefaultSettings()
	settings.JoinURL = "https://example.com/join"
	mem := seededMemory(t, map[string]store.Document{settings.GymID: gymDoc(true)})
	r := newTestRouter(t, mem, settings)

	resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentJoinNow})
	require.Len(t, resp.FulfillmentResponse.Messages, 2)
	row := resp.FulfillmentResponse.Messages[1].Payload.RichContent[0]
	require.Len(t, row, 2)
	assert.Equal(t, models.RichContentInfo, row[0].Type)
	assert.Equal(t, "https://example.com/join", row[0].ActionLink)
	assert.Equal(t, "Covent Garden Fitness & Wellbeing Gym", row[0].Subtitle)
	assert.Contains(t, row[0].Text, "£60.85")
}

func TestDispatch_JoinNow_Degraded(t *testing.T) {
	settings := DefaultSettings()

	absent := newTestRouter(t, store.NewMemory(), settings)
	assert.Equal(t, []string{joinNotFoundText},
		texts(absent.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentJoinNow})))

	down := newTestRouter(t, store.NewDisconnected(errors.New("no credentials")), settings)
	assert.Equal(t, []string{joinUnavailableText},
		texts(down.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentJoinNow})))

	incomplete := newTestRouter(t, seededMemory(t, map[string]store.Document{
		settings.GymID: {"name": "No Prices Gym"},
	}), settings)
	assert.Equal(t, []string{pricingNotFoundText},
		texts(incomplete.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentJoinNow})))
}

func leadParams() map[string]models.ParamValue {
	return map[string]models.ParamValue{
		models.ParamName:        models.PersonName{Original: "Alex"},
		models.ParamEmail:       models.Scalar("a@b.com"),
		models.ParamContactTime: models.TimeOfDay{Hours: 14, Minutes: 30},
	}
}

func TestDispatch_SubmitQuote(t *testing.T) {
	r, mem := defaultRouter(t)

	resp := r.Dispatch(context.Background(), models.IntentRequest{
		IntentName: IntentSubmitQuote,
		Parameters: leadParams(),
	})

	require.Equal(t, 1, mem.Count("quotes"))
	for _, doc := range mem.All("quotes") {
		assert.Equal(t, "Alex", doc["name"])
		assert.Equal(t, "a@b.com", doc["email"])
		assert.Equal(t, "14:30", doc["contact_time"])
		assert.Equal(t, "2025-06-14T09:00:00Z", doc["submission_timestamp"])
	}

	want := "Thank you, Alex! We have received your request.\n" +
		"A team member will be in touch with you at 14:30 at a@b.com to provide a tailored quote.\n" +
		"We look forward to speaking with you!"
	assert.Equal(t, []string{want}, texts(resp))
	assert.Equal(t, []string{ChipViewPricing, ChipJoinNow}, chips(resp))
}

func TestDispatch_SubmitQuote_TriggeredByParameters(t *testing.T) {
	r, mem := defaultRouter(t)

	resp := r.Dispatch(context.Background(), models.IntentRequest{
		IntentName: "Default Fallback Intent",
		Parameters: leadParams(),
	})

	assert.Equal(t, 1, mem.Count("quotes"))
	assert.Contains(t, texts(resp)[0], "Thank you, Alex!")
}

func TestDispatch_SubmitQuote_MissingContactTime(t *testing.T) {
	r, mem := defaultRouter(t)

	p := leadParams()
	delete(p, models.ParamContactTime)
	resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentSubmitQuote, Parameters: p})

	assert.Equal(t, 1, mem.Count("quotes"))
	assert.Contains(t, texts(resp)[0], "in touch with you at a@b.com to provide")
}

func TestDispatch_SubmitQuote_MissingEmail(t *testing.T) {
	r, mem := defaultRouter(t)

	p := leadParams()
	delete(p, models.ParamEmail)
	resp := r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentSubmitQuote, Parameters: p})

	assert.Equal(t, 0, mem.Count("quotes"))
	assert.Equal(t, []string{quotePromptText}, texts(resp))
}

// failingAdds wraps a memory store and rejects every Add without writing.
type failingAdds struct {
	*store.Memory
	err error
}

func (f *failingAdds) Add(ctx context.Context, collection string, doc store.Document) (string, error) {
	return "", f.err
}

func TestDispatch_SubmitQuote_StoreFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unavailable", fmt.Errorf("%w: connection refused", store.ErrUnavailable), submitUnavailableText},
		{"rejected", fmt.Errorf("%w: constraint violation", store.ErrWriteFailed), submitFailedText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			r := newTestRouter(t, &failingAdds{Memory: mem, err: tt.err}, DefaultSettings())

			resp := r.Dispatch(context.Background(), models.IntentRequest{
				IntentName: IntentSubmitQuote,
				Parameters: leadParams(),
			})

			assert.Equal(t, []string{tt.want}, texts(resp))
			assert.Equal(t, []string{ChipViewPricing, ChipJoinNow}, chips(resp))
			assert.Equal(t, 0, mem.Count("quotes"))
		})
	}
}

func TestDispatch_SubmitQuote_Disconnected(t *testing.T) {
	r := newTestRouter(t, store.NewDisconnected(errors.New("no credentials")), DefaultSettings())

	resp := r.Dispatch(context.Background(), models.IntentRequest{
		IntentName: IntentSubmitQuote,
		Parameters: leadParams(),
	})
	assert.Equal(t, []string{submitUnavailableText}, texts(resp))
}

func TestDispatch_Idempotent(t *testing.T) {
	r, _ := defaultRouter(t)

	for _, intent := range []string{IntentPricingMembership, IntentViewPricing, IntentJoinNow, IntentGetQuote, "Unknown"} {
		t.Run(intent, func(t *testing.T) {
			req := models.IntentRequest{IntentName: intent}
			first, err := json.Marshal(r.Dispatch(context.Background(), req))
			require.NoError(t, err)
			second, err := json.Marshal(r.Dispatch(context.Background(), req))
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

type panickingPricing struct{}

func (panickingPricing) FetchPricingSummary(ctx context.Context, gymID string) (*pricing.Summary, bool, error) {
	panic("nil map")
}

func (panickingPricing) FetchGym(ctx context.Context, gymID string) (*models.GymPricingRecord, bool, error) {
	panic("nil map")
}

func TestDispatch_RecoversPanics(t *testing.T) {
	r := NewRouter(DefaultSettings(), panickingPricing{}, nil, nil, logger.NewTestLogger(t))

	var resp models.WebhookResponse
	assert.NotPanics(t, func() {
		resp = r.Dispatch(context.Background(), models.IntentRequest{IntentName: IntentViewPricing})
	})
	assert.Equal(t, response.Fallback(), resp)
}

func TestRouter_Intents(t *testing.T) {
	r, _ := defaultRouter(t)
	assert.Equal(t, []string{
		IntentGetQuote,
		IntentJoinNow,
		IntentPricingMembership,
		IntentSubmitQuote,
		IntentViewPricing,
	}, r.Intents())
}

func floatPtr(f float64) *float64 { return &f }

// slowSink needs delay to deliver and records the error it saw.
type slowSink struct {
	delay time.Duration
	errs  []error
}

func (s *slowSink) Channel() string { return notify.ChannelEmail }

func (s *slowSink) Notify(ctx context.Context, lead models.QuoteLead) error {
	var err error
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		err = ctx.Err()
	}
	s.errs = append(s.errs, err)
	return err
}

func TestSubmitQuote_SinksKeepTheirOwnTimeout(t *testing.T) {
	log := logger.NewTestLogger(t)
	settings := DefaultSettings()
	settings.StoreTimeout = 50 * time.Millisecond

	mem := seededMemory(t, map[string]store.Document{settings.GymID: gymDoc(true)})
	sink := &slowSink{delay: 100 * time.Millisecond}
	repo := quotes.NewRepository(mem, "quotes", notify.NewMulti(5*time.Second, log, sink), log)
	r := NewRouter(settings, pricing.NewAccessor(mem, "gyms", log), repo, nil, log).
		WithClock(func() time.Time { return fixedNow })

	resp := r.Dispatch(context.Background(), models.IntentRequest{
		IntentName: IntentSubmitQuote,
		Parameters: map[string]models.ParamValue{
			models.ParamName:        models.Scalar("Alex"),
			models.ParamEmail:       models.Scalar("alex@example.com"),
			models.ParamContactTime: models.Scalar("14:30"),
		},
	})

	require.Len(t, texts(resp), 1)
	assert.Contains(t, texts(resp)[0], "Thank you, Alex!")
	assert.Equal(t, 1, mem.Count("quotes"))
	require.Len(t, sink.errs, 1)
	assert.NoError(t, sink.errs[0])
}
