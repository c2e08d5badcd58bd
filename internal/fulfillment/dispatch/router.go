// Package dispatch maps an intent and its parameters to a fulfillment
// response.
package dispatch

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "gym-fulfillment/internal/common/errors"
	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/common/metrics"
	"gym-fulfillment/internal/common/observability"
	"gym-fulfillment/internal/fulfillment/pricing"
	"gym-fulfillment/internal/fulfillment/response"
	"gym-fulfillment/internal/models"
)

// Recognized intents.
const (
	IntentPricingMembership = "PricingMembershipIntent"
	IntentViewPricing       = "ViewPricingIntent"
	IntentJoinNow           = "JoinNowIntent"
	IntentGetQuote          = "GetQuoteIntent"
	IntentSubmitQuote       = "SubmitQuoteFormIntent"
)

// PricingSource is satisfied by *pricing.Accessor.
type PricingSource interface {
	FetchPricingSummary(ctx context.Context, gymID string) (*pricing.Summary, bool, error)
	FetchGym(ctx context.Context, gymID string) (*models.GymPricingRecord, bool, error)
}

// LeadSaver is satisfied by *quotes.Repository.
type LeadSaver interface {
	SaveLead(ctx context.Context, lead models.QuoteLead) (string, error)
}

type result struct {
	resp    models.WebhookResponse
	outcome string
}

type handlerFunc func(ctx context.Context, req models.IntentRequest) result

type Router struct {
	settings   Settings
	pricing    PricingSource
	leads      LeadSaver
	errHandler *apperrors.ErrorHandler
	obs        *observability.Observability
	logger     logger.Logger
	now        func() time.Time
	handlers   map[string]handlerFunc
}

// NewRouter builds the intent table. obs may be nil.
func NewRouter(settings Settings, pricingSource PricingSource, leads LeadSaver, obs *observability.Observability, log logger.Logger) *Router {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	log = log.WithFields(map[string]interface{}{"component": "dispatch"})

	r := &Router{
		settings:   settings,
		pricing:    pricingSource,
		leads:      leads,
		errHandler: apperrors.NewErrorHandler(log),
		obs:        obs,
		logger:     log,
		now:        time.Now,
	}
	r.handlers = map[string]handlerFunc{
		IntentPricingMembership: r.pricingMembership,
		IntentViewPricing:       r.viewPricing,
		IntentJoinNow:           r.joinNow,
		IntentGetQuote:          r.getQuote,
		IntentSubmitQuote:       r.submitQuote,
	}
	return r
}

// WithClock replaces the clock used for join dates and lead timestamps.
func (r *Router) WithClock(now func() time.Time) *Router {
	r.now = now
	return r
}

// Intents lists the recognized intent names in sorted order.
func (r *Router) Intents() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch never fails: unknown intents, branch failures and panics all
// produce a well formed response.
func (r *Router) Dispatch(ctx context.Context, req models.IntentRequest) (resp models.WebhookResponse) {
	start := time.Now()
	handler, intent, known := r.selectHandler(req)

	ctx, span := r.obs.StartSpan(ctx, "fulfillment.dispatch",
		attribute.String("intent", intent),
		attribute.Int("parameters", len(req.Parameters)),
	)
	outcome := metrics.OutcomeFallback

	defer func() {
		if rec := recover(); rec != nil {
			r.errHandler.HandlePanic(intent, rec)
			span.SetStatus(codes.Error, "panic")
			resp = response.Fallback()
			outcome = metrics.OutcomePanic
		}
		elapsed := time.Since(start)
		label := metrics.IntentLabel(intent, known)
		metrics.DispatchesTotal.WithLabelValues(label, outcome).Inc()
		metrics.DispatchDuration.WithLabelValues(label).Observe(elapsed.Seconds())
		r.obs.RecordDispatch(ctx, label, outcome, elapsed)
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
	}()

	if !known {
		r.logger.Debug("Unrecognized intent, returning fallback", map[string]interface{}{
			"intent": req.IntentName,
		})
		return response.Fallback()
	}

	res := handler(ctx, req)
	outcome = res.outcome
	return res.resp
}

// selectHandler applies the submission rule before the table lookup: the
// quote form is submitted when the intent says so or when all three lead
// parameters are present. It returns the intent that is effectively served.
func (r *Router) selectHandler(req models.IntentRequest) (handlerFunc, string, bool) {
	if req.IntentName == IntentSubmitQuote ||
		req.HasAll(models.ParamName, models.ParamEmail, models.ParamContactTime) {
		return r.handlers[IntentSubmitQuote], IntentSubmitQuote, true
	}
	h, ok := r.handlers[req.IntentName]
	return h, req.IntentName, ok
}

func (r *Router) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.settings.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.settings.StoreTimeout)
}

func ok(resp models.WebhookResponse) result {
	return result{resp: resp, outcome: metrics.OutcomeOK}
}

func degraded(resp models.WebhookResponse) result {
	return result{resp: resp, outcome: metrics.OutcomeDegraded}
}
