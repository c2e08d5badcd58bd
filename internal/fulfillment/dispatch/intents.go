package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "gym-fulfillment/internal/common/errors"
	"gym-fulfillment/internal/common/metrics"
	"gym-fulfillment/internal/fulfillment/params"
	"gym-fulfillment/internal/fulfillment/pricing"
	"gym-fulfillment/internal/fulfillment/quotes"
	"gym-fulfillment/internal/fulfillment/response"
	"gym-fulfillment/internal/models"
)

// Chip labels.
const (
	ChipViewPricing = "View Pricing Details"
	ChipGetQuote    = "Get a Quote"
	ChipJoinNow     = "Join now"
)

const (
	membershipText = "Membership & Pricing\n\nChoose the plan that's right for you.\n\n" +
		"We offer a variety of flexible membership options. " +
		"Our current special is 50% off a 12-month membership until 2026! " +
		"Our most popular plan includes unlimited access to all facilities and classes."

	quotePromptText = "To get a personalized quote, please tell me your full name, email address, " +
		"and a good time for a team member to contact you."

	pricingNotFoundText    = "Sorry, I could not find pricing details for this gym."
	pricingUnavailableText = "Sorry, the database is not connected."

	joinNotFoundText    = "Gym details not found."
	joinUnavailableText = "Database not connected."

	submitFailedText      = "Error saving your information. Please try again later."
	submitUnavailableText = "Database not connected. Cannot save information."
)

func (r *Router) pricingMembership(ctx context.Context, req models.IntentRequest) result {
	return ok(response.NewBuilder().
		AddText(membershipText).
		AddChips(ChipViewPricing, ChipGetQuote).
		Build())
}

func (r *Router) getQuote(ctx context.Context, req models.IntentRequest) result {
	return ok(response.Text(quotePromptText))
}

func (r *Router) viewPricing(ctx context.Context, req models.IntentRequest) result {
	storeCtx, cancel := r.storeContext(ctx)
	defer cancel()

	b := response.NewBuilder()
	res := result{outcome: metrics.OutcomeOK}

	summary, found, err := r.pricing.FetchPricingSummary(storeCtx, r.settings.GymID)
	switch {
	case err != nil:
		r.errHandler.HandleDispatchError(IntentViewPricing, apperrors.NewStoreUnavailableError(err))
		b.AddText(pricingUnavailableText)
		res.outcome = metrics.OutcomeDegraded
	case !found:
		r.errHandler.HandleDispatchError(IntentViewPricing, apperrors.NewNotFoundError(r.settings.GymsCollection, r.settings.GymID))
		b.AddText(pricingNotFoundText)
		res.outcome = metrics.OutcomeDegraded
	default:
		b.AddText(summary.Text)
	}

	res.resp = b.AddChips(ChipGetQuote, ChipJoinNow).Build()
	return res
}

func (r *Router) joinNow(ctx context.Context, req models.IntentRequest) result {
	storeCtx, cancel := r.storeContext(ctx)
	defer cancel()

	gym, found, err := r.pricing.FetchGym(storeCtx, r.settings.GymID)
	if err != nil {
		r.errHandler.HandleDispatchError(IntentJoinNow, apperrors.NewStoreUnavailableError(err))
		return degraded(response.Text(joinUnavailableText))
	}
	if !found {
		r.errHandler.HandleDispatchError(IntentJoinNow, apperrors.NewNotFoundError(r.settings.GymsCollection, r.settings.GymID))
		return degraded(response.Text(joinNotFoundText))
	}

	plan := gym.Membership.Anytime.TwelveMonth
	if plan == nil || plan.DiscountPrice == nil {
		r.errHandler.HandleDispatchError(IntentJoinNow, apperrors.NewIncompleteRecordError(models.PathTwelveMonthPrice))
		return degraded(response.Text(pricingNotFoundText))
	}

	q := r.joinQuote(plan)

	b := response.NewBuilder().AddText(q.text)
	if r.settings.JoinURL != "" {
		subtitle := gym.Name
		if subtitle == "" {
			subtitle = "12-Month Commitment Plan"
		}
		b.AddInfoCard(
			"Complete your membership",
			subtitle,
			fmt.Sprintf("Start date %s. To pay today: %s", q.startDate, q.payToday),
			r.settings.JoinURL,
		)
	}
	b.AddChips(ChipGetQuote, ChipViewPricing)
	return ok(b.Build())
}

type joinQuote struct {
	text      string
	startDate string
	payToday  string
}

// joinQuote renders the join-today breakdown for the 12-month plan.
func (r *Router) joinQuote(plan *models.Plan) joinQuote {
	today := r.now().In(r.settings.Location)
	// The 28th plus four days always lands in the following month.
	next := time.Date(today.Year(), today.Month(), 28, 12, 0, 0, 0, r.settings.Location).AddDate(0, 0, 4)

	sym := pricing.CurrencySymbol(plan.Currency)
	money := func(v float64) string { return sym + pricing.FormatAmount(v) }

	startDate := fmt.Sprintf("%d %s", today.Day(), today.Month().String())
	discounted := money(*plan.DiscountPrice)
	payToday := money(r.settings.ActivationFee + r.settings.MonthlyRemainder)

	var b strings.Builder
	b.WriteString("We've defaulted the start date to the first available date you can join this gym:\n")
	fmt.Fprintf(&b, "%s\n\n", startDate)
	fmt.Fprintf(&b, "Activation Fee: %s\n", money(r.settings.ActivationFee))
	fmt.Fprintf(&b, "For the remainder of this month: %s\n", money(r.settings.MonthlyRemainder))
	fmt.Fprintf(&b, "Monthly direct debit (Starting 1st %s %d): %s\n", next.Month().String(), next.Year(), discounted)
	if plan.OriginalPrice != nil {
		fmt.Fprintf(&b, "(Just %s per month for %d months, then %s per month from %s)\n",
			discounted, r.settings.PromotionMonths, money(*plan.OriginalPrice), r.settings.FullPriceFrom)
	}
	fmt.Fprintf(&b, "To pay today: %s", payToday)

	return joinQuote{text: b.String(), startDate: startDate, payToday: payToday}
}

func (r *Router) submitQuote(ctx context.Context, req models.IntentRequest) result {
	name, hasName := requiredParam(req, models.ParamName)
	email, hasEmail := requiredParam(req, models.ParamEmail)
	contactTime, _ := requiredParam(req, models.ParamContactTime)

	b := response.NewBuilder()
	res := result{outcome: metrics.OutcomeOK}

	if !hasName || !hasEmail {
		r.logger.Info("Quote submission missing contact details", map[string]interface{}{
			"hasName":  hasName,
			"hasEmail": hasEmail,
		})
		b.AddText(quotePromptText)
		res.resp = b.AddChips(ChipViewPricing, ChipJoinNow).Build()
		return res
	}

	storeCtx, cancel := r.storeContext(ctx)
	defer cancel()

	leadID, err := r.leads.SaveLead(storeCtx, models.QuoteLead{
		Name:        name,
		Email:       email,
		ContactTime: contactTime,
		SubmittedAt: r.now().UTC(),
	})
	switch {
	case errors.Is(err, quotes.ErrStorageUnavailable):
		r.errHandler.HandleDispatchError(IntentSubmitQuote, err)
		b.AddText(submitUnavailableText)
		res.outcome = metrics.OutcomeDegraded
	case err != nil:
		r.errHandler.HandleDispatchError(IntentSubmitQuote, err)
		b.AddText(submitFailedText)
		res.outcome = metrics.OutcomeDegraded
	default:
		metrics.LeadsCaptured.Inc()
		r.obs.RecordLeadCaptured(ctx)
		r.logger.Info("Quote lead captured", map[string]interface{}{"leadId": leadID})
		b.AddText(confirmationText(name, email, contactTime))
	}

	res.resp = b.AddChips(ChipViewPricing, ChipJoinNow).Build()
	return res
}

func confirmationText(name, email, contactTime string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you, %s! We have received your request.\n", name)
	if contactTime != "" {
		fmt.Fprintf(&b, "A team member will be in touch with you at %s at %s to provide a tailored quote.\n", contactTime, email)
	} else {
		fmt.Fprintf(&b, "A team member will be in touch with you at %s to provide a tailored quote.\n", email)
	}
	b.WriteString("We look forward to speaking with you!")
	return b.String()
}

// requiredParam normalizes a parameter, reporting false when it is absent
// or normalizes to the sentinel.
func requiredParam(req models.IntentRequest, name string) (string, bool) {
	v, present := req.Param(name)
	if !present {
		return "", false
	}
	s := params.Normalize(v)
	if s == params.NotAvailable {
		return "", false
	}
	return s, true
}
