// Package pricing reads gym documents and projects them into the pricing
// summary shown to users.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/models"
	"gym-fulfillment/internal/store"
)

var (
	ErrStoreUnavailable = errors.New("STORE_UNAVAILABLE")
)

const (
	notAvailable    = "N/A"
	defaultName     = "this gym"
	defaultCurrency = "GBP"
	defaultPeriod   = "month"

	tagline = "Our flexible plans are designed to fit your lifestyle."
)

// Summary is the display-ready projection of one gym document.
type Summary struct {
	GymID           string
	GymName         string
	PromotionActive bool
	Text            string
}

// Accessor reads gym documents from a store collection.
type Accessor struct {
	store      store.DocumentStore
	collection string
	logger     logger.Logger
}

func NewAccessor(st store.DocumentStore, collection string, log logger.Logger) *Accessor {
	return &Accessor{
		store:      st,
		collection: collection,
		logger:     log.WithFields(map[string]interface{}{"component": "pricing"}),
	}
}

// FetchPricingSummary returns found=false with a nil error when the gym does
// not exist. Any other store failure is reported as ErrStoreUnavailable.
func (a *Accessor) FetchPricingSummary(ctx context.Context, gymID string) (*Summary, bool, error) {
	doc, found, err := a.load(ctx, gymID)
	if err != nil || !found {
		return nil, found, err
	}

	summary := Project(doc)
	summary.GymID = gymID
	return summary, true, nil
}

// FetchGym returns the typed gym record. Leaves that are missing or of the
// wrong type are left empty.
func (a *Accessor) FetchGym(ctx context.Context, gymID string) (*models.GymPricingRecord, bool, error) {
	doc, found, err := a.load(ctx, gymID)
	if err != nil || !found {
		return nil, found, err
	}

	rec := ToRecord(doc)
	rec.ID = gymID
	return rec, true, nil
}

func (a *Accessor) load(ctx context.Context, gymID string) (store.Document, bool, error) {
	doc, err := a.store.Get(ctx, a.collection, gymID)
	if errors.Is(err, store.ErrNotFound) {
		a.logger.Warn("gym not found", map[string]interface{}{
			"gymId":      gymID,
			"collection": a.collection,
		})
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return doc, true, nil
}

// Project renders the pricing summary text for a gym document.
func Project(doc store.Document) *Summary {
	name := stringOr(doc, models.PathGymName, defaultName)
	promoActive := boolAt(doc, models.PathPromotionActive)

	var b strings.Builder
	fmt.Fprintf(&b, "Pricing Details for %s\n\n", name)
	fmt.Fprintf(&b, "%s\n\n", tagline)

	twelveCurrency := stringOr(doc, models.PathTwelveMonthCurr, defaultCurrency)
	b.WriteString("1. 12-Month Commitment Plan\n")
	fmt.Fprintf(&b, "   - Commitment: %s\n", stringOr(doc, models.PathTwelveMonthCommit, notAvailable))
	fmt.Fprintf(&b, "   - Price: %s %s per %s\n",
		twelveCurrency,
		amountOr(doc, models.PathTwelveMonthPrice),
		stringOr(doc, models.PathTwelveMonthPeriod, defaultPeriod))
	fmt.Fprintf(&b, "   - Original Price: %s %s\n", twelveCurrency, amountOr(doc, models.PathTwelveMonthOrig))
	if promoActive {
		fmt.Fprintf(&b, "   - Promotion: %s (%s)\n",
			stringOr(doc, models.PathPromotionDesc, notAvailable),
			stringOr(doc, models.PathPromotionCond, notAvailable))
	}
	b.WriteString("\n")

	b.WriteString("2. 1-Month Rolling Plan\n")
	fmt.Fprintf(&b, "   - Commitment: %s\n", stringOr(doc, models.PathOneMonthCommit, notAvailable))
	fmt.Fprintf(&b, "   - Price: %s %s per %s",
		stringOr(doc, models.PathOneMonthCurr, defaultCurrency),
		amountOr(doc, models.PathOneMonthPrice),
		stringOr(doc, models.PathOneMonthPeriod, defaultPeriod))

	return &Summary{
		GymName:         name,
		PromotionActive: promoActive,
		Text:            b.String(),
	}
}

// ToRecord converts a gym document into the typed record, tolerating
// numeric strings for prices.
func ToRecord(doc store.Document) *models.GymPricingRecord {
	rec := &models.GymPricingRecord{Name: stringOr(doc, models.PathGymName, "")}

	if _, ok := doc.Lookup(models.PathTwelveMonth); ok {
		rec.Membership.Anytime.TwelveMonth = &models.Plan{
			Commitment:    stringOr(doc, models.PathTwelveMonthCommit, ""),
			Currency:      stringOr(doc, models.PathTwelveMonthCurr, ""),
			DiscountPrice: amountAt(doc, models.PathTwelveMonthPrice),
			OriginalPrice: amountAt(doc, models.PathTwelveMonthOrig),
			Period:        stringOr(doc, models.PathTwelveMonthPeriod, ""),
		}
	}
	if _, ok := doc.Lookup(models.PathOneMonth); ok {
		rec.Membership.Anytime.OneMonth = &models.Plan{
			Commitment: stringOr(doc, models.PathOneMonthCommit, ""),
			Currency:   stringOr(doc, models.PathOneMonthCurr, ""),
			Price:      amountAt(doc, models.PathOneMonthPrice),
			Period:     stringOr(doc, models.PathOneMonthPeriod, ""),
		}
	}
	if _, ok := doc.Lookup(models.PathPromotion); ok {
		rec.Membership.Anytime.Promotion = &models.Promotion{
			Active:      boolAt(doc, models.PathPromotionActive),
			Description: stringOr(doc, models.PathPromotionDesc, ""),
			Condition:   stringOr(doc, models.PathPromotionCond, ""),
		}
	}
	return rec
}

// FormatAmount renders a price with exactly two decimals.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var currencySymbols = map[string]string{
	"GBP": "£",
	"EUR": "€",
	"USD": "$",
}

// CurrencySymbol returns the symbol for a currency code. Unknown codes are
// returned followed by a space so that "CHF 10.00" still reads naturally.
func CurrencySymbol(code string) string {
	if code == "" {
		code = defaultCurrency
	}
	if s, ok := currencySymbols[strings.ToUpper(code)]; ok {
		return s
	}
	return code + " "
}

func stringOr(doc store.Document, path, fallback string) string {
	v, ok := doc.Lookup(path)
	if !ok {
		return fallback
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return fallback
		}
		return t
	case map[string]interface{}, []interface{}:
		return fallback
	default:
		return fmt.Sprint(t)
	}
}

func boolAt(doc store.Document, path string) bool {
	v, ok := doc.Lookup(path)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func amountAt(doc store.Document, path string) *float64 {
	v, ok := doc.Lookup(path)
	if !ok {
		return nil
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

func amountOr(doc store.Document, path string) string {
	if f := amountAt(doc, path); f != nil {
		return FormatAmount(*f)
	}
	return notAvailable
}
