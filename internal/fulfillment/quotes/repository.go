// Package quotes persists quote leads captured by the quote form.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/common/validation"
	"gym-fulfillment/internal/models"
	"gym-fulfillment/internal/store"
)

var (
	ErrStorageUnavailable = errors.New("STORE_UNAVAILABLE")
	ErrPersistence        = errors.New("PERSISTENCE_FAILURE")
	ErrInvalidLead        = errors.New("INVALID_LEAD")
)

// LeadNotifier is told about every lead after it has been stored.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, lead models.QuoteLead) []models.LeadNotification
}

type Repository struct {
	store      store.DocumentStore
	collection string
	validator  *validation.Validator
	notifier   LeadNotifier
	logger     logger.Logger
	now        func() time.Time
}

// NewRepository builds a repository writing to collection. notifier may be
// nil.
func NewRepository(st store.DocumentStore, collection string, notifier LeadNotifier, log logger.Logger) *Repository {
	return &Repository{
		store:      st,
		collection: collection,
		validator:  validation.MustValidator(validation.LeadSchema),
		notifier:   notifier,
		logger:     log.WithFields(map[string]interface{}{"component": "quotes"}),
		now:        time.Now,
	}
}

// WithClock replaces the clock used for SubmittedAt.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// SaveLead appends lead to the quotes collection and returns its id. The
// write is attempted once and is bound by ctx. Notifications run after the
// write on a context that keeps ctx's values but not its deadline, so each
// sink gets its own timeout.
func (r *Repository) SaveLead(ctx context.Context, lead models.QuoteLead) (string, error) {
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Email = strings.TrimSpace(lead.Email)
	lead.ContactTime = strings.TrimSpace(lead.ContactTime)

	if lead.Name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidLead)
	}
	if lead.Email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidLead)
	}
	if lead.SubmittedAt.IsZero() {
		lead.SubmittedAt = r.now()
	}

	doc := lead.ToDocument()
	if result := r.validator.ValidateGo(doc); !result.Valid {
		return "", fmt.Errorf("%w: %s", ErrInvalidLead, strings.Join(result.GetErrorMessages(), "; "))
	}
	if !validation.ValidateEmail(lead.Email) {
		r.logger.Warn("lead email looks malformed", map[string]interface{}{
			"email": lead.Email,
		})
	}

	id, err := r.store.Add(ctx, r.collection, store.Document(doc))
	if err != nil {
		r.logger.Error("failed to save lead", map[string]interface{}{
			"collection": r.collection,
			"backend":    r.store.Name(),
			"error":      err.Error(),
		})
		if errors.Is(err, store.ErrWriteFailed) {
			return "", fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	lead.ID = id

	r.logger.Info("lead saved", map[string]interface{}{
		"leadId":     id,
		"collection": r.collection,
	})

	if r.notifier != nil {
		for _, n := range r.notifier.NotifyLead(context.WithoutCancel(ctx), lead) {
			if n.Status == models.NotificationFailed {
				r.logger.Warn("lead notification failed", map[string]interface{}{
					"leadId":  id,
					"channel": n.Channel,
				})
			}
		}
	}
	return id, nil
}
