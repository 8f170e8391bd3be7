// Package usage enforces the per-day provider request budget.
package usage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mbodji/fueltrack/internal/domain/models"
	"github.com/mbodji/fueltrack/internal/repository"
)

// Usage at or above this share of the daily limit is graded critical
// regardless of the configured warning threshold.
const criticalRatio = 0.95

// Tracker answers admission queries and records live provider requests.
type Tracker struct {
	store  repository.Store
	logger *zap.Logger
}

// NewTracker wires a tracker over the injected store.
func NewTracker(store repository.Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger}
}

// Status reads the day's counter and the configured limit and grades the
// current usage. It is a pure query with no side effects: a missing usage
// record reads as zero and missing settings fall back to defaults.
func (t *Tracker) Status(ctx context.Context, date, provider string) (models.UsageStatus, error) {
	settings, err := t.store.GetSettings(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		settings = models.DefaultSettings()
	} else if err != nil {
		return models.UsageStatus{}, fmt.Errorf("load settings: %w", err)
	}
	settings = settings.WithDefaults()

	current := 0
	record, err := t.store.GetUsage(ctx, date, provider)
	if err == nil {
		current = record.Requests
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.UsageStatus{}, fmt.Errorf("load usage %s/%s: %w", date, provider, err)
	}

	limit := settings.DailyLimit
	ratio := float64(current) / float64(limit)

	level := models.WarnNone
	switch {
	case ratio >= criticalRatio:
		level = models.WarnCritical
	case ratio >= settings.WarningThreshold:
		level = models.WarnWarning
	}

	return models.UsageStatus{
		Allowed:      current < limit,
		WarningLevel: level,
		Current:      current,
		Limit:        limit,
	}, nil
}

// Record counts one successful live provider call. Callers must invoke it
// exactly once per successful call, never on a cache hit and never before
// admission was confirmed.
func (t *Tracker) Record(ctx context.Context, date, provider string) error {
	if err := t.store.IncrementUsage(ctx, date, provider); err != nil {
		return fmt.Errorf("record usage %s/%s: %w", date, provider, err)
	}
	t.logger.Debug("provider request recorded", zap.String("date", date), zap.String("provider", provider))
	return nil
}
