// Package logbook owns the daily food log and hydration records.
package logbook

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mbodji/fueltrack/internal/domain/models"
	"github.com/mbodji/fueltrack/internal/repository"
	"github.com/mbodji/fueltrack/internal/service/nutrition"
)

// ErrEntryNotFound indicates the referenced log entry does not exist.
var ErrEntryNotFound = errors.New("log entry not found")

// Service mutates daily logs while preserving the invariant that the cached
// totals always equal the aggregator's fold over the entries.
type Service struct {
	store  repository.Store
	logger *zap.Logger
}

// NewService wires a logbook service over the injected store.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Day loads the log for a date, defaulting to an empty log.
func (s *Service) Day(ctx context.Context, date string) (models.DailyLog, error) {
	log, err := s.store.GetDailyLog(ctx, date)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewDailyLog(date), nil
	}
	if err != nil {
		return models.DailyLog{}, fmt.Errorf("load daily log %s: %w", date, err)
	}
	return log, nil
}

// AddEntry appends a food entry to the date's log, recomputes the totals and
// persists the result.
func (s *Service) AddEntry(ctx context.Context, date string, entry models.FoodEntry) (models.DailyLog, error) {
	log, err := s.Day(ctx, date)
	if err != nil {
		return models.DailyLog{}, err
	}

	entry.Nutrition = entry.Nutrition.Clamp()
	log.Entries = append(log.Entries, entry)
	log.Totals = nutrition.SumEntries(log.Entries)

	if err := s.store.PutDailyLog(ctx, log); err != nil {
		return models.DailyLog{}, fmt.Errorf("save daily log %s: %w", date, err)
	}

	s.logger.Debug("food entry logged",
		zap.String("date", date),
		zap.String("item", entry.ItemName),
		zap.Float64("calories", entry.Nutrition.Calories))

	return log, nil
}

// RemoveEntry deletes the entry at the given position and recomputes totals.
func (s *Service) RemoveEntry(ctx context.Context, date string, index int) (models.DailyLog, error) {
	log, err := s.Day(ctx, date)
	if err != nil {
		return models.DailyLog{}, err
	}

	if index < 0 || index >= len(log.Entries) {
		return models.DailyLog{}, ErrEntryNotFound
	}

	log.Entries = append(log.Entries[:index], log.Entries[index+1:]...)
	log.Totals = nutrition.SumEntries(log.Entries)

	if err := s.store.PutDailyLog(ctx, log); err != nil {
		return models.DailyLog{}, fmt.Errorf("save daily log %s: %w", date, err)
	}

	return log, nil
}

// Hydration loads the date's water intake, defaulting to zero.
func (s *Service) Hydration(ctx context.Context, date string) (models.HydrationLog, error) {
	log, err := s.store.GetHydration(ctx, date)
	if errors.Is(err, repository.ErrNotFound) {
		return models.HydrationLog{Date: date}, nil
	}
	if err != nil {
		return models.HydrationLog{}, fmt.Errorf("load hydration %s: %w", date, err)
	}
	return log, nil
}

// AddWater increments the date's water intake by the given amount in
// milliliters and returns the updated record.
func (s *Service) AddWater(ctx context.Context, date string, amountML float64) (models.HydrationLog, error) {
	log, err := s.Hydration(ctx, date)
	if err != nil {
		return models.HydrationLog{}, err
	}

	log.WaterML += amountML
	if log.WaterML < 0 {
		log.WaterML = 0
	}

	if err := s.store.PutHydration(ctx, log); err != nil {
		return models.HydrationLog{}, fmt.Errorf("save hydration %s: %w", date, err)
	}
	return log, nil
}
