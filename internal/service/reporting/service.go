// Package reporting exports finished days to the configured Google Sheet.
package reporting

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mbodji/fueltrack/internal/domain/models"
	"github.com/mbodji/fueltrack/internal/repository"
	sheetsrepo "github.com/mbodji/fueltrack/internal/repository/sheets"
	"github.com/mbodji/fueltrack/internal/service/goals"
)

const summaryWriteRange = "Summary!A:I"

// Service renders one row per day: date, totals, calorie target and water.
type Service struct {
	sheets sheetsrepo.Repository
	store  repository.Store
	logger *zap.Logger
}

// NewService wires a reporting service instance.
func NewService(sheets sheetsrepo.Repository, store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sheets: sheets, store: store, logger: logger}
}

// ExportDailySummary appends the given date's totals to the summary sheet.
// Days without a log still export a zero row so the sheet has no gaps.
func (s *Service) ExportDailySummary(ctx context.Context, date string) error {
	log, err := s.store.GetDailyLog(ctx, date)
	if errors.Is(err, repository.ErrNotFound) {
		log = models.NewDailyLog(date)
	} else if err != nil {
		return fmt.Errorf("load daily log %s: %w", date, err)
	}

	hydration, err := s.store.GetHydration(ctx, date)
	if errors.Is(err, repository.ErrNotFound) {
		hydration = models.HydrationLog{Date: date}
	} else if err != nil {
		return fmt.Errorf("load hydration %s: %w", date, err)
	}

	settings, err := s.store.GetSettings(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		settings = models.DefaultSettings()
	} else if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	targets := goals.CalculateTargets(settings.WithDefaults().Profile)

	row := []interface{}{
		date,
		log.Totals.Calories,
		log.Totals.Protein,
		log.Totals.Carbs,
		log.Totals.Fat,
		targets.Calories,
		hydration.WaterML,
		len(log.Entries),
	}

	if err := s.sheets.WriteRow(ctx, summaryWriteRange, row); err != nil {
		return fmt.Errorf("write summary row for %s: %w", date, err)
	}

	s.logger.Info("daily summary exported", zap.String("date", date), zap.Int("entries", len(log.Entries)))
	return nil
}
