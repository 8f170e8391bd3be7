// Package backup serializes the five storage namespaces to a single JSON
// document and restores them from one.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mbodji/fueltrack/internal/domain/models"
	"github.com/mbodji/fueltrack/internal/repository"
)

// Service implements export and all-or-nothing import.
type Service struct {
	store  repository.Store
	logger *zap.Logger
}

// NewService wires a backup service over the injected store.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Export serializes every namespace into one pretty-printed JSON object keyed
// by namespace name. All five keys are always present so a round-tripped
// backup fully replaces state on restore.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	snap := repository.Snapshot{
		Settings:  []models.Settings{},
		DailyLogs: []models.DailyLog{},
		FoodCache: []models.FoodCacheEntry{},
		Hydration: []models.HydrationLog{},
		APIUsage:  []models.UsageRecord{},
	}

	settings, err := s.store.GetSettings(ctx)
	if err == nil {
		snap.Settings = append(snap.Settings, settings)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("export settings: %w", err)
	}

	if snap.DailyLogs, err = s.store.ListDailyLogs(ctx); err != nil {
		return nil, fmt.Errorf("export daily logs: %w", err)
	}
	if snap.FoodCache, err = s.store.ListCachedFoods(ctx); err != nil {
		return nil, fmt.Errorf("export food cache: %w", err)
	}
	if snap.Hydration, err = s.store.ListHydration(ctx); err != nil {
		return nil, fmt.Errorf("export hydration: %w", err)
	}
	if snap.APIUsage, err = s.store.ListUsage(ctx); err != nil {
		return nil, fmt.Errorf("export usage: %w", err)
	}

	normalizeNilSlices(&snap)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	return data, nil
}

// Import parses a backup document and restores the namespaces it contains.
// Namespaces missing from the document are left untouched; the restore is
// all-or-nothing at the storage layer.
func (s *Service) Import(ctx context.Context, data []byte) error {
	var snap repository.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse backup: %w", err)
	}

	if err := s.store.RestoreSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	s.logger.Info("backup restored",
		zap.Int("daily_logs", len(snap.DailyLogs)),
		zap.Int("food_cache", len(snap.FoodCache)),
		zap.Int("hydration_logs", len(snap.Hydration)),
		zap.Int("api_usage", len(snap.APIUsage)))
	return nil
}

// List operations may return nil for empty namespaces; exports must still
// carry the key as an empty array, not null.
func normalizeNilSlices(snap *repository.Snapshot) {
	if snap.Settings == nil {
		snap.Settings = []models.Settings{}
	}
	if snap.DailyLogs == nil {
		snap.DailyLogs = []models.DailyLog{}
	}
	if snap.FoodCache == nil {
		snap.FoodCache = []models.FoodCacheEntry{}
	}
	if snap.Hydration == nil {
		snap.Hydration = []models.HydrationLog{}
	}
	if snap.APIUsage == nil {
		snap.APIUsage = []models.UsageRecord{}
	}
}
