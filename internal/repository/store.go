package repository

import (
	"context"
	"errors"

	"github.com/mbodji/fueltrack/internal/domain/models"
)

// ErrNotFound is returned when a requested record does not exist in its
// namespace. Callers decide whether absence means "apply defaults" or failure.
var ErrNotFound = errors.New("record not found")

// Namespace names, shared by the storage backends and the backup format.
const (
	NamespaceSettings  = "user_settings"
	NamespaceDailyLogs = "daily_logs"
	NamespaceFoodCache = "food_cache"
	NamespaceHydration = "hydration_logs"
	NamespaceAPIUsage  = "api_usage"
)

// Store is the injected storage capability backing the pipeline, the usage
// tracker, the logbook and backup. Implementations must make IncrementUsage
// atomic at the storage layer and RestoreSnapshot all-or-nothing.
type Store interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	PutSettings(ctx context.Context, settings models.Settings) error

	GetDailyLog(ctx context.Context, date string) (models.DailyLog, error)
	PutDailyLog(ctx context.Context, log models.DailyLog) error
	ListDailyLogs(ctx context.Context) ([]models.DailyLog, error)

	GetCachedFood(ctx context.Context, normalizedInput string) (models.FoodCacheEntry, error)
	PutCachedFood(ctx context.Context, entry models.FoodCacheEntry) error
	ListCachedFoods(ctx context.Context) ([]models.FoodCacheEntry, error)

	GetHydration(ctx context.Context, date string) (models.HydrationLog, error)
	PutHydration(ctx context.Context, log models.HydrationLog) error
	ListHydration(ctx context.Context) ([]models.HydrationLog, error)

	GetUsage(ctx context.Context, date, provider string) (models.UsageRecord, error)
	IncrementUsage(ctx context.Context, date, provider string) error
	ListUsage(ctx context.Context) ([]models.UsageRecord, error)

	RestoreSnapshot(ctx context.Context, snap Snapshot) error
}

// Snapshot is the backup wire format: one JSON object whose top-level keys are
// the five namespace names. A nil slice means the namespace was absent from
// the backup and must be left untouched on restore; a present-but-empty array
// clears the namespace.
type Snapshot struct {
	Settings  []models.Settings       `json:"user_settings"`
	DailyLogs []models.DailyLog       `json:"daily_logs"`
	FoodCache []models.FoodCacheEntry `json:"food_cache"`
	Hydration []models.HydrationLog   `json:"hydration_logs"`
	APIUsage  []models.UsageRecord    `json:"api_usage"`
}
