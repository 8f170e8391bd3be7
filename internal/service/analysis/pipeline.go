// Package analysis orchestrates the food analysis pipeline: normalization,
// cache lookup, usage admission, credential lookup, provider estimation and
// the post-success bookkeeping.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mbodji/fueltrack/internal/domain/models"
	"github.com/mbodji/fueltrack/internal/repository"
	"github.com/mbodji/fueltrack/internal/service/usage"
)

// ErrEmptyInput indicates a blank food description; caller-fixable, no I/O
// was performed.
var ErrEmptyInput = errors.New("food description is empty")

// ErrQuotaExceeded indicates the daily provider request limit is reached.
var ErrQuotaExceeded = errors.New("daily api limit reached")

// ErrMissingAPIKey indicates no provider credential is configured.
var ErrMissingAPIKey = errors.New("api key not set")

// ErrUnsupportedProvider indicates the configured provider has no estimator.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// Estimator is a pluggable text-to-nutrition backend.
type Estimator interface {
	Estimate(ctx context.Context, apiKey, text string) (models.FoodEstimate, error)
}

// Result is the pipeline's answer: the estimate plus where it came from.
type Result struct {
	FoodName  string                 `json:"food_name"`
	Nutrition models.NutritionVector `json:"nutrition"`
	Source    models.EntrySource     `json:"source"`
}

// Service is the only component with side effects on storage and the network.
type Service struct {
	store      repository.Store
	tracker    *usage.Tracker
	estimators map[string]Estimator
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires the pipeline. The estimators map is keyed by provider
// identifier as stored in settings.
func NewService(store repository.Store, tracker *usage.Tracker, estimators map[string]Estimator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		tracker:    tracker,
		estimators: estimators,
		logger:     logger,
		now:        time.Now,
	}
}

const dateLayout = "2006-01-02"

// Analyze turns a raw food description into a nutrition estimate. A cache hit
// returns immediately without touching the usage counter or the network; a
// live estimation records usage and caches the result, in that order, before
// returning. Failures after a successful estimate are logged but do not
// withhold the estimate from the caller.
func (s *Service) Analyze(ctx context.Context, rawText string) (Result, error) {
	normalized := NormalizeInput(rawText)
	if normalized == "" {
		return Result{}, ErrEmptyInput
	}

	cached, err := s.store.GetCachedFood(ctx, normalized)
	if err == nil {
		s.logger.Debug("food cache hit", zap.String("key", normalized))
		return Result{FoodName: cached.FoodName, Nutrition: cached.Nutrition, Source: models.SourceCache}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Result{}, fmt.Errorf("cache lookup: %w", err)
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return Result{}, err
	}

	date := s.now().Format(dateLayout)
	status, err := s.tracker.Status(ctx, date, settings.Provider)
	if err != nil {
		return Result{}, fmt.Errorf("usage status: %w", err)
	}
	if !status.Allowed {
		return Result{}, ErrQuotaExceeded
	}

	if settings.APIKey == "" {
		return Result{}, ErrMissingAPIKey
	}

	estimator, ok := s.estimators[settings.Provider]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedProvider, settings.Provider)
	}

	estimate, err := estimator.Estimate(ctx, settings.APIKey, rawText)
	if err != nil {
		return Result{}, fmt.Errorf("estimate %q: %w", normalized, err)
	}

	// Only a successfully returned vector is a countable event; record it
	// before caching so the two writes keep a fixed order.
	if err := s.tracker.Record(ctx, date, settings.Provider); err != nil {
		s.logger.Error("failed to record usage after live estimation", zap.Error(err))
	}

	entry := models.FoodCacheEntry{
		NormalizedInput: normalized,
		FoodName:        estimate.FoodName,
		Nutrition:       estimate.Nutrition,
	}
	if err := s.store.PutCachedFood(ctx, entry); err != nil {
		s.logger.Error("failed to cache food estimate", zap.String("key", normalized), zap.Error(err))
	}

	return Result{FoodName: estimate.FoodName, Nutrition: estimate.Nutrition, Source: models.SourceLive}, nil
}

func (s *Service) loadSettings(ctx context.Context) (models.Settings, error) {
	settings, err := s.store.GetSettings(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		settings = models.DefaultSettings()
	} else if err != nil {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings.WithDefaults(), nil
}
