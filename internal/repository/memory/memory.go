// Package memory provides an in-memory repository.Store used by tests in
// place of MongoDB.
package memory

import (
	"context"
	"sync"

	"github.com/mbodji/fueltrack/internal/domain/models"
	"github.com/mbodji/fueltrack/internal/repository"
)

// Store keeps every namespace in a map guarded by one mutex.
type Store struct {
	mu        sync.Mutex
	settings  *models.Settings
	dailyLogs map[string]models.DailyLog
	foodCache map[string]models.FoodCacheEntry
	hydration map[string]models.HydrationLog
	usage     map[string]models.UsageRecord
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		dailyLogs: map[string]models.DailyLog{},
		foodCache: map[string]models.FoodCacheEntry{},
		hydration: map[string]models.HydrationLog{},
		usage:     map[string]models.UsageRecord{},
	}
}

func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return models.Settings{}, repository.ErrNotFound
	}
	return *s.settings, nil
}

func (s *Store) PutSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings.ID = models.SettingsKey
	s.settings = &settings
	return nil
}

func (s *Store) GetDailyLog(ctx context.Context, date string) (models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.dailyLogs[date]
	if !ok {
		return models.DailyLog{}, repository.ErrNotFound
	}
	return log, nil
}

func (s *Store) PutDailyLog(ctx context.Context, log models.DailyLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyLogs[log.Date] = log
	return nil
}

func (s *Store) ListDailyLogs(ctx context.Context) ([]models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DailyLog, 0, len(s.dailyLogs))
	for _, log := range s.dailyLogs {
		out = append(out, log)
	}
	return out, nil
}

func (s *Store) GetCachedFood(ctx context.Context, normalizedInput string) (models.FoodCacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.foodCache[normalizedInput]
	if !ok {
		return models.FoodCacheEntry{}, repository.ErrNotFound
	}
	return entry, nil
}

func (s *Store) PutCachedFood(ctx context.Context, entry models.FoodCacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foodCache[entry.NormalizedInput] = entry
	return nil
}

func (s *Store) ListCachedFoods(ctx context.Context) ([]models.FoodCacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FoodCacheEntry, 0, len(s.foodCache))
	for _, entry := range s.foodCache {
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) GetHydration(ctx context.Context, date string) (models.HydrationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.hydration[date]
	if !ok {
		return models.HydrationLog{}, repository.ErrNotFound
	}
	return log, nil
}

func (s *Store) PutHydration(ctx context.Context, log models.HydrationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydration[log.Date] = log
	return nil
}

func (s *Store) ListHydration(ctx context.Context) ([]models.HydrationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HydrationLog, 0, len(s.hydration))
	for _, log := range s.hydration {
		out = append(out, log)
	}
	return out, nil
}

func (s *Store) GetUsage(ctx context.Context, date, provider string) (models.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.usage[models.UsageKey(date, provider)]
	if !ok {
		return models.UsageRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (s *Store) IncrementUsage(ctx context.Context, date, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.UsageKey(date, provider)
	rec, ok := s.usage[key]
	if !ok {
		rec = models.UsageRecord{ID: key, Date: date, Provider: provider}
	}
	rec.Requests++
	s.usage[key] = rec
	return nil
}

func (s *Store) ListUsage(ctx context.Context) ([]models.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UsageRecord, 0, len(s.usage))
	for _, rec := range s.usage {
		out = append(out, rec)
	}
	return out, nil
}

// RestoreSnapshot mirrors the transactional semantics of the Mongo store:
// only namespaces present in the snapshot are replaced.
func (s *Store) RestoreSnapshot(ctx context.Context, snap repository.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Settings != nil {
		s.settings = nil
		if len(snap.Settings) > 0 {
			last := snap.Settings[len(snap.Settings)-1]
			last.ID = models.SettingsKey
			s.settings = &last
		}
	}
	if snap.DailyLogs != nil {
		s.dailyLogs = map[string]models.DailyLog{}
		for _, log := range snap.DailyLogs {
			s.dailyLogs[log.Date] = log
		}
	}
	if snap.FoodCache != nil {
		s.foodCache = map[string]models.FoodCacheEntry{}
		for _, entry := range snap.FoodCache {
			s.foodCache[entry.NormalizedInput] = entry
		}
	}
	if snap.Hydration != nil {
		s.hydration = map[string]models.HydrationLog{}
		for _, log := range snap.Hydration {
			s.hydration[log.Date] = log
		}
	}
	if snap.APIUsage != nil {
		s.usage = map[string]models.UsageRecord{}
		for _, rec := range snap.APIUsage {
			s.usage[rec.ID] = rec
		}
	}
	return nil
}
