package usage_test

import (
	"context"
	"testing"

	"github.com/mbodji/fueltrack/internal/domain/models"
	"github.com/mbodji/fueltrack/internal/repository/memory"
	"github.com/mbodji/fueltrack/internal/service/usage"
)

const (
	testDate     = "2026-08-27"
	testProvider = "gemini"
)

func seedUsage(t *testing.T, store *memory.Store, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		if err := store.IncrementUsage(context.Background(), testDate, testProvider); err != nil {
			t.Fatalf("seed usage: %v", err)
		}
	}
}

func TestStatusWarningLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		current     int
		wantAllowed bool
		wantLevel   models.WarningLevel
	}{
		{"fresh day", 0, true, models.WarnNone},
		{"below threshold", 39, true, models.WarnNone},
		{"at warning threshold", 40, true, models.WarnWarning},
		{"critical", 48, true, models.WarnCritical},
		{"at limit", 50, false, models.WarnCritical},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewStore()
			seedUsage(t, store, tc.current)
			tracker := usage.NewTracker(store, nil)

			status, err := tracker.Status(context.Background(), testDate, testProvider)
			if err != nil {
				t.Fatalf("status: %v", err)
			}

			if status.Allowed != tc.wantAllowed {
				t.Fatalf("allowed = %v, want %v", status.Allowed, tc.wantAllowed)
			}
			if status.WarningLevel != tc.wantLevel {
				t.Fatalf("warning level = %q, want %q", status.WarningLevel, tc.wantLevel)
			}
			if status.Current != tc.current {
				t.Fatalf("current = %d, want %d", status.Current, tc.current)
			}
			if status.Limit != models.DefaultDailyLimit {
				t.Fatalf("limit = %d, want %d", status.Limit, models.DefaultDailyLimit)
			}
		})
	}
}

func TestStatusUsesConfiguredLimitAndThreshold(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	settings := models.DefaultSettings()
	settings.DailyLimit = 10
	settings.WarningThreshold = 0.5
	if err := store.PutSettings(context.Background(), settings); err != nil {
		t.Fatalf("put settings: %v", err)
	}
	seedUsage(t, store, 5)

	tracker := usage.NewTracker(store, nil)
	status, err := tracker.Status(context.Background(), testDate, testProvider)
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	if !status.Allowed {
		t.Fatalf("expected 5/10 to be allowed")
	}
	if status.WarningLevel != models.WarnWarning {
		t.Fatalf("warning level = %q, want warning at the configured 0.5 threshold", status.WarningLevel)
	}
	if status.Limit != 10 {
		t.Fatalf("limit = %d, want 10", status.Limit)
	}
}

func TestStatusIsAPureQuery(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	tracker := usage.NewTracker(store, nil)

	for i := 0; i < 3; i++ {
		if _, err := tracker.Status(context.Background(), testDate, testProvider); err != nil {
			t.Fatalf("status: %v", err)
		}
	}

	status, err := tracker.Status(context.Background(), testDate, testProvider)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Current != 0 {
		t.Fatalf("status queries must not consume quota, current = %d", status.Current)
	}
}

func TestRecordCreatesAndIncrements(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	tracker := usage.NewTracker(store, nil)

	if err := tracker.Record(context.Background(), testDate, testProvider); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := tracker.Record(context.Background(), testDate, testProvider); err != nil {
		t.Fatalf("record: %v", err)
	}

	record, err := store.GetUsage(context.Background(), testDate, testProvider)
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	if record.Requests != 2 {
		t.Fatalf("requests = %d, want 2", record.Requests)
	}

	// A different day is a separate record.
	status, err := tracker.Status(context.Background(), "2026-08-28", testProvider)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Current != 0 {
		t.Fatalf("new day should start at zero, got %d", status.Current)
	}
}
