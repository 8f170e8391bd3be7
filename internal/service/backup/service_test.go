package backup_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mbodji/fueltrack/internal/domain/models"
	"github.com/mbodji/fueltrack/internal/repository/memory"
	"github.com/mbodji/fueltrack/internal/service/backup"
)

func seedStore(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.APIKey = "secret"
	if err := store.PutSettings(ctx, settings); err != nil {
		t.Fatalf("put settings: %v", err)
	}

	if err := store.PutDailyLog(ctx, models.DailyLog{
		Date:    "2026-08-26",
		Entries: []models.FoodEntry{{ItemName: "oatmeal", Nutrition: models.NutritionVector{Calories: 300}}},
		Totals:  models.NutritionVector{Calories: 300},
	}); err != nil {
		t.Fatalf("put daily log: %v", err)
	}

	if err := store.PutCachedFood(ctx, models.FoodCacheEntry{
		NormalizedInput: "oatmeal",
		FoodName:        "Oatmeal",
		Nutrition:       models.NutritionVector{Calories: 300},
	}); err != nil {
		t.Fatalf("put cached food: %v", err)
	}

	if err := store.PutHydration(ctx, models.HydrationLog{Date: "2026-08-26", WaterML: 1500}); err != nil {
		t.Fatalf("put hydration: %v", err)
	}

	if err := store.IncrementUsage(ctx, "2026-08-26", "gemini"); err != nil {
		t.Fatalf("increment usage: %v", err)
	}
}

func TestExportContainsAllNamespaces(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedStore(t, store)
	svc := backup.NewService(store, nil)

	data, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}

	for _, ns := range []string{"user_settings", "daily_logs", "food_cache", "hydration_logs", "api_usage"} {
		raw, ok := doc[ns]
		if !ok {
			t.Fatalf("namespace %q missing from export", ns)
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			t.Fatalf("namespace %q is not an array: %v", ns, err)
		}
		if len(arr) != 1 {
			t.Fatalf("namespace %q has %d records, want 1", ns, len(arr))
		}
	}
}

func TestExportEmptyStoreStillListsNamespaces(t *testing.T) {
	t.Parallel()

	svc := backup.NewService(memory.NewStore(), nil)

	data, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var doc map[string][]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(doc) != 5 {
		t.Fatalf("export has %d namespaces, want 5", len(doc))
	}
	for ns, arr := range doc {
		if arr == nil {
			t.Fatalf("namespace %q exported as null, want empty array", ns)
		}
	}
}

func TestImportReplacesOnlyPresentNamespaces(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedStore(t, store)
	svc := backup.NewService(store, nil)
	ctx := context.Background()

	partial := `{
		"daily_logs": [
			{"date": "2026-08-27", "entries": [], "totals": {"calories": 0, "protein": 0, "carbs": 0, "fat": 0, "fiber": 0, "sugar": 0, "sodium": 0}}
		]
	}`

	if err := svc.Import(ctx, []byte(partial)); err != nil {
		t.Fatalf("import: %v", err)
	}

	// daily_logs fully replaced.
	logs, err := store.ListDailyLogs(ctx)
	if err != nil {
		t.Fatalf("list daily logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Date != "2026-08-27" {
		t.Fatalf("daily logs not replaced: %+v", logs)
	}

	// Everything else untouched.
	settings, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("settings should survive a partial restore: %v", err)
	}
	if settings.APIKey != "secret" {
		t.Fatalf("settings mutated by partial restore: %+v", settings)
	}
	foods, err := store.ListCachedFoods(ctx)
	if err != nil || len(foods) != 1 {
		t.Fatalf("food cache should survive a partial restore: %v %+v", err, foods)
	}
	usage, err := store.ListUsage(ctx)
	if err != nil || len(usage) != 1 {
		t.Fatalf("usage should survive a partial restore: %v %+v", err, usage)
	}
}

func TestImportEmptyArrayClearsNamespace(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedStore(t, store)
	svc := backup.NewService(store, nil)
	ctx := context.Background()

	if err := svc.Import(ctx, []byte(`{"food_cache": []}`)); err != nil {
		t.Fatalf("import: %v", err)
	}

	foods, err := store.ListCachedFoods(ctx)
	if err != nil {
		t.Fatalf("list cached foods: %v", err)
	}
	if len(foods) != 0 {
		t.Fatalf("food cache should be cleared by an explicit empty array, got %+v", foods)
	}
}

func TestImportRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedStore(t, store)
	svc := backup.NewService(store, nil)

	if err := svc.Import(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("expected invalid JSON to fail")
	}

	// Prior state retained.
	logs, err := store.ListDailyLogs(context.Background())
	if err != nil || len(logs) != 1 {
		t.Fatalf("state mutated by failed import: %v %+v", err, logs)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	source := memory.NewStore()
	seedStore(t, source)

	data, err := backup.NewService(source, nil).Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	target := memory.NewStore()
	if err := backup.NewService(target, nil).Import(context.Background(), data); err != nil {
		t.Fatalf("import: %v", err)
	}

	settings, err := target.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("settings missing after round trip: %v", err)
	}
	if settings.APIKey != "secret" {
		t.Fatalf("settings lost fields in round trip: %+v", settings)
	}
	log, err := target.GetDailyLog(context.Background(), "2026-08-26")
	if err != nil {
		t.Fatalf("daily log missing after round trip: %v", err)
	}
	if log.Totals.Calories != 300 {
		t.Fatalf("daily log lost totals in round trip: %+v", log)
	}
}
