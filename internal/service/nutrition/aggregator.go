// Package nutrition contains the pure arithmetic over logged food entries:
// folding entries into daily totals and computing what remains against the
// day's targets.
package nutrition

import (
	"math"

	"github.com/mbodji/fueltrack/internal/domain/models"
)

// SumEntries folds the nutrition fields of every entry into a single vector,
// starting from all-zero. Non-finite values are treated as zero so a bad
// entry can never poison the running totals.
func SumEntries(entries []models.FoodEntry) models.NutritionVector {
	var totals models.NutritionVector
	for _, entry := range entries {
		totals.Calories += finite(entry.Nutrition.Calories)
		totals.Protein += finite(entry.Nutrition.Protein)
		totals.Carbs += finite(entry.Nutrition.Carbs)
		totals.Fat += finite(entry.Nutrition.Fat)
		totals.Fiber += finite(entry.Nutrition.Fiber)
		totals.Sugar += finite(entry.Nutrition.Sugar)
		totals.Sodium += finite(entry.Nutrition.Sodium)
	}
	return totals
}

// Remaining returns max(0, target-total) for every field, so a met or
// exceeded target reads exactly zero rather than a negative surplus.
func Remaining(totals, targets models.NutritionVector) models.NutritionVector {
	return models.NutritionVector{
		Calories: math.Max(0, targets.Calories-totals.Calories),
		Protein:  math.Max(0, targets.Protein-totals.Protein),
		Carbs:    math.Max(0, targets.Carbs-totals.Carbs),
		Fat:      math.Max(0, targets.Fat-totals.Fat),
		Fiber:    math.Max(0, targets.Fiber-totals.Fiber),
		Sugar:    math.Max(0, targets.Sugar-totals.Sugar),
		Sodium:   math.Max(0, targets.Sodium-totals.Sodium),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
