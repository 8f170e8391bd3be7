// Package goals derives daily calorie and macro targets from a body profile
// using the Mifflin-St Jeor equation.
package goals

import (
	"math"

	"github.com/mbodji/fueltrack/internal/domain/models"
)

// Energy adjustments applied on top of maintenance calories per goal.
const (
	cutDeficit  = 500
	bulkSurplus = 300
)

// Macro allocation constants. Protein is prioritized per kg of body weight,
// fat gets a per-kg floor capped at 30% of the post-protein calorie budget,
// carbohydrates absorb the remainder.
const (
	proteinPerKg = 2.2
	fatPerKg     = 0.8
	fatCapShare  = 0.3

	calsPerGramProtein = 4
	calsPerGramCarb    = 4
	calsPerGramFat     = 9
)

var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivitySedentary: 1.2,
	models.ActivityLight:     1.375,
	models.ActivityModerate:  1.55,
	models.ActivityActive:    1.725,
	models.ActivityAthlete:   1.9,
}

// An unrecognized activity level falls back to the light multiplier.
const fallbackActivityMultiplier = 1.375

// CalculateTargets maps a body profile to daily calorie and macro targets.
// Missing profile fields take the documented defaults, so the function is
// total over any input.
func CalculateTargets(profile models.Profile) models.NutritionVector {
	weight := profile.WeightKg
	if weight <= 0 {
		weight = models.DefaultWeightKg
	}
	height := profile.HeightCm
	if height <= 0 {
		height = models.DefaultHeightCm
	}
	age := profile.Age
	if age <= 0 {
		age = models.DefaultAge
	}

	bmr := 10*weight + 6.25*height - 5*age
	if profile.Gender == models.GenderFemale {
		bmr -= 161
	} else {
		// Male and unspecified use the same offset.
		bmr += 5
	}

	multiplier, ok := activityMultipliers[profile.ActivityLevel]
	if !ok {
		multiplier = fallbackActivityMultiplier
	}
	tdee := bmr * multiplier

	targetCalories := tdee
	switch profile.Goal {
	case models.GoalCut:
		targetCalories -= cutDeficit
	case models.GoalBulk:
		targetCalories += bulkSurplus
	}

	protein := weight * proteinPerKg
	proteinCals := protein * calsPerGramProtein
	remainingCals := math.Max(0, targetCalories-proteinCals)

	fat := weight * fatPerKg
	fatCals := fat * calsPerGramFat
	if fatCals > remainingCals {
		// Cap fat to 30% of the remaining budget. The carb remainder below
		// still subtracts the uncapped fat calories.
		fat = (remainingCals * fatCapShare) / calsPerGramFat
	}

	carbCals := math.Max(0, targetCalories-proteinCals-fatCals)
	carbs := carbCals / calsPerGramCarb

	return models.NutritionVector{
		Calories: math.Round(targetCalories),
		Protein:  math.Round(protein),
		Fat:      math.Round(fat),
		Carbs:    math.Round(carbs),
	}
}
