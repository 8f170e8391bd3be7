package models

// NutritionVector is the common nutritional shape produced and consumed
// throughout the system. Calories and the three macros are always present;
// fiber, sugar and sodium are optional extras that default to zero.
type NutritionVector struct {
	Calories float64 `bson:"calories" json:"calories"`
	Protein  float64 `bson:"protein" json:"protein"`
	Carbs    float64 `bson:"carbs" json:"carbs"`
	Fat      float64 `bson:"fat" json:"fat"`
	Fiber    float64 `bson:"fiber" json:"fiber"`
	Sugar    float64 `bson:"sugar" json:"sugar"`
	Sodium   float64 `bson:"sodium" json:"sodium"`
}

// Clamp replaces negative fields with zero so downstream arithmetic stays total.
func (v NutritionVector) Clamp() NutritionVector {
	for _, f := range []*float64{&v.Calories, &v.Protein, &v.Carbs, &v.Fat, &v.Fiber, &v.Sugar, &v.Sodium} {
		if *f < 0 {
			*f = 0
		}
	}
	return v
}

// EntrySource tags where a nutrition estimate came from.
type EntrySource string

const (
	SourceCache EntrySource = "cache"
	SourceLive  EntrySource = "live"
)

// FoodEntry is one logged food item within a daily log.
type FoodEntry struct {
	ItemName  string          `bson:"item_name" json:"item_name"`
	Nutrition NutritionVector `bson:"nutrition" json:"nutrition"`
	Timestamp string          `bson:"timestamp" json:"timestamp"`
	Source    EntrySource     `bson:"source" json:"source"`
}

// DailyLog holds the ordered food entries for one calendar date plus cached
// totals. Totals must always equal the aggregator's fold over Entries; every
// mutation path recomputes them before persisting.
type DailyLog struct {
	Date    string          `bson:"_id" json:"date"`
	Entries []FoodEntry     `bson:"entries" json:"entries"`
	Totals  NutritionVector `bson:"totals" json:"totals"`
}

// NewDailyLog returns the empty log used when a date has no record yet.
func NewDailyLog(date string) DailyLog {
	return DailyLog{Date: date, Entries: []FoodEntry{}}
}

// FoodEstimate is the provider's answer for one food description.
type FoodEstimate struct {
	FoodName  string          `json:"food_name"`
	Nutrition NutritionVector `json:"nutrition"`
}

// FoodCacheEntry is a memoized estimation result keyed by normalized input
// text. Entries are created on first successful estimation and never expire.
type FoodCacheEntry struct {
	NormalizedInput string          `bson:"_id" json:"normalized_input"`
	FoodName        string          `bson:"food_name" json:"food_name"`
	Nutrition       NutritionVector `bson:"nutrition" json:"nutrition"`
}

// HydrationLog tracks water intake for one calendar date.
type HydrationLog struct {
	Date    string  `bson:"_id" json:"date"`
	WaterML float64 `bson:"water_ml" json:"water_ml"`
}
