package models

// Defaults applied wherever a settings or profile field is missing. These are
// the single source of truth; no component carries its own fallback literals.
const (
	DefaultProvider         = "gemini"
	DefaultDailyLimit       = 50
	DefaultWarningThreshold = 0.8

	DefaultWeightKg    = 70
	DefaultHeightCm    = 175
	DefaultAge         = 25
	DefaultGender      = GenderMale
	DefaultActivity    = ActivityModerate
	DefaultGoal        = GoalMaintenance
	DefaultWaterGoalML = 3000
)

// Gender is the biological-sex input to the BMR formula.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ActivityLevel scales BMR into total daily energy expenditure.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
	ActivityAthlete   ActivityLevel = "athlete"
)

// GoalType adjusts the calorie target relative to maintenance.
type GoalType string

const (
	GoalCut         GoalType = "cut"
	GoalMaintenance GoalType = "maintenance"
	GoalBulk        GoalType = "bulk"
)

// Profile is the body profile feeding the goal engine. It is read-only input;
// the engine never mutates it.
type Profile struct {
	WeightKg      float64       `bson:"weight" json:"weight"`
	HeightCm      float64       `bson:"height" json:"height"`
	Age           float64       `bson:"age" json:"age"`
	Gender        Gender        `bson:"gender" json:"gender"`
	ActivityLevel ActivityLevel `bson:"activity_level" json:"activityLevel"`
	Goal          GoalType      `bson:"goal" json:"goal"`
}

// Settings is the single per-installation configuration record. It is the
// source of truth for both the usage tracker and the goal engine inputs.
type Settings struct {
	ID               string  `bson:"_id" json:"-"`
	Provider         string  `bson:"provider" json:"provider"`
	APIKey           string  `bson:"api_key" json:"apiKey"`
	DailyLimit       int     `bson:"daily_limit" json:"dailyLimit"`
	WarningThreshold float64 `bson:"warning_threshold" json:"warningThreshold"`
	Profile          Profile `bson:"profile" json:"profile"`
}

// SettingsKey is the singleton key under which Settings is stored.
const SettingsKey = "config"

// DefaultSettings returns a fully populated settings record.
func DefaultSettings() Settings {
	return Settings{
		ID:               SettingsKey,
		Provider:         DefaultProvider,
		DailyLimit:       DefaultDailyLimit,
		WarningThreshold: DefaultWarningThreshold,
		Profile: Profile{
			WeightKg:      DefaultWeightKg,
			HeightCm:      DefaultHeightCm,
			Age:           DefaultAge,
			Gender:        DefaultGender,
			ActivityLevel: DefaultActivity,
			Goal:          DefaultGoal,
		},
	}
}

// WithDefaults fills any zero-valued settings field so read paths never see
// a partially configured record.
func (s Settings) WithDefaults() Settings {
	if s.ID == "" {
		s.ID = SettingsKey
	}
	if s.Provider == "" {
		s.Provider = DefaultProvider
	}
	if s.DailyLimit <= 0 {
		s.DailyLimit = DefaultDailyLimit
	}
	if s.WarningThreshold <= 0 || s.WarningThreshold > 1 {
		s.WarningThreshold = DefaultWarningThreshold
	}
	return s
}
