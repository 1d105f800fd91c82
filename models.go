package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/coach-go-api/nutrition"
)

const dateLayout = "2006-01-02"

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+dateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. NULL zeroes the time.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	Role      string     `json:"role" db:"role"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

const roleAdmin = "admin"

// profile maps to profiles. One row per user; quiz fields stay NULL until the
// quiz has been synced. target_auto=false marks target_calories as a manual
// override that formula recomputes must not touch.
type profile struct {
	UserID        int              `json:"user_id" db:"user_id"`
	FirstName     *string          `json:"first_name" db:"first_name"`
	LastName      *string          `json:"last_name" db:"last_name"`
	Sex           *string          `json:"sex" db:"sex"`
	Age           *int             `json:"age" db:"age"`
	HeightCM      *float64         `json:"height_cm" db:"height_cm"`
	WeightKG      *float64         `json:"weight_kg" db:"weight_kg"`
	ActivityLevel *string          `json:"activity_level" db:"activity_level"`
	Goal          *string          `json:"goal" db:"goal"`
	DailySteps    *int             `json:"daily_steps" db:"daily_steps"`
	TrainingData  *string          `json:"training_data" db:"training_data"`
	BMR           *int             `json:"bmr" db:"bmr"`
	TDEE          *int             `json:"tdee" db:"tdee"`
	TargetCal     *int             `json:"target_calories" db:"target_calories"`
	TargetAuto    bool             `json:"target_auto" db:"target_auto"`
	CustomMeals   []nutrition.Meal `json:"custom_meals" db:"custom_meals"`
	UpdatedAt     *time.Time       `json:"updated_at" db:"updated_at"`
}

// engineProfile converts the stored row to engine input. ok is false until
// every quiz field is present and valid.
func (p *profile) engineProfile() (nutrition.Profile, bool) {
	if p.Sex == nil || p.Age == nil || p.HeightCM == nil || p.WeightKG == nil ||
		p.ActivityLevel == nil || p.Goal == nil {
		return nutrition.Profile{}, false
	}
	np := nutrition.Profile{
		Sex:           nutrition.Sex(*p.Sex),
		Age:           *p.Age,
		Height:        *p.HeightCM,
		Weight:        *p.WeightKG,
		ActivityLevel: nutrition.ActivityLevel(*p.ActivityLevel),
		Goal:          nutrition.Goal(*p.Goal),
		DailySteps:    p.DailySteps,
	}
	if p.TrainingData != nil {
		np.Training = nutrition.ParseStoredTraining(*p.TrainingData)
	}
	if np.Validate() != nil {
		return nutrition.Profile{}, false
	}
	return np, true
}

// dailyEntry maps to daily_entries, unique per (user_id, date).
type dailyEntry struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	WeightKG  *float64   `json:"weight_kg"  db:"weight_kg"`
	Steps     *int       `json:"steps"      db:"steps"`
	Calories  *int       `json:"calories"   db:"calories"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

func (e dailyEntry) engineEntry() nutrition.DailyEntry {
	return nutrition.DailyEntry{Date: e.Date.Time, Weight: e.WeightKG, Steps: e.Steps, Calories: e.Calories}
}

func engineEntries(rows []dailyEntry) []nutrition.DailyEntry {
	out := make([]nutrition.DailyEntry, len(rows))
	for i, r := range rows {
		out[i] = r.engineEntry()
	}
	return out
}

// foodLog maps to food_logs. Exactly one of FoodKey and CustomFoodID is set;
// macros are computed at insert time and stored.
type foodLog struct {
	ID           int        `json:"id"             db:"id"`
	UserID       int        `json:"user_id"        db:"user_id"`
	Date         DateOnly   `json:"date"           db:"date"`
	FoodKey      *string    `json:"food_key"       db:"food_key"`
	CustomFoodID *string    `json:"custom_food_id" db:"custom_food_id"`
	FoodLabel    string     `json:"food_label"     db:"food_label"`
	Grams        float64    `json:"grams"          db:"grams"`
	Calories     int        `json:"calories"       db:"calories"`
	Protein      int        `json:"protein"        db:"protein"`
	Carbs        int        `json:"carbs"          db:"carbs"`
	Fat          int        `json:"fat"            db:"fat"`
	CreatedAt    *time.Time `json:"created_at"     db:"created_at"`
}

// customFood maps to custom_foods. Nutrients are per 100 g.
type customFood struct {
	ID        string     `json:"id"         db:"id"`
	Name      string     `json:"name"       db:"name"`
	Calories  float64    `json:"calories"   db:"calories"`
	Protein   float64    `json:"protein"    db:"protein"`
	Carbs     float64    `json:"carbs"      db:"carbs"`
	Fat       float64    `json:"fat"        db:"fat"`
	CreatedBy *int       `json:"created_by" db:"created_by"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

func (f customFood) engineFood() nutrition.CustomFood {
	return nutrition.CustomFood{
		ID:   f.ID,
		Name: f.Name,
		Per100g: nutrition.MacroProfile{
			Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat,
		},
	}
}

// adjustmentProposal maps to adjustment_proposals: a recommendation written by
// the weekly sweep, unique per (user_id, week_start).
type adjustmentProposal struct {
	ID                int        `json:"id"                  db:"id"`
	UserID            int        `json:"user_id"             db:"user_id"`
	WeekStart         DateOnly   `json:"week_start"          db:"week_start"`
	CurrentTarget     int        `json:"current_target"      db:"current_target"`
	NewTargetCalories int        `json:"new_target_calories" db:"new_target_calories"`
	Reason            string     `json:"reason"              db:"reason"`
	Status            string     `json:"status"              db:"status"`
	CreatedAt         *time.Time `json:"created_at"          db:"created_at"`
}

const (
	proposalPending   = "pending"
	proposalApplied   = "applied"
	proposalDismissed = "dismissed"
)

/* ─── Responses ──────────────────────────────────────────────────────── */

// mealView is one scaled or custom meal plus its realized macros.
type mealView struct {
	nutrition.Meal
	Macros nutrition.MacroTotals `json:"macros"`
}

// resultsBundle is everything the results page renders for one profile.
type resultsBundle struct {
	Result          nutrition.CalculationResult `json:"result"`
	Meals           []mealView                  `json:"meals"`
	CustomMeals     bool                        `json:"custom_meals"`
	Split           [7]nutrition.SplitDay       `json:"split"`
	Volume          *nutrition.TrainingVolume   `json:"volume"`
	Projection      []nutrition.ProjectionPoint `json:"projection"`
	ReverseDietStep int                         `json:"reverse_diet_step"`
}

// profileResponse is GET /api/profile and GET /api/admin/users/:id.
type profileResponse struct {
	Profile profile        `json:"profile"`
	Results *resultsBundle `json:"results"`
}

// entryDay is one day of the week-summary grid.
type entryDay struct {
	Date     DateOnly `json:"date"`
	WeightKG *float64 `json:"weight_kg"`
	Steps    *int     `json:"steps"`
	Calories *int     `json:"calories"`
	HasData  bool     `json:"has_data"`
}

type weekSummaryResponse struct {
	WeekStart DateOnly              `json:"week_start"`
	Days      []entryDay            `json:"days"`
	Averages  nutrition.WeekSummary `json:"averages"`
}

type foodLogDay struct {
	Date   string                `json:"date"`
	Items  []foodLog             `json:"items"`
	Totals nutrition.MacroTotals `json:"totals"`
	Target *int                  `json:"target_calories"`
}

type adjustmentResponse struct {
	Adjustment *nutrition.AdjustmentResult `json:"adjustment"`
	EnoughData bool                        `json:"enough_data"`
	Tips       []nutrition.Tip             `json:"tips"`
	Current    nutrition.WeekSummary       `json:"current_week"`
	Previous   nutrition.WeekSummary       `json:"previous_week"`
}

/* ─── Requests ───────────────────────────────────────────────────────── */

// quizRequest carries the quiz answers. Training arrives in the compact
// encoding used in result-page URLs (d="0:chest.back|3:quads", ex="8").
type quizRequest struct {
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Sex           string  `json:"sex"`
	Age           int     `json:"age"`
	HeightCM      float64 `json:"height_cm"`
	WeightKG      float64 `json:"weight_kg"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
	DailySteps    *int    `json:"daily_steps"`
	TrainingDays  string  `json:"d"`
	Exercises     string  `json:"ex"`
}

// patchProfileRequest is the body for PATCH /api/profile. Only non-nil fields
// are written.
type patchProfileRequest struct {
	FirstName     *string  `json:"first_name"`
	LastName      *string  `json:"last_name"`
	Sex           *string  `json:"sex"`
	Age           *int     `json:"age"`
	HeightCM      *float64 `json:"height_cm"`
	WeightKG      *float64 `json:"weight_kg"`
	ActivityLevel *string  `json:"activity_level"`
	Goal          *string  `json:"goal"`
	DailySteps    *int     `json:"daily_steps"`
	TrainingDays  *string  `json:"d"`
	Exercises     *string  `json:"ex"`
	TargetAuto    *bool    `json:"target_auto"`
}

type upsertEntryRequest struct {
	Date     string   `json:"date"`
	WeightKG *float64 `json:"weight_kg"`
	Steps    *int     `json:"steps"`
	Calories *int     `json:"calories"`
}

type createFoodLogRequest struct {
	Date         string  `json:"date"`
	FoodKey      string  `json:"food_key"`
	CustomFoodID string  `json:"custom_food_id"`
	Grams        float64 `json:"grams"`
}

type createCustomFoodRequest struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}
