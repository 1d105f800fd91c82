// Package nutrition computes calorie and macro targets, meal portions, weekly
// training splits, and weight-trend calorie adjustments from quiz inputs.
//
// Every function here is pure: no I/O, no clocks except where a reference
// date is passed in (or documented as "today, UTC"), no shared state.
package nutrition

import (
	"errors"
	"fmt"
)

type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

func (s Sex) Valid() bool { return s == Male || s == Female }

// Goal is the directional body-composition objective.
type Goal string

const (
	Bulk   Goal = "bulk"
	Cut    Goal = "cut"
	Recomp Goal = "recomp"
)

func (g Goal) Valid() bool {
	_, ok := goalOffsets[g]
	return ok
}

type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

func (a ActivityLevel) Valid() bool {
	_, ok := defaultDailySteps[a]
	return ok
}

type MuscleGroup string

const (
	Chest      MuscleGroup = "chest"
	Back       MuscleGroup = "back"
	Shoulders  MuscleGroup = "shoulders"
	Biceps     MuscleGroup = "biceps"
	Triceps    MuscleGroup = "triceps"
	Quads      MuscleGroup = "quads"
	Hamstrings MuscleGroup = "hamstrings"
	Glutes     MuscleGroup = "glutes"
	Calves     MuscleGroup = "calves"
	Abs        MuscleGroup = "abs"
)

// MuscleGroups lists every recognized muscle group in display order.
var MuscleGroups = []MuscleGroup{
	Chest, Back, Shoulders, Biceps, Triceps, Quads, Hamstrings, Glutes, Calves, Abs,
}

func (m MuscleGroup) Valid() bool {
	for _, g := range MuscleGroups {
		if g == m {
			return true
		}
	}
	return false
}

// DayPlan is one training day. DayIndex 0 is Monday, 6 is Sunday.
type DayPlan struct {
	DayIndex int           `json:"day_index"`
	Muscles  []MuscleGroup `json:"muscles"`
}

// TrainingData is a user's weekly training plan. ExercisesPerSession and
// SetsPerSession are volume hints only; energy math uses len(Days).
type TrainingData struct {
	Days                []DayPlan `json:"days"`
	ExercisesPerSession int       `json:"exercises_per_session"`
	SetsPerSession      int       `json:"sets_per_session,omitempty"`
}

// SessionsPerWeek returns the number of training days, 0 for a nil plan.
func (t *TrainingData) SessionsPerWeek() int {
	if t == nil {
		return 0
	}
	return len(t.Days)
}

// Validate checks the plan invariants: 1..7 days, unique indices in [0,6],
// non-empty muscle sets, positive exercise count.
func (t TrainingData) Validate() error {
	if len(t.Days) < 1 || len(t.Days) > 7 {
		return fmt.Errorf("training plan must have 1 to 7 days, got %d", len(t.Days))
	}
	seen := make(map[int]bool, len(t.Days))
	for _, d := range t.Days {
		if d.DayIndex < 0 || d.DayIndex > 6 {
			return fmt.Errorf("day index %d out of range", d.DayIndex)
		}
		if seen[d.DayIndex] {
			return fmt.Errorf("duplicate day index %d", d.DayIndex)
		}
		seen[d.DayIndex] = true
		if len(d.Muscles) == 0 {
			return fmt.Errorf("day %d has no muscle groups", d.DayIndex)
		}
	}
	if t.ExercisesPerSession <= 0 {
		return errors.New("exercises per session must be positive")
	}
	return nil
}

// Profile holds the quiz inputs the engine reads. Height is in centimeters,
// weight in kilograms.
type Profile struct {
	Sex           Sex           `json:"sex"`
	Age           int           `json:"age"`
	Height        float64       `json:"height"`
	Weight        float64       `json:"weight"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Goal          Goal          `json:"goal"`
	DailySteps    *int          `json:"daily_steps,omitempty"`
	Training      *TrainingData `json:"training,omitempty"`
}

// Validate reports the first missing or non-positive quiz field. Callers run
// it before computing; the calculators themselves never validate.
func (p Profile) Validate() error {
	switch {
	case !p.Sex.Valid():
		return errors.New("sex must be one of: male, female")
	case p.Age <= 0:
		return errors.New("age must be positive")
	case p.Height <= 0:
		return errors.New("height must be positive")
	case p.Weight <= 0:
		return errors.New("weight must be positive")
	case !p.ActivityLevel.Valid():
		return errors.New("activity_level must be one of: sedentary, light, moderate, active, very_active")
	case !p.Goal.Valid():
		return errors.New("goal must be one of: bulk, cut, recomp")
	case p.DailySteps != nil && *p.DailySteps <= 0:
		return errors.New("daily_steps must be positive when set")
	}
	if p.Training != nil {
		if err := p.Training.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Pillars is the four-way decomposition of TDEE. The fields always sum to
// the TDEE they were computed with.
type Pillars struct {
	BMR  int `json:"bmr"`
	NEAT int `json:"neat"`
	EAT  int `json:"eat"`
	TEF  int `json:"tef"`
}

func (p Pillars) Total() int { return p.BMR + p.NEAT + p.EAT + p.TEF }

// Macros holds a protein/carbs/fat triple, either percentages or grams.
type Macros struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

// CalculationResult is an immutable snapshot produced by Calculator.Compute.
type CalculationResult struct {
	BMR            int     `json:"bmr"`
	TDEE           int     `json:"tdee"`
	TargetCalories int     `json:"target_calories"`
	Pillars        Pillars `json:"pillars"`
	Macros         Macros  `json:"macros"`
	MacroGrams     Macros  `json:"macro_grams"`
}
