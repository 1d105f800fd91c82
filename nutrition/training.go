package nutrition

import "math"

// SplitDay is one weekday of the generated weekly split.
type SplitDay struct {
	Day     int           `json:"day"`
	Muscles []MuscleGroup `json:"muscles"`
	IsRest  bool          `json:"is_rest"`
}

// GenerateWeeklySplit expands a plan into all seven weekdays, Monday first.
// Days absent from the plan are rest days with an empty muscle list.
func GenerateWeeklySplit(days []DayPlan) [7]SplitDay {
	byIndex := make(map[int][]MuscleGroup, len(days))
	for _, d := range days {
		byIndex[d.DayIndex] = d.Muscles
	}

	var split [7]SplitDay
	for i := range split {
		muscles, ok := byIndex[i]
		if !ok {
			split[i] = SplitDay{Day: i, Muscles: []MuscleGroup{}, IsRest: true}
			continue
		}
		split[i] = SplitDay{Day: i, Muscles: append([]MuscleGroup(nil), muscles...)}
	}
	return split
}

type VolumeStatus string

const (
	VolumeLow     VolumeStatus = "low"
	VolumeOptimal VolumeStatus = "optimal"
	VolumeHigh    VolumeStatus = "high"
)

const (
	minSetsPerMuscle = 10
	maxSetsPerMuscle = 20
)

// TrainingVolume summarizes how much weekly work a plan gives each muscle.
type TrainingVolume struct {
	WeeklyVolume  int           `json:"weekly_volume"`
	SetsPerMuscle int           `json:"sets_per_muscle"`
	Muscles       []MuscleGroup `json:"muscles"`
	Status        VolumeStatus  `json:"status"`
}

// AnalyzeTrainingVolume treats each exercise as one working set: weekly
// volume is exercises per session times sessions, spread evenly over the
// distinct muscles trained. Returns nil for a nil plan.
func AnalyzeTrainingVolume(td *TrainingData) *TrainingVolume {
	if td == nil {
		return nil
	}
	seen := make(map[MuscleGroup]bool)
	muscles := []MuscleGroup{}
	for _, d := range td.Days {
		for _, m := range d.Muscles {
			if !seen[m] {
				seen[m] = true
				muscles = append(muscles, m)
			}
		}
	}

	v := &TrainingVolume{
		WeeklyVolume: td.ExercisesPerSession * td.SessionsPerWeek(),
		Muscles:      muscles,
	}
	if len(muscles) > 0 {
		v.SetsPerMuscle = int(math.Round(float64(v.WeeklyVolume) / float64(len(muscles))))
	}
	switch {
	case v.SetsPerMuscle < minSetsPerMuscle:
		v.Status = VolumeLow
	case v.SetsPerMuscle > maxSetsPerMuscle:
		v.Status = VolumeHigh
	default:
		v.Status = VolumeOptimal
	}
	return v
}
