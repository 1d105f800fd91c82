package nutrition

import (
	"math"
	"time"
)

// WeekSummary holds per-metric averages, each rounded to 0.1 and nil when no
// entry carried that metric.
type WeekSummary struct {
	AvgWeight   *float64 `json:"avg_weight"`
	AvgSteps    *float64 `json:"avg_steps"`
	AvgCalories *float64 `json:"avg_calories"`
	Days        int      `json:"days"`
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// SummarizeWeek averages whatever each entry reported.
func SummarizeWeek(entries []DailyEntry) WeekSummary {
	var ws, ss, cs float64
	var wn, sn, cn int
	for _, e := range entries {
		if e.Weight != nil {
			ws += *e.Weight
			wn++
		}
		if e.Steps != nil {
			ss += float64(*e.Steps)
			sn++
		}
		if e.Calories != nil {
			cs += float64(*e.Calories)
			cn++
		}
	}
	avg := func(sum float64, n int) *float64 {
		if n == 0 {
			return nil
		}
		v := round1(sum / float64(n))
		return &v
	}
	return WeekSummary{
		AvgWeight:   avg(ws, wn),
		AvgSteps:    avg(ss, sn),
		AvgCalories: avg(cs, cn),
		Days:        len(entries),
	}
}

// ProjectionPoint is the expected weight after Week weeks.
type ProjectionPoint struct {
	Week   int     `json:"week"`
	Weight float64 `json:"weight"`
}

// DefaultProjectionWeeks is the horizon shown on the results page.
const DefaultProjectionWeeks = 12

// ProjectWeight extrapolates a linear trend from the daily energy balance:
// (target - tdee) * 7 / 7700 kg per week, zero for recomp. It returns weeks+1
// points starting at week 0.
func ProjectWeight(currentWeight float64, targetCalories, tdee int, goal Goal, weeks int) []ProjectionPoint {
	if weeks <= 0 {
		weeks = DefaultProjectionWeeks
	}
	weekly := 0.0
	if goal != Recomp {
		weekly = float64(targetCalories-tdee) * 7 / kcalPerKGBodyWeight
	}
	points := make([]ProjectionPoint, weeks+1)
	for i := range points {
		points[i] = ProjectionPoint{Week: i, Weight: round1(currentWeight + weekly*float64(i))}
	}
	return points
}

// ReverseDietStep is the weekly calorie change suggested when leaving a phase:
// up after a cut, down otherwise.
func ReverseDietStep(goal Goal) int {
	if goal == Cut {
		return adjustStep
	}
	return -adjustStep
}

type TipKey string

const (
	TipNeedData     TipKey = "reco_need_data"
	TipCutReduce    TipKey = "reco_cut_reduce"
	TipCutGood      TipKey = "reco_cut_good"
	TipBulkIncrease TipKey = "reco_bulk_increase"
	TipBulkGood     TipKey = "reco_bulk_good"
	TipStepsLow     TipKey = "reco_steps_low"
	TipStepsGood    TipKey = "reco_steps_good"
)

const (
	stepGoal         = 10000
	minEntriesForTip = 3
)

// Tip is a coaching hint keyed for translation. Steps is set on step tips.
type Tip struct {
	Key   TipKey `json:"key"`
	Steps *int   `json:"steps,omitempty"`
}

// Tips derives coaching hints for the week containing ref. Fewer than three
// entries this week yields a single need-data tip. Goal tips use the plain
// weekly weight averages, without the three-reading floor the adjustment uses.
func Tips(goal Goal, entries []DailyEntry, ref time.Time) []Tip {
	current, previous := SplitWeightWindows(entries, ref)
	if len(current) < minEntriesForTip {
		return []Tip{{Key: TipNeedData}}
	}

	cur := SummarizeWeek(current)
	prev := SummarizeWeek(previous)
	tips := []Tip{}

	if cur.AvgWeight != nil && prev.AvgWeight != nil {
		change := rawAverageWeight(current) - rawAverageWeight(previous)
		switch goal {
		case Cut:
			if change > cutMinLossKG {
				tips = append(tips, Tip{Key: TipCutReduce})
			} else {
				tips = append(tips, Tip{Key: TipCutGood})
			}
		case Bulk:
			if change < bulkMinGainKG {
				tips = append(tips, Tip{Key: TipBulkIncrease})
			} else {
				tips = append(tips, Tip{Key: TipBulkGood})
			}
		}
	}

	if cur.AvgSteps != nil {
		steps := int(math.Round(*cur.AvgSteps))
		key := TipStepsGood
		if *cur.AvgSteps < stepGoal {
			key = TipStepsLow
		}
		tips = append(tips, Tip{Key: key, Steps: &steps})
	}
	return tips
}

func rawAverageWeight(entries []DailyEntry) float64 {
	var sum float64
	n := 0
	for _, e := range entries {
		if e.Weight != nil {
			sum += *e.Weight
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
