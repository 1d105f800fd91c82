package nutrition

import "time"

// DailyEntry is one day of self-reported tracking data. Any measurement may be
// missing.
type DailyEntry struct {
	Date     time.Time `json:"date"`
	Weight   *float64  `json:"weight,omitempty"`
	Steps    *int      `json:"steps,omitempty"`
	Calories *int      `json:"calories,omitempty"`
}

type AdjustmentReason string

const (
	ReasonBulkNoGain AdjustmentReason = "adjust_bulk_no_gain"
	ReasonCutNoLoss  AdjustmentReason = "adjust_cut_no_loss"
)

// AdjustmentResult is a recommendation. Nothing is persisted until a caller
// applies it.
type AdjustmentResult struct {
	ShouldAdjust      bool             `json:"should_adjust"`
	NewTargetCalories int              `json:"new_target_calories"`
	Reason            AdjustmentReason `json:"reason"`
}

const (
	minWeightReadings = 3
	// bulkMinGainKG and cutMinLossKG are the week-over-week change thresholds.
	bulkMinGainKG = 0.1
	cutMinLossKG  = -0.2
	adjustStep    = 100
)

// SplitWeightWindows partitions entries into the calendar week containing ref
// and the week before it. Entries outside both weeks are ignored.
func SplitWeightWindows(entries []DailyEntry, ref time.Time) (current, previous []DailyEntry) {
	mon, sun := WeekBounds(ref)
	prevMon, prevSun := PreviousWeekBounds(ref)
	for _, e := range entries {
		switch {
		case withinDates(e.Date, mon, sun):
			current = append(current, e)
		case withinDates(e.Date, prevMon, prevSun):
			previous = append(previous, e)
		}
	}
	return current, previous
}

// AverageWeight is the mean of the non-nil weights, or nil when fewer than
// three readings exist.
func AverageWeight(entries []DailyEntry) *float64 {
	var sum float64
	n := 0
	for _, e := range entries {
		if e.Weight != nil {
			sum += *e.Weight
			n++
		}
	}
	if n < minWeightReadings {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// HasEnoughWeightData reports whether both windows around ref have enough
// weight readings for a recommendation. A nil adjustment with enough data
// means the goal is on track.
func HasEnoughWeightData(entries []DailyEntry, ref time.Time) bool {
	current, previous := SplitWeightWindows(entries, ref)
	return AverageWeight(current) != nil && AverageWeight(previous) != nil
}

// ComputeCalorieAdjustment evaluates the weight trend relative to today (UTC).
func ComputeCalorieAdjustment(goal Goal, currentTarget, bmr int, entries []DailyEntry) *AdjustmentResult {
	return ComputeCalorieAdjustmentAt(time.Now(), goal, currentTarget, bmr, entries)
}

// ComputeCalorieAdjustmentAt compares this week's average weight with last
// week's and nudges the target by a fixed 100 kcal when the goal is off track.
// It returns nil for insufficient data, for recomp, and when on track. A cut
// recommendation never goes below bmr.
func ComputeCalorieAdjustmentAt(ref time.Time, goal Goal, currentTarget, bmr int, entries []DailyEntry) *AdjustmentResult {
	current, previous := SplitWeightWindows(entries, ref)
	currentAvg := AverageWeight(current)
	previousAvg := AverageWeight(previous)
	if currentAvg == nil || previousAvg == nil {
		return nil
	}

	change := *currentAvg - *previousAvg
	switch {
	case goal == Bulk && change < bulkMinGainKG:
		return &AdjustmentResult{
			ShouldAdjust:      true,
			NewTargetCalories: currentTarget + adjustStep,
			Reason:            ReasonBulkNoGain,
		}
	case goal == Cut && change > cutMinLossKG:
		return &AdjustmentResult{
			ShouldAdjust:      true,
			NewTargetCalories: max(bmr, currentTarget-adjustStep),
			Reason:            ReasonCutNoLoss,
		}
	}
	return nil
}
