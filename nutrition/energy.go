package nutrition

import "math"

// CalculateBMR uses the revised Harris-Benedict equation. Weight is in kg,
// height in cm, age in years.
func CalculateBMR(sex Sex, weight, height float64, age int) int {
	if sex == Male {
		return int(math.Round(88.362 + 13.397*weight + 4.799*height - 5.677*float64(age)))
	}
	return int(math.Round(447.593 + 9.247*weight + 3.098*height - 4.330*float64(age)))
}

// CalculateNEAT converts daily steps to kilometers and applies the walking
// cost per kg. High step counts are not capped.
func CalculateNEAT(dailySteps int, weight float64) int {
	return int(math.Round(float64(dailySteps) * stepLengthKM * kcalPerKMPerKG * weight))
}

// CalculateEAT returns the daily average cost of training sessions.
func CalculateEAT(sessionsPerWeek int) int {
	return int(math.Round(kcalPerSession * float64(sessionsPerWeek) / 7))
}

// stepsFor resolves an explicit step count or falls back to the activity tier.
func stepsFor(activity ActivityLevel, dailySteps *int) int {
	if dailySteps != nil {
		return *dailySteps
	}
	return defaultDailySteps[activity]
}

// CalculateTDEE derives TDEE additively: BMR+NEAT+EAT is taken as 90% of the
// total, the remaining 10% being the thermic effect of food.
func CalculateTDEE(bmr int, activity ActivityLevel, weight float64, sessionsPerWeek int, dailySteps *int) int {
	neat := CalculateNEAT(stepsFor(activity, dailySteps), weight)
	eat := CalculateEAT(sessionsPerWeek)
	return int(math.Round(float64(bmr+neat+eat) / nonTEFShare))
}

// CalculateTargetCalories applies the goal offset (bulk +100, cut -100).
func CalculateTargetCalories(tdee int, goal Goal) int {
	return tdee + goalOffsets[goal]
}

// CalculatePillars recomputes NEAT, EAT and TDEE the same way CalculateTDEE
// does and assigns TEF the remainder, so the four pillars sum to TDEE exactly.
func CalculatePillars(bmr int, activity ActivityLevel, weight float64, sessionsPerWeek int, dailySteps *int) Pillars {
	neat := CalculateNEAT(stepsFor(activity, dailySteps), weight)
	eat := CalculateEAT(sessionsPerWeek)
	tdee := CalculateTDEE(bmr, activity, weight, sessionsPerWeek, dailySteps)
	return Pillars{
		BMR:  bmr,
		NEAT: neat,
		EAT:  eat,
		TEF:  tdee - bmr - neat - eat,
	}
}
