package nutrition

// activityMultipliers are the classic flat TDEE multipliers. TDEE itself is
// derived additively (see CalculateTDEE); these are kept for display next to
// the additive figure.
var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

// defaultDailySteps is the midpoint of each activity tier's step range.
var defaultDailySteps = map[ActivityLevel]int{
	Sedentary:  3500,  // < 5,000
	Light:      6250,  // 5,000 - 7,500
	Moderate:   8750,  // 7,500 - 10,000
	Active:     11250, // 10,000 - 12,500
	VeryActive: 15000, // > 12,500
}

const (
	// stepLengthKM assumes a 75 cm stride.
	stepLengthKM = 0.00075
	// kcalPerKMPerKG is the walking cost per km per kg of body weight.
	kcalPerKMPerKG = 0.5
	// kcalPerSession is the flat cost of one resistance-training session.
	kcalPerSession = 400
	// nonTEFShare is the fraction of TDEE covered by BMR+NEAT+EAT; TEF is the rest.
	nonTEFShare = 0.9

	// kcalPerKGBodyWeight converts an energy balance into kilograms.
	kcalPerKGBodyWeight = 7700

	// mealReferenceCalories is the daily target the base meal template is calibrated at.
	mealReferenceCalories = 2000
)

var goalOffsets = map[Goal]int{
	Bulk:   100,
	Cut:    -100,
	Recomp: 0,
}

const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// bodyweightRatios are grams per kg of body weight, used by BodyweightSplit.
var bodyweightRatios = struct {
	Protein map[Goal]float64
	Fat     map[Goal]float64
}{
	Protein: map[Goal]float64{Bulk: 2.2, Cut: 2.2, Recomp: 2.0},
	Fat:     map[Goal]float64{Bulk: 0.9, Cut: 0.8, Recomp: 0.85},
}

// ActivityMultiplier returns the flat multiplier for an activity level, 0 if unknown.
func ActivityMultiplier(a ActivityLevel) float64 {
	return activityMultipliers[a]
}

// DefaultDailySteps returns the step assumption for an activity level, 0 if unknown.
func DefaultDailySteps(a ActivityLevel) int {
	return defaultDailySteps[a]
}

// GoalOffset returns the calorie offset applied on top of TDEE for a goal.
func GoalOffset(g Goal) int {
	return goalOffsets[g]
}
