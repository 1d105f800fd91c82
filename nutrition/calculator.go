package nutrition

// Calculator runs the full quiz computation with one macro policy.
type Calculator struct {
	Macros MacroPolicy
}

// NewCalculator returns a Calculator using policy, or FixedSplit when nil.
func NewCalculator(policy MacroPolicy) Calculator {
	if policy == nil {
		policy = FixedSplit{}
	}
	return Calculator{Macros: policy}
}

func (c Calculator) policy() MacroPolicy {
	if c.Macros == nil {
		return FixedSplit{}
	}
	return c.Macros
}

// Compute derives BMR, TDEE, target, pillars and macros from a validated
// profile. Sessions per week is the number of training days.
func (c Calculator) Compute(p Profile) CalculationResult {
	sessions := p.Training.SessionsPerWeek()
	bmr := CalculateBMR(p.Sex, p.Weight, p.Height, p.Age)
	tdee := CalculateTDEE(bmr, p.ActivityLevel, p.Weight, sessions, p.DailySteps)
	target := CalculateTargetCalories(tdee, p.Goal)
	split := c.policy().Split(target, p.Weight, p.Goal)

	return CalculationResult{
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: target,
		Pillars:        CalculatePillars(bmr, p.ActivityLevel, p.Weight, sessions, p.DailySteps),
		Macros:         split.Macros,
		MacroGrams:     split.MacroGrams,
	}
}

// WithTargetOverride returns a copy of r with a stored target in place of the
// formula target and macros recomputed for it. r is left untouched.
func (c Calculator) WithTargetOverride(r CalculationResult, p Profile, target int) CalculationResult {
	out := r
	out.TargetCalories = target
	split := c.policy().Split(target, p.Weight, p.Goal)
	out.Macros = split.Macros
	out.MacroGrams = split.MacroGrams
	return out
}
