package nutrition

import (
	"fmt"
	"math"
)

// MacroSplit is the output of a MacroPolicy: percentages of target calories
// and the matching gram amounts.
type MacroSplit struct {
	Macros     Macros `json:"macros"`
	MacroGrams Macros `json:"macro_grams"`
}

// MacroPolicy turns a target calorie figure into a macro split. One policy is
// chosen when the Calculator is built and used for every computation.
type MacroPolicy interface {
	Name() string
	Split(targetCalories int, weight float64, goal Goal) MacroSplit
}

// FixedSplit is the production policy: 25% protein, 50% carbs, 25% fat,
// independent of weight and goal.
type FixedSplit struct{}

func (FixedSplit) Name() string { return "fixed" }

func (FixedSplit) Split(targetCalories int, _ float64, _ Goal) MacroSplit {
	const protein, carbs, fat = 25, 50, 25
	t := float64(targetCalories)
	return MacroSplit{
		Macros: Macros{Protein: protein, Carbs: carbs, Fat: fat},
		MacroGrams: Macros{
			Protein: int(math.Round(t * protein / 100 / kcalPerGramProtein)),
			Carbs:   int(math.Round(t * carbs / 100 / kcalPerGramCarbs)),
			Fat:     int(math.Round(t * fat / 100 / kcalPerGramFat)),
		},
	}
}

// BodyweightSplit sets protein and fat in grams per kg of body weight and
// gives carbs whatever calories remain, floored at zero. Percentages are
// derived from the gram calories; carbs absorb the rounding remainder so the
// three always sum to 100.
type BodyweightSplit struct{}

func (BodyweightSplit) Name() string { return "bodyweight" }

func (BodyweightSplit) Split(targetCalories int, weight float64, goal Goal) MacroSplit {
	proteinG := int(math.Round(weight * bodyweightRatios.Protein[goal]))
	fatG := int(math.Round(weight * bodyweightRatios.Fat[goal]))

	remaining := targetCalories - proteinG*kcalPerGramProtein - fatG*kcalPerGramFat
	carbsG := 0
	if remaining > 0 {
		carbsG = int(math.Round(float64(remaining) / kcalPerGramCarbs))
	}

	total := float64(proteinG*kcalPerGramProtein + carbsG*kcalPerGramCarbs + fatG*kcalPerGramFat)
	if total <= 0 {
		return MacroSplit{}
	}
	proteinPct := int(math.Round(float64(proteinG*kcalPerGramProtein) / total * 100))
	fatPct := int(math.Round(float64(fatG*kcalPerGramFat) / total * 100))
	carbsPct := 100 - proteinPct - fatPct
	if carbsPct < 0 {
		fatPct += carbsPct
		carbsPct = 0
	}

	return MacroSplit{
		Macros:     Macros{Protein: proteinPct, Carbs: carbsPct, Fat: fatPct},
		MacroGrams: Macros{Protein: proteinG, Carbs: carbsG, Fat: fatG},
	}
}

// CalculateMacros applies the production FixedSplit policy.
func CalculateMacros(targetCalories int, weight float64, goal Goal) MacroSplit {
	return FixedSplit{}.Split(targetCalories, weight, goal)
}

// PolicyByName resolves a configured policy name. An empty name selects FixedSplit.
func PolicyByName(name string) (MacroPolicy, error) {
	switch name {
	case "", "fixed":
		return FixedSplit{}, nil
	case "bodyweight":
		return BodyweightSplit{}, nil
	default:
		return nil, fmt.Errorf("unknown macro policy %q (want fixed or bodyweight)", name)
	}
}
