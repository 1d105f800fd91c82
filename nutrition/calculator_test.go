package nutrition

import "testing"

func referenceProfile() Profile {
	return Profile{
		Sex:           Male,
		Age:           25,
		Height:        180,
		Weight:        75,
		ActivityLevel: Moderate,
		Goal:          Cut,
	}
}

func TestCalculator_Compute(t *testing.T) {
	r := NewCalculator(nil).Compute(referenceProfile())

	if r.BMR != 1815 || r.TDEE != 2290 || r.TargetCalories != 2190 {
		t.Errorf("BMR/TDEE/target = %d/%d/%d, want 1815/2290/2190", r.BMR, r.TDEE, r.TargetCalories)
	}
	if r.Pillars.Total() != r.TDEE {
		t.Errorf("pillars sum to %d, want TDEE %d", r.Pillars.Total(), r.TDEE)
	}
	if want := (Macros{Protein: 25, Carbs: 50, Fat: 25}); r.Macros != want {
		t.Errorf("Macros = %+v, want %+v", r.Macros, want)
	}
	// 2190*0.25/4 = 136.9, 2190*0.5/4 = 273.75, 2190*0.25/9 = 60.8
	if want := (Macros{Protein: 137, Carbs: 274, Fat: 61}); r.MacroGrams != want {
		t.Errorf("MacroGrams = %+v, want %+v", r.MacroGrams, want)
	}
}

func TestCalculator_ComputeWithTraining(t *testing.T) {
	p := referenceProfile()
	p.Training = ParseTraining("0:chest|1:back|3:quads|4:shoulders", "6")
	if p.Training == nil {
		t.Fatal("ParseTraining returned nil")
	}

	r := Calculator{}.Compute(p)
	if r.Pillars.EAT != 229 {
		t.Errorf("EAT = %d, want 229", r.Pillars.EAT)
	}
	if r.TDEE != 2544 { // (1815+246+229)/0.9
		t.Errorf("TDEE = %d, want 2544", r.TDEE)
	}
	if r.Pillars.Total() != r.TDEE {
		t.Errorf("pillars sum to %d, want TDEE %d", r.Pillars.Total(), r.TDEE)
	}
}

func TestCalculator_BodyweightPolicy(t *testing.T) {
	r := NewCalculator(BodyweightSplit{}).Compute(referenceProfile())
	if r.MacroGrams.Protein != 165 { // 75 * 2.2
		t.Errorf("protein = %d g, want 165", r.MacroGrams.Protein)
	}
	if sum := r.Macros.Protein + r.Macros.Carbs + r.Macros.Fat; sum != 100 {
		t.Errorf("percentages sum to %d, want 100", sum)
	}
}

func TestCalculator_WithTargetOverride(t *testing.T) {
	c := NewCalculator(FixedSplit{})
	p := referenceProfile()
	r := c.Compute(p)

	o := c.WithTargetOverride(r, p, 2000)
	if o.TargetCalories != 2000 {
		t.Errorf("TargetCalories = %d, want 2000", o.TargetCalories)
	}
	if want := (Macros{Protein: 125, Carbs: 250, Fat: 56}); o.MacroGrams != want {
		t.Errorf("MacroGrams = %+v, want %+v", o.MacroGrams, want)
	}
	if o.TDEE != r.TDEE || o.Pillars != r.Pillars {
		t.Errorf("override changed TDEE or pillars: %+v vs %+v", o, r)
	}

	// the original snapshot is unchanged
	if r.TargetCalories != 2190 || r.MacroGrams.Protein != 137 {
		t.Errorf("original result mutated: target %d protein %d", r.TargetCalories, r.MacroGrams.Protein)
	}
}

func TestProfile_Validate(t *testing.T) {
	if err := referenceProfile().Validate(); err != nil {
		t.Fatalf("reference profile invalid: %v", err)
	}

	cases := map[string]func(p *Profile){
		"bad sex":         func(p *Profile) { p.Sex = "other" },
		"zero age":        func(p *Profile) { p.Age = 0 },
		"negative height": func(p *Profile) { p.Height = -1 },
		"zero weight":     func(p *Profile) { p.Weight = 0 },
		"bad activity":    func(p *Profile) { p.ActivityLevel = "athlete" },
		"bad goal":        func(p *Profile) { p.Goal = "maintain" },
		"zero steps":      func(p *Profile) { p.DailySteps = intPtr(0) },
		"bad training":    func(p *Profile) { p.Training = &TrainingData{} },
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			p := referenceProfile()
			mut(&p)
			if err := p.Validate(); err == nil {
				t.Errorf("expected an error for %s", name)
			}
		})
	}
}
