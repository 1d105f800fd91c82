package nutrition

import "testing"

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

/* ─── BMR ────────────────────────────────────────────────────────────── */

func TestCalculateBMR(t *testing.T) {
	cases := []struct {
		name   string
		sex    Sex
		weight float64
		height float64
		age    int
		want   int
	}{
		// 88.362 + 13.397*75 + 4.799*180 - 5.677*25 = 1815.032
		{"male reference", Male, 75, 180, 25, 1815},
		// 447.593 + 9.247*60 + 3.098*165 - 4.330*30 = 1383.683
		{"female reference", Female, 60, 165, 30, 1384},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculateBMR(tc.sex, tc.weight, tc.height, tc.age); got != tc.want {
				t.Errorf("CalculateBMR = %d, want %d", got, tc.want)
			}
		})
	}
}

/* ─── NEAT / EAT ─────────────────────────────────────────────────────── */

func TestCalculateNEAT(t *testing.T) {
	cases := []struct {
		steps  int
		weight float64
		want   int
	}{
		{10000, 80, 300},
		{0, 80, 0},
		{100000, 80, 3000}, // no cap on extreme step counts
	}
	for _, tc := range cases {
		if got := CalculateNEAT(tc.steps, tc.weight); got != tc.want {
			t.Errorf("CalculateNEAT(%d, %v) = %d, want %d", tc.steps, tc.weight, got, tc.want)
		}
	}
}

func TestCalculateEAT(t *testing.T) {
	cases := map[int]int{0: 0, 4: 229, 7: 400} // 4 sessions: 1600/7 = 228.57
	for sessions, want := range cases {
		if got := CalculateEAT(sessions); got != want {
			t.Errorf("CalculateEAT(%d) = %d, want %d", sessions, got, want)
		}
	}
}

/* ─── TDEE / target ──────────────────────────────────────────────────── */

func TestCalculateTDEE_DefaultSteps(t *testing.T) {
	// moderate -> 8750 steps -> NEAT round(246.09) = 246; (1815+246)/0.9 = 2290
	if got := CalculateTDEE(1815, Moderate, 75, 0, nil); got != 2290 {
		t.Errorf("CalculateTDEE = %d, want 2290", got)
	}
}

func TestCalculateTDEE_StepOverride(t *testing.T) {
	// 10000 steps at 75 kg -> NEAT 281; (1815+281+229)/0.9 = 2583.3
	if got := CalculateTDEE(1815, Moderate, 75, 4, intPtr(10000)); got != 2583 {
		t.Errorf("CalculateTDEE = %d, want 2583", got)
	}
}

func TestCalculateTargetCalories(t *testing.T) {
	cases := map[Goal]int{Bulk: 2390, Cut: 2190, Recomp: 2290}
	for goal, want := range cases {
		if got := CalculateTargetCalories(2290, goal); got != want {
			t.Errorf("CalculateTargetCalories(2290, %s) = %d, want %d", goal, got, want)
		}
	}
}

/* ─── Pillars ────────────────────────────────────────────────────────── */

func TestCalculatePillars_SumEqualsTDEE(t *testing.T) {
	levels := []ActivityLevel{Sedentary, Light, Moderate, Active, VeryActive}
	weights := []float64{48.5, 62, 75, 91.3, 130}
	steps := []*int{nil, intPtr(1), intPtr(7777), intPtr(25000)}

	for _, level := range levels {
		for _, w := range weights {
			for sessions := 0; sessions <= 7; sessions++ {
				for _, s := range steps {
					bmr := CalculateBMR(Male, w, 178, 33)
					tdee := CalculateTDEE(bmr, level, w, sessions, s)
					p := CalculatePillars(bmr, level, w, sessions, s)
					if p.Total() != tdee || p.BMR != bmr {
						t.Fatalf("level=%s weight=%v sessions=%d: pillars %+v total %d, want tdee %d bmr %d",
							level, w, sessions, p, p.Total(), tdee, bmr)
					}
				}
			}
		}
	}
}

func TestCalculatePillars_TEFIsRemainder(t *testing.T) {
	want := Pillars{BMR: 1815, NEAT: 246, EAT: 0, TEF: 229}
	if got := CalculatePillars(1815, Moderate, 75, 0, nil); got != want {
		t.Errorf("CalculatePillars = %+v, want %+v", got, want)
	}
}

func TestConstantLookups(t *testing.T) {
	if got := ActivityMultiplier(Moderate); got != 1.55 {
		t.Errorf("ActivityMultiplier(moderate) = %v, want 1.55", got)
	}
	if got := DefaultDailySteps(VeryActive); got != 15000 {
		t.Errorf("DefaultDailySteps(very_active) = %d, want 15000", got)
	}
	if got := GoalOffset(Cut); got != -100 {
		t.Errorf("GoalOffset(cut) = %d, want -100", got)
	}
	if got := DefaultDailySteps("couch"); got != 0 {
		t.Errorf("DefaultDailySteps(couch) = %d, want 0", got)
	}
}
