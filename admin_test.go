package main

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"lg/coach-go-api/nutrition"
)

func TestValidateMeals(t *testing.T) {
	catalog := nutrition.NewFoodCatalog([]nutrition.CustomFood{
		{ID: "yog-1", Name: "Greek yogurt", Per100g: nutrition.MacroProfile{Calories: 97, Protein: 9, Carbs: 3.9, Fat: 5}},
	})
	valid := []nutrition.Meal{
		{Slot: "breakfast", Items: []nutrition.MealItem{
			{Key: nutrition.Oats, Grams: 80},
			{CustomID: "yog-1", Grams: 150},
		}},
	}
	assert.NoError(t, validateMeals(valid, catalog))

	tests := []struct {
		name  string
		meals []nutrition.Meal
		want  string
	}{
		{"empty", nil, "at least one meal is required"},
		{"blank slot", []nutrition.Meal{{Slot: " ", Items: valid[0].Items}}, "meal 0: slot is required"},
		{"no items", []nutrition.Meal{{Slot: "lunch"}}, `meal "lunch" has no items`},
		{"unknown key", []nutrition.Meal{{Slot: "lunch", Items: []nutrition.MealItem{{Key: "pizza", Grams: 100}}}},
			`meal "lunch": unknown food "pizza"`},
		{"unknown custom", []nutrition.Meal{{Slot: "lunch", Items: []nutrition.MealItem{{CustomID: "gone", Grams: 100}}}},
			`meal "lunch": unknown food "gone"`},
		{"zero grams", []nutrition.Meal{{Slot: "lunch", Items: []nutrition.MealItem{{Key: nutrition.Rice, Grams: 0}}}},
			`meal "lunch": grams must be positive`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, validateMeals(tt.meals, catalog), tt.want)
		})
	}
}

func TestValidateCustomFood(t *testing.T) {
	ok := createCustomFoodRequest{Name: "Greek yogurt", Calories: 97, Protein: 9, Carbs: 3.9, Fat: 5}
	assert.NoError(t, validateCustomFood(ok))

	tests := map[string]func(r *createCustomFoodRequest){
		"blank name":       func(r *createCustomFoodRequest) { r.Name = "  " },
		"zero calories":    func(r *createCustomFoodRequest) { r.Calories = 0 },
		"too many kcal":    func(r *createCustomFoodRequest) { r.Calories = 901 },
		"negative fat":     func(r *createCustomFoodRequest) { r.Fat = -1 },
		"macros over 100g": func(r *createCustomFoodRequest) { r.Protein, r.Carbs, r.Fat = 50, 40, 20 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := ok
			mutate(&r)
			assert.Error(t, validateCustomFood(r))
		})
	}
}

func TestPutUserTraining_RejectsInvalidPlan(t *testing.T) {
	h := newTestHandler()
	router := gin.New()
	router.PUT("/api/admin/users/:id/training", h.putUserTraining)

	for _, d := range []string{"0:chest|0:back", "9:chest", "x:chest|0:back"} {
		t.Run(d, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPut, "/api/admin/users/7/training", map[string]string{"d": d, "ex": "4"})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w), "invalid training plan")
		})
	}
}

func TestPlansUsingFood(t *testing.T) {
	plans := []mealPlanRow{
		{UserID: 1, CustomMeals: []nutrition.Meal{
			{Slot: "breakfast", Items: []nutrition.MealItem{{Key: nutrition.Oats, Grams: 80}}},
			{Slot: "lunch", Items: []nutrition.MealItem{{CustomID: "yog-1", Grams: 200}}},
		}},
		{UserID: 2, CustomMeals: []nutrition.Meal{
			{Slot: "breakfast", Items: []nutrition.MealItem{{CustomID: "bar-7", Grams: 60}}},
		}},
		{UserID: 3, CustomMeals: []nutrition.Meal{
			{Slot: "dinner", Items: []nutrition.MealItem{{CustomID: "yog-1", Grams: 150}}},
		}},
	}

	assert.Equal(t, []int{1, 3}, plansUsingFood(plans, "yog-1"))
	assert.Equal(t, []int{2}, plansUsingFood(plans, "bar-7"))
	assert.Empty(t, plansUsingFood(plans, "unused"))
	assert.Empty(t, plansUsingFood(nil, "yog-1"))
}
