package nutrition

import "math"

// MealItem is one line of a meal: a standard food key or a custom food ID,
// plus grams. Label is an optional display override.
type MealItem struct {
	Key      FoodKey `json:"key,omitempty"`
	CustomID string  `json:"custom_id,omitempty"`
	Label    string  `json:"label,omitempty"`
	Grams    int     `json:"grams"`
}

// Meal is a named slot (breakfast, lunch, preworkout, dinner) of items.
type Meal struct {
	Slot  string     `json:"slot"`
	Items []MealItem `json:"items"`
}

// ReferencesCustomFood reports whether any item in meals points at the custom
// food id.
func ReferencesCustomFood(meals []Meal, id string) bool {
	for _, m := range meals {
		for _, item := range m.Items {
			if item.CustomID == id {
				return true
			}
		}
	}
	return false
}

// baseMeals is calibrated at mealReferenceCalories.
var baseMeals = []Meal{
	{Slot: "breakfast", Items: []MealItem{
		{Key: Oats, Grams: 80},
		{Key: WholeEggs, Grams: 100},
		{Key: Banana, Grams: 120},
	}},
	{Slot: "lunch", Items: []MealItem{
		{Key: ChickenBreast, Grams: 150},
		{Key: Rice, Grams: 180},
		{Key: Vegetables, Grams: 150},
	}},
	{Slot: "preworkout", Items: []MealItem{
		{Key: CreamOfRice, Grams: 80},
		{Key: WheyShake, Grams: 30},
		{Key: Milk, Grams: 200},
		{Key: Raspberries, Grams: 50},
	}},
	{Slot: "dinner", Items: []MealItem{
		{Key: RedMeat, Grams: 150},
		{Key: SweetPotato, Grams: 200},
		{Key: GreenSalad, Grams: 100},
	}},
}

// BaseMeals returns a copy of the reference template.
func BaseMeals() []Meal {
	return ScaleMeals(mealReferenceCalories)
}

// ScaleMeals rescales every item of the reference template by
// targetCalories/2000, rounding each item on its own. Portions are guidance,
// not a macro-exact plan.
func ScaleMeals(targetCalories int) []Meal {
	ratio := float64(targetCalories) / mealReferenceCalories
	out := make([]Meal, len(baseMeals))
	for i, meal := range baseMeals {
		items := make([]MealItem, len(meal.Items))
		for j, item := range meal.Items {
			items[j] = MealItem{
				Key:   item.Key,
				Grams: int(math.Round(float64(item.Grams) * ratio)),
			}
		}
		out[i] = Meal{Slot: meal.Slot, Items: items}
	}
	return out
}

// MealMacros resolves a meal's items against the catalog and returns its
// realized macros. Items that do not resolve are skipped.
func (c FoodCatalog) MealMacros(m Meal) MacroTotals {
	portions := make([]Portion, 0, len(m.Items))
	for _, item := range m.Items {
		if f, ok := c.Resolve(item); ok {
			portions = append(portions, Portion{Food: f, Grams: float64(item.Grams)})
		}
	}
	return ComputeMealMacros(portions)
}
