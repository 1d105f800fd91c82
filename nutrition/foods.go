package nutrition

import (
	"math"
	"sort"
)

// FoodKey identifies one of the standard foods used by the base meal template.
type FoodKey string

const (
	Oats          FoodKey = "oats"
	WholeEggs     FoodKey = "whole_eggs"
	Banana        FoodKey = "banana"
	ChickenBreast FoodKey = "chicken_breast"
	Rice          FoodKey = "rice"
	Vegetables    FoodKey = "vegetables"
	CreamOfRice   FoodKey = "cream_of_rice"
	WheyShake     FoodKey = "whey_shake"
	Milk          FoodKey = "milk"
	Raspberries   FoodKey = "raspberries"
	RedMeat       FoodKey = "red_meat"
	SweetPotato   FoodKey = "sweet_potato"
	GreenSalad    FoodKey = "green_salad"
)

// MacroProfile is a nutrient profile per 100 g.
type MacroProfile struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// standardFoods holds per-100 g values for the standard food list (cooked
// weights for rice and meats, dry weights for oats and cream of rice).
var standardFoods = map[FoodKey]MacroProfile{
	Oats:          {Calories: 389, Protein: 16.9, Carbs: 66.3, Fat: 6.9},
	WholeEggs:     {Calories: 143, Protein: 12.6, Carbs: 0.7, Fat: 9.5},
	Banana:        {Calories: 89, Protein: 1.1, Carbs: 22.8, Fat: 0.3},
	ChickenBreast: {Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6},
	Rice:          {Calories: 130, Protein: 2.7, Carbs: 28.2, Fat: 0.3},
	Vegetables:    {Calories: 35, Protein: 2.0, Carbs: 7.0, Fat: 0.3},
	CreamOfRice:   {Calories: 370, Protein: 6.0, Carbs: 82.0, Fat: 0.5},
	WheyShake:     {Calories: 400, Protein: 80, Carbs: 8, Fat: 6},
	Milk:          {Calories: 46, Protein: 3.4, Carbs: 4.8, Fat: 1.6},
	Raspberries:   {Calories: 52, Protein: 1.2, Carbs: 11.9, Fat: 0.7},
	RedMeat:       {Calories: 137, Protein: 21, Carbs: 0, Fat: 5.0},
	SweetPotato:   {Calories: 86, Protein: 1.6, Carbs: 20.1, Fat: 0.1},
	GreenSalad:    {Calories: 15, Protein: 1.4, Carbs: 2.9, Fat: 0.2},
}

func (k FoodKey) Valid() bool {
	_, ok := standardFoods[k]
	return ok
}

// StandardFoodEntry pairs a standard key with its per-100 g profile.
type StandardFoodEntry struct {
	Key     FoodKey      `json:"key"`
	Per100g MacroProfile `json:"per_100g"`
}

// StandardFoods lists the standard foods ordered by key.
func StandardFoods() []StandardFoodEntry {
	out := make([]StandardFoodEntry, 0, len(standardFoods))
	for k, p := range standardFoods {
		out = append(out, StandardFoodEntry{Key: k, Per100g: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// FoodRef is either a StandardFood or a CustomFood. The unexported method
// closes the set.
type FoodRef interface {
	Label() string
	Profile() MacroProfile
	isFoodRef()
}

// StandardFood references an entry of the built-in food table.
type StandardFood struct {
	Key FoodKey
}

func (f StandardFood) Label() string         { return string(f.Key) }
func (f StandardFood) Profile() MacroProfile { return standardFoods[f.Key] }
func (StandardFood) isFoodRef()              {}

// CustomFood is a coach-defined food with its own per-100 g profile.
type CustomFood struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Per100g MacroProfile `json:"per_100g"`
}

func (f CustomFood) Label() string         { return f.Name }
func (f CustomFood) Profile() MacroProfile { return f.Per100g }
func (CustomFood) isFoodRef()              {}

// FoodCatalog resolves stored meal items into FoodRefs.
type FoodCatalog struct {
	Custom map[string]CustomFood
}

// NewFoodCatalog indexes custom foods by ID.
func NewFoodCatalog(custom []CustomFood) FoodCatalog {
	c := FoodCatalog{Custom: make(map[string]CustomFood, len(custom))}
	for _, f := range custom {
		c.Custom[f.ID] = f
	}
	return c
}

// Resolve returns the food an item points at. An item names either a standard
// key or a custom food ID; ok is false when neither resolves.
func (c FoodCatalog) Resolve(item MealItem) (FoodRef, bool) {
	if item.CustomID != "" {
		f, ok := c.Custom[item.CustomID]
		return f, ok
	}
	if item.Key.Valid() {
		return StandardFood{Key: item.Key}, true
	}
	return nil, false
}

// Portion is a resolved food with a quantity in grams.
type Portion struct {
	Food  FoodRef
	Grams float64
}

// MacroTotals are realized nutrients for a set of portions.
type MacroTotals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// ComputeMealMacros sums each portion's profile scaled by grams/100 and rounds
// every nutrient once, after summing.
func ComputeMealMacros(portions []Portion) MacroTotals {
	var cal, p, c, f float64
	for _, portion := range portions {
		prof := portion.Food.Profile()
		ratio := portion.Grams / 100
		cal += prof.Calories * ratio
		p += prof.Protein * ratio
		c += prof.Carbs * ratio
		f += prof.Fat * ratio
	}
	return MacroTotals{
		Calories: int(math.Round(cal)),
		Protein:  int(math.Round(p)),
		Carbs:    int(math.Round(c)),
		Fat:      int(math.Round(f)),
	}
}
