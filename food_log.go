package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/coach-go-api/nutrition"
)

// getFoodLogs returns one day's logged foods with totals against the target.
// GET /api/food-logs?date=YYYY-MM-DD (defaults to today, UTC).
func (h *Handler) getFoodLogs(c *gin.Context) {
	userID := c.GetInt("user_id")

	date := h.today().Format(dateLayout)
	if s := c.Query("date"); s != "" {
		if _, ok := parseDateParam(s); !ok {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = s
	}

	items, err := queryMany[foodLog](c, h.db,
		`SELECT * FROM food_logs
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at ASC, id ASC`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		h.storageError(c, err, "food log not found")
		return
	}
	if items == nil {
		items = []foodLog{}
	}

	var totals nutrition.MacroTotals
	for _, it := range items {
		totals.Calories += it.Calories
		totals.Protein += it.Protein
		totals.Carbs += it.Carbs
		totals.Fat += it.Fat
	}

	var target *int
	if p, err := h.loadProfile(c, userID); err == nil {
		target = p.TargetCal
	}

	c.JSON(http.StatusOK, foodLogDay{Date: date, Items: items, Totals: totals, Target: target})
}

// createFoodLog logs a portion of a standard or custom food. Macros are
// computed from the food's per-100 g profile and stored with the row.
// POST /api/food-logs. Defaults date to today if omitted.
func (h *Handler) createFoodLog(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createFoodLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = h.today().Format(dateLayout)
	} else if _, ok := parseDateParam(body.Date); !ok {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.Grams <= 0 {
		apiError(c, http.StatusBadRequest, "grams must be positive")
		return
	}
	if (body.FoodKey == "") == (body.CustomFoodID == "") {
		apiError(c, http.StatusBadRequest, "exactly one of food_key and custom_food_id is required")
		return
	}

	var food nutrition.FoodRef
	var foodKey, customID *string
	if body.FoodKey != "" {
		key := nutrition.FoodKey(body.FoodKey)
		if !key.Valid() {
			apiError(c, http.StatusBadRequest, "unknown food_key")
			return
		}
		food = nutrition.StandardFood{Key: key}
		foodKey = &body.FoodKey
	} else {
		cf, err := queryOne[customFood](c, h.db,
			"SELECT * FROM custom_foods WHERE id::text = @id",
			pgx.NamedArgs{"id": body.CustomFoodID})
		if err != nil {
			h.storageError(c, err, "custom food not found")
			return
		}
		food = cf.engineFood()
		customID = &body.CustomFoodID
	}

	m := nutrition.ComputeMealMacros([]nutrition.Portion{{Food: food, Grams: body.Grams}})

	item, err := queryOne[foodLog](c, h.db,
		`INSERT INTO food_logs (user_id, date, food_key, custom_food_id, food_label, grams, calories, protein, carbs, fat)
		 VALUES (@userID, @date, @foodKey, @customFoodID, @label, @grams, @calories, @protein, @carbs, @fat)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date,
			"foodKey": foodKey, "customFoodID": customID, "label": food.Label(),
			"grams": body.Grams, "calories": m.Calories, "protein": m.Protein,
			"carbs": m.Carbs, "fat": m.Fat,
		})
	if err != nil {
		h.storageError(c, err, "food log not found")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// deleteFoodLog removes a logged food. Returns 204 on success.
// DELETE /api/food-logs/:id.
func (h *Handler) deleteFoodLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM food_logs WHERE id::text = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		h.storageError(c, err, "item not found")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "item not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// foodDayTotals is one row of the per-day GROUP BY over food_logs.
type foodDayTotals struct {
	Date     DateOnly `json:"date"     db:"date"`
	Calories int      `json:"calories" db:"calories"`
	Protein  int      `json:"protein"  db:"protein"`
	Carbs    int      `json:"carbs"    db:"carbs"`
	Fat      int      `json:"fat"      db:"fat"`
}

type progressStats struct {
	DaysTracked  int `json:"days_tracked"`
	DaysOnTarget int `json:"days_on_target"`
	AvgCalories  int `json:"avg_calories"`
	AvgProtein   int `json:"avg_protein"`
}

// getFoodProgress returns per-day totals and aggregate stats for a date range.
// GET /api/food-logs/progress?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Only days with logged items are returned (no gap-filling; the frontend handles that).
func (h *Handler) getFoodProgress(c *gin.Context) {
	userID := c.GetInt("user_id")

	start, ok := parseDateParam(c.Query("start"))
	if !ok {
		apiError(c, http.StatusBadRequest, "start is required, expected YYYY-MM-DD")
		return
	}
	end, ok := parseDateParam(c.Query("end"))
	if !ok {
		apiError(c, http.StatusBadRequest, "end is required, expected YYYY-MM-DD")
		return
	}
	if start.After(end) {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	days, err := queryMany[foodDayTotals](c, h.db,
		`SELECT
			date,
			COALESCE(SUM(calories), 0)::int AS calories,
			COALESCE(SUM(protein),  0)::int AS protein,
			COALESCE(SUM(carbs),    0)::int AS carbs,
			COALESCE(SUM(fat),      0)::int AS fat
		 FROM food_logs
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 GROUP BY date
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start.Format(dateLayout), "end": end.Format(dateLayout)})
	if err != nil {
		h.storageError(c, err, "progress not found")
		return
	}
	if days == nil {
		days = []foodDayTotals{}
	}

	var target *int
	if p, err := h.loadProfile(c, userID); err == nil {
		target = p.TargetCal
	}

	c.JSON(http.StatusOK, gin.H{"days": days, "stats": summarizeProgress(days, target)})
}

// summarizeProgress averages tracked days. A day is on target when its
// calories do not exceed the target; with no target none are.
func summarizeProgress(days []foodDayTotals, target *int) progressStats {
	var stats progressStats
	for _, d := range days {
		stats.DaysTracked++
		if target != nil && d.Calories <= *target {
			stats.DaysOnTarget++
		}
		stats.AvgCalories += d.Calories
		stats.AvgProtein += d.Protein
	}
	if stats.DaysTracked > 0 {
		stats.AvgCalories /= stats.DaysTracked
		stats.AvgProtein /= stats.DaysTracked
	}
	return stats
}
