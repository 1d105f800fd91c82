package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/coach-go-api/nutrition"
)

// paramUserID parses :id as a user ID, replying 400 when it is not a number.
func paramUserID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// respondProfile writes the profile and results bundle for p.
func (h *Handler) respondProfile(c *gin.Context, p profile) {
	resp, err := h.buildProfileResponse(c, p)
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}

/* ─── Users ──────────────────────────────────────────────────────────── */

// listUsers returns every account.
// GET /api/admin/users.
func (h *Handler) listUsers(c *gin.Context) {
	users, err := queryMany[user](c, h.db, "SELECT * FROM users ORDER BY id", pgx.NamedArgs{})
	if err != nil {
		h.storageError(c, err, "users not found")
		return
	}
	if users == nil {
		users = []user{}
	}
	c.JSON(http.StatusOK, users)
}

// getUserProfile returns one user's profile and results bundle.
// GET /api/admin/users/:id.
func (h *Handler) getUserProfile(c *gin.Context) {
	userID, ok := paramUserID(c)
	if !ok {
		return
	}
	p, err := h.loadProfile(c, userID)
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	h.respondProfile(c, p)
}

// putUserTarget stores a manual calorie target. It sticks until cleared with
// DELETE; quiz syncs and profile edits leave it alone.
// PUT /api/admin/users/:id/target. Body: { "target_calories": 2100 }.
func (h *Handler) putUserTarget(c *gin.Context) {
	userID, ok := paramUserID(c)
	if !ok {
		return
	}
	var body struct {
		TargetCalories int `json:"target_calories"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.TargetCalories <= 0 {
		apiError(c, http.StatusBadRequest, "target_calories must be positive")
		return
	}

	p, err := queryOne[profile](c, h.db,
		`UPDATE profiles SET target_calories = @target, target_auto = FALSE, updated_at = NOW()
		 WHERE user_id = @userID RETURNING *`,
		pgx.NamedArgs{"target": body.TargetCalories, "userID": userID})
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	h.log.Info().Int("user_id", userID).Int("target", body.TargetCalories).Msg("target override set")
	h.respondProfile(c, p)
}

// deleteUserTarget clears a manual target; the formula target takes over.
// DELETE /api/admin/users/:id/target.
func (h *Handler) deleteUserTarget(c *gin.Context) {
	userID, ok := paramUserID(c)
	if !ok {
		return
	}

	tag, err := h.db.Exec(c,
		`UPDATE profiles SET target_auto = TRUE, target_calories = NULL, updated_at = NOW()
		 WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	if tag.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	p, err := h.refreshComputed(c, h.db, userID)
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	h.log.Info().Int("user_id", userID).Msg("target override cleared")
	h.respondProfile(c, p)
}

/* ─── Meal plans ─────────────────────────────────────────────────────── */

// validateMeals checks that every item resolves in the catalog with a
// positive weight.
func validateMeals(meals []nutrition.Meal, catalog nutrition.FoodCatalog) error {
	if len(meals) == 0 {
		return fmt.Errorf("at least one meal is required")
	}
	for i, m := range meals {
		if strings.TrimSpace(m.Slot) == "" {
			return fmt.Errorf("meal %d: slot is required", i)
		}
		if len(m.Items) == 0 {
			return fmt.Errorf("meal %q has no items", m.Slot)
		}
		for _, item := range m.Items {
			if _, ok := catalog.Resolve(item); !ok {
				name := string(item.Key)
				if item.CustomID != "" {
					name = item.CustomID
				}
				return fmt.Errorf("meal %q: unknown food %q", m.Slot, name)
			}
			if item.Grams <= 0 {
				return fmt.Errorf("meal %q: grams must be positive", m.Slot)
			}
		}
	}
	return nil
}

// putUserMeals replaces the user's meal plan with a custom one. Items name a
// standard food key or a custom food ID.
// PUT /api/admin/users/:id/meals. Body: { "meals": [ { "slot", "items": [...] } ] }.
func (h *Handler) putUserMeals(c *gin.Context) {
	userID, ok := paramUserID(c)
	if !ok {
		return
	}
	var body struct {
		Meals []nutrition.Meal `json:"meals"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	catalog, err := h.loadCatalog(c)
	if err != nil {
		h.storageError(c, err, "custom foods not found")
		return
	}
	if err := validateMeals(body.Meals, catalog); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	// The pool uses the simple protocol, so jsonb goes over as text.
	raw, err := json.Marshal(body.Meals)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid meals")
		return
	}
	p, err := queryOne[profile](c, h.db,
		`UPDATE profiles SET custom_meals = @meals::jsonb, updated_at = NOW()
		 WHERE user_id = @userID RETURNING *`,
		pgx.NamedArgs{"meals": string(raw), "userID": userID})
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	h.respondProfile(c, p)
}

// deleteUserMeals drops the custom plan; results fall back to the scaled template.
// DELETE /api/admin/users/:id/meals.
func (h *Handler) deleteUserMeals(c *gin.Context) {
	userID, ok := paramUserID(c)
	if !ok {
		return
	}
	p, err := queryOne[profile](c, h.db,
		`UPDATE profiles SET custom_meals = NULL, updated_at = NOW()
		 WHERE user_id = @userID RETURNING *`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	h.respondProfile(c, p)
}

// putUserTraining replaces the training plan and re-derives energy values.
// PUT /api/admin/users/:id/training. Body: { "d": "0:chest.back|3:quads", "ex": "8" }.
// Empty d and ex clear the plan.
func (h *Handler) putUserTraining(c *gin.Context) {
	userID, ok := paramUserID(c)
	if !ok {
		return
	}
	var body struct {
		D  string `json:"d"`
		Ex string `json:"ex"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	stored, err := trainingColumn(body.D, body.Ex)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	tag, err := h.db.Exec(c,
		`UPDATE profiles SET training_data = @trainingData, updated_at = NOW()
		 WHERE user_id = @userID`,
		pgx.NamedArgs{"trainingData": stored, "userID": userID})
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	if tag.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	p, err := h.refreshComputed(c, h.db, userID)
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	h.respondProfile(c, p)
}

/* ─── Custom foods ───────────────────────────────────────────────────── */

// listCustomFoods returns every custom food ordered by name.
// GET /api/admin/custom-foods.
func (h *Handler) listCustomFoods(c *gin.Context) {
	foods, err := queryMany[customFood](c, h.db, "SELECT * FROM custom_foods ORDER BY name", pgx.NamedArgs{})
	if err != nil {
		h.storageError(c, err, "custom foods not found")
		return
	}
	if foods == nil {
		foods = []customFood{}
	}
	c.JSON(http.StatusOK, foods)
}

func validateCustomFood(body createCustomFoodRequest) error {
	switch {
	case strings.TrimSpace(body.Name) == "":
		return fmt.Errorf("name is required")
	case body.Calories <= 0 || body.Calories > 900:
		return fmt.Errorf("calories per 100 g must be between 0 and 900")
	case body.Protein < 0 || body.Carbs < 0 || body.Fat < 0:
		return fmt.Errorf("macros must not be negative")
	case body.Protein+body.Carbs+body.Fat > 100:
		return fmt.Errorf("macros per 100 g must not exceed 100 g")
	}
	return nil
}

// createCustomFood adds a per-100 g food usable in meal plans and food logs.
// POST /api/admin/custom-foods.
func (h *Handler) createCustomFood(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createCustomFoodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateCustomFood(body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	food, err := queryOne[customFood](c, h.db,
		`INSERT INTO custom_foods (name, calories, protein, carbs, fat, created_by)
		 VALUES (@name, @calories, @protein, @carbs, @fat, @createdBy)
		 RETURNING *`,
		pgx.NamedArgs{
			"name": strings.TrimSpace(body.Name), "calories": body.Calories,
			"protein": body.Protein, "carbs": body.Carbs, "fat": body.Fat,
			"createdBy": userID,
		})
	if err != nil {
		h.storageError(c, err, "custom food not found")
		return
	}
	c.JSON(http.StatusCreated, food)
}

var errFoodInUse = errors.New("custom food is used by a saved meal plan")

type mealPlanRow struct {
	UserID      int              `db:"user_id"`
	CustomMeals []nutrition.Meal `db:"custom_meals"`
}

// plansUsingFood returns the users whose saved meal plan has an item pointing
// at the custom food.
func plansUsingFood(plans []mealPlanRow, foodID string) []int {
	var users []int
	for _, p := range plans {
		if nutrition.ReferencesCustomFood(p.CustomMeals, foodID) {
			users = append(users, p.UserID)
		}
	}
	return users
}

// deleteCustomFood removes a custom food. Logged portions keep their stored
// label and macros. A food still used by a saved meal plan is refused with 409
// and the users holding those plans.
// DELETE /api/admin/custom-foods/:id.
func (h *Handler) deleteCustomFood(c *gin.Context) {
	foodID := c.Param("id")

	var users []int
	err := pgx.BeginFunc(c, h.db, func(tx pgx.Tx) error {
		// FOR UPDATE holds plan saves until the delete commits.
		plans, err := queryMany[mealPlanRow](c, tx,
			`SELECT user_id, custom_meals FROM profiles
			 WHERE custom_meals IS NOT NULL FOR UPDATE`,
			pgx.NamedArgs{})
		if err != nil {
			return err
		}
		if users = plansUsingFood(plans, foodID); len(users) > 0 {
			return errFoodInUse
		}

		result, err := tx.Exec(c,
			"DELETE FROM custom_foods WHERE id::text = @id",
			pgx.NamedArgs{"id": foodID})
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if errors.Is(err, errFoodInUse) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "user_ids": users})
		return
	}
	if err != nil {
		h.storageError(c, err, "custom food not found")
		return
	}
	c.Status(http.StatusNoContent)
}
