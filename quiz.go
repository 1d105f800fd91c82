package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lg/coach-go-api/nutrition"
)

// profileFromQuiz turns quiz answers into a validated engine profile. Training
// is optional, but when either d or ex is sent both must decode to a valid plan.
func profileFromQuiz(req quizRequest) (nutrition.Profile, error) {
	p := nutrition.Profile{
		Sex:           nutrition.Sex(strings.ToLower(req.Sex)),
		Age:           req.Age,
		Height:        req.HeightCM,
		Weight:        req.WeightKG,
		ActivityLevel: nutrition.ActivityLevel(req.ActivityLevel),
		Goal:          nutrition.Goal(req.Goal),
		DailySteps:    req.DailySteps,
	}
	if req.TrainingDays != "" || req.Exercises != "" {
		p.Training = nutrition.ParseTraining(req.TrainingDays, req.Exercises)
		if p.Training == nil {
			return nutrition.Profile{}, errors.New("invalid training plan: d must look like 0:chest.back|3:quads and ex must be a positive integer")
		}
	}
	if err := p.Validate(); err != nil {
		return nutrition.Profile{}, err
	}
	return p, nil
}

// buildBundle assembles the results page for p. A non-nil target replaces
// the formula target; custom meals replace the scaled template.
func (h *Handler) buildBundle(p nutrition.Profile, target *int, custom []nutrition.Meal, catalog nutrition.FoodCatalog) resultsBundle {
	result := h.calc.Compute(p)
	if target != nil {
		result = h.calc.WithTargetOverride(result, p, *target)
	}

	meals := nutrition.ScaleMeals(result.TargetCalories)
	if len(custom) > 0 {
		meals = custom
	}
	views := make([]mealView, len(meals))
	for i, m := range meals {
		views[i] = mealView{Meal: m, Macros: catalog.MealMacros(m)}
	}

	var days []nutrition.DayPlan
	if p.Training != nil {
		days = p.Training.Days
	}

	return resultsBundle{
		Result:          result,
		Meals:           views,
		CustomMeals:     len(custom) > 0,
		Split:           nutrition.GenerateWeeklySplit(days),
		Volume:          nutrition.AnalyzeTrainingVolume(p.Training),
		Projection:      nutrition.ProjectWeight(p.Weight, result.TargetCalories, result.TDEE, p.Goal, nutrition.DefaultProjectionWeeks),
		ReverseDietStep: nutrition.ReverseDietStep(p.Goal),
	}
}

// loadCatalog returns the food catalog with every custom food.
func (h *Handler) loadCatalog(ctx context.Context) (nutrition.FoodCatalog, error) {
	rows, err := queryMany[customFood](ctx, h.db, "SELECT * FROM custom_foods ORDER BY name", pgx.NamedArgs{})
	if err != nil {
		return nutrition.FoodCatalog{}, err
	}
	custom := make([]nutrition.CustomFood, len(rows))
	for i, r := range rows {
		custom[i] = r.engineFood()
	}
	return nutrition.NewFoodCatalog(custom), nil
}

// computeQuiz returns the results bundle for quiz answers without storing anything.
// POST /api/quiz/compute (public).
func (h *Handler) computeQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := profileFromQuiz(req)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, h.buildBundle(p, nil, nil, nutrition.NewFoodCatalog(nil)))
}

// stageQuiz validates quiz answers and holds them under a fresh token until the
// user signs in and calls /api/profile/sync-quiz.
// POST /api/quiz/pending (public).
func (h *Handler) stageQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := profileFromQuiz(req)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	token := uuid.NewString()
	staged := stagedQuiz{Quiz: req, StagedAt: h.clock()}
	if err := h.staging.Put(c, token, staged, h.stagingTTL); err != nil {
		_ = c.Error(err)
		h.log.Error().Err(err).Msg("stage quiz")
		apiError(c, http.StatusInternalServerError, "failed to stage quiz")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"expires_in": int(h.stagingTTL.Seconds()),
		"results":    h.buildBundle(p, nil, nil, nutrition.NewFoodCatalog(nil)),
	})
}

// listStandardFoods returns the standard food list with per-100 g values.
// GET /api/foods (public).
func (h *Handler) listStandardFoods(c *gin.Context) {
	c.JSON(http.StatusOK, nutrition.StandardFoods())
}
