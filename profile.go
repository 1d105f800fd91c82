package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/coach-go-api/nutrition"
)

/* ─── Shared profile helpers ─────────────────────────────────────────── */

func (h *Handler) loadProfile(ctx context.Context, userID int) (profile, error) {
	return queryOne[profile](ctx, h.db,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

// refreshComputed re-derives bmr and tdee from the stored quiz fields and,
// while target_auto holds, the target as well. A manual target is never
// touched. Profiles with incomplete quiz fields are returned unchanged.
func (h *Handler) refreshComputed(ctx context.Context, db querier, userID int) (profile, error) {
	p, err := queryOne[profile](ctx, db,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return profile{}, err
	}
	np, ok := p.engineProfile()
	if !ok {
		return p, nil
	}
	r := h.calc.Compute(np)
	return queryOne[profile](ctx, db, `
		UPDATE profiles
		SET bmr = @bmr,
		    tdee = @tdee,
		    target_calories = CASE WHEN target_auto THEN @target ELSE target_calories END,
		    updated_at = NOW()
		WHERE user_id = @userID
		RETURNING *`,
		pgx.NamedArgs{"bmr": r.BMR, "tdee": r.TDEE, "target": r.TargetCalories, "userID": userID})
}

// buildProfileResponse attaches the results bundle when the quiz is complete.
// A manual target is applied as an override on top of the formula result.
func (h *Handler) buildProfileResponse(ctx context.Context, p profile) (profileResponse, error) {
	resp := profileResponse{Profile: p}
	np, ok := p.engineProfile()
	if !ok {
		return resp, nil
	}

	catalog := nutrition.NewFoodCatalog(nil)
	if len(p.CustomMeals) > 0 {
		var err error
		if catalog, err = h.loadCatalog(ctx); err != nil {
			return profileResponse{}, err
		}
	}

	var override *int
	if !p.TargetAuto && p.TargetCal != nil {
		override = p.TargetCal
	}
	bundle := h.buildBundle(np, override, p.CustomMeals, catalog)
	resp.Results = &bundle
	return resp, nil
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getProfile returns the caller's profile with the current results bundle.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(c, userID)
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	resp, err := h.buildProfileResponse(c, p)
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// validatePatch rejects enum values and numbers the engine cannot use, so a bad
// PATCH fails loudly instead of silently disabling every future recompute.
func validatePatch(body patchProfileRequest) error {
	switch {
	case body.Sex != nil && !nutrition.Sex(*body.Sex).Valid():
		return errors.New("sex must be one of: male, female")
	case body.ActivityLevel != nil && !nutrition.ActivityLevel(*body.ActivityLevel).Valid():
		return errors.New("activity_level must be one of: sedentary, light, moderate, active, very_active")
	case body.Goal != nil && !nutrition.Goal(*body.Goal).Valid():
		return errors.New("goal must be one of: bulk, cut, recomp")
	case body.Age != nil && *body.Age <= 0:
		return errors.New("age must be positive")
	case body.HeightCM != nil && *body.HeightCM <= 0:
		return errors.New("height_cm must be positive")
	case body.WeightKG != nil && *body.WeightKG <= 0:
		return errors.New("weight_kg must be positive")
	case body.DailySteps != nil && *body.DailySteps <= 0:
		return errors.New("daily_steps must be positive")
	case (body.TrainingDays == nil) != (body.Exercises == nil):
		return errors.New("d and ex must be sent together")
	}
	return nil
}

// trainingColumn maps compact training fields to the stored JSON. Two empty
// strings clear the plan (nil); anything else must parse into a valid plan,
// so a stored plan never makes the profile unreadable.
func trainingColumn(d, ex string) (*string, error) {
	if d == "" && ex == "" {
		return nil, nil
	}
	td := nutrition.ParseTraining(d, ex)
	if td == nil {
		return nil, errors.New("invalid training plan: d must look like 0:chest.back|3:quads and ex must be a positive integer")
	}
	if err := td.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training plan: %w", err)
	}
	stored := td.StorageJSON()
	return &stored, nil
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. Uses pointer fields in the request body to distinguish
// "not provided" from zero. bmr/tdee are always re-derived afterwards; the
// target follows only while target_auto is true.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validatePatch(body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	// Build SET clause dynamically — only update fields the client actually sent
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}

	set := func(column, name string, value any) {
		setClauses = append(setClauses, column+" = @"+name)
		args[name] = value
	}
	if body.FirstName != nil {
		set("first_name", "firstName", *body.FirstName)
	}
	if body.LastName != nil {
		set("last_name", "lastName", *body.LastName)
	}
	if body.Sex != nil {
		set("sex", "sex", *body.Sex)
	}
	if body.Age != nil {
		set("age", "age", *body.Age)
	}
	if body.HeightCM != nil {
		set("height_cm", "heightCM", *body.HeightCM)
	}
	if body.WeightKG != nil {
		set("weight_kg", "weightKG", *body.WeightKG)
	}
	if body.ActivityLevel != nil {
		set("activity_level", "activityLevel", *body.ActivityLevel)
	}
	if body.Goal != nil {
		set("goal", "goal", *body.Goal)
	}
	if body.DailySteps != nil {
		set("daily_steps", "dailySteps", *body.DailySteps)
	}
	if body.TrainingDays != nil {
		stored, err := trainingColumn(*body.TrainingDays, *body.Exercises)
		if err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		set("training_data", "trainingData", stored)
	}
	if body.TargetAuto != nil {
		set("target_auto", "targetAuto", *body.TargetAuto)
	}

	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	query := "UPDATE profiles SET " +
		strings.Join(setClauses, ", ") +
		", updated_at = NOW() WHERE user_id = @userID RETURNING *"

	if _, err := queryOne[profile](c, h.db, query, args); err != nil {
		h.storageError(c, err, "profile not found")
		return
	}

	p, err := h.refreshComputed(c, h.db, userID)
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	resp, err := h.buildProfileResponse(c, p)
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// syncQuiz copies a staged quiz into the caller's profile and drops the staged
// entry. A manual target survives the sync.
// POST /api/profile/sync-quiz.
func (h *Handler) syncQuiz(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Token == "" {
		apiError(c, http.StatusBadRequest, "token is required")
		return
	}

	staged, err := h.staging.Get(c, body.Token)
	if errors.Is(err, errStagingNotFound) {
		apiError(c, http.StatusNotFound, "quiz not found or expired")
		return
	}
	if err != nil {
		_ = c.Error(err)
		h.log.Error().Err(err).Msg("load staged quiz")
		apiError(c, http.StatusInternalServerError, "failed to load quiz")
		return
	}

	np, err := profileFromQuiz(staged.Quiz)
	if err != nil {
		apiError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	var trainingData *string
	if np.Training != nil {
		stored := np.Training.StorageJSON()
		trainingData = &stored
	}
	r := h.calc.Compute(np)

	q := staged.Quiz
	p, err := queryOne[profile](c, h.db, `
		INSERT INTO profiles (user_id, first_name, last_name, sex, age, height_cm, weight_kg,
		                      activity_level, goal, daily_steps, training_data, bmr, tdee,
		                      target_calories, target_auto, updated_at)
		VALUES (@userID, @firstName, @lastName, @sex, @age, @heightCM, @weightKG,
		        @activityLevel, @goal, @dailySteps, @trainingData, @bmr, @tdee,
		        @target, TRUE, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
		  first_name = EXCLUDED.first_name,
		  last_name = EXCLUDED.last_name,
		  sex = EXCLUDED.sex,
		  age = EXCLUDED.age,
		  height_cm = EXCLUDED.height_cm,
		  weight_kg = EXCLUDED.weight_kg,
		  activity_level = EXCLUDED.activity_level,
		  goal = EXCLUDED.goal,
		  daily_steps = EXCLUDED.daily_steps,
		  training_data = EXCLUDED.training_data,
		  bmr = EXCLUDED.bmr,
		  tdee = EXCLUDED.tdee,
		  target_calories = CASE WHEN profiles.target_auto THEN EXCLUDED.target_calories
		                         ELSE profiles.target_calories END,
		  updated_at = NOW()
		RETURNING *`,
		pgx.NamedArgs{
			"userID":        userID,
			"firstName":     q.FirstName,
			"lastName":      q.LastName,
			"sex":           string(np.Sex),
			"age":           np.Age,
			"heightCM":      np.Height,
			"weightKG":      np.Weight,
			"activityLevel": string(np.ActivityLevel),
			"goal":          string(np.Goal),
			"dailySteps":    np.DailySteps,
			"trainingData":  trainingData,
			"bmr":           r.BMR,
			"tdee":          r.TDEE,
			"target":        r.TargetCalories,
		})
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}

	if err := h.staging.Delete(c, body.Token); err != nil {
		h.log.Warn().Err(err).Msg("delete staged quiz")
	}
	h.log.Info().Int("user_id", userID).Msg("quiz synced to profile")

	resp, err := h.buildProfileResponse(c, p)
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}
