package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/coach-go-api/nutrition"
)

func referenceQuiz() quizRequest {
	return quizRequest{
		FirstName:     "Sam",
		Sex:           "male",
		Age:           25,
		HeightCM:      180,
		WeightKG:      75,
		ActivityLevel: "moderate",
		Goal:          "cut",
	}
}

func quizRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.POST("/api/quiz/compute", h.computeQuiz)
	router.POST("/api/quiz/pending", h.stageQuiz)
	return router
}

func TestComputeQuiz(t *testing.T) {
	router := quizRouter(newTestHandler())

	w := doJSON(t, router, http.MethodPost, "/api/quiz/compute", referenceQuiz())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var b resultsBundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))

	assert.Equal(t, 1815, b.Result.BMR)
	assert.Equal(t, 2290, b.Result.TDEE)
	assert.Equal(t, 2190, b.Result.TargetCalories)
	assert.Equal(t, nutrition.Macros{Protein: 137, Carbs: 274, Fat: 61}, b.Result.MacroGrams)

	assert.Len(t, b.Meals, 4)
	assert.False(t, b.CustomMeals)
	for _, m := range b.Meals {
		assert.NotEmpty(t, m.Slot)
		assert.Positive(t, m.Macros.Calories)
	}

	assert.Nil(t, b.Volume)
	for _, d := range b.Split {
		assert.True(t, d.IsRest)
	}
	require.Len(t, b.Projection, nutrition.DefaultProjectionWeeks+1)
	assert.Equal(t, 75.0, b.Projection[0].Weight)
	assert.Less(t, b.Projection[12].Weight, 75.0)
	assert.Equal(t, nutrition.ReverseDietStep(nutrition.Cut), b.ReverseDietStep)
}

func TestComputeQuiz_WithTraining(t *testing.T) {
	router := quizRouter(newTestHandler())

	q := referenceQuiz()
	q.TrainingDays = "0:chest|1:back|3:quads|4:shoulders"
	q.Exercises = "6"

	w := doJSON(t, router, http.MethodPost, "/api/quiz/compute", q)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var b resultsBundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))

	assert.Equal(t, 2544, b.Result.TDEE)
	require.NotNil(t, b.Volume)
	assert.Equal(t, 24, b.Volume.WeeklyVolume)
	assert.Equal(t, 6, b.Volume.SetsPerMuscle)
	assert.Equal(t, nutrition.VolumeLow, b.Volume.Status)

	assert.False(t, b.Split[0].IsRest)
	assert.True(t, b.Split[2].IsRest)
	assert.Equal(t, []nutrition.MuscleGroup{nutrition.Quads}, b.Split[3].Muscles)
}

func TestComputeQuiz_Invalid(t *testing.T) {
	router := quizRouter(newTestHandler())

	tests := []struct {
		name   string
		mutate func(q *quizRequest)
	}{
		{"unknown sex", func(q *quizRequest) { q.Sex = "robot" }},
		{"zero age", func(q *quizRequest) { q.Age = 0 }},
		{"unknown goal", func(q *quizRequest) { q.Goal = "shred" }},
		{"ex without days", func(q *quizRequest) { q.Exercises = "6" }},
		{"days without ex", func(q *quizRequest) { q.TrainingDays = "0:chest" }},
		{"day with no muscles", func(q *quizRequest) { q.TrainingDays = "0:"; q.Exercises = "6" }},
		{"non-numeric ex", func(q *quizRequest) { q.TrainingDays = "0:chest"; q.Exercises = "lots" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := referenceQuiz()
			tt.mutate(&q)
			w := doJSON(t, router, http.MethodPost, "/api/quiz/compute", q)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decodeError(t, w))
		})
	}
}

func TestComputeQuiz_BadJSON(t *testing.T) {
	router := quizRouter(newTestHandler())

	w := doJSON(t, router, http.MethodPost, "/api/quiz/compute", `{"age":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decodeError(t, w))
}

func TestComputeQuiz_SexIsCaseInsensitive(t *testing.T) {
	q := referenceQuiz()
	q.Sex = "Female"
	p, err := profileFromQuiz(q)
	require.NoError(t, err)
	assert.Equal(t, nutrition.Female, p.Sex)
}

func TestStageQuiz(t *testing.T) {
	h := newTestHandler()
	router := quizRouter(h)

	w := doJSON(t, router, http.MethodPost, "/api/quiz/pending", referenceQuiz())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token     string        `json:"token"`
		ExpiresIn int           `json:"expires_in"`
		Results   resultsBundle `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, 2190, resp.Results.Result.TargetCalories)

	staged, err := h.staging.Get(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, referenceQuiz(), staged.Quiz)
	assert.Equal(t, h.clock(), staged.StagedAt)
}

func TestStageQuiz_InvalidIsNotStored(t *testing.T) {
	h := newTestHandler()
	router := quizRouter(h)

	q := referenceQuiz()
	q.WeightKG = -1
	w := doJSON(t, router, http.MethodPost, "/api/quiz/pending", q)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, h.staging.(*memoryStaging).entries)
}

type failingStaging struct{ memoryStaging }

func (*failingStaging) Put(context.Context, string, stagedQuiz, time.Duration) error {
	return errors.New("connection refused")
}

func TestStageQuiz_StoreFailure(t *testing.T) {
	h := newTestHandler()
	h.staging = &failingStaging{}
	router := quizRouter(h)

	w := doJSON(t, router, http.MethodPost, "/api/quiz/pending", referenceQuiz())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to stage quiz", decodeError(t, w))
}
