package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

var (
	errCircuitOpen   = errors.New("openai circuit breaker is open")
	errMissingAPIKey = errors.New("OPENAI_API_KEY not set")
	errUnrecognized  = errors.New("description is not a food")
)

/* ─── Request / Response types ───────────────────────────────────────── */

// suggestRequest is the request body for POST /api/admin/custom-foods/suggest.
type suggestRequest struct {
	Description string `json:"description"`
}

// foodEstimate is a per-100 g nutrient estimate shaped like a custom food
// create request, so the admin UI can post it back after review.
// Confidence is 1-5 indicating how accurate the estimate is.
type foodEstimate struct {
	Name       string  `json:"name"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	Confidence int     `json:"confidence"`
}

func (e foodEstimate) asCreateRequest() createCustomFoodRequest {
	return createCustomFoodRequest{Name: e.Name, Calories: e.Calories, Protein: e.Protein, Carbs: e.Carbs, Fat: e.Fat}
}

/* ─── OpenAI prompt ──────────────────────────────────────────────────── */

const foodSystemPrompt = `You are a nutrition assistant. Identify the food described and return a JSON object with its nutrients per 100 grams:
- "name" (string, cleaned up title case)
- "calories" (number, kcal per 100 g)
- "protein" (number, grams per 100 g)
- "carbs" (number, grams per 100 g)
- "fat" (number, grams per 100 g)
- "confidence" (integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Use cooked weights for meats and grains unless the description says raw or dry.
Only return {"error": "unrecognized"} if the input is not food at all.
Return only valid JSON, no explanation.`

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// openAIMessage is a single message in the OpenAI chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

// statusError is a non-200 reply from OpenAI. 5xx replies are retried and
// count against the breaker; 4xx replies are neither.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("openai returned status %d: %s", e.StatusCode, e.Body)
}

func (e *statusError) retryable() bool { return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests }

// estimatorConfig tunes the OpenAI client. Zero values take the defaults in
// newFoodEstimator.
type estimatorConfig struct {
	BaseURL         string
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	BreakerTimeout  time.Duration
	TripAfter       uint32
}

// foodEstimator calls the chat completions API behind a circuit breaker,
// retrying transient failures with exponential backoff.
type foodEstimator struct {
	cfg        estimatorConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[string]
}

func newFoodEstimator(cfg estimatorConfig, log zerolog.Logger) *foodEstimator {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}
	if cfg.TripAfter == 0 {
		cfg.TripAfter = 5
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= cfg.TripAfter &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return !se.retryable()
			}
			return err == nil || errors.Is(err, errMissingAPIKey)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &foodEstimator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
	}
}

// complete sends one chat completions request and returns the content of the
// first choice. Uses raw net/http to avoid pulling in the OpenAI SDK.
func (e *foodEstimator) complete(ctx context.Context, messages []openAIMessage) (string, error) {
	if e.cfg.APIKey == "" {
		return "", errMissingAPIKey
	}

	bodyBytes, err := json.Marshal(openAIRequest{
		Model:          e.cfg.Model,
		Messages:       messages,
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// A fresh request per attempt; a retried POST cannot reuse a drained body.
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &statusError{StatusCode: resp.StatusCode, Body: string(respBytes)}
	}

	// Parse the response to extract choices[0].message.content
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

// completeWithRetry runs complete through the breaker, retrying network
// errors, 429 and 5xx replies. An open breaker fails fast with errCircuitOpen.
func (e *foodEstimator) completeWithRetry(ctx context.Context, messages []openAIMessage) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.InitialInterval
	bo.MaxInterval = e.cfg.MaxInterval
	bo.MaxElapsedTime = 0 // retries are bounded by WithMaxRetries

	var content string
	operation := func() error {
		out, err := e.breaker.Execute(func() (string, error) {
			return e.complete(ctx, messages)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(errCircuitOpen)
			}
			var se *statusError
			if errors.Is(err, errMissingAPIKey) || (errors.As(err, &se) && !se.retryable()) {
				return backoff.Permanent(err)
			}
			return err
		}
		content = out
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, e.cfg.MaxRetries), ctx))
	return content, err
}

// Estimate asks the model for a per-100 g profile of description.
func (e *foodEstimator) Estimate(ctx context.Context, description string) (foodEstimate, error) {
	content, err := e.completeWithRetry(ctx, []openAIMessage{
		{Role: "system", Content: foodSystemPrompt},
		{Role: "user", Content: description},
	})
	if err != nil {
		return foodEstimate{}, err
	}

	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &errorResp); err != nil {
		return foodEstimate{}, fmt.Errorf("parse openai content: %w", err)
	}
	if errorResp.Error == "unrecognized" {
		return foodEstimate{}, errUnrecognized
	}

	var est foodEstimate
	if err := json.Unmarshal([]byte(content), &est); err != nil {
		return foodEstimate{}, fmt.Errorf("parse estimate: %w", err)
	}
	// At minimum we need a name and calories the custom food validator accepts.
	if validateCustomFood(est.asCreateRequest()) != nil {
		return foodEstimate{}, errUnrecognized
	}
	return est, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// suggestCustomFood handles POST /api/admin/custom-foods/suggest.
// Accepts a food description and returns an estimated per-100 g profile. The
// estimate is not stored.
func (h *Handler) suggestCustomFood(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}
	if h.estimator == nil {
		apiError(c, http.StatusServiceUnavailable, "food estimator is not configured")
		return
	}

	est, err := h.estimator.Estimate(c.Request.Context(), req.Description)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, est)
	case errors.Is(err, errUnrecognized):
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
	case errors.Is(err, errCircuitOpen):
		h.log.Warn().Msg("suggest rejected: openai circuit open")
		apiError(c, http.StatusServiceUnavailable, "food estimator is temporarily unavailable")
	case errors.Is(err, errMissingAPIKey):
		apiError(c, http.StatusServiceUnavailable, "food estimator is not configured")
	default:
		_ = c.Error(err)
		h.log.Error().Err(err).Msg("openai request failed")
		apiError(c, http.StatusBadGateway, "openai request failed")
	}
}
