package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"lg/coach-go-api/nutrition"
)

// Handler holds shared dependencies (db pool, engine, staging store) for all
// route handlers.
type Handler struct {
	db         *pgxpool.Pool
	log        zerolog.Logger
	calc       nutrition.Calculator
	staging    stagingStore
	stagingTTL time.Duration
	proposals  proposalStore
	estimator  *foodEstimator
	now        func() time.Time
}

func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

// today is the current calendar date in UTC.
func (h *Handler) today() time.Time { return nutrition.DateOf(h.clock()) }

/* ─── Database helpers ────────────────────────────────────────────────── */

// querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// pgx.ErrNoRows is returned unwrapped so callers can map it to 404.
func queryOne[T any](ctx context.Context, db querier, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := db.Query(ctx, sql, args)
	if err != nil {
		var zero T
		return zero, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, db querier, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := db.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// storageError replies 404 with notFound for pgx.ErrNoRows and logs anything
// else as a 500.
func (h *Handler) storageError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, notFound)
		return
	}
	_ = c.Error(err)
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg("storage error")
	apiError(c, http.StatusInternalServerError, "internal error")
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newDBPool creates a connection pool. We use a pool (not a single conn) because
// Neon closes idle connections after ~5 minutes.
func newDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	return pgxpool.NewWithConfig(ctx, config)
}

// newRouter builds the gin engine with recovery, tracing, request logging and
// CORS in front of the API routes.
func newRouter(h *Handler, cfg Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(requestLogger(h.log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", h.health)
	h.registerRoutes(router)
	return router
}

// health reports liveness and, when a pool is configured, database reachability.
func (h *Handler) health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("health check: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)
	router.POST("/api/quiz/compute", h.computeQuiz)
	router.POST("/api/quiz/pending", h.stageQuiz)
	router.GET("/api/foods", h.listStandardFoods)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)
	api.POST("/profile/sync-quiz", h.syncQuiz)
	api.GET("/entries", h.getEntries)
	api.POST("/entries", h.upsertEntry)
	api.DELETE("/entries/:date", h.deleteEntry)
	api.GET("/entries/week-summary", h.getWeekSummary)
	api.GET("/food-logs", h.getFoodLogs)
	api.GET("/food-logs/progress", h.getFoodProgress)
	api.POST("/food-logs", h.createFoodLog)
	api.DELETE("/food-logs/:id", h.deleteFoodLog)
	api.GET("/adjustment", h.getAdjustment)
	api.POST("/adjustment/apply", h.applyAdjustment)
	api.GET("/adjustment/proposals", h.listProposals)
	api.POST("/adjustment/proposals/:id/apply", h.applyProposal)
	api.POST("/adjustment/proposals/:id/dismiss", h.dismissProposal)

	// Admin routes
	admin := api.Group("/admin", h.adminMiddleware())
	admin.GET("/users", h.listUsers)
	admin.GET("/users/:id", h.getUserProfile)
	admin.PUT("/users/:id/target", h.putUserTarget)
	admin.DELETE("/users/:id/target", h.deleteUserTarget)
	admin.PUT("/users/:id/meals", h.putUserMeals)
	admin.DELETE("/users/:id/meals", h.deleteUserMeals)
	admin.PUT("/users/:id/training", h.putUserTraining)
	admin.GET("/custom-foods", h.listCustomFoods)
	admin.POST("/custom-foods", h.createCustomFood)
	admin.DELETE("/custom-foods/:id", h.deleteCustomFood)
	admin.POST("/custom-foods/suggest", h.suggestCustomFood)
}
