package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"lg/coach-go-api/nutrition"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg Config, log zerolog.Logger) error {
	ctx := context.Background()

	shutdownTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	pool, err := newDBPool(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("database pool ready")

	policy, err := nutrition.PolicyByName(cfg.MacroPolicy)
	if err != nil {
		return err
	}
	calc := nutrition.NewCalculator(policy)

	staging, closeStaging, err := openStaging(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStaging()

	proposals := pgSweepStore{db: pool}
	h := &Handler{
		db:         pool,
		log:        log,
		calc:       calc,
		staging:    staging,
		stagingTTL: cfg.StagingTTL,
		proposals:  proposals,
		estimator: newFoodEstimator(estimatorConfig{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
		}, log),
	}

	scheduler := cron.New(cron.WithLocation(time.UTC))
	sweep := newAdjustmentSweep(proposals, calc, log)
	if err := sweep.schedule(scheduler, cfg.AdjustSweepSchedule); err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	if cfg.isProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(h, cfg)
	_ = router.SetTrustedProxies(nil)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("macro_policy", policy.Name()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// openStaging connects the redis staging store. Outside production an
// unreachable redis falls back to an in-process store.
func openStaging(ctx context.Context, cfg Config, log zerolog.Logger) (stagingStore, func(), error) {
	rs, err := newRedisStaging(ctx, cfg.RedisAddr)
	if err == nil {
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis staging ready")
		return rs, func() { _ = rs.Close() }, nil
	}
	if cfg.isProduction() {
		return nil, nil, err
	}
	log.Warn().Err(err).Msg("redis unavailable, staging quizzes in memory")
	return newMemoryStaging(), func() {}, nil
}
