package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"lg/coach-go-api/nutrition"
)

// sweepStore is the storage the weekly sweep reads and writes.
type sweepStore interface {
	SweepProfiles(ctx context.Context) ([]profile, error)
	EntriesBetween(ctx context.Context, userID int, from, to time.Time) ([]dailyEntry, error)
	UpsertProposal(ctx context.Context, p adjustmentProposal) error
}

type pgSweepStore struct {
	db *pgxpool.Pool
}

// SweepProfiles returns profiles that have finished the quiz.
func (s pgSweepStore) SweepProfiles(ctx context.Context) ([]profile, error) {
	return queryMany[profile](ctx, s.db,
		"SELECT * FROM profiles WHERE goal IS NOT NULL ORDER BY user_id",
		pgx.NamedArgs{})
}

func (s pgSweepStore) EntriesBetween(ctx context.Context, userID int, from, to time.Time) ([]dailyEntry, error) {
	return loadEntries(ctx, s.db, userID, from, to)
}

// UpsertProposal writes one proposal per (user, week). A proposal the user
// already applied or dismissed is left alone.
func (s pgSweepStore) UpsertProposal(ctx context.Context, p adjustmentProposal) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO adjustment_proposals (user_id, week_start, current_target, new_target_calories, reason, status)
		 VALUES (@userID, @weekStart, @currentTarget, @newTarget, @reason, @status)
		 ON CONFLICT (user_id, week_start) DO UPDATE SET
		   current_target = EXCLUDED.current_target,
		   new_target_calories = EXCLUDED.new_target_calories,
		   reason = EXCLUDED.reason
		 WHERE adjustment_proposals.status = @status`,
		pgx.NamedArgs{
			"userID":        p.UserID,
			"weekStart":     p.WeekStart.Time.Format(dateLayout),
			"currentTarget": p.CurrentTarget,
			"newTarget":     p.NewTargetCalories,
			"reason":        p.Reason,
			"status":        proposalPending,
		})
	return err
}

var errProposalNotPending = errors.New("pending proposal not found")

// proposalStore applies a proposal written by the sweep.
type proposalStore interface {
	ApplyProposal(ctx context.Context, userID int, id string) (adjustmentProposal, profile, error)
}

// ApplyProposal stores the proposal's target as a manual override and marks it
// applied in one transaction. Older pending proposals of the same user are
// dismissed since the new target supersedes them.
func (s pgSweepStore) ApplyProposal(ctx context.Context, userID int, id string) (adjustmentProposal, profile, error) {
	var (
		applied adjustmentProposal
		updated profile
	)
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		applied, err = queryOne[adjustmentProposal](ctx, tx,
			`UPDATE adjustment_proposals SET status = @applied
			 WHERE id::text = @id AND user_id = @userID AND status = @pending
			 RETURNING *`,
			pgx.NamedArgs{"applied": proposalApplied, "pending": proposalPending, "id": id, "userID": userID})
		if errors.Is(err, pgx.ErrNoRows) {
			return errProposalNotPending
		}
		if err != nil {
			return err
		}

		updated, err = queryOne[profile](ctx, tx,
			`UPDATE profiles
			 SET target_calories = @target, target_auto = FALSE, updated_at = NOW()
			 WHERE user_id = @userID
			 RETURNING *`,
			pgx.NamedArgs{"target": applied.NewTargetCalories, "userID": userID})
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE adjustment_proposals SET status = @dismissed
			 WHERE user_id = @userID AND status = @pending`,
			pgx.NamedArgs{"dismissed": proposalDismissed, "pending": proposalPending, "userID": userID})
		return err
	})
	if err != nil {
		return adjustmentProposal{}, profile{}, err
	}
	return applied, updated, nil
}

// sweepStats summarizes one sweep run.
type sweepStats struct {
	Checked  int
	Proposed int
	Skipped  int
	Failed   int
}

// adjustmentSweep writes pending calorie proposals for every profile whose
// weight trend stalled. It never changes a target; users apply proposals
// through POST /api/adjustment/apply.
type adjustmentSweep struct {
	store sweepStore
	calc  nutrition.Calculator
	log   zerolog.Logger
	now   func() time.Time
}

func newAdjustmentSweep(store sweepStore, calc nutrition.Calculator, log zerolog.Logger) *adjustmentSweep {
	return &adjustmentSweep{
		store: store,
		calc:  calc,
		log:   log.With().Str("component", "adjustment_sweep").Logger(),
		now:   time.Now,
	}
}

// Run evaluates the most recent completed week. It is scheduled early on
// Mondays, so the reference date is yesterday: its week is the current window
// and the one before it the previous window.
func (s *adjustmentSweep) Run(ctx context.Context) (sweepStats, error) {
	ref := nutrition.DateOf(s.now()).AddDate(0, 0, -1)
	weekStart, weekEnd := nutrition.WeekBounds(ref)
	prevStart, _ := nutrition.PreviousWeekBounds(ref)

	profiles, err := s.store.SweepProfiles(ctx)
	if err != nil {
		return sweepStats{}, fmt.Errorf("list profiles: %w", err)
	}

	var stats sweepStats
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Checked++

		in, err := adjustmentInputsFor(s.calc, p)
		if errors.Is(err, errProfileIncomplete) {
			stats.Skipped++
			continue
		}

		rows, err := s.store.EntriesBetween(ctx, p.UserID, prevStart, weekEnd)
		if err != nil {
			stats.Failed++
			s.log.Error().Err(err).Int("user_id", p.UserID).Msg("load entries")
			continue
		}

		adj := nutrition.ComputeCalorieAdjustmentAt(ref, in.goal, in.target, in.bmr, engineEntries(rows))
		if adj == nil || !adj.ShouldAdjust {
			stats.Skipped++
			continue
		}

		err = s.store.UpsertProposal(ctx, adjustmentProposal{
			UserID:            p.UserID,
			WeekStart:         DateOnly{weekStart},
			CurrentTarget:     in.target,
			NewTargetCalories: adj.NewTargetCalories,
			Reason:            string(adj.Reason),
			Status:            proposalPending,
		})
		if err != nil {
			stats.Failed++
			s.log.Error().Err(err).Int("user_id", p.UserID).Msg("upsert proposal")
			continue
		}
		stats.Proposed++
	}

	s.log.Info().
		Str("week_start", weekStart.Format(dateLayout)).
		Int("checked", stats.Checked).
		Int("proposed", stats.Proposed).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("adjustment sweep finished")
	return stats, nil
}

// schedule registers the sweep on c. Each run gets its own deadline.
func (s *adjustmentSweep) schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.Run(ctx); err != nil {
			s.log.Error().Err(err).Msg("adjustment sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule adjustment sweep %q: %w", spec, err)
	}
	return nil
}
