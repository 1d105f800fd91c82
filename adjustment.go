package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/coach-go-api/nutrition"
)

var errProfileIncomplete = errors.New("complete the quiz before requesting adjustments")

// adjustmentInputs is what the trend check needs from a stored profile.
type adjustmentInputs struct {
	goal   nutrition.Goal
	target int
	bmr    int
}

// adjustmentInputsFor reads goal, current target and BMR from p, falling back
// to the formula values when the stored columns are empty.
func adjustmentInputsFor(calc nutrition.Calculator, p profile) (adjustmentInputs, error) {
	np, ok := p.engineProfile()
	if !ok {
		return adjustmentInputs{}, errProfileIncomplete
	}
	r := calc.Compute(np)
	in := adjustmentInputs{goal: np.Goal, target: r.TargetCalories, bmr: r.BMR}
	if p.TargetCal != nil {
		in.target = *p.TargetCal
	}
	if p.BMR != nil {
		in.bmr = *p.BMR
	}
	return in, nil
}

// evaluateAdjustment runs the trend check for the week containing ref over the
// current and previous calendar weeks of entries.
func (h *Handler) evaluateAdjustment(ctx context.Context, userID int, ref time.Time) (adjustmentResponse, adjustmentInputs, error) {
	p, err := h.loadProfile(ctx, userID)
	if err != nil {
		return adjustmentResponse{}, adjustmentInputs{}, err
	}
	in, err := adjustmentInputsFor(h.calc, p)
	if err != nil {
		return adjustmentResponse{}, adjustmentInputs{}, err
	}

	prevMonday, _ := nutrition.PreviousWeekBounds(ref)
	_, sunday := nutrition.WeekBounds(ref)
	rows, err := loadEntries(ctx, h.db, userID, prevMonday, sunday)
	if err != nil {
		return adjustmentResponse{}, adjustmentInputs{}, err
	}
	entries := engineEntries(rows)
	current, previous := nutrition.SplitWeightWindows(entries, ref)

	return adjustmentResponse{
		Adjustment: nutrition.ComputeCalorieAdjustmentAt(ref, in.goal, in.target, in.bmr, entries),
		EnoughData: nutrition.HasEnoughWeightData(entries, ref),
		Tips:       nutrition.Tips(in.goal, entries, ref),
		Current:    nutrition.SummarizeWeek(current),
		Previous:   nutrition.SummarizeWeek(previous),
	}, in, nil
}

// getAdjustment returns the live calorie recommendation, coaching tips and the
// two weekly summaries it was derived from.
// GET /api/adjustment.
func (h *Handler) getAdjustment(c *gin.Context) {
	userID := c.GetInt("user_id")

	resp, _, err := h.evaluateAdjustment(c, userID, h.today())
	if errors.Is(err, errProfileIncomplete) {
		apiError(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// applyAdjustment recomputes the recommendation and, when it calls for a
// change, stores the new target as a manual override and closes any pending
// sweep proposal. The client never supplies the number.
// POST /api/adjustment/apply.
func (h *Handler) applyAdjustment(c *gin.Context) {
	userID := c.GetInt("user_id")

	resp, in, err := h.evaluateAdjustment(c, userID, h.today())
	if errors.Is(err, errProfileIncomplete) {
		apiError(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}
	if resp.Adjustment == nil || !resp.Adjustment.ShouldAdjust {
		apiError(c, http.StatusConflict, "no adjustment is recommended right now")
		return
	}
	newTarget := resp.Adjustment.NewTargetCalories

	var updated profile
	err = pgx.BeginFunc(c, h.db, func(tx pgx.Tx) error {
		var err error
		updated, err = queryOne[profile](c, tx,
			`UPDATE profiles
			 SET target_calories = @target, target_auto = FALSE, updated_at = NOW()
			 WHERE user_id = @userID
			 RETURNING *`,
			pgx.NamedArgs{"target": newTarget, "userID": userID})
		if err != nil {
			return err
		}
		_, err = tx.Exec(c,
			`UPDATE adjustment_proposals SET status = @applied
			 WHERE user_id = @userID AND status = @pending`,
			pgx.NamedArgs{"applied": proposalApplied, "pending": proposalPending, "userID": userID})
		return err
	})
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}

	h.log.Info().
		Int("user_id", userID).
		Int("previous_target", in.target).
		Int("new_target", newTarget).
		Str("reason", string(resp.Adjustment.Reason)).
		Msg("calorie adjustment applied")

	c.JSON(http.StatusOK, gin.H{
		"adjustment":      resp.Adjustment,
		"target_calories": updated.TargetCal,
		"target_auto":     updated.TargetAuto,
	})
}

// listProposals returns the caller's sweep proposals, newest week first.
// GET /api/adjustment/proposals.
func (h *Handler) listProposals(c *gin.Context) {
	userID := c.GetInt("user_id")

	proposals, err := queryMany[adjustmentProposal](c, h.db,
		`SELECT * FROM adjustment_proposals
		 WHERE user_id = @userID
		 ORDER BY week_start DESC
		 LIMIT 12`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		h.storageError(c, err, "proposals not found")
		return
	}
	if proposals == nil {
		proposals = []adjustmentProposal{}
	}
	c.JSON(http.StatusOK, proposals)
}

// applyProposal applies a pending sweep proposal exactly as it was shown: the
// stored new_target_calories becomes the manual target. Nothing is re-evaluated.
// POST /api/adjustment/proposals/:id/apply.
func (h *Handler) applyProposal(c *gin.Context) {
	userID := c.GetInt("user_id")

	applied, updated, err := h.proposals.ApplyProposal(c, userID, c.Param("id"))
	if errors.Is(err, errProposalNotPending) {
		apiError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.storageError(c, err, "profile not found")
		return
	}

	h.log.Info().
		Int("user_id", userID).
		Int("proposal_id", applied.ID).
		Int("previous_target", applied.CurrentTarget).
		Int("new_target", applied.NewTargetCalories).
		Str("reason", applied.Reason).
		Msg("adjustment proposal applied")

	c.JSON(http.StatusOK, gin.H{
		"proposal":        applied,
		"target_calories": updated.TargetCal,
		"target_auto":     updated.TargetAuto,
	})
}

// dismissProposal marks a pending proposal as dismissed.
// POST /api/adjustment/proposals/:id/dismiss.
func (h *Handler) dismissProposal(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := queryOne[adjustmentProposal](c, h.db,
		`UPDATE adjustment_proposals SET status = @dismissed
		 WHERE id::text = @id AND user_id = @userID AND status = @pending
		 RETURNING *`,
		pgx.NamedArgs{"dismissed": proposalDismissed, "pending": proposalPending, "id": c.Param("id"), "userID": userID})
	if err != nil {
		h.storageError(c, err, "pending proposal not found")
		return
	}
	c.JSON(http.StatusOK, p)
}
