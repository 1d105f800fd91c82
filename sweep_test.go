package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/coach-go-api/nutrition"
)

type fakeSweepStore struct {
	profiles   []profile
	entries    map[int][]dailyEntry
	entriesErr map[int]error
	upsertErr  map[int]error
	applyErr   error

	windows   map[int][2]time.Time
	proposals []adjustmentProposal
}

func (s *fakeSweepStore) SweepProfiles(context.Context) ([]profile, error) {
	return s.profiles, nil
}

func (s *fakeSweepStore) EntriesBetween(_ context.Context, userID int, from, to time.Time) ([]dailyEntry, error) {
	if s.windows == nil {
		s.windows = make(map[int][2]time.Time)
	}
	s.windows[userID] = [2]time.Time{from, to}
	if err := s.entriesErr[userID]; err != nil {
		return nil, err
	}
	return s.entries[userID], nil
}

func (s *fakeSweepStore) UpsertProposal(_ context.Context, p adjustmentProposal) error {
	if err := s.upsertErr[p.UserID]; err != nil {
		return err
	}
	p.ID = len(s.proposals) + 1
	s.proposals = append(s.proposals, p)
	return nil
}

func (s *fakeSweepStore) ApplyProposal(_ context.Context, userID int, id string) (adjustmentProposal, profile, error) {
	if s.applyErr != nil {
		return adjustmentProposal{}, profile{}, s.applyErr
	}
	idx := -1
	for i, p := range s.proposals {
		if strconv.Itoa(p.ID) == id && p.UserID == userID && p.Status == proposalPending {
			idx = i
		}
	}
	if idx < 0 {
		return adjustmentProposal{}, profile{}, errProposalNotPending
	}
	for i := range s.proposals {
		if s.proposals[i].UserID == userID && s.proposals[i].Status == proposalPending {
			s.proposals[i].Status = proposalDismissed
		}
	}
	s.proposals[idx].Status = proposalApplied
	applied := s.proposals[idx]

	for i := range s.profiles {
		if s.profiles[i].UserID == userID {
			s.profiles[i].TargetCal = intPtr(applied.NewTargetCalories)
			s.profiles[i].TargetAuto = false
			return applied, s.profiles[i], nil
		}
	}
	return adjustmentProposal{}, profile{}, pgx.ErrNoRows
}

func octDay(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }

// weighIns writes prev kg on Oct 5-7 and cur kg on Oct 12-14.
func weighIns(prev, cur float64) []dailyEntry {
	var out []dailyEntry
	for _, d := range []int{5, 6, 7} {
		out = append(out, dailyEntry{Date: DateOnly{octDay(d)}, WeightKG: floatPtr(prev)})
	}
	for _, d := range []int{12, 13, 14} {
		out = append(out, dailyEntry{Date: DateOnly{octDay(d)}, WeightKG: floatPtr(cur)})
	}
	return out
}

func sweepProfile(userID int, goal string, target, bmr int) profile {
	p := completeProfile()
	p.UserID = userID
	p.Goal = strPtr(goal)
	p.TargetCal = intPtr(target)
	p.BMR = intPtr(bmr)
	return p
}

func newTestSweep(store sweepStore) *adjustmentSweep {
	s := newAdjustmentSweep(store, nutrition.NewCalculator(nil), zerolog.Nop())
	// Monday morning: the completed week is Oct 12-18.
	s.now = func() time.Time { return time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC) }
	return s
}

func TestAdjustmentSweep_Run(t *testing.T) {
	incomplete := completeProfile()
	incomplete.UserID = 3
	incomplete.Sex = nil

	store := &fakeSweepStore{
		profiles: []profile{
			sweepProfile(1, "cut", 2000, 1500),
			sweepProfile(2, "bulk", 2800, 1700),
			incomplete,
			sweepProfile(4, "bulk", 2800, 1700),
		},
		entries: map[int][]dailyEntry{
			1: weighIns(80.0, 79.9),
			2: weighIns(70.0, 70.4),
			4: weighIns(70.0, 70.0),
		},
	}

	stats, err := newTestSweep(store).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sweepStats{Checked: 4, Proposed: 2, Skipped: 2}, stats)

	require.Len(t, store.proposals, 2)
	cut := store.proposals[0]
	assert.Equal(t, 1, cut.UserID)
	assert.Equal(t, octDay(12), cut.WeekStart.Time)
	assert.Equal(t, 2000, cut.CurrentTarget)
	assert.Equal(t, 1900, cut.NewTargetCalories)
	assert.Equal(t, string(nutrition.ReasonCutNoLoss), cut.Reason)
	assert.Equal(t, proposalPending, cut.Status)

	bulk := store.proposals[1]
	assert.Equal(t, 4, bulk.UserID)
	assert.Equal(t, 2900, bulk.NewTargetCalories)
	assert.Equal(t, string(nutrition.ReasonBulkNoGain), bulk.Reason)

	assert.Equal(t, [2]time.Time{octDay(5), octDay(18)}, store.windows[1])
	assert.NotContains(t, store.windows, 3, "incomplete profiles are not loaded")
}

func TestAdjustmentSweep_CutNeverBelowBMR(t *testing.T) {
	store := &fakeSweepStore{
		profiles: []profile{sweepProfile(1, "cut", 1550, 1500)},
		entries:  map[int][]dailyEntry{1: weighIns(80.0, 80.0)},
	}

	_, err := newTestSweep(store).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, store.proposals, 1)
	assert.Equal(t, 1500, store.proposals[0].NewTargetCalories)
}

func TestAdjustmentSweep_NotEnoughData(t *testing.T) {
	store := &fakeSweepStore{
		profiles: []profile{sweepProfile(1, "cut", 2000, 1500)},
		entries:  map[int][]dailyEntry{1: weighIns(80.0, 79.9)[:4]},
	}

	stats, err := newTestSweep(store).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sweepStats{Checked: 1, Skipped: 1}, stats)
	assert.Empty(t, store.proposals)
}

func TestAdjustmentSweep_StoreErrors(t *testing.T) {
	store := &fakeSweepStore{
		profiles: []profile{
			sweepProfile(1, "cut", 2000, 1500),
			sweepProfile(2, "cut", 2000, 1500),
			sweepProfile(3, "cut", 2000, 1500),
		},
		entries: map[int][]dailyEntry{
			2: weighIns(80.0, 79.9),
			3: weighIns(80.0, 79.9),
		},
		entriesErr: map[int]error{1: errors.New("timeout")},
		upsertErr:  map[int]error{2: errors.New("deadlock detected")},
	}

	stats, err := newTestSweep(store).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sweepStats{Checked: 3, Proposed: 1, Failed: 2}, stats)
	require.Len(t, store.proposals, 1)
	assert.Equal(t, 3, store.proposals[0].UserID)
}

func TestAdjustmentSweep_Cancelled(t *testing.T) {
	store := &fakeSweepStore{profiles: []profile{sweepProfile(1, "cut", 2000, 1500)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSweep(store).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdjustmentSweep_Schedule(t *testing.T) {
	s := newTestSweep(&fakeSweepStore{})
	c := cron.New(cron.WithLocation(time.UTC))

	require.NoError(t, s.schedule(c, "0 6 * * 1"))
	require.Len(t, c.Entries(), 1)
	next := c.Entries()[0].Schedule.Next(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC), next)

	assert.Error(t, s.schedule(c, "every monday"))
}

func proposalRouter(h *Handler, userID int) *gin.Engine {
	router := gin.New()
	router.POST("/api/adjustment/proposals/:id/apply", func(c *gin.Context) {
		c.Set("user_id", userID)
	}, h.applyProposal)
	return router
}

func TestApplyProposal_AppliesSweepResult(t *testing.T) {
	store := &fakeSweepStore{
		profiles: []profile{sweepProfile(1, "cut", 2000, 1500)},
		entries:  map[int][]dailyEntry{1: weighIns(80.0, 79.9)},
	}
	_, err := newTestSweep(store).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, store.proposals, 1)

	h := newTestHandler()
	// Monday morning: the new week has no entries, the proposal still applies.
	h.now = func() time.Time { return time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC) }
	h.proposals = store

	w := doJSON(t, proposalRouter(h, 1), http.MethodPost, "/api/adjustment/proposals/1/apply", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Proposal       adjustmentProposal `json:"proposal"`
		TargetCalories *int               `json:"target_calories"`
		TargetAuto     bool               `json:"target_auto"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, proposalApplied, resp.Proposal.Status)
	assert.Equal(t, 1900, resp.Proposal.NewTargetCalories)
	require.NotNil(t, resp.TargetCalories)
	assert.Equal(t, 1900, *resp.TargetCalories)
	assert.False(t, resp.TargetAuto)

	assert.Equal(t, 1900, *store.profiles[0].TargetCal)
	assert.Equal(t, proposalApplied, store.proposals[0].Status)

	// applying twice finds nothing pending
	w = doJSON(t, proposalRouter(h, 1), http.MethodPost, "/api/adjustment/proposals/1/apply", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplyProposal_OtherUsersProposal(t *testing.T) {
	store := &fakeSweepStore{
		profiles:  []profile{sweepProfile(1, "cut", 2000, 1500)},
		proposals: []adjustmentProposal{{ID: 1, UserID: 1, NewTargetCalories: 1900, Status: proposalPending}},
	}
	h := newTestHandler()
	h.proposals = store

	w := doJSON(t, proposalRouter(h, 2), http.MethodPost, "/api/adjustment/proposals/1/apply", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, proposalPending, store.proposals[0].Status)
	assert.Equal(t, 2000, *store.profiles[0].TargetCal)
}

func TestApplyProposal_SupersedesOlderPending(t *testing.T) {
	store := &fakeSweepStore{
		profiles: []profile{sweepProfile(1, "cut", 2000, 1500)},
		proposals: []adjustmentProposal{
			{ID: 1, UserID: 1, WeekStart: DateOnly{octDay(5)}, NewTargetCalories: 1900, Status: proposalPending},
			{ID: 2, UserID: 1, WeekStart: DateOnly{octDay(12)}, NewTargetCalories: 1800, Status: proposalPending},
		},
	}
	h := newTestHandler()
	h.proposals = store

	w := doJSON(t, proposalRouter(h, 1), http.MethodPost, "/api/adjustment/proposals/2/apply", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, proposalDismissed, store.proposals[0].Status)
	assert.Equal(t, proposalApplied, store.proposals[1].Status)
	assert.Equal(t, 1800, *store.profiles[0].TargetCal)
}

func TestApplyProposal_StoreFailure(t *testing.T) {
	h := newTestHandler()
	h.proposals = &fakeSweepStore{applyErr: errors.New("connection reset")}

	w := doJSON(t, proposalRouter(h, 1), http.MethodPost, "/api/adjustment/proposals/1/apply", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decodeError(t, w))
}
