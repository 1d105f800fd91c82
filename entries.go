package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/coach-go-api/nutrition"
)

// parseDateParam parses a YYYY-MM-DD string as a UTC calendar date.
func parseDateParam(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// loadEntries returns the user's daily entries within [from, to], oldest first.
func loadEntries(ctx context.Context, db querier, userID int, from, to time.Time) ([]dailyEntry, error) {
	return queryMany[dailyEntry](ctx, db,
		`SELECT * FROM daily_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": from.Format(dateLayout), "end": to.Format(dateLayout)})
}

// getEntries returns daily entries for the authenticated user within [start, end].
// GET /api/entries?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getEntries(c *gin.Context) {
	userID := c.GetInt("user_id")

	start, ok := parseDateParam(c.Query("start"))
	if !ok {
		apiError(c, http.StatusBadRequest, "start is required, expected YYYY-MM-DD")
		return
	}
	end, ok := parseDateParam(c.Query("end"))
	if !ok {
		apiError(c, http.StatusBadRequest, "end is required, expected YYYY-MM-DD")
		return
	}
	if start.After(end) {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	entries, err := loadEntries(c, h.db, userID, start, end)
	if err != nil {
		h.storageError(c, err, "entries not found")
		return
	}
	// Ensure empty array (not null) in JSON
	if entries == nil {
		entries = []dailyEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// upsertEntry creates or merges the entry for the given date.
// POST /api/entries. Body: { "date": "YYYY-MM-DD", "weight_kg"?, "steps"?, "calories"? }.
// The UNIQUE(user_id, date) constraint means posting the same date updates in
// place; omitted fields keep their stored values.
func (h *Handler) upsertEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body upsertEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, ok := parseDateParam(body.Date); !ok {
		apiError(c, http.StatusBadRequest, "date is required, expected YYYY-MM-DD")
		return
	}
	if body.WeightKG == nil && body.Steps == nil && body.Calories == nil {
		apiError(c, http.StatusBadRequest, "at least one of weight_kg, steps, calories is required")
		return
	}
	if body.WeightKG != nil && (*body.WeightKG <= 0 || *body.WeightKG > 999.9) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 999.9")
		return
	}
	if body.Steps != nil && *body.Steps < 0 {
		apiError(c, http.StatusBadRequest, "steps must not be negative")
		return
	}
	if body.Calories != nil && *body.Calories < 0 {
		apiError(c, http.StatusBadRequest, "calories must not be negative")
		return
	}

	entry, err := queryOne[dailyEntry](c, h.db,
		`INSERT INTO daily_entries (user_id, date, weight_kg, steps, calories)
		 VALUES (@userID, @date, @weightKG, @steps, @calories)
		 ON CONFLICT (user_id, date) DO UPDATE SET
		   weight_kg = COALESCE(EXCLUDED.weight_kg, daily_entries.weight_kg),
		   steps     = COALESCE(EXCLUDED.steps,     daily_entries.steps),
		   calories  = COALESCE(EXCLUDED.calories,  daily_entries.calories)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":   userID,
			"date":     body.Date,
			"weightKG": body.WeightKG,
			"steps":    body.Steps,
			"calories": body.Calories,
		})
	if err != nil {
		h.storageError(c, err, "entry not found")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// deleteEntry removes the entry for one date.
// DELETE /api/entries/:date.
func (h *Handler) deleteEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.Param("date")
	if _, ok := parseDateParam(date); !ok {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	tag, err := h.db.Exec(c,
		"DELETE FROM daily_entries WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		h.storageError(c, err, "entry not found")
		return
	}
	if tag.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// weekGrid lays entries out over the seven days starting at monday. Days
// without an entry are included with has_data=false.
func weekGrid(monday time.Time, entries []dailyEntry) []entryDay {
	byDate := make(map[string]dailyEntry, len(entries))
	for _, e := range entries {
		byDate[e.Date.Time.Format(dateLayout)] = e
	}
	days := make([]entryDay, 7)
	for i := range days {
		d := monday.AddDate(0, 0, i)
		day := entryDay{Date: DateOnly{d}}
		if e, ok := byDate[d.Format(dateLayout)]; ok {
			day.WeightKG = e.WeightKG
			day.Steps = e.Steps
			day.Calories = e.Calories
			day.HasData = true
		}
		days[i] = day
	}
	return days
}

// getWeekSummary returns a 7-day grid of entries plus weekly averages.
// GET /api/entries/week-summary?week_start=YYYY-MM-DD (defaults to the current
// week). Any date inside the week is accepted and snapped to its Monday.
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")

	ref := h.today()
	if s := c.Query("week_start"); s != "" {
		t, ok := parseDateParam(s)
		if !ok {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		ref = t
	}
	monday, sunday := nutrition.WeekBounds(ref)

	entries, err := loadEntries(c, h.db, userID, monday, sunday)
	if err != nil {
		h.storageError(c, err, "entries not found")
		return
	}

	c.JSON(http.StatusOK, weekSummaryResponse{
		WeekStart: DateOnly{monday},
		Days:      weekGrid(monday, entries),
		Averages:  nutrition.SummarizeWeek(engineEntries(entries)),
	})
}
