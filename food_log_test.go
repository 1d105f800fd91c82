package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeProgress(t *testing.T) {
	days := []foodDayTotals{
		{Calories: 1900, Protein: 150},
		{Calories: 2100, Protein: 140},
		{Calories: 2300, Protein: 100},
	}

	stats := summarizeProgress(days, intPtr(2100))
	assert.Equal(t, progressStats{DaysTracked: 3, DaysOnTarget: 2, AvgCalories: 2100, AvgProtein: 130}, stats)

	// without a target no day counts as on target
	stats = summarizeProgress(days, nil)
	assert.Equal(t, 3, stats.DaysTracked)
	assert.Zero(t, stats.DaysOnTarget)

	assert.Equal(t, progressStats{}, summarizeProgress(nil, intPtr(2000)))
}
