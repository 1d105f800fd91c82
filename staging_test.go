package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStaging(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	s := newMemoryStaging()
	s.now = func() time.Time { return now }

	q := stagedQuiz{Quiz: referenceQuiz(), StagedAt: now}
	require.NoError(t, s.Put(ctx, "tok", q, time.Hour))

	got, err := s.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, q, got)

	// reads do not consume
	_, err = s.Get(ctx, "tok")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "tok"))
	_, err = s.Get(ctx, "tok")
	assert.ErrorIs(t, err, errStagingNotFound)
}

func TestMemoryStaging_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	s := newMemoryStaging()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put(ctx, "tok", stagedQuiz{Quiz: referenceQuiz()}, time.Hour))

	now = now.Add(59 * time.Minute)
	_, err := s.Get(ctx, "tok")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = s.Get(ctx, "tok")
	assert.ErrorIs(t, err, errStagingNotFound)
	assert.Empty(t, s.entries, "expired entries are dropped on read")
}

func TestMemoryStaging_UnknownToken(t *testing.T) {
	_, err := newMemoryStaging().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, errStagingNotFound)

	assert.NoError(t, newMemoryStaging().Delete(context.Background(), "missing"))
}
