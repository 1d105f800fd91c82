package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var errStagingNotFound = errors.New("staged quiz not found or expired")

// stagedQuiz is a completed quiz held between the anonymous quiz flow and
// the first authenticated sync.
type stagedQuiz struct {
	Quiz     quizRequest `json:"quiz"`
	StagedAt time.Time   `json:"staged_at"`
}

// stagingStore keeps staged quizzes under opaque tokens with a TTL.
type stagingStore interface {
	Put(ctx context.Context, token string, q stagedQuiz, ttl time.Duration) error
	Get(ctx context.Context, token string) (stagedQuiz, error)
	Delete(ctx context.Context, token string) error
}

/* ─── Redis ──────────────────────────────────────────────────────────── */

const stagingKeyPrefix = "coach:quiz:pending:"

type redisStaging struct {
	client *goredis.Client
}

// newRedisStaging connects to addr and verifies the connection.
func newRedisStaging(ctx context.Context, addr string) (*redisStaging, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &redisStaging{client: client}, nil
}

func (s *redisStaging) Put(ctx context.Context, token string, q stagedQuiz, ttl time.Duration) error {
	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal staged quiz: %w", err)
	}
	return s.client.Set(ctx, stagingKeyPrefix+token, b, ttl).Err()
}

func (s *redisStaging) Get(ctx context.Context, token string) (stagedQuiz, error) {
	b, err := s.client.Get(ctx, stagingKeyPrefix+token).Bytes()
	if errors.Is(err, goredis.Nil) {
		return stagedQuiz{}, errStagingNotFound
	}
	if err != nil {
		return stagedQuiz{}, err
	}
	var q stagedQuiz
	if err := json.Unmarshal(b, &q); err != nil {
		return stagedQuiz{}, fmt.Errorf("decode staged quiz: %w", err)
	}
	return q, nil
}

func (s *redisStaging) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, stagingKeyPrefix+token).Err()
}

func (s *redisStaging) Close() error { return s.client.Close() }

/* ─── In-memory ──────────────────────────────────────────────────────── */

// memoryStaging is the single-process fallback used in development when
// redis is unreachable, and in tests.
type memoryStaging struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	quiz    stagedQuiz
	expires time.Time
}

func newMemoryStaging() *memoryStaging {
	return &memoryStaging{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *memoryStaging) Put(_ context.Context, token string, q stagedQuiz, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{quiz: q, expires: s.now().Add(ttl)}
	return nil
}

func (s *memoryStaging) Get(_ context.Context, token string) (stagedQuiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return stagedQuiz{}, errStagingNotFound
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, token)
		return stagedQuiz{}, errStagingNotFound
	}
	return e.quiz, nil
}

func (s *memoryStaging) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}
