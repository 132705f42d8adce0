package services

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newCacheForTest(t *testing.T) (*QuizCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewQuizCache(client, time.Minute), mr
}

func sampleView(code string) *PublicQuiz {
	return &PublicQuiz{
		ID:           "quiz-1",
		Code:         code,
		Title:        "Capitals",
		Active:       true,
		Participants: []string{"Alice"},
		Questions: []PublicQuestion{
			{ID: "q1", Content: "Capital of France?", Type: "single-choice", Choices: []string{"London", "Paris"}, Points: 2},
		},
	}
}

func TestQuizCacheMissThenHit(t *testing.T) {
	cache, _ := newCacheForTest(t)
	ctx := context.Background()

	calls := 0
	load := func() (*PublicQuiz, error) {
		calls++
		return sampleView("ABC234"), nil
	}

	view, err := cache.GetPublicQuiz(ctx, "ABC234", load)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Title != "Capitals" || calls != 1 {
		t.Fatalf("expected one load, got %d calls, view %+v", calls, view)
	}

	// Second call is served from the snapshot.
	view, err = cache.GetPublicQuiz(ctx, "ABC234", load)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", calls)
	}
	if len(view.Questions) != 1 || view.Questions[0].Choices[1] != "Paris" {
		t.Fatalf("snapshot lost data: %+v", view)
	}
}

func TestQuizCacheInvalidate(t *testing.T) {
	cache, _ := newCacheForTest(t)
	ctx := context.Background()

	calls := 0
	load := func() (*PublicQuiz, error) {
		calls++
		return sampleView("ABC234"), nil
	}

	if _, err := cache.GetPublicQuiz(ctx, "ABC234", load); err != nil {
		t.Fatalf("get: %v", err)
	}
	cache.Invalidate(ctx, "ABC234")

	if _, err := cache.GetPublicQuiz(ctx, "ABC234", load); err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reload after invalidation, loader calls=%d", calls)
	}
}

func TestQuizCacheExpiry(t *testing.T) {
	cache, mr := newCacheForTest(t)
	ctx := context.Background()

	calls := 0
	load := func() (*PublicQuiz, error) {
		calls++
		return sampleView("ABC234"), nil
	}

	if _, err := cache.GetPublicQuiz(ctx, "ABC234", load); err != nil {
		t.Fatalf("get: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := cache.GetPublicQuiz(ctx, "ABC234", load); err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reload after TTL, loader calls=%d", calls)
	}
}

func TestQuizCacheStoresDespiteCallerCancel(t *testing.T) {
	cache, _ := newCacheForTest(t)

	// The caller walks away mid-load; the snapshot must still land in Redis
	// for everyone collapsed onto this load.
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	view, err := cache.GetPublicQuiz(ctx, "ABC234", func() (*PublicQuiz, error) {
		calls++
		cancel()
		return sampleView("ABC234"), nil
	})
	if err != nil || view == nil {
		t.Fatalf("get: %v", err)
	}

	if _, err := cache.GetPublicQuiz(context.Background(), "ABC234", func() (*PublicQuiz, error) {
		calls++
		return sampleView("ABC234"), nil
	}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the first load's snapshot to be served, loader calls=%d", calls)
	}
}

func TestQuizCacheLoaderError(t *testing.T) {
	cache, _ := newCacheForTest(t)
	ctx := context.Background()

	wantErr := errors.New("boom")
	_, err := cache.GetPublicQuiz(ctx, "ABC234", func() (*PublicQuiz, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error, got %v", err)
	}

	// The failure must not leave a poisoned snapshot behind.
	calls := 0
	view, err := cache.GetPublicQuiz(ctx, "ABC234", func() (*PublicQuiz, error) {
		calls++
		return sampleView("ABC234"), nil
	})
	if err != nil || calls != 1 || view == nil {
		t.Fatalf("expected clean retry, err=%v calls=%d", err, calls)
	}
}

func TestQuizCacheNilClientDegrades(t *testing.T) {
	cache := NewQuizCache(nil, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*PublicQuiz, error) {
		calls++
		return sampleView("ABC234"), nil
	}

	for i := 0; i < 2; i++ {
		if _, err := cache.GetPublicQuiz(ctx, "ABC234", load); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("without redis every call should load, got %d", calls)
	}

	// Invalidate must be a no-op, not a panic.
	cache.Invalidate(ctx, "ABC234")
}
