package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Enqueue_DeduplicatesSameKey(t *testing.T) {
	q := NewQueue(2, nil)

	jobA, createdA := q.Enqueue(EnqueueRequest{
		Source:    "manual",
		DedupeKey: DedupeKeyForArticle(7),
		Payload:   JobPayload{ArticleID: 7, Direction: "english-to-telugu"},
	})
	jobB, createdB := q.Enqueue(EnqueueRequest{
		Source:    "cron",
		DedupeKey: DedupeKeyForArticle(7),
		Payload:   JobPayload{ArticleID: 7, Direction: "english-to-telugu"},
	})

	require.True(t, createdA)
	require.False(t, createdB)
	require.NotNil(t, jobA)
	require.NotNil(t, jobB)
	assert.Equal(t, jobA.ID, jobB.ID)
	assert.Equal(t, "manual", jobB.Source)
}

func TestQueue_Enqueue_PromotesPendingSource(t *testing.T) {
	q := NewQueue(1, nil)

	cronJob, _ := q.Enqueue(EnqueueRequest{
		Source:    "cron",
		DedupeKey: DedupeKeyForArticle(3),
		Payload:   JobPayload{ArticleID: 3},
	})
	manual, created := q.Enqueue(EnqueueRequest{
		Source:    "manual",
		DedupeKey: DedupeKeyForArticle(3),
		Payload:   JobPayload{ArticleID: 3},
		Promote:   true,
	})
	require.False(t, created)
	assert.Equal(t, cronJob.ID, manual.ID)
	assert.Equal(t, "manual", manual.Source)

	stored, ok := q.Get(cronJob.ID)
	require.True(t, ok)
	assert.Equal(t, "manual", stored.Source)

	// without Promote the pending source stays
	again, _ := q.Enqueue(EnqueueRequest{Source: "cron", DedupeKey: DedupeKeyForArticle(3)})
	assert.Equal(t, "manual", again.Source)
}

func TestQueue_Enqueue_AllowsRetryAfterFailure(t *testing.T) {
	q := NewQueue(1, nil)

	var attempts int
	q.Start(func(_ context.Context, _ *RetranslationJob) error {
		attempts++
		if attempts == 1 {
			return assert.AnError
		}
		return nil
	})
	defer q.Stop()

	first, created := q.Enqueue(EnqueueRequest{Source: "manual", DedupeKey: "retry-key"})
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, ok := q.Get(first.ID)
		return ok && got.Status == StatusFailed
	}, time.Second, 10*time.Millisecond)

	got, _ := q.Get(first.ID)
	assert.Equal(t, assert.AnError.Error(), got.Error)

	second, created := q.Enqueue(EnqueueRequest{Source: "manual", DedupeKey: "retry-key"})
	require.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)

	require.Eventually(t, func() bool {
		got, ok := q.Get(second.ID)
		return ok && got.Status == StatusSuccess
	}, time.Second, 10*time.Millisecond)
}

func TestQueue_SkippedJobs(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(func(_ context.Context, _ *RetranslationJob) error {
		return fmt.Errorf("article already translated: %w", ErrSkip)
	})
	defer q.Stop()

	job, _ := q.Enqueue(EnqueueRequest{Source: "cron", DedupeKey: DedupeKeyForArticle(1)})
	require.Eventually(t, func() bool {
		got, ok := q.Get(job.ID)
		return ok && got.Status == StatusSkipped
	}, time.Second, 10*time.Millisecond)

	_, created := q.Enqueue(EnqueueRequest{Source: "cron", DedupeKey: DedupeKeyForArticle(1)})
	assert.True(t, created)
}

func TestQueue_ListNewestFirst(t *testing.T) {
	q := NewQueue(1, nil)
	a, _ := q.Enqueue(EnqueueRequest{DedupeKey: "a"})
	b, _ := q.Enqueue(EnqueueRequest{DedupeKey: "b"})
	c, _ := q.Enqueue(EnqueueRequest{DedupeKey: "c"})

	list := q.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestQueue_PrunesOldestTerminalJobs(t *testing.T) {
	q := NewQueue(1, nil, WithMaxJobs(2))
	q.Start(func(_ context.Context, _ *RetranslationJob) error { return nil })
	defer q.Stop()

	for i := 0; i < 4; i++ {
		job, _ := q.Enqueue(EnqueueRequest{DedupeKey: DedupeKeyForArticle(int64(i))})
		require.Eventually(t, func() bool {
			got, ok := q.Get(job.ID)
			return !ok || got.Status == StatusSuccess
		}, time.Second, 10*time.Millisecond)
	}
	assert.LessOrEqual(t, len(q.List()), 2)
}

func TestQueue_StopCancelsRunningExecutor(t *testing.T) {
	q := NewQueue(1, nil)
	started := make(chan struct{})
	q.Start(func(ctx context.Context, _ *RetranslationJob) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	q.Enqueue(EnqueueRequest{DedupeKey: "slow"})
	<-started

	done := make(chan struct{})
	go func() {
		q.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
