package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePruner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakePruner) Prune() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 1, f.err
}

func (f *fakePruner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestBackupPrunerRunsOnTick(t *testing.T) {
	pruner := &fakePruner{err: errors.New("disk gone")}
	job := NewBackupPruner(pruner)
	job.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pruner.Calls() >= 2 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

type fakeChangeLog struct {
	before []int64
}

func (f *fakeChangeLog) DeleteBefore(before int64) (int64, error) {
	f.before = append(f.before, before)
	return 0, nil
}

func TestChangeLogCompactorCutoff(t *testing.T) {
	repo := &fakeChangeLog{}
	c := NewChangeLogCompactor(repo, 30)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.run()
	assert.Equal(t, []int64{now.AddDate(0, 0, -30).UnixMilli()}, repo.before)
}

func TestChangeLogCompactorDisabled(t *testing.T) {
	repo := &fakeChangeLog{}
	c := NewChangeLogCompactor(repo, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	assert.Empty(t, repo.before)
}

type fakeTracker struct {
	mu    sync.Mutex
	swept int
}

func (f *fakeTracker) Sweep() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swept++
	return 1
}

func (f *fakeTracker) Window() time.Duration { return 2 * time.Millisecond }

func (f *fakeTracker) Swept() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.swept
}

func TestAttemptSweeper(t *testing.T) {
	tracker := &fakeTracker{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go NewAttemptSweeper(tracker).Start(ctx)
	assert.Eventually(t, func() bool { return tracker.Swept() >= 1 }, time.Second, time.Millisecond)
}
