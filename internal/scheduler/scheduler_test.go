package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingJob struct {
	runs   atomic.Int32
	err    error
	panics bool
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.panics {
		panic("boom")
	}
	return j.err
}

func TestSchedulerRunsJobsUntilCancelled(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	ok := &countingJob{}
	failing := &countingJob{err: errors.New("boom")}
	panicking := &countingJob{panics: true}
	s.AddJob(failing)
	s.AddJob(panicking)
	s.AddJob(ok)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return ok.runs.Load() >= 2 }, time.Second, 5*time.Millisecond,
		"ошибка или паника одной задачи не должна останавливать остальные")
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("планировщик не остановился после отмены контекста")
	}
	assert.GreaterOrEqual(t, failing.runs.Load(), int32(2))
}

type fakeCleaner struct {
	maxFiles int
	removed  int
	err      error
}

func (f *fakeCleaner) CleanupOldFiles(maxFiles int) (int, error) {
	f.maxFiles = maxFiles
	return f.removed, f.err
}

func TestAudioCleanupJob(t *testing.T) {
	cleaner := &fakeCleaner{removed: 3}
	job := NewAudioCleanupJob(cleaner, 50, zap.NewNop())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 50, cleaner.maxFiles)

	cleaner.err = errors.New("permission denied")
	assert.ErrorContains(t, job.Run(context.Background()), "permission denied")
}

type fakePruner struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakePruner) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return 4, f.err
}

func TestSessionRetentionJob(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	pruner := &fakePruner{}
	job := NewSessionRetentionJob(pruner, 30, zap.NewNop())
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.AddDate(0, 0, -30), pruner.cutoff)

	pruner.err = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))
}

func TestSessionRetentionJobDisabled(t *testing.T) {
	pruner := &fakePruner{}
	job := NewSessionRetentionJob(pruner, 0, zap.NewNop())

	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, pruner.calls, "нулевой срок хранения отключает удаление")
}

func TestAudioCleanupJobName(t *testing.T) {
	assert.Equal(t, "audio_cleanup", NewAudioCleanupJob(&fakeCleaner{}, 1, zap.NewNop()).Name())
	assert.Equal(t, "session_retention", NewSessionRetentionJob(&fakePruner{}, 1, zap.NewNop()).Name())
}
