package queue_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"ShipRank/internal/config"
	"ShipRank/internal/queue"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecomputer 统计每个项目被重算的次数，可配置前几次失败
type fakeRecomputer struct {
	mu        sync.Mutex
	calls     map[uint64]int
	failFirst int
}

func newFakeRecomputer(failFirst int) *fakeRecomputer {
	return &fakeRecomputer{calls: make(map[uint64]int), failFirst: failFirst}
}

func (f *fakeRecomputer) Recompute(ctx context.Context, projectID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[projectID]++
	if f.calls[projectID] <= f.failFirst {
		return errors.New("storage unavailable")
	}
	return nil
}

func (f *fakeRecomputer) callCount(projectID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[projectID]
}

func newQueueLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func queueConfig() *config.StatsConfig {
	return &config.StatsConfig{
		QueueSize:  8,
		Workers:    2,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestQueueProcessesTask(t *testing.T) {
	rec := newFakeRecomputer(0)
	q := queue.NewRecalcQueue(rec, newQueueLogger(), queueConfig())
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	assert.True(t, q.Enqueue(42))
	waitFor(t, time.Second, func() bool { return rec.callCount(42) == 1 })

	cancel()
	require.NoError(t, q.Wait())
}

func TestQueueRetriesOnFailure(t *testing.T) {
	rec := newFakeRecomputer(2)
	q := queue.NewRecalcQueue(rec, newQueueLogger(), queueConfig())
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	assert.True(t, q.Enqueue(7))
	// 前两次失败后第三次成功
	waitFor(t, time.Second, func() bool { return rec.callCount(7) == 3 })

	cancel()
	require.NoError(t, q.Wait())
}

func TestEnqueueReturnsFalseWhenFull(t *testing.T) {
	rec := newFakeRecomputer(0)
	q := queue.NewRecalcQueue(rec, newQueueLogger(), &config.StatsConfig{
		QueueSize:  1,
		Workers:    1,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	// 未启动 worker，第二次投递必然队列已满
	assert.True(t, q.Enqueue(1))
	assert.False(t, q.Enqueue(2))
}
