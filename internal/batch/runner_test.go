package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_BatchesRunConcurrentlyAndAreSpacedByDelay(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	delay := 40 * time.Millisecond

	var mu sync.Mutex
	batchStart := map[int]time.Time{}
	var inFlight, peak int32

	fn := func(ctx context.Context, item int) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		mu.Lock()
		b := (item - 1) / 3
		if _, ok := batchStart[b]; !ok {
			batchStart[b] = time.Now()
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	}

	report, err := Run(context.Background(), items, fn, Options[int]{BatchSize: 3, Delay: delay})
	require.NoError(t, err)

	assert.Equal(t, Report{Total: 7, Succeeded: 7, Batches: 3}, report)
	assert.Equal(t, int32(3), atomic.LoadInt32(&peak), "a full batch runs concurrently and never exceeds batch size")
	assert.GreaterOrEqual(t, batchStart[1].Sub(batchStart[0]), delay)
	assert.GreaterOrEqual(t, batchStart[2].Sub(batchStart[1]), delay)
}

func TestRun_ItemsInBatchStartTogether(t *testing.T) {
	var started sync.WaitGroup
	started.Add(3)
	release := make(chan struct{})

	go func() {
		started.Wait()
		close(release)
	}()

	fn := func(ctx context.Context, item string) error {
		started.Done()
		select {
		case <-release:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("siblings never started")
		}
	}

	var failures int32
	_, err := Run(context.Background(), []string{"a", "b", "c"}, fn, Options[string]{
		BatchSize: 3,
		OnError:   func(string, error) { atomic.AddInt32(&failures, 1) },
	})
	require.NoError(t, err)
	assert.Zero(t, atomic.LoadInt32(&failures))
}

func TestRun_FailuresAreIsolated(t *testing.T) {
	var mu sync.Mutex
	var done []int
	failed := map[int]error{}

	fn := func(ctx context.Context, item int) error {
		switch item {
		case 2:
			return errors.New("provider exploded")
		case 3:
			panic("nil map")
		}
		mu.Lock()
		done = append(done, item)
		mu.Unlock()
		return nil
	}

	report, err := Run(context.Background(), []int{1, 2, 3, 4}, fn, Options[int]{
		BatchSize: 4,
		OnError: func(item int, err error) {
			mu.Lock()
			failed[item] = err
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{1, 4}, done)
	assert.Len(t, failed, 2)
	assert.EqualError(t, failed[2], "provider exploded")
	assert.Contains(t, failed[3].Error(), "panic")
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 2, report.Succeeded)
}

func TestRun_ContextCancelledBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32

	fn := func(ctx context.Context, item int) error {
		atomic.AddInt32(&calls, 1)
		cancel()
		return nil
	}

	report, err := Run(ctx, []int{1, 2, 3}, fn, Options[int]{BatchSize: 1, Delay: time.Second})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, report.Batches)
}

func TestRun_Empty(t *testing.T) {
	report, err := Run(context.Background(), nil, func(context.Context, int) error { return nil }, Options[int]{})
	require.NoError(t, err)
	assert.Zero(t, report.Batches)
}
