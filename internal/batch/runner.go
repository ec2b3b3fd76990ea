// Package batch drives independent per-item jobs in fixed-size concurrent batches
// separated by a delay, so a rate-limited upstream is never hit by more than
// BatchSize calls at once.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/remeh/sizedwaitgroup"
)

const DefaultBatchSize = 5

type Options[T any] struct {
	BatchSize int
	Delay     time.Duration
	// OnError receives every per-item failure, including recovered panics.
	OnError func(item T, err error)
}

// Report summarises a run.
type Report struct {
	Total     int
	Succeeded int
	Failed    int
	Batches   int
}

// Run processes items in their original order, BatchSize at a time. All items of a
// batch run concurrently and the whole batch settles before the delay and the next
// batch; one item failing never affects its siblings. Per-item errors go to OnError.
// The returned error is non-nil only when ctx ends before every batch was started.
func Run[T any](ctx context.Context, items []T, fn func(ctx context.Context, item T) error, opts Options[T]) (Report, error) {
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	report := Report{Total: len(items)}
	var mu sync.Mutex

	for start := 0; start < len(items); start += size {
		if start > 0 && opts.Delay > 0 {
			timer := time.NewTimer(opts.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return report, ctx.Err()
			case <-timer.C:
			}
		}

		end := start + size
		if end > len(items) {
			end = len(items)
		}

		swg := sizedwaitgroup.New(size)
		for _, item := range items[start:end] {
			swg.Add()
			go func(item T) {
				defer swg.Done()
				err := runItem(ctx, item, fn)

				mu.Lock()
				if err != nil {
					report.Failed++
				} else {
					report.Succeeded++
				}
				mu.Unlock()

				if err != nil && opts.OnError != nil {
					opts.OnError(item, err)
				}
			}(item)
		}
		swg.Wait()
		report.Batches++
	}

	return report, nil
}

func runItem[T any](ctx context.Context, item T, fn func(ctx context.Context, item T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, item)
}
