// Package workers runs bounded numbers of goroutines over a slice of inputs.
package workers

import (
	"context"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
)

// DefaultMaxWorkers bounds concurrency when no explicit size is given
const DefaultMaxWorkers = 8

// Pool manages a fixed number of worker slots
type Pool struct {
	maxWorkers int
	semaphore  chan struct{}
}

// NewPool creates a new pool with the specified maximum workers
func NewPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &Pool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// Size returns the number of worker slots
func (p *Pool) Size() int {
	return p.maxWorkers
}

// Acquire acquires a worker slot, blocking if all workers are busy
func (p *Pool) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release releases a worker slot, allowing another worker to proceed
func (p *Pool) Release() {
	<-p.semaphore
}

// ParallelProcess calls processFn for every item using at most maxWorkers
// goroutines. Results keep the order of items. The first error encountered
// is returned and the results are discarded.
func ParallelProcess[T any, R any](
	ctx context.Context,
	items []T,
	maxWorkers int,
	log logger.Logger,
	processFn func(context.Context, int, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	pool := NewPool(maxWorkers)
	results := make([]R, len(items))

	type result struct {
		index int
		value R
		err   error
	}
	resultChan := make(chan result, len(items))

	started := 0
	var spawnErr error
	for i, item := range items {
		if err := pool.Acquire(ctx); err != nil {
			spawnErr = err
			break
		}
		started++

		go func(idx int, itm T) {
			defer pool.Release()

			if err := ctx.Err(); err != nil {
				var zero R
				resultChan <- result{index: idx, value: zero, err: err}
				return
			}

			val, err := processFn(ctx, idx, itm)
			resultChan <- result{index: idx, value: val, err: err}
		}(i, item)
	}

	if spawnErr != nil {
		log.Warn("Stopped scheduling after %d of %d items: %v", started, len(items), spawnErr)
	}

	firstError := spawnErr
	for range started {
		res := <-resultChan
		if res.err != nil && firstError == nil {
			firstError = res.err
		}
		results[res.index] = res.value
	}

	if firstError != nil {
		return nil, firstError
	}
	return results, nil
}
