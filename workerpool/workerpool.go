// Package workerpool runs independent partitions of work on a bounded number
// of goroutines and joins them before returning.
package workerpool

import (
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"imagesearch/types"
)

// Pool bounds the number of partitions processed at the same time.
// The zero value runs one goroutine per available CPU.
type Pool struct {
	limit int
}

// New returns a pool running at most limit partitions concurrently.
// A limit below one uses the number of CPUs.
func New(limit int) *Pool {
	if limit < 1 {
		limit = runtime.NumCPU()
	}
	return &Pool{limit: limit}
}

// Limit returns the maximum number of concurrently running partitions.
func (p *Pool) Limit() int {
	if p == nil || p.limit < 1 {
		return runtime.NumCPU()
	}
	return p.limit
}

// Run calls fn once for every partition index in [0, n) and returns the
// results ordered by partition index. Run returns only after every started
// partition has finished. If partitions fail, the error of the lowest failing
// partition is returned. A panic inside fn is reported as *types.WorkerFailure.
func Run[T any](p *Pool, n int, fn func(partition int) (T, error)) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}

	results := make([]T, n)
	errs := make([]error, n)

	var g errgroup.Group
	g.SetLimit(min(p.Limit(), n))

	for i := range n {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = &types.WorkerFailure{Partition: i, Value: r, Stack: debug.Stack()}
				}
			}()
			results[i], errs[i] = fn(i)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
