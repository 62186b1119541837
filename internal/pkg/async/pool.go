// Package async runs named, independent tasks on a bounded worker pool.
// The metrics handler uses it to fan out the aggregation pipelines of one
// request; pipelines have no ordering dependency, so they may run
// concurrently against the store.
package async

import (
	"context"
	"sync"
)

// Task is a named unit of work.
type Task struct {
	Name    string
	Execute func() (interface{}, error)
}

// Result holds a task's outcome keyed by its name.
type Result struct {
	Name string
	Data interface{}
	Err  error
}

// Pool executes batches of tasks with bounded concurrency.
type Pool struct {
	workerCount int
}

// NewPool creates a pool that runs at most workerCount tasks at once.
func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

// Execute runs all tasks and returns their results keyed by task name.
// It returns when every started task has finished or the context is
// cancelled; tasks not yet started when the context ends are skipped.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	queue := make(chan Task)

	var mu sync.Mutex
	results := make(map[string]Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				data, err := task.Execute()
				mu.Lock()
				results[task.Name] = Result{Name: task.Name, Data: data, Err: err}
				mu.Unlock()
			}
		}()
	}

	for _, task := range tasks {
		select {
		case queue <- task:
		case <-ctx.Done():
			close(queue)
			wg.Wait()
			return results
		}
	}
	close(queue)
	wg.Wait()

	return results
}
