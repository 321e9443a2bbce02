// Package workerpool runs independent jobs on a bounded set of goroutines.
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

// MaxWorkers caps the number of goroutines a pool starts.
const MaxWorkers = 32

// Pool distributes jobs across workers and collects their results.
type Pool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// DefaultWorkers returns GOMAXPROCS capped at MaxWorkers.
func DefaultWorkers() int {
	return min(runtime.GOMAXPROCS(0), MaxWorkers)
}

// New creates a pool for numJobs jobs.
// If numWorkers is 0 or negative, it defaults to DefaultWorkers.
// If numJobs is less than numWorkers, the pool is sized to match numJobs.
func New[Job any, Result any](numWorkers, numJobs int) *Pool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers()
	}
	numWorkers = min(numWorkers, MaxWorkers)
	if numJobs > 0 {
		numWorkers = min(numWorkers, numJobs)
	}

	return &Pool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, max(numJobs, 0)),
		results:    make(chan Result, max(numJobs, 0)),
	}
}

// Workers returns the number of goroutines Start launches.
func (p *Pool[Job, Result]) Workers() int {
	return p.numWorkers
}

// Start launches the workers. workerFn is called once per job with ctx;
// it decides itself what to return for a cancelled context.
func (p *Pool[Job, Result]) Start(ctx context.Context, workerFn func(context.Context, Job) Result) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.results <- workerFn(ctx, job)
			}
		}()
	}
}

// Submit adds a job to the queue.
func (p *Pool[Job, Result]) Submit(job Job) {
	p.jobs <- job
}

// Close closes the job queue. The results channel is closed once every
// worker has finished.
func (p *Pool[Job, Result]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results returns the channel of worker outputs.
func (p *Pool[Job, Result]) Results() <-chan Result {
	return p.results
}

// Map runs fn over jobs with at most numWorkers goroutines and returns the
// results in job order.
func Map[Job any, Result any](ctx context.Context, numWorkers int, jobs []Job, fn func(context.Context, Job) Result) []Result {
	type indexed struct {
		i int
		r Result
	}

	pool := New[int, indexed](numWorkers, len(jobs))
	pool.Start(ctx, func(ctx context.Context, i int) indexed {
		return indexed{i: i, r: fn(ctx, jobs[i])}
	})
	for i := range jobs {
		pool.Submit(i)
	}
	pool.Close()

	out := make([]Result, len(jobs))
	for res := range pool.Results() {
		out[res.i] = res.r
	}
	return out
}
