package mesh

import (
	"context"
	"sync"

	"voxelgfx/internal/block"
	"voxelgfx/internal/world"
)

// Job represents a chunk bake request
type Job[T any] struct {
	Chunk    *world.Chunk
	Provider world.BlockStateProvider
	Filter   Filter
	// Generation lets the consumer discard results from superseded
	// requests; the pool only carries it through.
	Generation uint64
	// Result channel - will be sent the result when done
	ResultChan chan Result[T]
}

// Result contains the output of one bake
type Result[T any] struct {
	Chunk      *world.Chunk
	Generation uint64
	Vertices   []T
}

// Pool manages goroutines for chunk baking
type Pool[T any] struct {
	mgr      *block.Manager
	mapper   Mapper[T]
	jobQueue chan Job[T]
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewPool creates a new bake worker pool
func NewPool[T any](mgr *block.Manager, mapper Mapper[T], workers int, queueSize int) *Pool[T] {
	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool[T]{
		mgr:      mgr,
		mapper:   mapper,
		jobQueue: make(chan Job[T], queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// SubmitJob submits a bake job to the pool
// Returns true if job was submitted successfully, false if queue is full
func (p *Pool[T]) SubmitJob(job Job[T]) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false // Queue is full
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued
func (p *Pool[T]) SubmitJobBlocking(job Job[T]) {
	select {
	case p.jobQueue <- job:
	case <-p.ctx.Done():
	}
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			vertices := Bake(p.mgr, job.Chunk, p.mapper, job.Filter, job.Provider)

			result := Result[T]{
				Chunk:      job.Chunk,
				Generation: job.Generation,
				Vertices:   vertices,
			}

			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown gracefully shuts down the worker pool
func (p *Pool[T]) Shutdown() {
	p.cancel()
	close(p.jobQueue)
	p.wg.Wait()
}

// GetQueueLength returns the current number of jobs in the queue
func (p *Pool[T]) GetQueueLength() int {
	return len(p.jobQueue)
}
