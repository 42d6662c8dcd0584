package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/strategy"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/trader"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// Job is one independent strategy/instrument/risk run. Runs share no
// mutable state, so the pool parallelizes at whole-run granularity only;
// the bar loop inside a run is never split.
type Job struct {
	Name     string
	Bars     []types.Bar
	Strategy strategy.Strategy
	Trader   *trader.Trader
}

// Result is a finished job.
type Result struct {
	Name     string
	Run      *RunResult
	Duration time.Duration
	Error    error
}

// WorkerPool executes backtest jobs in parallel.
type WorkerPool struct {
	workerCount int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewWorkerPool sizes the pool; workerCount <= 0 uses all CPUs.
func NewWorkerPool(workerCount, jobBufferSize int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workerCount: workerCount,
		jobQueue:    make(chan Job, jobBufferSize),
		resultQueue: make(chan Result, jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop drains the queue and shuts the pool down.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit queues a job, failing only if the pool is shutting down.
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Results returns the channel completed jobs arrive on.
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			started := time.Now()
			run, err := Run(job.Name, job.Strategy, job.Trader, job.Bars)
			result := Result{
				Name:     job.Name,
				Run:      run,
				Duration: time.Since(started),
				Error:    err,
			}
			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}
		case <-wp.ctx.Done():
			return
		}
	}
}
