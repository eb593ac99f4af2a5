package encoding

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/ltsm-go/connector/internal/logging"
)

var log = logging.L("encoding")

// Task is a unit of work submitted to the pool: encode one tile and hand
// the result to the connection's send path.
type Task func()

// Pool is a bounded goroutine pool with a fixed-size task queue, used to
// parallelize tile encoding across a connection's damage region. The
// shape is the same bounded-worker/buffered-queue/WaitGroup pattern used
// elsewhere in this codebase for background work; callers that write to a
// shared transport.Stream from within a Task are responsible for holding
// that connection's send mutex around the write, since Send/SendFlush are
// not safe for concurrent use.
type Pool struct {
	maxWorkers int
	queue      chan Task
	wg         sync.WaitGroup
	accepting  atomic.Bool
	stopOnce   sync.Once
	closeOnce  sync.Once
	stopChan   chan struct{}
}

// New creates a pool with maxWorkers goroutines and a task queue of queueSize.
func New(maxWorkers, queueSize int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	p := &Pool{
		maxWorkers: maxWorkers,
		queue:      make(chan Task, queueSize),
		stopChan:   make(chan struct{}),
	}
	p.accepting.Store(true)

	for i := 0; i < maxWorkers; i++ {
		go p.worker()
	}

	log.Info("encoding pool started", "workers", maxWorkers, "queueSize", queueSize)
	return p
}

// Submit enqueues a task. Returns false if the pool is stopped or the queue
// is full. wg.Add is called here (before enqueue) to prevent a race with
// Drain.
func (p *Pool) Submit(task Task) bool {
	if !p.accepting.Load() {
		return false
	}

	p.wg.Add(1)
	select {
	case p.queue <- task:
		return true
	default:
		p.wg.Done()
		log.Warn("encoding pool queue full, tile dropped")
		return false
	}
}

// StopAccepting prevents new tasks from being submitted.
func (p *Pool) StopAccepting() {
	p.accepting.Store(false)
}

// Drain waits for all in-flight and queued tasks to complete, respecting
// the context deadline. Call StopAccepting first to prevent new
// submissions. After Drain returns, the queue channel is closed so worker
// goroutines exit.
func (p *Pool) Drain(ctx context.Context) {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("encoding pool drained")
	case <-ctx.Done():
		log.Warn("encoding pool drain timed out")
	}

	p.closeOnce.Do(func() {
		close(p.queue)
	})
}

func (p *Pool) worker() {
	for {
		select {
		case task, ok := <-p.queue:
			if !ok {
				return
			}
			p.runTask(task)
		case <-p.stopChan:
			for {
				select {
				case task, ok := <-p.queue:
					if !ok {
						return
					}
					p.runTask(task)
				default:
					return
				}
			}
		}
	}
}

// runTask executes a single task with panic recovery. wg.Done is called
// here to match the wg.Add in Submit.
func (p *Pool) runTask(task Task) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error("encoding task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task()
}
