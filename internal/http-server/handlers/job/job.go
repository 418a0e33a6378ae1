package job

import (
	"time"
)

type Job interface {
	Execute()
}

type JobQueue chan Job

// NewQueue returns a buffered queue. Each owner constructs its own queue
// and pool; there is no process-wide queue.
func NewQueue(size int) JobQueue {
	return make(JobQueue, size)
}

// Dispatch enqueues a job after the given delay.
func Dispatch(queue JobQueue, j Job, delay time.Duration) {
	go func() {
		<-time.After(delay)
		queue <- j
	}()
}

type WorkerPool struct {
	workers []Worker
}

func NewWorkerPool(size int, queue JobQueue) *WorkerPool {
	workers := make([]Worker, size)
	for i := 0; i < size; i++ {
		workers[i] = NewWorker(queue)
	}
	return &WorkerPool{workers}
}

func (p *WorkerPool) Start() {
	for _, worker := range p.workers {
		worker.Start()
	}
}

type Worker struct {
	jobQueue JobQueue
}

func NewWorker(jobQueue JobQueue) Worker {
	return Worker{jobQueue}
}

func (w *Worker) Start() {
	go func() {
		for j := range w.jobQueue {
			j.Execute()
		}
	}()
}
