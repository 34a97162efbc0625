package worker

import (
	"context"
	"log"
	"sync"
	"time"
)

// PushJob is one device notification to deliver.
type PushJob struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// PushSender delivers a single notification to a device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// PushWorker drains a bounded queue of push jobs with a small pool of
// goroutines. Delivery is best effort: a full queue drops the job, failed
// sends are retried a couple of times and then abandoned, and nothing ever
// propagates back to the request path.
type PushWorker struct {
	Sender PushSender
	Logger *log.Logger

	jobs        chan PushJob
	workers     int
	sendTimeout time.Duration
	maxAttempts int
	retryDelay  time.Duration
}

func NewPushWorker(sender PushSender, logger *log.Logger, queueSize, workers int) *PushWorker {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 4
	}
	return &PushWorker{
		Sender:      sender,
		Logger:      logger,
		jobs:        make(chan PushJob, queueSize),
		workers:     workers,
		sendTimeout: 10 * time.Second,
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
	}
}

// Enqueue submits a job without blocking. Returns false when the queue is
// full and the job was dropped.
func (pw *PushWorker) Enqueue(job PushJob) bool {
	if job.Token == "" {
		return false
	}
	select {
	case pw.jobs <- job:
		return true
	default:
		pw.Logger.Printf("push queue full, dropping notification %q", job.Title)
		return false
	}
}

// Start runs the worker pool until the context is cancelled.
func (pw *PushWorker) Start(ctx context.Context) {
	pw.Logger.Printf("push worker started (%d workers)", pw.workers)

	var wg sync.WaitGroup
	for i := 0; i < pw.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pw.run(ctx)
		}()
	}
	wg.Wait()
	pw.Logger.Println("push worker shutting down...")
}

func (pw *PushWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-pw.jobs:
			pw.deliver(ctx, job)
		}
	}
}

// deliver attempts the send with a per-attempt timeout and fixed backoff
// between attempts. Failures are logged and swallowed.
func (pw *PushWorker) deliver(ctx context.Context, job PushJob) {
	var lastErr error
	for attempt := 1; attempt <= pw.maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, pw.sendTimeout)
		lastErr = pw.Sender.Send(sendCtx, job.Token, job.Title, job.Body, job.Data)
		cancel()

		if lastErr == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		if attempt < pw.maxAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(pw.retryDelay):
			}
		}
	}
	pw.Logger.Printf("push delivery failed after %d attempts: %v", pw.maxAttempts, lastErr)
}
