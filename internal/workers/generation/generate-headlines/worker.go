// internal/workers/generation/generate-headlines/worker.go
package generateheadlines

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/common/metrics"
	"headline-generator/internal/models"
)

// settleTimeout bounds Complete and Fail calls once the run context is gone.
const settleTimeout = 5 * time.Second

// TaskSource hands out tasks and takes their acknowledgement. Next returns
// nil, nil when nothing is pending.
type TaskSource interface {
	Next(ctx context.Context) (*models.Task, error)
	Complete(ctx context.Context, task *models.Task, result models.TaskResult) error
	Fail(ctx context.Context, task *models.Task, cause error) error
}

// TaskHandler processes one task.
type TaskHandler interface {
	Handle(ctx context.Context, task *models.Task) (models.TaskResult, error)
}

// Worker is the long-running production loop. Start and Stop may be called
// from any goroutine; Stop blocks for at most StopTimeout.
type Worker struct {
	config  *Config
	source  TaskSource
	handler TaskHandler
	logger  logger.Logger

	mu     sync.Mutex
	state  atomic.Int32
	stopCh chan struct{}
	done   chan struct{}
	cancel context.CancelFunc

	startedAt atomic.Pointer[time.Time]
	processed atomic.Int64
	failed    atomic.Int64
	lastErr   atomic.Pointer[string]
}

func NewWorker(config *Config, source TaskSource, handler TaskHandler, log logger.Logger) *Worker {
	return &Worker{
		config:  config,
		source:  source,
		handler: handler,
		logger: log.WithFields(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (w *Worker) State() State {
	return State(w.state.Load())
}

func (w *Worker) Status() Status {
	s := Status{
		State:     w.State(),
		StartedAt: w.startedAt.Load(),
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
	}
	if e := w.lastErr.Load(); e != nil {
		s.LastError = *e
	}
	return s
}

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
	metrics.WorkerState.Set(float64(s))
}

// Start launches the loop. It fails with ErrAlreadyRunning unless the
// worker is stopped.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if st := w.State(); st != StateStopped {
		return apperrors.NewWorkerStateError(apperrors.ErrCodeWorkerAlreadyRunning, st.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	w.cancel = cancel

	now := time.Now().UTC()
	w.startedAt.Store(&now)
	w.setState(StateRunning)

	go w.run(ctx, w.stopCh, w.done)

	w.logger.Info("worker started", map[string]interface{}{
		"batchSize":   w.config.BatchSize,
		"idleBackoff": w.config.IdleBackoff.String(),
	})
	return nil
}

// Stop signals the loop and waits up to StopTimeout for it to exit. When the
// loop overruns, its context is cancelled and it is abandoned; the worker
// still ends up STOPPED.
func (w *Worker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if st := w.State(); st != StateRunning {
		return apperrors.NewWorkerStateError(apperrors.ErrCodeWorkerNotRunning, st.String())
	}

	w.setState(StateStopping)
	close(w.stopCh)

	timer := time.NewTimer(w.config.StopTimeout)
	defer timer.Stop()

	select {
	case <-w.done:
		w.logger.Info("worker stopped", nil)
	case <-timer.C:
		w.logger.Warn("worker did not stop within grace period", map[string]interface{}{
			"errorCode": apperrors.ErrCodeWorkerShutdownTimeout,
			"grace":     w.config.StopTimeout.String(),
		})
	}

	w.cancel()
	w.startedAt.Store(nil)
	w.setState(StateStopped)
	return nil
}

func (w *Worker) run(ctx context.Context, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		task, err := w.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.noteError(err)
			w.logger.Error("fetch task failed", map[string]interface{}{
				"error":     err.Error(),
				"errorCode": apperrors.CodeOf(err),
			})
			if !w.idle(ctx, stopCh) {
				return
			}
			continue
		}

		if task == nil {
			if !w.idle(ctx, stopCh) {
				return
			}
			continue
		}

		w.process(ctx, task)
	}
}

// idle waits IdleBackoff and reports whether the loop should continue.
func (w *Worker) idle(ctx context.Context, stopCh <-chan struct{}) bool {
	t := time.NewTimer(w.config.IdleBackoff)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

// process runs one task; a panic fails that task only.
func (w *Worker) process(ctx context.Context, task *models.Task) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("task panicked: %v", r)
			w.fail(ctx, task, err)
		}
	}()

	result, err := w.handler.Handle(ctx, task)
	if err != nil {
		w.fail(ctx, task, err)
		return
	}

	w.processed.Add(1)
	settleCtx, cancel := settleContext(ctx)
	defer cancel()
	if err := w.source.Complete(settleCtx, task, result); err != nil {
		w.logger.Error("complete task failed", map[string]interface{}{
			"taskId": task.ID,
			"error":  err.Error(),
		})
	}
}

func (w *Worker) fail(ctx context.Context, task *models.Task, cause error) {
	w.failed.Add(1)
	w.noteError(cause)
	w.logger.Error("task failed", map[string]interface{}{
		"taskId":    task.ID,
		"error":     cause.Error(),
		"errorCode": apperrors.CodeOf(cause),
		"retryable": apperrors.IsRetryable(cause),
	})
	settleCtx, cancel := settleContext(ctx)
	defer cancel()
	if err := w.source.Fail(settleCtx, task, cause); err != nil {
		w.logger.Error("fail task failed", map[string]interface{}{
			"taskId": task.ID,
			"error":  err.Error(),
		})
	}
}

// settleContext outlives a forced stop so a task already taken from the
// source is still acknowledged or dead-lettered.
func settleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
}

func (w *Worker) noteError(err error) {
	msg := err.Error()
	w.lastErr.Store(&msg)
}
