package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	taskQueueSize = 16
	taskTimeout   = 5 * time.Minute
)

// Scheduler refreshes articles on a fixed interval. Feed sources, when given,
// are reloaded before each refresh so edits to their files take effect.
// A single worker runs the queued tasks in order.
type Scheduler struct {
	refresher Refresher
	sources   SourceLoader
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

// NewScheduler builds a scheduler. sources may be nil; interval <= 0 disables it.
func NewScheduler(refresher Refresher, sources SourceLoader, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		refresher: refresher,
		sources:   sources,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, taskQueueSize),
	}
}

func (s *Scheduler) Start() {
	if s.interval <= 0 {
		slog.Info("Periodic refresh disabled")
		return
	}

	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

	slog.Info("Scheduler started", "interval", s.interval.String())
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	if s.sources != nil {
		if err := s.EnqueueTask(NewReloadSourcesTask(s.sources)); err != nil {
			slog.Warn("Failed to enqueue ReloadSourcesTask", "error", err)
		}
	}

	if err := s.EnqueueTask(NewRefreshTask(s.refresher)); err != nil {
		slog.Warn("Failed to enqueue RefreshTask", "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration(), "error", err)
	}
}
