package scheduler

import (
	"context"
	"fmt"
	"log/slog"
)

// Refresher reloads the served articles.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type RefreshTask struct {
	Task
	refresher Refresher
}

func NewRefreshTask(refresher Refresher) *RefreshTask {
	return &RefreshTask{
		Task:      NewTask(TaskTypeRefreshArticles),
		refresher: refresher,
	}
}

func (t *RefreshTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh articles: %w", err)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"id", t.ID,
		"duration", t.GetDuration())

	return nil
}
