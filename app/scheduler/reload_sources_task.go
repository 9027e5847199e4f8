package scheduler

import (
	"context"
	"fmt"
	"log/slog"
)

// SourceLoader re-reads the feed source definitions.
type SourceLoader interface {
	Run() error
	GetConfigCount() int
}

type ReloadSourcesTask struct {
	Task
	sources SourceLoader
}

func NewReloadSourcesTask(sources SourceLoader) *ReloadSourcesTask {
	return &ReloadSourcesTask{
		Task:    NewTask(TaskTypeReloadSources),
		sources: sources,
	}
}

func (t *ReloadSourcesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.sources.Run(); err != nil {
		return fmt.Errorf("failed to reload feed sources: %w", err)
	}

	slog.Debug("Task completed",
		"type", string(t.Type),
		"id", t.ID,
		"sources", t.sources.GetConfigCount(),
		"duration", t.GetDuration())

	return nil
}
