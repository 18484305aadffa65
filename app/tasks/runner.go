package tasks

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

const timeRound = 10 * time.Millisecond

// Runner executes tasks sequentially, in configured order. One event's
// failure never stops the events after it. The target repository assumes a
// single writer, so there is no worker pool.
type Runner struct {
	tasks []TaskInterface
}

func NewRunner(tasks []TaskInterface) *Runner {
	return &Runner{tasks: tasks}
}

// Run executes every task and renders a summary table. The return value is
// the number of failed tasks.
func (r *Runner) Run(ctx context.Context) int {
	failed := 0

	summary := table.NewWriter()
	summary.SetOutputMirror(os.Stdout)
	summary.AppendHeader(table.Row{"Event", "Status", "Duration"})

	for _, t := range r.tasks {
		t.Start()

		status := "scraped"
		err := t.Execute(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrAlreadyScraped):
			status = "skipped"
			slog.Warn("Event skipped", "event", t.GetEventName(), "reason", err)
		default:
			status = "failed"
			failed++
			slog.Error("Event failed", "event", t.GetEventName(), "error", err)
		}

		summary.AppendRow(table.Row{t.GetEventName(), status, t.GetDuration().Round(timeRound)})

		if ctx.Err() != nil {
			break
		}
	}

	summary.Render()

	return failed
}
