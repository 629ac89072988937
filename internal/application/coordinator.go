package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/model"
)

// WorkflowRunner runs one account's workflow to a terminal outcome.
type WorkflowRunner interface {
	Run(ctx context.Context, acct model.Account) model.Outcome
}

// Coordinator launches one workflow per account concurrently and aggregates
// their terminal outcomes. A fault in one workflow, panics included, never
// affects another.
type Coordinator struct {
	runner WorkflowRunner
}

// NewCoordinator creates a Coordinator over the given runner.
func NewCoordinator(runner WorkflowRunner) *Coordinator {
	return &Coordinator{runner: runner}
}

// RunAll runs every account's workflow in its own goroutine, blocks until
// all reach a terminal state, and returns the aggregate summary. Exactly one
// outcome is collected per account.
func (c *Coordinator) RunAll(ctx context.Context, accounts []model.Account) model.Summary {
	outcomes := make(chan model.Outcome, len(accounts))

	var wg sync.WaitGroup
	for _, acct := range accounts {
		wg.Add(1)
		go func(acct model.Account) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("workflow panicked", "account", acct.Phone, "panic", r)
					outcomes <- model.Fault(acct.Phone, fmt.Errorf("workflow panic: %v", r))
				}
			}()
			outcomes <- c.runner.Run(ctx, acct)
		}(acct)
	}

	wg.Wait()
	close(outcomes)

	var summary model.Summary
	for o := range outcomes {
		switch o.Kind {
		case model.OutcomeSuccess:
			slog.Info("account succeeded", "account", o.Phone)
		case model.OutcomeRejected:
			slog.Info("account rejected", "account", o.Phone, "reason", o.Reason)
		default:
			slog.Error("account faulted", "account", o.Phone, "error", o.Err)
		}
		summary.Add(o)
	}

	slog.Info("run complete",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"rejected", summary.Rejected,
		"faulted", summary.Faulted,
	)
	return summary
}
