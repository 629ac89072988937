package application_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ljhyyds-jjk/ecust-autorun/internal/application"
	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/model"
)

// stubRunner maps each account to a canned outcome, optionally sleeping
// first to make overlap observable.
type stubRunner struct {
	outcomes map[string]model.Outcome
	sleep    time.Duration
	running  atomic.Int32
	maxSeen  atomic.Int32
}

func (s *stubRunner) Run(_ context.Context, acct model.Account) model.Outcome {
	cur := s.running.Add(1)
	for {
		seen := s.maxSeen.Load()
		if cur <= seen || s.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	if s.sleep > 0 {
		time.Sleep(s.sleep)
	}
	s.running.Add(-1)

	if o, ok := s.outcomes[acct.Phone]; ok {
		return o
	}
	return model.Success(acct.Phone)
}

func TestRunAll_CountsSumToTotal(t *testing.T) {
	accounts := []model.Account{
		{Phone: "1"}, {Phone: "2"}, {Phone: "3"}, {Phone: "4"},
	}
	runner := &stubRunner{outcomes: map[string]model.Outcome{
		"1": model.Success("1"),
		"2": model.Rejected("2", model.RejectSubmitFailed),
		"3": model.Fault("3", fmt.Errorf("connection refused")),
		"4": model.Rejected("4", model.RejectIneligible),
	}}

	summary := application.NewCoordinator(runner).RunAll(context.Background(), accounts)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Rejected)
	assert.Equal(t, 1, summary.Faulted)
	assert.Equal(t, summary.Total, summary.Succeeded+summary.Rejected+summary.Faulted)
}

func TestRunAll_Empty(t *testing.T) {
	summary := application.NewCoordinator(&stubRunner{}).RunAll(context.Background(), nil)

	assert.Equal(t, model.Summary{}, summary)
}

// panickyRunner panics for one account and succeeds for the rest.
type panickyRunner struct {
	panicPhone string
}

func (p *panickyRunner) Run(_ context.Context, acct model.Account) model.Outcome {
	if acct.Phone == p.panicPhone {
		panic("nil map write in step handler")
	}
	return model.Success(acct.Phone)
}

func TestRunAll_PanicBecomesFaultAndIsolates(t *testing.T) {
	accounts := []model.Account{{Phone: "1"}, {Phone: "2"}, {Phone: "3"}}
	runner := &panickyRunner{panicPhone: "2"}

	summary := application.NewCoordinator(runner).RunAll(context.Background(), accounts)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Faulted)
}

// Workflows must overlap in time, not run back to back.
func TestRunAll_RunsConcurrently(t *testing.T) {
	accounts := []model.Account{{Phone: "1"}, {Phone: "2"}, {Phone: "3"}}
	runner := &stubRunner{sleep: 100 * time.Millisecond}

	start := time.Now()
	summary := application.NewCoordinator(runner).RunAll(context.Background(), accounts)
	elapsed := time.Since(start)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Less(t, elapsed, 250*time.Millisecond,
		"total elapsed must be bounded by the longest workflow, not the sum")
	assert.GreaterOrEqual(t, int(runner.maxSeen.Load()), 2, "workflows never overlapped")
}
