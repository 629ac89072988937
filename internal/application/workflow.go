package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/model"
	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/port/driven"
)

const (
	// Countdown log cadence during the wait.
	countdownIntervalSeconds = 60

	// The service expects local wall-clock times in this layout.
	timeLayout = "2006-01-02 15:04:05"

	// A route always registers three waypoints.
	passPointCount = 3
)

// SleepFunc suspends for d or until ctx is done. Injected so tests can
// observe waits without real time passing.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Workflow drives one account through a complete run: authenticate (or reuse
// the cached session), pass the eligibility check, register a route, wait
// out the required duration, submit the synthesized record, and report
// statistics. Every failure resolves to a terminal model.Outcome here; the
// coordinator never sees raw errors.
type Workflow struct {
	svc   driven.RunService
	creds driven.CredentialStore
	gen   *Generator
	sleep SleepFunc
	now   func() time.Time
}

// NewWorkflow creates a Workflow with the real clock.
func NewWorkflow(svc driven.RunService, creds driven.CredentialStore, gen *Generator) *Workflow {
	return NewWorkflowWithClock(svc, creds, gen, sleepContext, time.Now)
}

// NewWorkflowWithClock creates a Workflow with an injected sleep function and
// time source. This constructor is intended for testing.
func NewWorkflowWithClock(svc driven.RunService, creds driven.CredentialStore, gen *Generator, sleep SleepFunc, now func() time.Time) *Workflow {
	return &Workflow{svc: svc, creds: creds, gen: gen, sleep: sleep, now: now}
}

// Run executes the account's workflow to a terminal outcome. The start delay
// is applied exactly once, before anything else; the forced re-login path
// inside the verification step never re-enters it.
func (w *Workflow) Run(ctx context.Context, acct model.Account) model.Outcome {
	log := slog.With("account", acct.Phone)

	if delay := w.gen.ResolveDelay(acct.Delay); delay > 0 {
		log.Info("delaying start", "seconds", delay)
		if err := w.sleep(ctx, time.Duration(delay)*time.Second); err != nil {
			return model.Fault(acct.Phone, err)
		}
	}
	log.Info("workflow started")

	// Authenticating. Skipped when the store holds a usable credential.
	cred, err := w.resolveCredential(ctx, log, acct)
	if err != nil {
		if errors.Is(err, driven.ErrLoginRejected) {
			log.Info("login rejected, stopping", "error", err)
			return model.Rejected(acct.Phone, model.RejectAuthFailed)
		}
		return model.Fault(acct.Phone, err)
	}

	// Verifying, with at most one forced re-login on a stale session.
	attemptedRelogin := false
	for {
		code, err := w.svc.VerifyEligibility(ctx, cred)
		if err != nil {
			return model.Fault(acct.Phone, err)
		}
		if code == driven.VerifyCodeEligible {
			log.Info("eligibility check passed")
			break
		}
		if code == driven.VerifyCodeStale {
			if attemptedRelogin {
				log.Info("session stale again after re-login, stopping")
				return model.Rejected(acct.Phone, model.RejectVerifyFailedAfterLogin)
			}
			attemptedRelogin = true
			log.Info("cached session stale, re-authenticating")
			if err := w.creds.Clear(ctx, acct.Phone); err != nil {
				log.Warn("clearing stale credential failed", "error", err)
			}
			cred, err = w.login(ctx, log, acct)
			if err != nil {
				if errors.Is(err, driven.ErrLoginRejected) {
					log.Info("re-login rejected, stopping", "error", err)
					return model.Rejected(acct.Phone, model.RejectAuthFailed)
				}
				return model.Fault(acct.Phone, err)
			}
			continue
		}
		log.Info("account not eligible to run", "code", code)
		return model.Rejected(acct.Phone, model.RejectIneligible)
	}

	// CreatingRoute.
	distance := w.gen.RouteDistance()
	recordID, err := w.svc.CreateRoute(ctx, cred, distance)
	if err != nil {
		return model.Fault(acct.Phone, err)
	}
	if recordID == "" {
		log.Info("no record id in route response, stopping")
		return model.Rejected(acct.Phone, model.RejectNoRecordID)
	}
	startTime := w.now()
	log.Info("route created", "record_id", recordID, "distance", distance)

	// Pre-run statistics, observational only.
	w.reportStats(ctx, log, cred)

	// Waiting. The multiplier is sampled once and reused for the submitted
	// telemetry so the record stays consistent with the elapsed wait.
	multiplier := w.gen.WaitMultiplier()
	waitSeconds := WaitSeconds(multiplier)
	log.Info("waiting before submitting record", "seconds", waitSeconds)
	if err := w.wait(ctx, log, waitSeconds); err != nil {
		return model.Fault(acct.Phone, err)
	}
	log.Info("wait finished")

	// Submitting.
	endTime := w.now()
	tele := ScaledTelemetry(multiplier)
	lat, lng := w.gen.JitterPosition(finishLat, finishLng)
	rec := model.RecordSubmission{
		StudentID:   cred.StudentID,
		RecordID:    recordID,
		StartTime:   startTime.Format(timeLayout),
		EndTime:     endTime.Format(timeLayout),
		RunningTime: tele.RunningTime,
		Mileage:     tele.Mileage,
		StepCount:   tele.StepCount,
		Pace:        tele.Pace,
		Lat:         lat,
		Lng:         lng,
		PassPoints:  passPointCount,
	}

	code, err := w.svc.SubmitRecord(ctx, cred, rec)
	if err != nil {
		return model.Fault(acct.Phone, err)
	}
	if code != driven.SubmitCodeAccepted {
		// A session invalidated mid-wait lands here too; the envelope does
		// not distinguish it from any other submission rejection.
		log.Info("record submission rejected", "code", code)
		return model.Rejected(acct.Phone, model.RejectSubmitFailed)
	}
	log.Info("record submitted")

	// Post-run statistics, observational only.
	w.reportStats(ctx, log, cred)

	log.Info("workflow complete")
	return model.Success(acct.Phone)
}

// resolveCredential returns the cached credential when usable, logging in
// otherwise. A failed cache read is a miss, never fatal.
func (w *Workflow) resolveCredential(ctx context.Context, log *slog.Logger, acct model.Account) (model.Credential, error) {
	cached, err := w.creds.Get(ctx, acct.Phone)
	if err != nil {
		log.Warn("credential read failed, treating as absent", "error", err)
	} else if cached != nil && cached.Usable() {
		log.Info("using cached credential",
			"student_id", cached.StudentID,
			"acquired_at", cached.AcquiredAt.Format(timeLayout),
		)
		return *cached, nil
	}
	return w.login(ctx, log, acct)
}

// login authenticates and persists the fresh credential. A failed cache
// write only costs a re-login on the next invocation.
func (w *Workflow) login(ctx context.Context, log *slog.Logger, acct model.Account) (model.Credential, error) {
	log.Info("logging in")
	cred, err := w.svc.Login(ctx, acct.Phone, acct.Password)
	if err != nil {
		return model.Credential{}, err
	}
	if err := w.creds.Put(ctx, cred); err != nil {
		log.Warn("credential cache write failed", "error", err)
	}
	log.Info("logged in", "student_id", cred.StudentID)
	return cred, nil
}

// wait suspends for exactly seconds, logging a countdown at a coarse cadence.
func (w *Workflow) wait(ctx context.Context, log *slog.Logger, seconds int) error {
	remaining := seconds
	for remaining > 0 {
		log.Info("waiting", "remaining_seconds", remaining)
		step := countdownIntervalSeconds
		if remaining < step {
			step = remaining
		}
		if err := w.sleep(ctx, time.Duration(step)*time.Second); err != nil {
			return err
		}
		remaining -= step
	}
	return nil
}

// reportStats fetches and logs the account's run counters. Failures are
// logged and swallowed; statistics never change the outcome.
func (w *Workflow) reportStats(ctx context.Context, log *slog.Logger, cred model.Credential) {
	stats, err := w.svc.FetchStats(ctx, cred)
	if err != nil {
		log.Warn("stats fetch failed", "error", err)
		return
	}
	log.Info("run statistics",
		"target_effective", stats.TargetEffective,
		"universal", stats.Universal,
		"effective", stats.Effective,
		"morning", stats.Morning,
	)
}

// sleepContext is the production SleepFunc.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
