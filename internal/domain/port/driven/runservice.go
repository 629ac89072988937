package driven

import (
	"context"
	"errors"

	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/model"
)

// ErrLoginRejected is returned by RunService.Login when the service answered
// but refused the credentials: missing sessionid cookie, success-message
// mismatch, or missing student id. Callers distinguish it from transport
// errors with errors.Is; it is never worth retrying.
var ErrLoginRejected = errors.New("login rejected by run service")

// Eligibility and submission codes from the service's response envelope.
// The envelope reuses small integers across endpoints with different
// meanings, so the names bind each value to the endpoint it belongs to.
const (
	VerifyCodeEligible = -1 // eligibility check passed, run may proceed
	VerifyCodeStale    = -2 // cached session is no longer valid
	SubmitCodeAccepted = 1  // record submission accepted
)

// RunService defines the driven port for the remote run-tracking service.
// Implementations own transport concerns (session cookie propagation,
// retry/backoff, timeouts); application-level error codes are returned to
// the caller undisturbed.
type RunService interface {
	// Login authenticates the account and returns a fresh credential.
	// Returns an error wrapping ErrLoginRejected when the service refused
	// the credentials; any other error is a transport failure.
	Login(ctx context.Context, phone, password string) (model.Credential, error)

	// VerifyEligibility runs the server-side eligibility check and returns
	// the raw envelope code (VerifyCodeEligible, VerifyCodeStale, or an
	// endpoint-specific rejection value).
	VerifyEligibility(ctx context.Context, cred model.Credential) (int, error)

	// CreateRoute registers a run route with the sampled per-waypoint
	// distance and returns the record id assigned by the service. An empty
	// record id with a nil error means the service did not assign one.
	CreateRoute(ctx context.Context, cred model.Credential, distance float64) (string, error)

	// SubmitRecord posts the completion payload and returns the raw envelope
	// code; SubmitCodeAccepted means the record was accepted.
	SubmitRecord(ctx context.Context, cred model.Credential, rec model.RecordSubmission) (int, error)

	// FetchStats retrieves the account's run counters. Best-effort from the
	// caller's point of view; failures must never abort a workflow.
	FetchStats(ctx context.Context, cred model.Credential) (*model.RunStats, error)
}
