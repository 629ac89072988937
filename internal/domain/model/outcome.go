package model

// OutcomeKind classifies how one account's workflow run terminated.
type OutcomeKind string

const (
	OutcomeSuccess  OutcomeKind = "success"
	OutcomeRejected OutcomeKind = "rejected"
	OutcomeFault    OutcomeKind = "fault"
)

// RejectReason distinguishes business rejections. Each maps to exactly one
// terminal transition in the workflow.
type RejectReason string

const (
	RejectAuthFailed             RejectReason = "auth_failed"
	RejectVerifyFailedAfterLogin RejectReason = "verify_failed_after_relogin"
	RejectIneligible             RejectReason = "ineligible"
	RejectNoRecordID             RejectReason = "no_record_id"
	RejectSubmitFailed           RejectReason = "submit_failed"
)

// Outcome is the terminal result of one account's workflow run. Exactly one
// is produced per account per invocation. Reason is set only for rejections,
// Err only for faults.
type Outcome struct {
	Phone  string
	Kind   OutcomeKind
	Reason RejectReason
	Err    error
}

// Success returns a success outcome for the given account.
func Success(phone string) Outcome {
	return Outcome{Phone: phone, Kind: OutcomeSuccess}
}

// Rejected returns a business-rejection outcome with the given reason.
func Rejected(phone string, reason RejectReason) Outcome {
	return Outcome{Phone: phone, Kind: OutcomeRejected, Reason: reason}
}

// Fault returns a fault outcome wrapping an unexpected error.
func Fault(phone string, err error) Outcome {
	return Outcome{Phone: phone, Kind: OutcomeFault, Err: err}
}

// Summary aggregates terminal outcomes across all accounts of one invocation.
type Summary struct {
	Total     int
	Succeeded int
	Rejected  int
	Faulted   int
}

// Add folds one outcome into the summary.
func (s *Summary) Add(o Outcome) {
	s.Total++
	switch o.Kind {
	case OutcomeSuccess:
		s.Succeeded++
	case OutcomeRejected:
		s.Rejected++
	default:
		s.Faulted++
	}
}
