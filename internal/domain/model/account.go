package model

// DelayKind discriminates the shape of a start-delay specification.
type DelayKind string

const (
	DelayNone  DelayKind = "none"
	DelayFixed DelayKind = "fixed"
	DelayRange DelayKind = "range"
)

// DelaySpec describes how long an account waits before its workflow starts:
// a fixed number of seconds, or an inclusive [Lo, Hi] range sampled at run
// time. The zero value means no delay.
type DelaySpec struct {
	Kind  DelayKind
	Fixed int
	Lo    int
	Hi    int
}

// FixedDelay returns a spec that always resolves to n seconds.
func FixedDelay(n int) DelaySpec {
	return DelaySpec{Kind: DelayFixed, Fixed: n}
}

// RangeDelay returns a spec that resolves to a uniform sample in [lo, hi].
func RangeDelay(lo, hi int) DelaySpec {
	return DelaySpec{Kind: DelayRange, Lo: lo, Hi: hi}
}

// Account is one configured identity the orchestrator drives through the
// workflow. Immutable for the process lifetime.
type Account struct {
	Phone    string
	Password string
	Delay    DelaySpec
}
