package model

import "time"

// Credential is a cached session for one account: the sessionid cookie value
// issued at login plus the student id extracted from the login response body.
// A cleared credential keeps its row but has empty SessionID/StudentID,
// forcing a fresh login on next use.
type Credential struct {
	Phone      string
	SessionID  string
	StudentID  string
	AcquiredAt time.Time
}

// Usable reports whether the credential can be attached to a request.
// Both halves are required: the cookie authenticates the session and the
// student id tags every payload.
func (c Credential) Usable() bool {
	return c.SessionID != "" && c.StudentID != ""
}
