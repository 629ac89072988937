package model

// RecordSubmission is the completion payload posted when a run's wait has
// elapsed. Times are preformatted strings because the service expects
// "2006-01-02 15:04:05" local time, not RFC 3339.
type RecordSubmission struct {
	StudentID   string
	RecordID    string
	StartTime   string
	EndTime     string
	RunningTime int
	Mileage     int
	StepCount   float64
	Pace        int
	Lat         float64
	Lng         float64
	PassPoints  int
}

// RunStats are the per-account counters the service reports from its
// statistics endpoint. Fetching them is observational only; no workflow
// decision depends on these values.
type RunStats struct {
	TargetEffective int
	Universal       int
	Effective       int
	Morning         int
}
