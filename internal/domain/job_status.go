package domain

// JobStatus is the lifecycle state of a download or scan job.
type JobStatus string

const (
	StatusQueued  JobStatus = "queued"
	StatusRunning JobStatus = "running"
	StatusSuccess JobStatus = "success"
	StatusFailed  JobStatus = "failed"
)

// Active reports whether the job still has work pending or in flight.
func (s JobStatus) Active() bool {
	return s == StatusQueued || s == StatusRunning
}

// Terminal reports whether the job has finished, successfully or not.
func (s JobStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}
