package domain

import "time"

// DownloadJob tracks a single-video download through the queue. At most one
// job per video may be active at a time; historical jobs persist, so the
// invariant is enforced by the orchestrator rather than a unique index.
type DownloadJob struct {
	JobID        string     `db:"job_id"        json:"job_id"`
	VideoID      string     `db:"video_id"      json:"video_id"`
	Status       JobStatus  `db:"status"        json:"status"`
	Progress     int        `db:"progress"      json:"progress"`
	OutputPath   *string    `db:"output_path"   json:"output_path"`
	ErrorMessage *string    `db:"error_message" json:"error_message"`
	StartedAt    *time.Time `db:"started_at"    json:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"   json:"finished_at"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}
