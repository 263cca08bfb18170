// Package domain provides domain models used across the application.
package domain

import "time"

// ShortDurationSeconds is the exclusive upper bound for classifying a video
// as short-form: a video is a short iff its duration is known and strictly
// below this threshold.
const ShortDurationSeconds = 61

// Video is a catalog record for a single video, keyed by the platform's
// natural id. Records are upserted by channel scans and by direct
// add-by-url; they are never deleted.
type Video struct {
	VideoID           string     `db:"video_id"             json:"video_id"`
	WebpageURL        string     `db:"webpage_url"          json:"webpage_url"`
	Title             *string    `db:"title"                json:"title"`
	Duration          *int64     `db:"duration"             json:"duration"`
	ViewCount         *int64     `db:"view_count"           json:"view_count"`
	UploadDate        *string    `db:"upload_date"          json:"upload_date"`
	Uploader          *string    `db:"uploader"             json:"uploader"`
	IsShort           bool       `db:"is_short"             json:"is_short"`
	CreatedAt         time.Time  `db:"created_at"           json:"created_at"`
	LastDownloadJobID *string    `db:"last_download_job_id" json:"last_download_job_id"`
	DownloadedAt      *time.Time `db:"downloaded_at"        json:"downloaded_at"`
}

// IsShortDuration classifies a duration as short-form. Unknown durations
// classify as not-short.
func IsShortDuration(duration *int64) bool {
	return duration != nil && *duration < ShortDurationSeconds
}

// VideoMetadata is the result of a detail extraction for one item. Optional
// fields are nil when the extractor did not report them.
type VideoMetadata struct {
	ID         string  `json:"id"`
	WebpageURL string  `json:"webpage_url"`
	Title      *string `json:"title"`
	Duration   *int64  `json:"duration"`
	ViewCount  *int64  `json:"view_count"`
	UploadDate *string `json:"upload_date"`
	Uploader   *string `json:"uploader"`
}

// FlatEntry is a single item from a shallow channel listing. Only the id is
// guaranteed; the URL may be empty or relative.
type FlatEntry struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
