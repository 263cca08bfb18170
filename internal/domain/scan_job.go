package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Scan category labels, in the fixed order categories are processed.
const (
	CategoryShorts  = "shorts"
	CategoryVideos  = "videos"
	CategoryStreams = "streams"
)

// CategoryCounts maps a category label to the number of entries enumerated
// for it. Stored as JSONB.
type CategoryCounts map[string]int

// Value implements driver.Valuer.
func (c CategoryCounts) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *CategoryCounts) Scan(src any) error {
	if src == nil {
		*c = CategoryCounts{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported counts type %T", src)
	}

	return json.Unmarshal(data, c)
}

// Total returns the sum of all category counts.
func (c CategoryCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// ScanJob tracks a channel scan through the queue.
type ScanJob struct {
	ScanID  string `db:"scan_id" json:"scan_id"`
	Channel string `db:"channel" json:"channel"`

	IncludeShorts  bool `db:"include_shorts"  json:"include_shorts"`
	IncludeVideos  bool `db:"include_videos"  json:"include_videos"`
	IncludeStreams bool `db:"include_streams" json:"include_streams"`
	// MaxItems is the effective per-category cap after clamping.
	MaxItems int `db:"max_items" json:"max_items"`

	Status   JobStatus `db:"status"   json:"status"`
	Progress int       `db:"progress" json:"progress"`

	Counts       CategoryCounts `db:"counts"        json:"counts"`
	UniqueVideos int            `db:"unique_videos" json:"unique_videos"`
	Inserted     int            `db:"inserted"      json:"inserted"`
	Updated      int            `db:"updated"       json:"updated"`

	ErrorMessage *string    `db:"error_message" json:"error_message"`
	StartedAt    *time.Time `db:"started_at"    json:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"   json:"finished_at"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}

// Categories returns the enabled category labels in processing order.
func (s *ScanJob) Categories() []string {
	var cats []string
	if s.IncludeShorts {
		cats = append(cats, CategoryShorts)
	}
	if s.IncludeVideos {
		cats = append(cats, CategoryVideos)
	}
	if s.IncludeStreams {
		cats = append(cats, CategoryStreams)
	}
	return cats
}
