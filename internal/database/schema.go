package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the idempotent DDL for the catalog and job tables. Historical
// jobs persist, so there is deliberately no unique index on
// download_jobs.video_id.
const schema = `
CREATE TABLE IF NOT EXISTS videos (
	video_id             TEXT PRIMARY KEY,
	webpage_url          TEXT NOT NULL DEFAULT '',
	title                TEXT,
	duration             BIGINT,
	view_count           BIGINT,
	upload_date          VARCHAR(16),
	uploader             TEXT,
	is_short             BOOLEAN NOT NULL DEFAULT FALSE,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_download_job_id TEXT,
	downloaded_at        TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS download_jobs (
	job_id        TEXT PRIMARY KEY,
	video_id      TEXT NOT NULL REFERENCES videos(video_id),
	status        VARCHAR(32) NOT NULL DEFAULT 'queued',
	progress      INTEGER NOT NULL DEFAULT 0,
	output_path   TEXT,
	error_message TEXT,
	started_at    TIMESTAMPTZ,
	finished_at   TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_download_jobs_video_id ON download_jobs(video_id);
CREATE INDEX IF NOT EXISTS idx_download_jobs_status ON download_jobs(status);

CREATE TABLE IF NOT EXISTS scan_jobs (
	scan_id         TEXT PRIMARY KEY,
	channel         TEXT NOT NULL,
	include_shorts  BOOLEAN NOT NULL DEFAULT TRUE,
	include_videos  BOOLEAN NOT NULL DEFAULT TRUE,
	include_streams BOOLEAN NOT NULL DEFAULT FALSE,
	max_items       INTEGER NOT NULL DEFAULT 30,
	status          VARCHAR(32) NOT NULL DEFAULT 'queued',
	progress        INTEGER NOT NULL DEFAULT 0,
	counts          JSONB NOT NULL DEFAULT '{}',
	unique_videos   INTEGER NOT NULL DEFAULT 0,
	inserted        INTEGER NOT NULL DEFAULT 0,
	updated         INTEGER NOT NULL DEFAULT 0,
	error_message   TEXT,
	started_at      TIMESTAMPTZ,
	finished_at     TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
