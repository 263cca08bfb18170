// Package ytdlp shells out to the yt-dlp binary for listing enumeration,
// detail extraction and media download.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/logger"
)

const maxDirNameLen = 80

// Client invokes the yt-dlp binary.
type Client struct {
	binaryPath string
	logger     logger.Logger
}

// Config holds configuration for the yt-dlp client.
type Config struct {
	BinaryPath string // path to the yt-dlp binary ("yt-dlp" resolves via PATH)
}

// NewClient creates a yt-dlp client.
func NewClient(cfg Config, log logger.Logger) *Client {
	binary := cfg.BinaryPath
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Client{binaryPath: binary, logger: log}
}

// ExtractFlat returns a shallow listing of up to limit entries from a
// channel sub-page. Only ids (and maybe URLs) are populated.
func (c *Client) ExtractFlat(ctx context.Context, listURL string, limit int) ([]domain.FlatEntry, error) {
	if limit < 1 {
		limit = 1
	}

	out, err := c.run(ctx,
		"--dump-single-json",
		"--flat-playlist",
		"--ignore-errors",
		"--no-warnings",
		"--playlist-end", fmt.Sprintf("%d", limit),
		listURL,
	)
	if err != nil {
		return nil, fmt.Errorf("flat extraction of %s: %w", listURL, err)
	}

	entries, err := parseFlatListing(out)
	if err != nil {
		return nil, fmt.Errorf("parse flat listing: %w", err)
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ExtractDetail returns full metadata for one item.
func (c *Client) ExtractDetail(ctx context.Context, itemURL string) (*domain.VideoMetadata, error) {
	out, err := c.run(ctx,
		"--dump-single-json",
		"--no-warnings",
		"--retries", "3",
		itemURL,
	)
	if err != nil {
		return nil, fmt.Errorf("detail extraction of %s: %w", itemURL, err)
	}

	meta, err := parseDetail(out)
	if err != nil {
		return nil, fmt.Errorf("parse detail: %w", err)
	}
	return meta, nil
}

// DownloadMedia downloads one item to
// <outputDir>/<sanitized uploader>/<videoID>.<ext> and returns the path of
// the produced file, preferring .mp4 when several exist.
func (c *Client) DownloadMedia(
	ctx context.Context, itemURL, outputDir, videoID string, uploader *string, maxHeight int,
) (string, error) {
	dir := filepath.Join(outputDir, SanitizeDirName(uploader))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	template := filepath.Join(dir, videoID+".%(ext)s")
	format := fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best", maxHeight)

	_, err := c.run(ctx,
		"--format", format,
		"--merge-output-format", "mp4",
		"--output", template,
		"--retries", "3",
		"--no-warnings",
		"--no-progress",
		itemURL,
	)
	if err != nil {
		return "", fmt.Errorf("download of %s: %w", itemURL, err)
	}

	return locateOutput(dir, videoID)
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

// locateOutput finds the file actually produced for a video id. The merge
// container is usually mp4 but yt-dlp may fall back to another extension.
func locateOutput(dir, videoID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, videoID+".*"))
	if err != nil {
		return "", fmt.Errorf("glob output: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("download finished but output file not found for %s", videoID)
	}

	for _, m := range matches {
		if strings.EqualFold(filepath.Ext(m), ".mp4") {
			return m, nil
		}
	}
	return matches[0], nil
}

type flatListing struct {
	Entries []domain.FlatEntry `json:"entries"`
}

func parseFlatListing(data []byte) ([]domain.FlatEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var listing flatListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	return listing.Entries, nil
}

type detailInfo struct {
	ID         string   `json:"id"`
	WebpageURL string   `json:"webpage_url"`
	Title      *string  `json:"title"`
	Duration   *float64 `json:"duration"`
	ViewCount  *int64   `json:"view_count"`
	UploadDate *string  `json:"upload_date"`
	Uploader   *string  `json:"uploader"`
}

func parseDetail(data []byte) (*domain.VideoMetadata, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("yt-dlp returned empty info")
	}

	var info detailInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}

	meta := &domain.VideoMetadata{
		ID:         info.ID,
		WebpageURL: info.WebpageURL,
		Title:      info.Title,
		ViewCount:  info.ViewCount,
		UploadDate: info.UploadDate,
		Uploader:   info.Uploader,
	}
	if info.Duration != nil {
		d := int64(*info.Duration)
		meta.Duration = &d
	}
	return meta, nil
}

var (
	unsafeDirChars = regexp.MustCompile(`[^\w\-\.\s]`)
	multiSpace     = regexp.MustCompile(`\s+`)
)

// SanitizeDirName turns an uploader name into a safe directory name:
// unsafe characters become underscores, whitespace collapses, and the
// result is capped at 80 characters. Empty input maps to "unknown".
func SanitizeDirName(name *string) string {
	s := ""
	if name != nil {
		s = *name
	}
	s = strings.TrimSpace(s)
	s = unsafeDirChars.ReplaceAllString(s, "_")
	s = strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))

	if s == "" {
		return "unknown"
	}
	if len(s) > maxDirNameLen {
		s = s[:maxDirNameLen]
	}
	return s
}
