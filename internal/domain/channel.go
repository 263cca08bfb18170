package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// channelURLPattern extracts the handle from a full channel URL such as
// https://www.youtube.com/@InnahBee.
var channelURLPattern = regexp.MustCompile(`youtube\.com/@([^/?#]+)`)

// NormalizeChannelHandle turns a bare handle, an @-prefixed handle or a full
// channel URL into a bare handle. Identifiers that still contain a slash or
// whitespace after stripping are ambiguous and rejected.
func NormalizeChannelHandle(channel string) (string, error) {
	s := strings.TrimSpace(channel)
	if s == "" {
		return "", fmt.Errorf("%w: channel is required", ErrInvalidArgument)
	}

	if m := channelURLPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}

	s = strings.TrimLeft(s, "@")
	if strings.ContainsAny(s, "/ \t") {
		return "", fmt.Errorf("%w: channel must be a handle like InnahBee, @InnahBee or youtube.com/@InnahBee", ErrInvalidArgument)
	}
	return s, nil
}

// ChannelBaseURL returns the canonical channel page for a handle.
func ChannelBaseURL(handle string) string {
	return "https://www.youtube.com/@" + handle
}

// WatchURL returns the canonical watch page for an item id. Used when a flat
// listing entry carries no usable URL.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
