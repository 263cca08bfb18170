package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChannelHandle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare handle", "InnahBee", "InnahBee", false},
		{"at-prefixed", "@InnahBee", "InnahBee", false},
		{"full url", "https://www.youtube.com/@InnahBee", "InnahBee", false},
		{"url with path", "https://www.youtube.com/@InnahBee/videos", "InnahBee", false},
		{"url with query", "https://youtube.com/@InnahBee?sub_confirmation=1", "InnahBee", false},
		{"surrounding whitespace", "  @InnahBee  ", "InnahBee", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"contains slash", "some/path", "", true},
		{"contains space", "two words", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeChannelHandle(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidArgument), "expected ErrInvalidArgument, got %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", WatchURL("abc123"))
}
