package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsShortDuration(t *testing.T) {
	sixty := int64(60)
	sixtyOne := int64(61)
	long := int64(3600)

	assert.True(t, IsShortDuration(&sixty))
	assert.False(t, IsShortDuration(&sixtyOne))
	assert.False(t, IsShortDuration(&long))
	assert.False(t, IsShortDuration(nil))
}

func TestJobStatus(t *testing.T) {
	assert.True(t, StatusQueued.Active())
	assert.True(t, StatusRunning.Active())
	assert.False(t, StatusSuccess.Active())
	assert.False(t, StatusFailed.Active())

	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusQueued.Terminal())
}

func TestScanJobCategories(t *testing.T) {
	scan := &ScanJob{IncludeShorts: true, IncludeStreams: true}
	assert.Equal(t, []string{CategoryShorts, CategoryStreams}, scan.Categories())

	scan = &ScanJob{}
	assert.Empty(t, scan.Categories())
}

func TestCategoryCountsTotal(t *testing.T) {
	counts := CategoryCounts{CategoryShorts: 2, CategoryVideos: 3}
	assert.Equal(t, 5, counts.Total())
	assert.Equal(t, 0, CategoryCounts(nil).Total())
}
