package executor

import (
	"testing"
	"time"

	"github.com/harrison/scour/internal/models"
	"github.com/stretchr/testify/assert"
)

func indexes(results []models.FileResult) []int {
	out := make([]int, 0, len(results))
	for _, r := range results {
		out = append(out, r.Index)
	}
	return out
}

func TestReorderBuffer(t *testing.T) {
	b := newReorderBuffer(0)

	assert.Empty(t, b.Push(models.FileResult{Index: 2}))
	assert.Empty(t, b.Push(models.FileResult{Index: 1}))
	assert.Equal(t, 2, b.Pending())

	assert.Equal(t, []int{0, 1, 2}, indexes(b.Push(models.FileResult{Index: 0})))
	assert.Equal(t, 0, b.Pending())

	assert.Equal(t, []int{3}, indexes(b.Push(models.FileResult{Index: 3})))
	assert.Empty(t, b.Push(models.FileResult{Index: 5}))
	assert.Equal(t, []int{4, 5}, indexes(b.Push(models.FileResult{Index: 4})))
}

func TestAggregator(t *testing.T) {
	start := time.Now().Add(-time.Second)
	a := NewAggregator(start)

	a.Record(models.FileResult{BytesRead: 10, Matches: make([]models.MatchRecord, 3)})
	a.Record(models.FileResult{BytesRead: 5})
	a.Record(models.FileResult{BytesRead: 7, DecodeFallback: true, Matches: make([]models.MatchRecord, 1)})
	a.Record(models.FileResult{Err: assert.AnError})

	stats := a.Finalize()
	assert.Equal(t, 3, stats.FilesScanned)
	assert.Equal(t, 1, stats.FilesSkipped)
	assert.Equal(t, 2, stats.FilesWithMatches)
	assert.Equal(t, 4, stats.MatchesFound)
	assert.Equal(t, int64(22), stats.BytesProcessed)
	assert.Equal(t, 1, stats.DecodeFallbacks)
	assert.GreaterOrEqual(t, stats.Elapsed, time.Second)

	a.Record(models.FileResult{BytesRead: 100})
	assert.Equal(t, stats, a.Finalize(), "finalized statistics do not change")
}
