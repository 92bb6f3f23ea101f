package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithInterval(time.Second), WithClock(func() time.Time { return now }))

	for range 9 {
		now = now.Add(100 * time.Millisecond)
		_, ok := p.Tick(10)
		require.False(t, ok)
	}

	now = now.Add(100 * time.Millisecond)
	stats, ok := p.Tick(10)
	require.True(t, ok)
	assert.InDelta(t, 10, stats.TPS, 1e-9)
	assert.Equal(t, 10, stats.Entities)
	assert.Positive(t, stats.SysMB)

	// The counter restarts after a report.
	now = now.Add(100 * time.Millisecond)
	_, ok = p.Tick(10)
	assert.False(t, ok)
}
