package asmref

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	m := &BasicMetricsCollector{}

	m.RecordOpen(100, 10*time.Millisecond, nil)
	m.RecordOpen(0, 30*time.Millisecond, errors.New("boom"))
	m.RecordResolve(true, nil)
	m.RecordResolve(false, nil)
	m.RecordResolve(false, errors.New("boom"))

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.OpenCount)
	assert.Equal(t, int64(1), stats.OpenErrors)
	assert.Equal(t, int64(100), stats.OpenBytes)
	assert.Equal(t, (20 * time.Millisecond).Nanoseconds(), stats.AvgOpenNanos)
	assert.Equal(t, int64(1), stats.VirtualResolves)
	assert.Equal(t, int64(2), stats.PhysicalResolves)
	assert.Equal(t, int64(1), stats.ResolveErrors)
}

func TestApplyOptions_Defaults(t *testing.T) {
	o := applyOptions([]Option{WithLogger(nil), WithMetricsCollector(nil), WithMaxImageSize(-1), nil})

	assert.True(t, o.project)
	assert.NotNil(t, o.logger)
	assert.Equal(t, NoopMetricsCollector{}, o.metricsCollector)
	assert.Equal(t, int64(DefaultMaxImageSize), o.maxImageSize)

	o = applyOptions([]Option{WithoutProjections(), WithParallelism(4)})
	assert.False(t, o.project)
	assert.Equal(t, 4, o.parallelism)
}
