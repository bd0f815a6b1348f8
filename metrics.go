package asmref

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    openHistogram   prometheus.Histogram
//	    resolveCounter  *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordResolve(virtual bool, err error) {
//	    p.resolveCounter.WithLabelValues(strconv.FormatBool(virtual)).Inc()
//	}
type MetricsCollector interface {
	// RecordOpen is called after each image load.
	// size is the length of the decoded image, duration the total time taken,
	// err is nil if successful.
	RecordOpen(size int64, duration time.Duration, err error)

	// RecordResolve is called after each attribute read through a Session.
	// virtual reports whether the handle was a projected reference.
	RecordResolve(virtual bool, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordResolve(bool, error)              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount        atomic.Int64
	OpenErrors       atomic.Int64
	OpenBytes        atomic.Int64
	OpenTotalNanos   atomic.Int64
	PhysicalResolves atomic.Int64
	VirtualResolves  atomic.Int64
	ResolveErrors    atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(size int64, duration time.Duration, err error) {
	b.OpenCount.Add(1)
	b.OpenTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.OpenErrors.Add(1)
		return
	}
	b.OpenBytes.Add(size)
}

// RecordResolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResolve(virtual bool, err error) {
	if virtual {
		b.VirtualResolves.Add(1)
	} else {
		b.PhysicalResolves.Add(1)
	}
	if err != nil {
		b.ResolveErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:        b.OpenCount.Load(),
		OpenErrors:       b.OpenErrors.Load(),
		OpenBytes:        b.OpenBytes.Load(),
		AvgOpenNanos:     b.getAvgOpenNanos(),
		PhysicalResolves: b.PhysicalResolves.Load(),
		VirtualResolves:  b.VirtualResolves.Load(),
		ResolveErrors:    b.ResolveErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgOpenNanos() int64 {
	count := b.OpenCount.Load()
	if count == 0 {
		return 0
	}
	return b.OpenTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of metrics at a point in time.
type BasicMetricsStats struct {
	OpenCount        int64
	OpenErrors       int64
	OpenBytes        int64
	AvgOpenNanos     int64
	PhysicalResolves int64
	VirtualResolves  int64
	ResolveErrors    int64
}
