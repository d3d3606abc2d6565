package fmmap

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// prommetrics provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordOpen is called after each open or create of a disk-backed mapping.
	RecordOpen(duration time.Duration, err error)

	// RecordFlush is called after each flush. bytes is the flushed range length.
	RecordFlush(bytes int, duration time.Duration, err error)

	// RecordTruncate is called after each resize. delta is new length minus old length.
	RecordTruncate(delta int64, duration time.Duration, err error)

	// RecordRemove is called after each removal of a backing file.
	RecordRemove(duration time.Duration, err error)

	// RecordClose is called after each close, including close-with-truncate.
	RecordClose(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)            {}
func (NoopMetricsCollector) RecordFlush(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordTruncate(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error)          {}
func (NoopMetricsCollector) RecordClose(time.Duration, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount          atomic.Int64
	OpenErrors         atomic.Int64
	FlushCount         atomic.Int64
	FlushErrors        atomic.Int64
	FlushBytes         atomic.Int64
	FlushTotalNanos    atomic.Int64
	TruncateCount      atomic.Int64
	TruncateErrors     atomic.Int64
	TruncateTotalNanos atomic.Int64
	GrownBytes         atomic.Int64
	ShrunkBytes        atomic.Int64
	RemoveCount        atomic.Int64
	RemoveErrors       atomic.Int64
	CloseCount         atomic.Int64
	CloseErrors        atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(_ time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(bytes int, duration time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FlushErrors.Add(1)
		return
	}
	b.FlushBytes.Add(int64(bytes))
}

// RecordTruncate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTruncate(delta int64, duration time.Duration, err error) {
	b.TruncateCount.Add(1)
	b.TruncateTotalNanos.Add(duration.Nanoseconds())
	switch {
	case err != nil:
		b.TruncateErrors.Add(1)
	case delta > 0:
		b.GrownBytes.Add(delta)
	case delta < 0:
		b.ShrunkBytes.Add(-delta)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(_ time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClose(_ time.Duration, err error) {
	b.CloseCount.Add(1)
	if err != nil {
		b.CloseErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:        b.OpenCount.Load(),
		OpenErrors:       b.OpenErrors.Load(),
		FlushCount:       b.FlushCount.Load(),
		FlushErrors:      b.FlushErrors.Load(),
		FlushBytes:       b.FlushBytes.Load(),
		FlushAvgNanos:    avg(b.FlushTotalNanos.Load(), b.FlushCount.Load()),
		TruncateCount:    b.TruncateCount.Load(),
		TruncateErrors:   b.TruncateErrors.Load(),
		TruncateAvgNanos: avg(b.TruncateTotalNanos.Load(), b.TruncateCount.Load()),
		GrownBytes:       b.GrownBytes.Load(),
		ShrunkBytes:      b.ShrunkBytes.Load(),
		RemoveCount:      b.RemoveCount.Load(),
		RemoveErrors:     b.RemoveErrors.Load(),
		CloseCount:       b.CloseCount.Load(),
		CloseErrors:      b.CloseErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount        int64
	OpenErrors       int64
	FlushCount       int64
	FlushErrors      int64
	FlushBytes       int64
	FlushAvgNanos    int64
	TruncateCount    int64
	TruncateErrors   int64
	TruncateAvgNanos int64
	GrownBytes       int64
	ShrunkBytes      int64
	RemoveCount      int64
	RemoveErrors     int64
	CloseCount       int64
	CloseErrors      int64
}
