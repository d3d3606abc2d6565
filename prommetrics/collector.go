// Package prommetrics exports fmmap lifecycle metrics to Prometheus.
//
//	c := prommetrics.New("myapp")
//	prometheus.MustRegister(c)
//	f, err := fmmap.DefaultOptions().Metrics(c).OpenMut("data.bin")
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/fmmap"
)

const (
	opOpen     = "open"
	opFlush    = "flush"
	opTruncate = "truncate"
	opRemove   = "remove"
	opClose    = "close"
)

// Collector implements fmmap.MetricsCollector and prometheus.Collector.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	ops        *prometheus.CounterVec
	flushBytes prometheus.Counter
	resized    *prometheus.CounterVec
}

var _ fmmap.MetricsCollector = (*Collector)(nil)

// New creates a Collector whose metric names start with namespace.
func New(namespace string) *Collector {
	return &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fmmap",
			Name:      "op_duration_seconds",
			Help:      "Latency of mapping lifecycle operations.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"op"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fmmap",
			Name:      "ops_total",
			Help:      "Lifecycle operations by result.",
		}, []string{"op", "result"}),
		flushBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fmmap",
			Name:      "flushed_bytes_total",
			Help:      "Bytes written back by successful flushes.",
		}),
		resized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fmmap",
			Name:      "resized_bytes_total",
			Help:      "Bytes added or removed by successful truncates.",
		}, []string{"direction"}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.opLatency.Describe(ch)
	c.ops.Describe(ch)
	c.flushBytes.Describe(ch)
	c.resized.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.opLatency.Collect(ch)
	c.ops.Collect(ch)
	c.flushBytes.Collect(ch)
	c.resized.Collect(ch)
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	c.opLatency.WithLabelValues(op).Observe(d.Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.ops.WithLabelValues(op, result).Inc()
}

func (c *Collector) RecordOpen(d time.Duration, err error) {
	c.observe(opOpen, d, err)
}

func (c *Collector) RecordFlush(bytes int, d time.Duration, err error) {
	c.observe(opFlush, d, err)
	if err == nil {
		c.flushBytes.Add(float64(bytes))
	}
}

func (c *Collector) RecordTruncate(delta int64, d time.Duration, err error) {
	c.observe(opTruncate, d, err)
	switch {
	case err != nil:
	case delta > 0:
		c.resized.WithLabelValues("grow").Add(float64(delta))
	case delta < 0:
		c.resized.WithLabelValues("shrink").Add(float64(-delta))
	}
}

func (c *Collector) RecordRemove(d time.Duration, err error) {
	c.observe(opRemove, d, err)
}

func (c *Collector) RecordClose(d time.Duration, err error) {
	c.observe(opClose, d, err)
}
