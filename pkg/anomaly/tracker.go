// Package anomaly implements a rolling-window z-score tracker for
// operational metrics, with optional Prometheus export.
package anomaly

import (
	"math"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Baseline is a tracked metric's rolling statistics, plus whether the
// most recent observation was flagged anomalous.
type Baseline struct {
	Mean      float64
	StdDev    float64
	N         int
	Anomalous bool
}

type ringBuffer struct {
	values []float64
	pos    int
	filled bool
}

func newRingBuffer(size int) *ringBuffer {
	if size <= 0 {
		size = 100
	}
	return &ringBuffer{values: make([]float64, size)}
}

func (r *ringBuffer) push(v float64) {
	r.values[r.pos] = v
	r.pos = (r.pos + 1) % len(r.values)
	if r.pos == 0 {
		r.filled = true
	}
}

func (r *ringBuffer) samples() []float64 {
	if r.filled {
		return r.values
	}
	return r.values[:r.pos]
}

// Tracker holds one ring buffer per metric name, optionally mirrored to
// Prometheus gauges/counters. A nil registerer disables export (tests,
// embedders without a metrics endpoint).
type Tracker struct {
	mu            sync.Mutex
	window        int
	buffers       map[string]*ringBuffer
	lastAnomalous map[string]bool
	gauge         *prometheus.GaugeVec
	anomalies     *prometheus.CounterVec
}

// NewTracker builds a Tracker with the given ring-buffer window size. If
// reg is non-nil, registers engram_metric_value and engram_anomalies_total
// against it.
func NewTracker(window int, reg prometheus.Registerer) *Tracker {
	t := &Tracker{
		window:        window,
		buffers:       make(map[string]*ringBuffer),
		lastAnomalous: make(map[string]bool),
	}
	if reg != nil {
		factory := promauto.With(reg)
		t.gauge = factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "engram_metric_value",
			Help: "Latest observed value of a tracked engram metric.",
		}, []string{"metric"})
		t.anomalies = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "engram_anomalies_total",
			Help: "Count of anomalous observations per tracked engram metric.",
		}, []string{"metric"})
	}
	return t
}

// Observe records value for metric, updating its rolling window and, if
// export is enabled, the mirrored Prometheus gauge. Returns whether this
// observation is anomalous under the given sigma/min-samples thresholds.
func (t *Tracker) Observe(metric string, value float64, sigma float64, minSamples int) bool {
	t.mu.Lock()
	buf, ok := t.buffers[metric]
	if !ok {
		buf = newRingBuffer(t.window)
		t.buffers[metric] = buf
	}
	baseline := baselineOf(buf.samples())
	anomalous := IsAnomaly(value, baseline, sigma, minSamples)
	buf.push(value)
	t.lastAnomalous[metric] = anomalous
	t.mu.Unlock()

	if t.gauge != nil {
		t.gauge.WithLabelValues(metric).Set(value)
	}
	if anomalous && t.anomalies != nil {
		t.anomalies.WithLabelValues(metric).Inc()
	}
	return anomalous
}

// GetBaseline returns the current rolling statistics for metric.
func (t *Tracker) GetBaseline(metric string) Baseline {
	t.mu.Lock()
	defer t.mu.Unlock()
	buf, ok := t.buffers[metric]
	if !ok {
		return Baseline{}
	}
	b := baselineOf(buf.samples())
	b.Anomalous = t.lastAnomalous[metric]
	return b
}

func baselineOf(samples []float64) Baseline {
	n := len(samples)
	if n == 0 {
		return Baseline{}
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(n)

	if n < 2 {
		return Baseline{Mean: mean, StdDev: 0, N: n}
	}
	var sqDiff float64
	for _, v := range samples {
		d := v - mean
		sqDiff += d * d
	}
	variance := sqDiff / float64(n-1)
	return Baseline{Mean: mean, StdDev: math.Sqrt(variance), N: n}
}

// IsAnomaly returns true iff n>=minSamples and |value-mean|/std > sigma;
// when std==0, any value != mean is anomalous.
func IsAnomaly(value float64, b Baseline, sigma float64, minSamples int) bool {
	if b.N < minSamples {
		return false
	}
	if b.StdDev == 0 {
		return value != b.Mean
	}
	return math.Abs(value-b.Mean)/b.StdDev > sigma
}
