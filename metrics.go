package gpusim

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the latency histogram buckets in nanoseconds.
// Buckets cover from 1us to 10s with logarithmic spacing.
var LatencyBuckets = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numLatencyBuckets = 8

// Metrics tracks performance and operational statistics for an Engine run.
type Metrics struct {
	// Data-plane operation counters
	BindOps     atomic.Uint64 // column binder calls (one per bound column)
	ReadbackOps atomic.Uint64 // readback marshaller passes
	LaunchOps   atomic.Uint64 // kernel launches enqueued
	StepOps     atomic.Uint64 // simulation steps completed

	// Element counters
	BoundElements     atomic.Uint64
	ReadbackElements  atomic.Uint64

	// Error counters
	BindErrors     atomic.Uint64
	ReadbackErrors atomic.Uint64
	LaunchErrors   atomic.Uint64

	// In-flight event statistics, sampled after each step and each prune pass
	InFlightTotal atomic.Uint64
	InFlightCount atomic.Uint64
	MaxInFlight   atomic.Uint32

	// Performance tracking
	TotalLatencyNs atomic.Uint64
	OpCount        atomic.Uint64

	// Latency histogram buckets (cumulative counts)
	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	// Run lifecycle
	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a new metrics instance with StartTime set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordBind records one column-binder call.
func (m *Metrics) RecordBind(elements uint64, latencyNs uint64, success bool) {
	m.BindOps.Add(1)
	if success {
		m.BoundElements.Add(elements)
	} else {
		m.BindErrors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordReadback records one readback-marshaller pass.
func (m *Metrics) RecordReadback(elements uint64, latencyNs uint64, success bool) {
	m.ReadbackOps.Add(1)
	if success {
		m.ReadbackElements.Add(elements)
	} else {
		m.ReadbackErrors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordLaunch records one kernel enqueue.
func (m *Metrics) RecordLaunch(latencyNs uint64, success bool) {
	m.LaunchOps.Add(1)
	if !success {
		m.LaunchErrors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordStep records completion of one simulation step.
func (m *Metrics) RecordStep() {
	m.StepOps.Add(1)
}

// RecordInFlight records the in-flight event count observed after a step
// or a prune pass.
func (m *Metrics) RecordInFlight(depth uint32) {
	m.InFlightTotal.Add(uint64(depth))
	m.InFlightCount.Add(1)

	for {
		current := m.MaxInFlight.Load()
		if depth <= current {
			break
		}
		if m.MaxInFlight.CompareAndSwap(current, depth) {
			break
		}
	}
}

func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)

	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop marks the run as finished.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time snapshot of Metrics.
type MetricsSnapshot struct {
	BindOps     uint64
	ReadbackOps uint64
	LaunchOps   uint64
	StepOps     uint64

	BoundElements    uint64
	ReadbackElements uint64

	BindErrors     uint64
	ReadbackErrors uint64
	LaunchErrors   uint64

	AvgInFlight float64
	MaxInFlight uint32

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyP50Ns  uint64
	LatencyP99Ns  uint64
	LatencyP999Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64

	TotalOps   uint64
	ErrorRate  float64
}

// Snapshot creates a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		BindOps:          m.BindOps.Load(),
		ReadbackOps:      m.ReadbackOps.Load(),
		LaunchOps:        m.LaunchOps.Load(),
		StepOps:          m.StepOps.Load(),
		BoundElements:    m.BoundElements.Load(),
		ReadbackElements: m.ReadbackElements.Load(),
		BindErrors:       m.BindErrors.Load(),
		ReadbackErrors:   m.ReadbackErrors.Load(),
		LaunchErrors:     m.LaunchErrors.Load(),
		MaxInFlight:      m.MaxInFlight.Load(),
	}

	snap.TotalOps = snap.BindOps + snap.ReadbackOps + snap.LaunchOps

	inFlightTotal := m.InFlightTotal.Load()
	inFlightCount := m.InFlightCount.Load()
	if inFlightCount > 0 {
		snap.AvgInFlight = float64(inFlightTotal) / float64(inFlightCount)
	}

	totalLatencyNs := m.TotalLatencyNs.Load()
	opCount := m.OpCount.Load()
	if opCount > 0 {
		snap.AvgLatencyNs = totalLatencyNs / opCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	totalErrors := snap.BindErrors + snap.ReadbackErrors + snap.LaunchErrors
	if snap.TotalOps > 0 {
		snap.ErrorRate = float64(totalErrors) / float64(snap.TotalOps) * 100.0
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	if opCount > 0 {
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
		snap.LatencyP999Ns = m.calculatePercentile(0.999)
	}

	return snap
}

// calculatePercentile estimates the latency at the given percentile (0.0-1.0)
// using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	totalOps := m.OpCount.Load()
	if totalOps == 0 {
		return 0
	}

	targetCount := uint64(float64(totalOps) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.LatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}

	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset resets all metrics counters. Useful for testing.
func (m *Metrics) Reset() {
	m.BindOps.Store(0)
	m.ReadbackOps.Store(0)
	m.LaunchOps.Store(0)
	m.StepOps.Store(0)
	m.BoundElements.Store(0)
	m.ReadbackElements.Store(0)
	m.BindErrors.Store(0)
	m.ReadbackErrors.Store(0)
	m.LaunchErrors.Store(0)
	m.InFlightTotal.Store(0)
	m.InFlightCount.Store(0)
	m.MaxInFlight.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable metrics collection for the data-plane operations.
type Observer interface {
	ObserveBind(elements uint64, latencyNs uint64, success bool)
	ObserveReadback(elements uint64, latencyNs uint64, success bool)
	ObserveLaunch(latencyNs uint64, success bool)
	ObserveStep()
	ObserveInFlight(depth uint32)
}

// NoOpObserver is a no-op implementation of Observer.
type NoOpObserver struct{}

func (NoOpObserver) ObserveBind(uint64, uint64, bool)     {}
func (NoOpObserver) ObserveReadback(uint64, uint64, bool) {}
func (NoOpObserver) ObserveLaunch(uint64, bool)           {}
func (NoOpObserver) ObserveStep()                         {}
func (NoOpObserver) ObserveInFlight(uint32)               {}

// MetricsObserver implements Observer using the built-in Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveBind(elements uint64, latencyNs uint64, success bool) {
	o.metrics.RecordBind(elements, latencyNs, success)
}

func (o *MetricsObserver) ObserveReadback(elements uint64, latencyNs uint64, success bool) {
	o.metrics.RecordReadback(elements, latencyNs, success)
}

func (o *MetricsObserver) ObserveLaunch(latencyNs uint64, success bool) {
	o.metrics.RecordLaunch(latencyNs, success)
}

func (o *MetricsObserver) ObserveStep() {
	o.metrics.RecordStep()
}

func (o *MetricsObserver) ObserveInFlight(depth uint32) {
	o.metrics.RecordInFlight(depth)
}

var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
