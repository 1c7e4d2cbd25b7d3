package metrics

import (
	"context"
	"sync/atomic"
	"time"
)

// RenderStats describes one pipeline run.
type RenderStats struct {
	Source         string // "script", "table" or "cli"
	Encoding       string
	Duration       time.Duration
	Samples        int
	ClippedSamples int
	LengthMismatch bool
	Success        bool
}

// RenderCounters keeps process-lifetime render totals for /api/metrics.
type RenderCounters struct {
	renders        atomic.Int64
	failures       atomic.Int64
	samples        atomic.Int64
	clippedSamples atomic.Int64
	mismatches     atomic.Int64
}

// RenderSnapshot is a point-in-time copy of RenderCounters.
type RenderSnapshot struct {
	Renders        int64 `json:"renders"`
	Failures       int64 `json:"failures"`
	Samples        int64 `json:"samples"`
	ClippedSamples int64 `json:"clipped_samples"`
	LengthMismatch int64 `json:"length_mismatches"`
}

func (c *RenderCounters) Record(stats RenderStats) {
	c.renders.Add(1)
	if !stats.Success {
		c.failures.Add(1)
		return
	}
	c.samples.Add(int64(stats.Samples))
	c.clippedSamples.Add(int64(stats.ClippedSamples))
	if stats.LengthMismatch {
		c.mismatches.Add(1)
	}
}

func (c *RenderCounters) Snapshot() RenderSnapshot {
	return RenderSnapshot{
		Renders:        c.renders.Load(),
		Failures:       c.failures.Load(),
		Samples:        c.samples.Load(),
		ClippedSamples: c.clippedSamples.Load(),
		LengthMismatch: c.mismatches.Load(),
	}
}

// Recorder fans render stats out to every configured sink. Nil sinks are
// skipped, so the zero Recorder only counts.
type Recorder struct {
	Sentry     *SentryMetrics
	CloudWatch *Client
	Counters   RenderCounters
}

// NewRecorder wires the Sentry and CloudWatch sinks.
func NewRecorder(sentryMetrics *SentryMetrics, cloudWatch *Client) *Recorder {
	return &Recorder{Sentry: sentryMetrics, CloudWatch: cloudWatch}
}

func (r *Recorder) RecordRender(ctx context.Context, stats RenderStats) {
	r.Counters.Record(stats)
	if r.Sentry != nil {
		r.Sentry.RecordRender(ctx, stats)
	}
	if r.CloudWatch != nil {
		r.CloudWatch.RecordRender(stats)
	}
}

// Snapshot returns the current render totals.
func (r *Recorder) Snapshot() RenderSnapshot {
	return r.Counters.Snapshot()
}
