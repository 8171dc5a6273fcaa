package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommitsProcessed = "cohort.walk.commits_processed"
	metricBytesDiffed      = "cohort.walk.bytes_diffed"
	metricActiveStates     = "cohort.walk.active_blame_states"
	metricWalkDuration     = "cohort.walk.duration.seconds"
)

// WalkMetrics holds the OTel instruments the History Walker reports its
// progress through: commits processed, bytes diffed, the current count of
// retained blame states, and total walk duration.
type WalkMetrics struct {
	CommitsProcessed metric.Int64Counter
	BytesDiffed      metric.Int64Counter
	ActiveStates     metric.Int64UpDownCounter
	WalkDuration     metric.Float64Histogram
}

// NewWalkMetrics creates the walker's instruments from mt.
func NewWalkMetrics(mt metric.Meter) (*WalkMetrics, error) {
	commits, err := mt.Int64Counter(metricCommitsProcessed,
		metric.WithDescription("Commits visited by the history walker"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsProcessed, err)
	}

	bytes, err := mt.Int64Counter(metricBytesDiffed,
		metric.WithDescription("Changed lines (deleted plus inserted, and lines of added files) processed while deriving blame states"),
		metric.WithUnit("{line}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBytesDiffed, err)
	}

	active, err := mt.Int64UpDownCounter(metricActiveStates,
		metric.WithDescription("Blame states currently retained (non-zero refcount)"),
		metric.WithUnit("{state}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricActiveStates, err)
	}

	duration, err := mt.Float64Histogram(metricWalkDuration,
		metric.WithDescription("Wall-clock duration of a full walk"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricWalkDuration, err)
	}

	return &WalkMetrics{
		CommitsProcessed: commits,
		BytesDiffed:      bytes,
		ActiveStates:     active,
		WalkDuration:     duration,
	}, nil
}

// RecordCommit increments the commits-processed counter and, if retained
// went up or down relative to the previous commit, adjusts the active-states
// gauge by delta.
func (m *WalkMetrics) RecordCommit(ctx context.Context, bytesDiffed int64, activeStatesDelta int64) {
	m.CommitsProcessed.Add(ctx, 1)

	if bytesDiffed > 0 {
		m.BytesDiffed.Add(ctx, bytesDiffed)
	}

	if activeStatesDelta != 0 {
		m.ActiveStates.Add(ctx, activeStatesDelta)
	}
}
