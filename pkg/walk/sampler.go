package walk

import (
	"math"
	"time"
)

// mondayEpoch is a fixed Monday 00:00 UTC reference point that every sample
// grid is anchored to, so bucket boundaries are independent of which
// repository is being analyzed.
var mondayEpoch = time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)

// Sampler decides which commits, in a commit-date-ordered walk, start a new
// sampling bucket. Buckets are granularityDays wide, anchored to
// mondayEpoch; with the default of 7 they align to calendar weeks.
type Sampler struct {
	granularityDays int
	started         bool
	lastBucket      int64
}

// NewSampler returns a Sampler with the given bucket width in days. A
// non-positive value defaults to 7 (weekly).
func NewSampler(granularityDays int) *Sampler {
	if granularityDays <= 0 {
		granularityDays = 7
	}

	return &Sampler{granularityDays: granularityDays}
}

// Bucket returns the bucket index containing t.
func (s *Sampler) Bucket(t time.Time) int64 {
	days := int64(math.Floor(t.UTC().Sub(mondayEpoch).Hours() / 24))

	return floorDiv(days, int64(s.granularityDays))
}

// ShouldSample reports whether the commit at time committed should be
// recorded as a sample: it is the first commit seen in its bucket, or the
// caller has flagged it as the walk's last commit.
func (s *Sampler) ShouldSample(committed time.Time, isLast bool) bool {
	b := s.Bucket(committed)

	if !s.started {
		s.started = true
		s.lastBucket = b

		return true
	}

	if b > s.lastBucket {
		s.lastBucket = b

		return true
	}

	return isLast
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}
