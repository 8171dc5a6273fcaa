package cohort

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Sample is one row of the cohort table: the distribution of tracked lines
// by introduction year, observed at a commit.
type Sample struct {
	Timestamp time.Time
	Counts    map[int32]int64
}

// Table accumulates samples across a walk and, once closed, produces the
// rectangular {ts, ys, labels, data} structure described in §6.
type Table struct {
	samples []Sample
}

// NewTable returns an empty cohort table.
func NewTable() *Table {
	return &Table{}
}

// Add records a sample. Samples must be added in non-decreasing timestamp
// order; the walker guarantees this because it visits commits in
// commit-date order and only samples on the way forward.
func (t *Table) Add(ts time.Time, counts map[int32]int64) {
	t.samples = append(t.samples, Sample{Timestamp: ts, Counts: counts})
}

// CohortJSON is the on-disk schema of cohorts.json (§6).
type CohortJSON struct {
	TS     []string  `json:"ts"`
	YS     []int32   `json:"ys"`
	Labels []string  `json:"labels"`
	Data   [][]int64 `json:"data"`
}

// Build closes the cohort-year set and produces the serializable table. Raw
// samples are taken as-is: one row per distinct sampling bucket the walker
// actually visited. Callers that want every calendar bucket represented
// (including ones with no commit) should call Densify first.
func (t *Table) Build() CohortJSON {
	yearSet := make(map[int32]struct{})

	for _, s := range t.samples {
		for y := range s.Counts {
			yearSet[y] = struct{}{}
		}
	}

	years := make([]int32, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}

	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })

	out := CohortJSON{
		TS:     make([]string, len(t.samples)),
		YS:     years,
		Labels: make([]string, len(years)),
		Data:   make([][]int64, len(years)),
	}

	for i, y := range years {
		out.Labels[i] = fmt.Sprintf("%d", y)
		out.Data[i] = make([]int64, len(t.samples))
	}

	for col, s := range t.samples {
		out.TS[col] = s.Timestamp.UTC().Format("2006-01-02")

		for row, y := range years {
			out.Data[row][col] = s.Counts[y]
		}
	}

	return out
}

// Densify expands the table to a complete grid of granularityDays-wide
// buckets from the first to the last sample, inclusive, carrying the
// previous bucket's distribution forward into any bucket the walk produced
// no sample for (§4.3: "weeks with no commit are represented by the
// previous week's sample carried forward").
func (t *Table) Densify(granularityDays int) {
	if len(t.samples) == 0 {
		return
	}

	if granularityDays <= 0 {
		granularityDays = 7
	}

	step := time.Duration(granularityDays) * 24 * time.Hour

	first := bucketStart(t.samples[0].Timestamp, granularityDays)
	last := bucketStart(t.samples[len(t.samples)-1].Timestamp, granularityDays)

	dense := make([]Sample, 0, int(last.Sub(first)/step)+1)

	idx := 0
	var carry map[int32]int64

	for b := first; !b.After(last); b = b.Add(step) {
		for idx < len(t.samples) && !bucketStart(t.samples[idx].Timestamp, granularityDays).After(b) {
			carry = t.samples[idx].Counts
			idx++
		}

		dense = append(dense, Sample{Timestamp: b, Counts: carry})
	}

	t.samples = dense
}

func bucketStart(t time.Time, granularityDays int) time.Time {
	days := int64(math.Floor(t.UTC().Sub(mondayEpoch).Hours() / 24))
	bucket := days / int64(granularityDays)

	if days%int64(granularityDays) < 0 {
		bucket--
	}

	return mondayEpoch.Add(time.Duration(bucket*int64(granularityDays)) * 24 * time.Hour)
}

// mondayEpoch mirrors pkg/walk's sampling anchor so Densify buckets align
// with the walker's own bucket boundaries without importing pkg/walk (which
// already imports pkg/cohort).
var mondayEpoch = time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)

// WriteJSON serializes data as cohorts.json to path, writing to a temporary
// file in the same directory and renaming it into place so no partial file
// is ever visible (mirrors the teacher's fileReportWriter.flushKind).
func WriteJSON(path string, data CohortJSON) error {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, filepath.Base(path)+".tmp")

	fd, err := os.Create(tmpPath) //nolint:gosec // path is operator-supplied, not attacker input.
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrIO, err)
	}

	enc := json.NewEncoder(fd)
	enc.SetIndent("", "  ")

	if encErr := enc.Encode(data); encErr != nil {
		fd.Close()

		return fmt.Errorf("%w: encode: %v", ErrIO, encErr)
	}

	if syncErr := fd.Sync(); syncErr != nil {
		fd.Close()

		return fmt.Errorf("%w: sync: %v", ErrIO, syncErr)
	}

	if closeErr := fd.Close(); closeErr != nil {
		return fmt.Errorf("%w: close: %v", ErrIO, closeErr)
	}

	if renameErr := os.Rename(tmpPath, path); renameErr != nil {
		return fmt.Errorf("%w: rename: %v", ErrIO, renameErr)
	}

	return nil
}
