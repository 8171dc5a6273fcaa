package gitlib

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Hunk is a contiguous replacement region of a line-level diff. OldStart and
// NewStart are 0-based line offsets; OldLen and NewLen count the number of
// lines replaced and inserted respectively.
type Hunk struct {
	OldStart int
	OldLen   int
	NewStart int
	NewLen   int
}

var dmp = diffmatchpatch.New()

// HunksFromBlobs computes the minimal line-level hunks turning oldData into
// newData, using a line-tokenized Myers diff. Hunks are returned sorted
// ascending by OldStart, non-overlapping.
func HunksFromBlobs(oldData, newData []byte) []Hunk {
	if bytes.Equal(oldData, newData) {
		return nil
	}

	oldText, newText := string(oldData), string(newData)

	chars1, chars2, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var hunks []Hunk

	oldPos, newPos := 0, 0
	pendingOldStart, pendingNewStart := -1, -1
	pendingDel, pendingIns := 0, 0

	flush := func() {
		if pendingDel == 0 && pendingIns == 0 {
			return
		}

		hunks = append(hunks, Hunk{
			OldStart: pendingOldStart,
			OldLen:   pendingDel,
			NewStart: pendingNewStart,
			NewLen:   pendingIns,
		})
		pendingDel, pendingIns = 0, 0
		pendingOldStart, pendingNewStart = -1, -1
	}

	for _, d := range diffs {
		n := lineCountOf(d.Text)
		if n == 0 {
			continue
		}

		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldPos += n
			newPos += n
		case diffmatchpatch.DiffDelete:
			if pendingOldStart < 0 {
				pendingOldStart, pendingNewStart = oldPos, newPos
			}
			pendingDel += n
			oldPos += n
		case diffmatchpatch.DiffInsert:
			if pendingOldStart < 0 {
				pendingOldStart, pendingNewStart = oldPos, newPos
			}
			pendingIns += n
			newPos += n
		}
	}

	flush()

	return hunks
}

// lineCountOf counts the number of lines diffmatchpatch packed into a single
// diff segment after DiffLinesToChars/DiffCharsToLines round-tripping: each
// line becomes exactly one rune in the intermediate representation, but
// DiffCharsToLines expands runes back to their original line text, so we
// recover the count from trailing newlines instead.
func lineCountOf(text string) int {
	if text == "" {
		return 0
	}

	n := strings.Count(text, "\n")
	if text[len(text)-1] != '\n' {
		n++
	}

	return n
}
