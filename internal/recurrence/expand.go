package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// maxOccurrences caps a single expansion so a pathological rule cannot
// produce an effectively unbounded slice. ParseRule rejects COUNT above the
// cap; Expand refuses windows that would exceed it rather than dropping
// tail occurrences.
const maxOccurrences = 5000

// Occurrence is one concrete instance of a series. Index is absolute within
// the series, 0-based from DTSTART, so it stays stable no matter which
// window the caller asked for.
type Occurrence struct {
	Index int
	Start time.Time
	End   time.Time
}

// Expand returns, in strictly increasing start order, every occurrence
// whose whole [Start, End) interval lies inside [windowStart, windowEnd].
// Expansion is performed in the rule's zone, so a series keeps its local
// wall-clock time across daylight-saving transitions. Expand has no side
// effects and identical inputs always yield identical output.
func (r *Rule) Expand(windowStart, windowEnd time.Time) ([]Occurrence, error) {
	if windowEnd.Before(windowStart) {
		return nil, errors.New("recurrence: window end precedes window start")
	}

	// Iterate from DTSTART, not from windowStart, so indices are
	// series-absolute. COUNT/UNTIL terminate bounded rules; the window end
	// terminates unbounded ones.
	starts := r.rr.Between(r.Start.In(r.Loc), windowEnd.In(r.Loc), true)
	if len(starts) > maxOccurrences {
		return nil, fmt.Errorf("recurrence: window covers more than %d occurrences", maxOccurrences)
	}

	out := make([]Occurrence, 0, len(starts))
	for i, s := range starts {
		occ := Occurrence{Index: i, Start: s, End: s.Add(r.Duration)}
		if occ.Start.Before(windowStart) || occ.End.After(windowEnd) {
			continue
		}
		out = append(out, occ)
	}
	return out, nil
}

// OccurrenceOn finds the occurrence falling on the given calendar date in
// the rule's zone, scanning no further than horizon. Used to resolve a
// date-addressed edit to a series index.
func (r *Rule) OccurrenceOn(date time.Time, horizon time.Time) (Occurrence, bool) {
	y, m, d := date.In(r.Loc).Date()
	starts := r.rr.Between(r.Start.In(r.Loc), horizon.In(r.Loc), true)
	if len(starts) > maxOccurrences {
		starts = starts[:maxOccurrences]
	}
	for i, s := range starts {
		sy, sm, sd := s.Date()
		if sy == y && sm == m && sd == d {
			return Occurrence{Index: i, Start: s, End: s.Add(r.Duration)}, true
		}
	}
	return Occurrence{}, false
}
