package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/models"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/recurrence"
)

// Interval is a half-open [Start, End) candidate booking.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports half-open interval overlap: touching endpoints do not
// overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// conflictSlack widens the materialization window around the candidate span
// so occurrences that merely straddle its edges are still compared. ParseRule
// caps occurrence duration at 24h, so the slack always covers a straddler.
const conflictSlack = 24 * time.Hour

// FindConflicts returns every existing, non-cancelled occurrence in the room
// whose interval overlaps any of the candidate intervals. The full union is
// returned, not just the first hit. excludeEventID (0 = none) skips the
// event being edited so it does not conflict with itself. The check is
// read-only; callers persist only after receiving an empty result.
func (s *Service) FindConflicts(ctx context.Context, roomID uint, candidates []Interval, excludeEventID uint) ([]RoomConflict, error) {
	return findConflicts(ctx, s, s.store, roomID, candidates, excludeEventID)
}

// findConflicts is shared between the read-only check and the locked
// re-check inside the writing transaction.
func findConflicts(ctx context.Context, svc *Service, store Store, roomID uint, candidates []Interval, excludeEventID uint) ([]RoomConflict, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	span := candidates[0]
	for _, c := range candidates[1:] {
		if c.Start.Before(span.Start) {
			span.Start = c.Start
		}
		if c.End.After(span.End) {
			span.End = c.End
		}
	}
	windowStart := span.Start.Add(-conflictSlack)
	windowEnd := span.End.Add(conflictSlack)

	events, err := store.EventsByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	type occKey struct {
		eventID uint
		start   time.Time
	}
	seen := make(map[occKey]bool)
	var conflicts []RoomConflict

	for i := range events {
		ev := &events[i]
		if ev.ID == excludeEventID {
			continue
		}

		occs, err := svc.materializeEvent(ctx, store, ev, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}

		className := ""
		if cls, err := store.ClassByID(ctx, ev.ClassID); err == nil {
			className = cls.Name
		}

		for _, occ := range occs {
			if occ.Cancelled {
				continue
			}
			existing := Interval{Start: occ.Start, End: occ.End}
			for _, cand := range candidates {
				if !existing.Overlaps(cand) {
					continue
				}
				key := occKey{eventID: occ.EventID, start: occ.Start}
				if seen[key] {
					continue
				}
				seen[key] = true
				conflicts = append(conflicts, RoomConflict{
					EventID:   occ.EventID,
					ClassName: className,
					RoomID:    roomID,
					Start:     occ.Start,
					End:       occ.End,
				})
			}
		}
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Start.Before(conflicts[j].Start) })
	return conflicts, nil
}

// EnsureRoomFree runs FindConflicts and turns a non-empty result into a
// *ConflictError so callers can refuse a write and still hand the full
// conflict set back. As a read-only precheck it cannot rule out a race with
// a concurrent booking; CreateEvent and CreateOverride repeat it inside the
// writing transaction.
func (s *Service) EnsureRoomFree(ctx context.Context, roomID uint, candidates []Interval, excludeEventID uint) error {
	return ensureRoomFree(ctx, s, s.store, roomID, candidates, excludeEventID)
}

func ensureRoomFree(ctx context.Context, svc *Service, store Store, roomID uint, candidates []Interval, excludeEventID uint) error {
	conflicts, err := findConflicts(ctx, svc, store, roomID, candidates, excludeEventID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

// CreateEvent persists a new event series only if its occurrences collide
// with nothing else in the room. The conflict check runs inside the writing
// transaction with the room row locked, so two concurrent bookings of the
// same room serialize and the loser sees the winner's occurrences.
func (s *Service) CreateEvent(ctx context.Context, ev *models.ClassEvent, candidates []Interval) error {
	return s.store.Transact(ctx, func(tx Store) error {
		if _, err := tx.LockRoomByID(ctx, ev.RoomID); err != nil {
			return err
		}
		if err := ensureRoomFree(ctx, s, tx, ev.RoomID, candidates, 0); err != nil {
			return err
		}
		return tx.CreateEvent(ctx, ev)
	})
}

// CreateOverride persists an override. When it re-times or re-sizes
// occurrences, the affected intervals are derived from current state and
// conflict-checked inside the same transaction that writes the row, with
// the event's room locked. horizon bounds the expansion for unbounded rules.
func (s *Service) CreateOverride(ctx context.Context, ev *models.ClassEvent, rule *recurrence.Rule, ov *models.EventOverride, horizon time.Time) error {
	if ov.StartAt == nil && ov.DurationMinutes == nil {
		return s.store.CreateOverride(ctx, ov)
	}
	return s.store.Transact(ctx, func(tx Store) error {
		if _, err := tx.LockRoomByID(ctx, ev.RoomID); err != nil {
			return err
		}
		base, err := rule.Expand(rule.Start, horizon)
		if err != nil {
			return err
		}
		existing, err := tx.OverridesByEvent(ctx, ev.ID)
		if err != nil {
			return err
		}
		effective := ApplyOverrides(ev, rule, base, append(existing, *ov))

		var intervals []Interval
		for _, occ := range effective {
			if occ.Cancelled || !ov.Covers(occ.Index) {
				continue
			}
			intervals = append(intervals, Interval{Start: occ.Start, End: occ.End})
		}
		if err := ensureRoomFree(ctx, s, tx, ev.RoomID, intervals, ev.ID); err != nil {
			return err
		}
		return tx.CreateOverride(ctx, ov)
	})
}

// RuleIntervals expands a parsed rule into candidate intervals for a
// whole-recurrence conflict check. Every expanded occurrence is checked
// independently by FindConflicts.
func RuleIntervals(rule *recurrence.Rule, windowEnd time.Time) ([]Interval, error) {
	occs, err := rule.Expand(rule.Start, windowEnd)
	if err != nil {
		return nil, err
	}
	out := make([]Interval, 0, len(occs))
	for _, o := range occs {
		out = append(out, Interval{Start: o.Start, End: o.End})
	}
	return out, nil
}
