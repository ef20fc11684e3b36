package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/models"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/recurrence"
)

// Service exposes the scheduling core: materialization, room conflict
// detection and bulk cancellation. It holds no mutable state of its own;
// every call is stateless given the Store contents.
type Service struct {
	store    Store
	notifier Notifier
}

// NewService builds a Service over the given store. A nil notifier is
// replaced with a no-op.
func NewService(store Store, notifier Notifier) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{store: store, notifier: notifier}
}

// Occurrence is one effective (override-applied) session of a class event.
type Occurrence struct {
	ClassID   uint      `json:"class_id"`
	EventID   uint      `json:"event_id"`
	Index     int       `json:"occurrence_index"`
	Start     time.Time `json:"start_datetime"`
	End       time.Time `json:"end_datetime"`
	RoomID    uint      `json:"room_id"`
	Location  string    `json:"location"`
	Cancelled bool      `json:"is_cancelled"`
	Reason    string    `json:"reason,omitempty"`
}

// MaterializeClass computes the authoritative session list for a class
// within the window, merging every event's base expansion with its stored
// overrides. Results are ordered by start time. When loc is non-nil all
// returned times are projected into it; otherwise they stay in each rule's
// own zone.
func (s *Service) MaterializeClass(ctx context.Context, classID uint, windowStart, windowEnd time.Time, loc *time.Location) ([]Occurrence, error) {
	events, err := s.store.EventsByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	var out []Occurrence
	for i := range events {
		occs, err := s.materializeEvent(ctx, s.store, &events[i], windowStart, windowEnd)
		if err != nil {
			return nil, err
		}
		out = append(out, occs...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })

	if loc != nil {
		for i := range out {
			out[i].Start = out[i].Start.In(loc)
			out[i].End = out[i].End.In(loc)
		}
	}
	return out, nil
}

func (s *Service) materializeEvent(ctx context.Context, store Store, ev *models.ClassEvent, windowStart, windowEnd time.Time) ([]Occurrence, error) {
	rule, err := recurrence.ParseRule(ev.RecurrenceRule, time.Duration(ev.DurationMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", ev.ID, err)
	}

	base, err := rule.Expand(windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	overrides, err := store.OverridesByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	return ApplyOverrides(ev, rule, base, overrides), nil
}

// ApplyOverrides layers stored overrides over a base expansion. For each
// occurrence, sources are consulted field-by-field in precedence order:
// the self override at that index, then forward overrides whose anchor is
// at or before the index (later anchors first), then all-scoped overrides
// (newest first), then the base values. The first source that sets a field
// wins; unset fields fall through. Because cancellation follows the same
// rule, a self override with IsCancelled=false reinstates a single
// occurrence out of a wider cancellation, while nothing below the source
// that cancelled it can un-cancel it.
func ApplyOverrides(ev *models.ClassEvent, rule *recurrence.Rule, base []recurrence.Occurrence, overrides []models.EventOverride) []Occurrence {
	out := make([]Occurrence, 0, len(base))
	for _, b := range base {
		out = append(out, resolveOccurrence(ev, rule, b, overrides))
	}
	return out
}

func resolveOccurrence(ev *models.ClassEvent, rule *recurrence.Rule, base recurrence.Occurrence, overrides []models.EventOverride) Occurrence {
	sources := orderSources(base.Index, overrides)

	occ := Occurrence{
		ClassID:  ev.ClassID,
		EventID:  ev.ID,
		Index:    base.Index,
		Start:    base.Start,
		RoomID:   ev.RoomID,
		Location: ev.Location,
	}

	duration := rule.Duration
	startSet, locationSet, durationSet, cancelSet := false, false, false, false
	for _, ov := range sources {
		if !startSet && ov.StartAt != nil {
			occ.Start = retime(base.Start, *ov.StartAt, rule.Loc)
			startSet = true
		}
		if !locationSet && ov.Location != nil {
			occ.Location = *ov.Location
			locationSet = true
		}
		if !durationSet && ov.DurationMinutes != nil {
			duration = time.Duration(*ov.DurationMinutes) * time.Minute
			durationSet = true
		}
		if !cancelSet && ov.IsCancelled != nil {
			occ.Cancelled = *ov.IsCancelled
			occ.Reason = ov.Reason
			cancelSet = true
		}
	}

	occ.End = occ.Start.Add(duration)
	return occ
}

// orderSources returns the overrides applicable to the given index, highest
// precedence first.
func orderSources(index int, overrides []models.EventOverride) []models.EventOverride {
	var selfs, forwards, alls []models.EventOverride
	for _, ov := range overrides {
		switch ov.Scope {
		case models.ScopeSelf:
			if ov.OccurrenceIndex == index {
				selfs = append(selfs, ov)
			}
		case models.ScopeForward:
			if ov.OccurrenceIndex <= index {
				forwards = append(forwards, ov)
			}
		case models.ScopeAll:
			alls = append(alls, ov)
		}
	}

	newest := func(a, b models.EventOverride) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
	sort.Slice(selfs, func(i, j int) bool { return newest(selfs[i], selfs[j]) })
	// Forward overrides: the one anchored later wins for indexes it covers.
	sort.Slice(forwards, func(i, j int) bool {
		if forwards[i].OccurrenceIndex != forwards[j].OccurrenceIndex {
			return forwards[i].OccurrenceIndex > forwards[j].OccurrenceIndex
		}
		return newest(forwards[i], forwards[j])
	})
	sort.Slice(alls, func(i, j int) bool { return newest(alls[i], alls[j]) })

	out := make([]models.EventOverride, 0, len(selfs)+len(forwards)+len(alls))
	out = append(out, selfs...)
	out = append(out, forwards...)
	out = append(out, alls...)
	return out
}

// retime moves an occurrence to the wall-clock time carried by an override
// while keeping the occurrence's own date, so a forward or series-wide
// time change shifts every covered occurrence to the new time of day.
func retime(occStart, ovStart time.Time, loc *time.Location) time.Time {
	o := occStart.In(loc)
	n := ovStart.In(loc)
	return time.Date(o.Year(), o.Month(), o.Day(), n.Hour(), n.Minute(), n.Second(), 0, loc)
}
