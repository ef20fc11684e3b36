package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/db/memory"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/models"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/schedule"
)

const weeklyTuesday4 = "DTSTART;TZID=America/Chicago:20240102T100000\nRRULE:FREQ=WEEKLY;COUNT=4"
const weeklyTuesday8 = "DTSTART;TZID=America/Chicago:20240102T100000\nRRULE:FREQ=WEEKLY;COUNT=8"

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

type fixture struct {
	store *memory.Store
	svc   *schedule.Service
	class models.ProgramClass
	event models.ClassEvent
	room  models.Room
	loc   *time.Location
}

func newFixture(t *testing.T, rule string) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	store := memory.NewStore()
	svc := schedule.NewService(store, nil)

	room := models.Room{Name: "Room A"}
	require.NoError(t, store.CreateRoom(context.Background(), &room))

	class := store.AddClass(models.ProgramClass{Name: "Woodworking", InstructorID: 7})

	event := models.ClassEvent{
		ClassID:         class.ID,
		RecurrenceRule:  rule,
		DurationMinutes: 60,
		RoomID:          room.ID,
		Location:        "Room A",
	}
	require.NoError(t, store.CreateEvent(context.Background(), &event))

	return &fixture{store: store, svc: svc, class: class, event: event, room: room, loc: loc}
}

func (f *fixture) window() (time.Time, time.Time) {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, f.loc), time.Date(2024, 4, 1, 0, 0, 0, 0, f.loc)
}

func (f *fixture) addOverride(t *testing.T, ov models.EventOverride) {
	t.Helper()
	ov.EventID = f.event.ID
	require.NoError(t, f.store.CreateOverride(context.Background(), &ov))
}

func (f *fixture) materialize(t *testing.T) []schedule.Occurrence {
	t.Helper()
	ws, we := f.window()
	occs, err := f.svc.MaterializeClass(context.Background(), f.class.ID, ws, we, nil)
	require.NoError(t, err)
	return occs
}

func TestMaterialize_NoOverrides(t *testing.T) {
	f := newFixture(t, weeklyTuesday4)
	occs := f.materialize(t)

	require.Len(t, occs, 4)
	for i, occ := range occs {
		assert.Equal(t, i, occ.Index)
		assert.Equal(t, f.class.ID, occ.ClassID)
		assert.Equal(t, f.room.ID, occ.RoomID)
		assert.Equal(t, "Room A", occ.Location)
		assert.False(t, occ.Cancelled)
	}
}

func TestMaterialize_PrecedenceSelfOverForwardOverBase(t *testing.T) {
	f := newFixture(t, weeklyTuesday8)
	f.addOverride(t, models.EventOverride{
		OccurrenceIndex: 5,
		Scope:           models.ScopeForward,
		Location:        strPtr("Annex"),
	})
	f.addOverride(t, models.EventOverride{
		OccurrenceIndex: 7,
		Scope:           models.ScopeSelf,
		Location:        strPtr("Lab"),
	})

	occs := f.materialize(t)
	require.Len(t, occs, 8)

	assert.Equal(t, "Room A", occs[4].Location, "below the forward anchor the base wins")
	assert.Equal(t, "Annex", occs[5].Location)
	assert.Equal(t, "Annex", occs[6].Location)
	assert.Equal(t, "Lab", occs[7].Location, "self beats forward on the same field")
}

func TestMaterialize_LaterForwardAnchorWins(t *testing.T) {
	f := newFixture(t, weeklyTuesday8)
	early := models.EventOverride{
		OccurrenceIndex: 1,
		Scope:           models.ScopeForward,
		Location:        strPtr("East Wing"),
		CreatedAt:       time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	late := models.EventOverride{
		OccurrenceIndex: 3,
		Scope:           models.ScopeForward,
		Location:        strPtr("West Wing"),
		CreatedAt:       time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
	}
	f.addOverride(t, early)
	f.addOverride(t, late)

	occs := f.materialize(t)
	assert.Equal(t, "Room A", occs[0].Location)
	assert.Equal(t, "East Wing", occs[1].Location)
	assert.Equal(t, "East Wing", occs[2].Location)
	assert.Equal(t, "West Wing", occs[3].Location)
	assert.Equal(t, "West Wing", occs[7].Location)
}

func TestMaterialize_AllScopeAndFieldFallthrough(t *testing.T) {
	f := newFixture(t, weeklyTuesday4)
	f.addOverride(t, models.EventOverride{
		Scope:    models.ScopeAll,
		Location: strPtr("Gym"),
	})
	f.addOverride(t, models.EventOverride{
		OccurrenceIndex: 2,
		Scope:           models.ScopeSelf,
		DurationMinutes: intPtr(90),
	})

	occs := f.materialize(t)
	// The self override sets only duration; location still falls through
	// to the all-scoped source.
	assert.Equal(t, "Gym", occs[2].Location)
	assert.True(t, occs[2].End.Equal(occs[2].Start.Add(90*time.Minute)))
	assert.Equal(t, "Gym", occs[0].Location)
	assert.True(t, occs[0].End.Equal(occs[0].Start.Add(time.Hour)))
}

func TestMaterialize_CancelAndReinstate(t *testing.T) {
	f := newFixture(t, weeklyTuesday8)
	f.addOverride(t, models.EventOverride{
		OccurrenceIndex: 2,
		Scope:           models.ScopeForward,
		IsCancelled:     boolPtr(true),
		Reason:          "instructor out",
	})
	f.addOverride(t, models.EventOverride{
		OccurrenceIndex: 3,
		Scope:           models.ScopeSelf,
		IsCancelled:     boolPtr(false),
	})

	occs := f.materialize(t)
	assert.False(t, occs[1].Cancelled)
	assert.True(t, occs[2].Cancelled)
	assert.Equal(t, "instructor out", occs[2].Reason)
	assert.False(t, occs[3].Cancelled, "self override reinstates a single occurrence")
	assert.True(t, occs[4].Cancelled)
}

func TestMaterialize_ForwardTimeChangeShiftsWallClock(t *testing.T) {
	f := newFixture(t, weeklyTuesday4)
	newStart := time.Date(2024, 1, 9, 14, 30, 0, 0, f.loc)
	f.addOverride(t, models.EventOverride{
		OccurrenceIndex: 1,
		Scope:           models.ScopeForward,
		StartAt:         &newStart,
	})

	occs := f.materialize(t)
	assert.Equal(t, 10, occs[0].Start.In(f.loc).Hour())
	for _, occ := range occs[1:] {
		assert.Equal(t, 14, occ.Start.In(f.loc).Hour())
		assert.Equal(t, 30, occ.Start.In(f.loc).Minute())
		assert.Equal(t, time.Tuesday, occ.Start.In(f.loc).Weekday(), "date keeps following the base cadence")
	}
}

func TestMaterialize_EndToEndScenario(t *testing.T) {
	// Weekly Tuesday 10:00-11:00 starting 2024-01-02, four sessions:
	// cancel index 2, then move indexes 1+ to Room B.
	f := newFixture(t, weeklyTuesday4)
	f.addOverride(t, models.EventOverride{
		OccurrenceIndex: 2,
		Scope:           models.ScopeSelf,
		IsCancelled:     boolPtr(true),
	})

	occs := f.materialize(t)
	require.Len(t, occs, 4)
	active := 0
	for _, occ := range occs {
		if !occ.Cancelled {
			active++
		}
	}
	assert.Equal(t, 3, active)
	assert.True(t, occs[2].Cancelled)

	f.addOverride(t, models.EventOverride{
		OccurrenceIndex: 1,
		Scope:           models.ScopeForward,
		Location:        strPtr("Room B"),
	})

	occs = f.materialize(t)
	assert.Equal(t, "Room A", occs[0].Location)
	for _, occ := range occs[1:] {
		assert.Equal(t, "Room B", occ.Location)
	}
	assert.True(t, occs[2].Cancelled, "location change does not resurrect the cancelled session")
}

func TestMaterialize_DisplayTimezone(t *testing.T) {
	f := newFixture(t, weeklyTuesday4)
	denver, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)

	ws, we := f.window()
	occs, err := f.svc.MaterializeClass(context.Background(), f.class.ID, ws, we, denver)
	require.NoError(t, err)
	require.Len(t, occs, 4)
	assert.Equal(t, 9, occs[0].Start.Hour(), "10:00 Chicago is 09:00 Denver")
	assert.Equal(t, "America/Denver", occs[0].Start.Location().String())
}

func TestMaterialize_BadRuleDoesNotAffectOtherClasses(t *testing.T) {
	f := newFixture(t, weeklyTuesday4)

	broken := f.store.AddClass(models.ProgramClass{Name: "Broken", InstructorID: 9})
	ev := models.ClassEvent{
		ClassID:         broken.ID,
		RecurrenceRule:  "RRULE:FREQ=SOMETIMES",
		DurationMinutes: 60,
		RoomID:          f.room.ID,
	}
	require.NoError(t, f.store.CreateEvent(context.Background(), &ev))

	ws, we := f.window()
	_, err := f.svc.MaterializeClass(context.Background(), broken.ID, ws, we, nil)
	assert.Error(t, err)

	occs, err := f.svc.MaterializeClass(context.Background(), f.class.ID, ws, we, nil)
	require.NoError(t, err)
	assert.Len(t, occs, 4)
}
