package schedule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/db/memory"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/models"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/schedule"
)

const instructorID = 42

type recordingNotifier struct {
	calls []schedule.CancellationResult
}

func (n *recordingNotifier) CancellationCommitted(_ context.Context, _ uint, result schedule.CancellationResult) {
	n.calls = append(n.calls, result)
}

// seedInstructor creates two classes for the instructor, each with a
// three-session weekly series and five enrolled students.
func seedInstructor(t *testing.T, store *memory.Store) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	ctx := context.Background()

	room := models.Room{Name: "Multipurpose"}
	require.NoError(t, store.CreateRoom(ctx, &room))

	rules := []string{
		"DTSTART;TZID=America/Chicago:20240102T100000\nRRULE:FREQ=WEEKLY;COUNT=3",
		"DTSTART;TZID=America/Chicago:20240104T140000\nRRULE:FREQ=WEEKLY;COUNT=3",
	}
	names := []string{"Woodworking", "Financial Literacy"}

	for i, name := range names {
		cls := store.AddClass(models.ProgramClass{Name: name, InstructorID: instructorID})
		ev := models.ClassEvent{
			ClassID:         cls.ID,
			RecurrenceRule:  rules[i],
			DurationMinutes: 60,
			RoomID:          room.ID,
		}
		require.NoError(t, store.CreateEvent(ctx, &ev))

		var enrollments []models.Enrollment
		for s := 0; s < 5; s++ {
			enrollments = append(enrollments, models.Enrollment{ClassID: cls.ID, StudentName: "Student"})
		}
		require.NoError(t, store.CreateEnrollments(ctx, enrollments))
	}
	return loc
}

func januaryRange(loc *time.Location) (time.Time, time.Time) {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, loc), time.Date(2024, 1, 31, 23, 59, 59, 0, loc)
}

func TestPreviewCancellation_Counts(t *testing.T) {
	store := memory.NewStore()
	svc := schedule.NewService(store, nil)
	loc := seedInstructor(t, store)
	start, end := januaryRange(loc)

	preview, err := svc.PreviewCancellation(context.Background(), instructorID, start, end)
	require.NoError(t, err)

	assert.Equal(t, 6, preview.SessionCount)
	assert.Equal(t, 6, preview.UpcomingSessionCount)
	assert.Equal(t, 2, preview.ClassCount)
	assert.Equal(t, 10, preview.StudentCount)
	require.Len(t, preview.Classes, 2)
	for _, cp := range preview.Classes {
		assert.Equal(t, 3, cp.UpcomingSessions)
		assert.Equal(t, 0, cp.CancelledSessions)
		assert.Equal(t, 5, cp.StudentCount)
	}
}

func TestPreviewCancellation_ExcludesAlreadyCancelled(t *testing.T) {
	store := memory.NewStore()
	svc := schedule.NewService(store, nil)
	loc := seedInstructor(t, store)
	ctx := context.Background()

	classes, err := store.ClassesByInstructor(ctx, instructorID)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	events, err := store.EventsByClass(ctx, classes[0].ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	cancelled := true
	require.NoError(t, store.CreateOverride(ctx, &models.EventOverride{
		EventID:         events[0].ID,
		OccurrenceIndex: 0,
		Scope:           models.ScopeSelf,
		IsCancelled:     &cancelled,
	}))

	start, end := januaryRange(loc)
	preview, err := svc.PreviewCancellation(ctx, instructorID, start, end)
	require.NoError(t, err)
	assert.Equal(t, 6, preview.SessionCount)
	assert.Equal(t, 5, preview.UpcomingSessionCount)
}

func TestCommitCancellation_AgreesWithPreview(t *testing.T) {
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	svc := schedule.NewService(store, notifier)
	loc := seedInstructor(t, store)
	start, end := januaryRange(loc)
	ctx := context.Background()

	preview, err := svc.PreviewCancellation(ctx, instructorID, start, end)
	require.NoError(t, err)

	result, err := svc.CommitCancellation(ctx, schedule.CancellationRequest{
		InstructorID: instructorID,
		StartDate:    start,
		EndDate:      end,
		Reason:       "facility lockdown",
	})
	require.NoError(t, err)

	assert.Equal(t, preview.UpcomingSessionCount, result.SessionCount)
	assert.Equal(t, 2, result.ClassCount)
	assert.Equal(t, 10, result.StudentCount)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", result.BatchID.String())
	assert.Equal(t, 6, store.OverrideCount(), "one override per affected occurrence")

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, result.SessionCount, notifier.calls[0].SessionCount)

	// After commit everything in range is cancelled.
	after, err := svc.PreviewCancellation(ctx, instructorID, start, end)
	require.NoError(t, err)
	assert.Equal(t, 0, after.UpcomingSessionCount)
	assert.Equal(t, 6, after.SessionCount)
}

func TestCommitCancellation_EmptyIsRejected(t *testing.T) {
	store := memory.NewStore()
	svc := schedule.NewService(store, nil)
	loc := seedInstructor(t, store)
	ctx := context.Background()

	// A window with no sessions at all.
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, loc)

	_, err := svc.CommitCancellation(ctx, schedule.CancellationRequest{
		InstructorID: instructorID,
		StartDate:    start,
		EndDate:      end,
		Reason:       "noop",
	})
	require.ErrorIs(t, err, schedule.ErrEmptyCancellation)
	assert.Equal(t, 0, store.OverrideCount())
}

func TestCommitCancellation_StalePreview(t *testing.T) {
	store := memory.NewStore()
	svc := schedule.NewService(store, nil)
	loc := seedInstructor(t, store)
	start, end := januaryRange(loc)

	expected := 5 // the caller previewed before a sixth session appeared
	_, err := svc.CommitCancellation(context.Background(), schedule.CancellationRequest{
		InstructorID:         instructorID,
		StartDate:            start,
		EndDate:              end,
		Reason:               "stale",
		ExpectedSessionCount: &expected,
	})

	var stale *schedule.StalePreviewError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, 5, stale.Expected)
	assert.Equal(t, 6, stale.Actual)
	assert.Equal(t, 0, store.OverrideCount(), "no partial writes on stale preview")
}

func TestCommitCancellation_AtomicRollback(t *testing.T) {
	store := memory.NewStore()
	svc := schedule.NewService(store, nil)
	loc := seedInstructor(t, store)
	start, end := januaryRange(loc)

	store.FailCreateOverrides = errors.New("disk full")
	_, err := svc.CommitCancellation(context.Background(), schedule.CancellationRequest{
		InstructorID: instructorID,
		StartDate:    start,
		EndDate:      end,
		Reason:       "boom",
	})
	require.Error(t, err)
	assert.Equal(t, 0, store.OverrideCount(), "failed batch leaves no partial state")
}

func TestPlanner_Flow(t *testing.T) {
	store := memory.NewStore()
	svc := schedule.NewService(store, nil)
	loc := seedInstructor(t, store)
	start, end := januaryRange(loc)
	ctx := context.Background()

	planner := schedule.NewPlanner(svc)
	assert.Equal(t, schedule.StateIdle, planner.State())

	_, err := planner.Commit(ctx, schedule.CancellationRequest{InstructorID: instructorID, StartDate: start, EndDate: end})
	require.ErrorIs(t, err, schedule.ErrCommitWithoutPreview)

	preview, err := planner.Preview(ctx, instructorID, start, end)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatePreviewReady, planner.State())
	assert.Equal(t, 6, preview.UpcomingSessionCount)

	result, err := planner.Commit(ctx, schedule.CancellationRequest{
		InstructorID: instructorID,
		StartDate:    start,
		EndDate:      end,
		Reason:       "program pause",
	})
	require.NoError(t, err)
	assert.Equal(t, schedule.StateCommitted, planner.State())
	assert.Equal(t, 6, result.SessionCount)
}

func TestPlanner_CommitFailureFallsBackToIdle(t *testing.T) {
	store := memory.NewStore()
	svc := schedule.NewService(store, nil)
	loc := seedInstructor(t, store)
	start, end := januaryRange(loc)
	ctx := context.Background()

	planner := schedule.NewPlanner(svc)
	_, err := planner.Preview(ctx, instructorID, start, end)
	require.NoError(t, err)

	store.FailCreateOverrides = errors.New("storage unavailable")
	_, err = planner.Commit(ctx, schedule.CancellationRequest{
		InstructorID: instructorID,
		StartDate:    start,
		EndDate:      end,
		Reason:       "boom",
	})
	require.Error(t, err)
	assert.Equal(t, schedule.StateIdle, planner.State(), "failed commit forces a fresh preview")
}
