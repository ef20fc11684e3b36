package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by Store implementations when a row does
	// not exist.
	ErrNotFound = errors.New("schedule: not found")
	// ErrEmptyCancellation rejects a bulk-cancel commit that would affect
	// zero upcoming sessions.
	ErrEmptyCancellation = errors.New("schedule: no upcoming sessions in range")
)

// RoomConflict describes one existing occurrence that collides with a
// candidate booking. It is a read-only projection, never persisted.
type RoomConflict struct {
	EventID   uint      `json:"conflicting_event_id"`
	ClassName string    `json:"class_name"`
	RoomID    uint      `json:"room_id"`
	Start     time.Time `json:"start_datetime"`
	End       time.Time `json:"end_datetime"`
}

// ConflictError carries the full set of room conflicts found for a request,
// so the caller can resolve them in one round trip.
type ConflictError struct {
	Conflicts []RoomConflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule: room already booked (%d conflicting occurrences)", len(e.Conflicts))
}

// StalePreviewError means the counts re-derived at commit time no longer
// match what the caller previewed; the caller should re-preview and retry.
type StalePreviewError struct {
	Expected int
	Actual   int
}

func (e *StalePreviewError) Error() string {
	return fmt.Sprintf("schedule: preview is stale: expected %d upcoming sessions, found %d", e.Expected, e.Actual)
}
