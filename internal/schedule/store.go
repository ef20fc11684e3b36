package schedule

import (
	"context"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/models"
)

// Store is the persistence port the scheduling core reads and writes
// through. internal/db implements it over Postgres; internal/db/memory
// implements it in memory for tests.
type Store interface {
	ClassByID(ctx context.Context, id uint) (*models.ProgramClass, error)
	ClassesByInstructor(ctx context.Context, instructorID uint) ([]models.ProgramClass, error)
	// LockClassesByInstructor behaves like ClassesByInstructor but takes
	// row locks on the returned classes. Only meaningful inside Transact;
	// it serializes concurrent commits touching the same classes.
	LockClassesByInstructor(ctx context.Context, instructorID uint) ([]models.ProgramClass, error)

	EventByID(ctx context.Context, id uint) (*models.ClassEvent, error)
	EventsByClass(ctx context.Context, classID uint) ([]models.ClassEvent, error)
	EventsByRoom(ctx context.Context, roomID uint) ([]models.ClassEvent, error)
	CreateEvent(ctx context.Context, ev *models.ClassEvent) error

	OverridesByEvent(ctx context.Context, eventID uint) ([]models.EventOverride, error)
	CreateOverride(ctx context.Context, ov *models.EventOverride) error
	CreateOverrides(ctx context.Context, ovs []models.EventOverride) error

	EnrollmentCount(ctx context.Context, classID uint) (int, error)
	CreateEnrollments(ctx context.Context, rows []models.Enrollment) error

	Rooms(ctx context.Context) ([]models.Room, error)
	RoomByID(ctx context.Context, id uint) (*models.Room, error)
	// LockRoomByID is RoomByID with a row lock. Only meaningful inside
	// Transact; it serializes concurrent bookings of the same room.
	LockRoomByID(ctx context.Context, id uint) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error

	// Transact runs fn atomically: every write made through the Store
	// handed to fn is committed together or rolled back together.
	Transact(ctx context.Context, fn func(Store) error) error
}
