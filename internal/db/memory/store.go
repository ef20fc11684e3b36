// Package memory provides an in-memory schedule.Store used by tests and
// local experiments. It mirrors the Postgres store's observable behavior,
// including transactional rollback.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/models"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/schedule"
)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	classes     []models.ProgramClass
	events      []models.ClassEvent
	overrides   []models.EventOverride
	rooms       []models.Room
	enrollments []models.Enrollment
	nextID      uint

	// FailCreateOverrides, when set, makes the next CreateOverrides call
	// fail so tests can exercise rollback.
	FailCreateOverrides error
}

var _ schedule.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{nextID: 1}
}

func (s *Store) id() uint {
	v := s.nextID
	s.nextID++
	return v
}

// AddClass seeds a class and returns it with an assigned ID.
func (s *Store) AddClass(cls models.ProgramClass) models.ProgramClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	cls.ID = s.id()
	s.classes = append(s.classes, cls)
	return cls
}

func (s *Store) ClassByID(_ context.Context, id uint) (*models.ProgramClass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.classes {
		if s.classes[i].ID == id {
			cls := s.classes[i]
			return &cls, nil
		}
	}
	return nil, schedule.ErrNotFound
}

func (s *Store) ClassesByInstructor(_ context.Context, instructorID uint) ([]models.ProgramClass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ProgramClass
	for _, cls := range s.classes {
		if cls.InstructorID == instructorID {
			out = append(out, cls)
		}
	}
	return out, nil
}

func (s *Store) LockClassesByInstructor(ctx context.Context, instructorID uint) ([]models.ProgramClass, error) {
	// No row locks in memory; the transaction mutex already serializes.
	return s.ClassesByInstructor(ctx, instructorID)
}

func (s *Store) EventByID(_ context.Context, id uint) (*models.ClassEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.events {
		if s.events[i].ID == id {
			ev := s.events[i]
			return &ev, nil
		}
	}
	return nil, schedule.ErrNotFound
}

func (s *Store) EventsByClass(_ context.Context, classID uint) ([]models.ClassEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ClassEvent
	for _, ev := range s.events {
		if ev.ClassID == classID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *Store) EventsByRoom(_ context.Context, roomID uint) ([]models.ClassEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ClassEvent
	for _, ev := range s.events {
		if ev.RoomID == roomID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *Store) CreateEvent(_ context.Context, ev *models.ClassEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = s.id()
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	s.events = append(s.events, *ev)
	return nil
}

func (s *Store) OverridesByEvent(_ context.Context, eventID uint) ([]models.EventOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.EventOverride
	for _, ov := range s.overrides {
		if ov.EventID == eventID {
			out = append(out, ov)
		}
	}
	return out, nil
}

func (s *Store) CreateOverride(_ context.Context, ov *models.EventOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ov.ID = s.id()
	if ov.CreatedAt.IsZero() {
		ov.CreatedAt = time.Now()
	}
	s.overrides = append(s.overrides, *ov)
	return nil
}

func (s *Store) CreateOverrides(_ context.Context, ovs []models.EventOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreateOverrides != nil {
		err := s.FailCreateOverrides
		s.FailCreateOverrides = nil
		return err
	}
	for _, ov := range ovs {
		ov.ID = s.id()
		if ov.CreatedAt.IsZero() {
			ov.CreatedAt = time.Now()
		}
		s.overrides = append(s.overrides, ov)
	}
	return nil
}

func (s *Store) EnrollmentCount(_ context.Context, classID uint) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.enrollments {
		if e.ClassID == classID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateEnrollments(_ context.Context, rows []models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range rows {
		e.ID = s.id()
		s.enrollments = append(s.enrollments, e)
	}
	return nil
}

func (s *Store) Rooms(_ context.Context) ([]models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Room, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}

func (s *Store) RoomByID(_ context.Context, id uint) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.rooms {
		if s.rooms[i].ID == id {
			room := s.rooms[i]
			return &room, nil
		}
	}
	return nil, schedule.ErrNotFound
}

func (s *Store) LockRoomByID(ctx context.Context, id uint) (*models.Room, error) {
	// No row locks in memory; the transaction mutex already serializes.
	return s.RoomByID(ctx, id)
}

func (s *Store) CreateRoom(_ context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room.ID = s.id()
	s.rooms = append(s.rooms, *room)
	return nil
}

// Transact snapshots all tables, runs fn against the store, and restores
// the snapshot if fn fails. Transactions are serialized by txMu.
func (s *Store) Transact(_ context.Context, fn func(schedule.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := struct {
		classes     []models.ProgramClass
		events      []models.ClassEvent
		overrides   []models.EventOverride
		rooms       []models.Room
		enrollments []models.Enrollment
		nextID      uint
	}{
		classes:     append([]models.ProgramClass(nil), s.classes...),
		events:      append([]models.ClassEvent(nil), s.events...),
		overrides:   append([]models.EventOverride(nil), s.overrides...),
		rooms:       append([]models.Room(nil), s.rooms...),
		enrollments: append([]models.Enrollment(nil), s.enrollments...),
		nextID:      s.nextID,
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.classes = snap.classes
		s.events = snap.events
		s.overrides = snap.overrides
		s.rooms = snap.rooms
		s.enrollments = snap.enrollments
		s.nextID = snap.nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

// OverrideCount reports how many overrides are stored, for test assertions.
func (s *Store) OverrideCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overrides)
}
