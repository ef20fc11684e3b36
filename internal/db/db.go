package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/models"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/schedule"
)

var DB *gorm.DB

func InitDB(dsn string) {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// AutoMigrate will create/update tables automatically
	err = DB.AutoMigrate(
		&models.ProgramClass{},
		&models.ClassEvent{},
		&models.EventOverride{},
		&models.Room{},
		&models.Enrollment{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	fmt.Println("✅ Database connected and migrated")
}

func PingDB() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DeleteOrphanOverrides removes overrides whose event no longer exists.
// Run nightly from the cron job.
func DeleteOrphanOverrides(ctx context.Context) (int64, error) {
	res := DB.WithContext(ctx).
		Where("event_id NOT IN (?)", DB.Model(&models.ClassEvent{}).Select("id")).
		Delete(&models.EventOverride{})
	return res.RowsAffected, res.Error
}

// Store implements schedule.Store over Postgres.
type Store struct {
	db *gorm.DB
}

// NewStore wraps the global connection. Call after InitDB.
func NewStore() *Store {
	return &Store{db: DB}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return schedule.ErrNotFound
	}
	return err
}

func (s *Store) ClassByID(ctx context.Context, id uint) (*models.ProgramClass, error) {
	var cls models.ProgramClass
	if err := s.db.WithContext(ctx).First(&cls, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &cls, nil
}

func (s *Store) ClassesByInstructor(ctx context.Context, instructorID uint) ([]models.ProgramClass, error) {
	var classes []models.ProgramClass
	err := s.db.WithContext(ctx).Where("instructor_id = ?", instructorID).Order("id").Find(&classes).Error
	return classes, err
}

func (s *Store) LockClassesByInstructor(ctx context.Context, instructorID uint) ([]models.ProgramClass, error) {
	var classes []models.ProgramClass
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("instructor_id = ?", instructorID).Order("id").Find(&classes).Error
	return classes, err
}

func (s *Store) EventByID(ctx context.Context, id uint) (*models.ClassEvent, error) {
	var ev models.ClassEvent
	if err := s.db.WithContext(ctx).First(&ev, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ev, nil
}

func (s *Store) EventsByClass(ctx context.Context, classID uint) ([]models.ClassEvent, error) {
	var events []models.ClassEvent
	err := s.db.WithContext(ctx).Where("class_id = ?", classID).Order("id").Find(&events).Error
	return events, err
}

func (s *Store) EventsByRoom(ctx context.Context, roomID uint) ([]models.ClassEvent, error) {
	var events []models.ClassEvent
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id").Find(&events).Error
	return events, err
}

func (s *Store) CreateEvent(ctx context.Context, ev *models.ClassEvent) error {
	return s.db.WithContext(ctx).Create(ev).Error
}

func (s *Store) OverridesByEvent(ctx context.Context, eventID uint) ([]models.EventOverride, error) {
	var overrides []models.EventOverride
	err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id").Find(&overrides).Error
	return overrides, err
}

func (s *Store) CreateOverride(ctx context.Context, ov *models.EventOverride) error {
	return s.db.WithContext(ctx).Create(ov).Error
}

func (s *Store) CreateOverrides(ctx context.Context, ovs []models.EventOverride) error {
	if len(ovs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&ovs).Error
}

func (s *Store) EnrollmentCount(ctx context.Context, classID uint) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Enrollment{}).Where("class_id = ?", classID).Count(&n).Error
	return int(n), err
}

func (s *Store) CreateEnrollments(ctx context.Context, rows []models.Enrollment) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

func (s *Store) Rooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := s.db.WithContext(ctx).Order("id").Find(&rooms).Error
	return rooms, err
}

func (s *Store) RoomByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (s *Store) LockRoomByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (s *Store) CreateRoom(ctx context.Context, room *models.Room) error {
	return s.db.WithContext(ctx).Create(room).Error
}

func (s *Store) Transact(ctx context.Context, fn func(schedule.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
