package models

import (
	"time"

	"github.com/google/uuid"
)

// OverrideScope is the breadth of an override's effect across a series.
type OverrideScope string

const (
	ScopeSelf    OverrideScope = "self"    // one occurrence
	ScopeForward OverrideScope = "forward" // the anchor occurrence and everything after it
	ScopeAll     OverrideScope = "all"     // the whole series
)

// ProgramClass is a facility program class taught by one instructor.
type ProgramClass struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	InstructorID uint   `gorm:"not null;index" json:"instructor_id"`
	FacilityID   uint   `gorm:"index" json:"facility_id"`

	Events      []ClassEvent `gorm:"foreignKey:ClassID" json:"events,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:ClassID" json:"-"`
}

// ClassEvent is a recurring event series owned by a class. The recurrence
// rule is stored verbatim (DTSTART;TZID=...:... plus RRULE:...) and parsed
// on every expansion; the rule text is the source of truth for the series'
// timezone.
type ClassEvent struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	ClassID         uint   `gorm:"not null;index" json:"class_id"`
	RecurrenceRule  string `gorm:"type:text;not null" json:"recurrence_rule"`
	DurationMinutes int    `gorm:"not null" json:"duration_minutes"`
	RoomID          uint   `gorm:"not null;index" json:"room_id"`
	Location        string `json:"location"`

	CreatedAt time.Time `json:"created_at"`
}

// EventOverride is a persisted deviation from an event's base recurrence.
// Nil pointer fields are "not set" and fall through to the next source in
// precedence order. OccurrenceIndex is the target occurrence for self scope
// and the anchor for forward scope; it is ignored for all scope.
type EventOverride struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	EventID         uint          `gorm:"not null;index" json:"event_id"`
	OccurrenceIndex int           `gorm:"not null" json:"occurrence_index"`
	Scope           OverrideScope `gorm:"size:16;not null" json:"scope"`

	StartAt         *time.Time `json:"start_at,omitempty"`
	Location        *string    `json:"location,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	IsCancelled     *bool      `json:"is_cancelled,omitempty"`

	Reason  string     `json:"reason,omitempty"`
	BatchID *uuid.UUID `gorm:"type:uuid;index" json:"batch_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Covers reports whether the override applies to the occurrence at the
// given series index.
func (o EventOverride) Covers(index int) bool {
	switch o.Scope {
	case ScopeSelf:
		return o.OccurrenceIndex == index
	case ScopeForward:
		return index >= o.OccurrenceIndex
	case ScopeAll:
		return true
	}
	return false
}

// Room is a bookable resource shared read-only by many classes' occurrences.
type Room struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// Enrollment links a student to a class. Roster imports create these in bulk.
type Enrollment struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ClassID      uint   `gorm:"not null;index" json:"class_id"`
	StudentName  string `gorm:"not null" json:"student_name"`
	StudentEmail string `json:"student_email"`

	CreatedAt time.Time `json:"created_at"`
}
