package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/excel"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/models"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/recurrence"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/schedule"
)

// API carries the handler dependencies. Every handler is stateless given
// the store contents.
type API struct {
	svc   *schedule.Service
	store schedule.Store
	// horizon bounds whole-series expansions (conflict checks, date
	// resolution) for rules without COUNT/UNTIL.
	horizon time.Duration
}

func New(svc *schedule.Service, store schedule.Store, horizonDays int) *API {
	if horizonDays <= 0 {
		horizonDays = 730
	}
	return &API{svc: svc, store: store, horizon: time.Duration(horizonDays) * 24 * time.Hour}
}

// CreateEventRequest is the request body for creating an event series.
type CreateEventRequest struct {
	RecurrenceRule string `json:"recurrence_rule" binding:"required"`
	Duration       int    `json:"duration" binding:"required,gt=0"` // minutes
	RoomID         uint   `json:"room_id" binding:"required"`
	Location       string `json:"location"`
}

// CreateEvent godoc
// @Summary      Create a recurring event for a class
// @Description  Parses the recurrence rule, checks every expanded occurrence for room conflicts, and persists the event only on a clean check
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        class_id  path  int  true  "Class ID"
// @Param        body      body  CreateEventRequest  true  "Event definition"
// @Success      201  {object} models.ClassEvent
// @Failure      400  {object} map[string]string
// @Failure      404  {object} map[string]string
// @Failure      409  {array}  schedule.RoomConflict
// @Router       /program-classes/{class_id}/events [post]
func (a *API) CreateEvent(c *gin.Context) {
	classID, ok := paramID(c, "class_id")
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if _, err := a.store.ClassByID(c.Request.Context(), classID); err != nil {
		respondStoreErr(c, err, "Class not found")
		return
	}
	if _, err := a.store.RoomByID(c.Request.Context(), req.RoomID); err != nil {
		respondStoreErr(c, err, "Room not found")
		return
	}

	rule, err := recurrence.ParseRule(req.RecurrenceRule, time.Duration(req.Duration)*time.Minute)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intervals, err := schedule.RuleIntervals(rule, rule.Start.Add(a.horizon))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev := models.ClassEvent{
		ClassID:         classID,
		RecurrenceRule:  req.RecurrenceRule,
		DurationMinutes: req.Duration,
		RoomID:          req.RoomID,
		Location:        req.Location,
	}
	if err := a.svc.CreateEvent(c.Request.Context(), &ev, intervals); err != nil {
		var ce *schedule.ConflictError
		if errors.As(err, &ce) {
			c.JSON(http.StatusConflict, ce.Conflicts)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// OverrideRequest is the override diff for editing one or more occurrences.
// Absent fields mean "no change from the current effective value".
type OverrideRequest struct {
	Date         string  `json:"date" binding:"required"` // YYYY-MM-DD in the rule's zone
	StartTime    *string `json:"start_time"`              // HH:MM
	Location     *string `json:"location"`
	Duration     *int    `json:"duration"` // minutes
	IsCancelled  *bool   `json:"is_cancelled"`
	OverrideType string  `json:"override_type" binding:"required,oneof=self forward all"`
	Reason       string  `json:"reason"`
}

// OverrideEvent godoc
// @Summary      Edit or cancel occurrences of an event
// @Description  Writes a self/forward/all-scoped override anchored at the occurrence on the given date; re-timed occurrences are conflict-checked first
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        class_id  path  int  true  "Class ID"
// @Param        event_id  path  int  true  "Event ID"
// @Param        body      body  OverrideRequest  true  "Override diff"
// @Success      200  {object} models.EventOverride
// @Failure      400  {object} map[string]string
// @Failure      404  {object} map[string]string
// @Failure      409  {array}  schedule.RoomConflict
// @Router       /program-classes/{class_id}/events/{event_id} [put]
func (a *API) OverrideEvent(c *gin.Context) {
	classID, ok := paramID(c, "class_id")
	if !ok {
		return
	}
	eventID, ok := paramID(c, "event_id")
	if !ok {
		return
	}

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ev, err := a.store.EventByID(c.Request.Context(), eventID)
	if err != nil {
		respondStoreErr(c, err, "Event not found")
		return
	}
	if ev.ClassID != classID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event does not belong to class"})
		return
	}

	rule, err := recurrence.ParseRule(ev.RecurrenceRule, time.Duration(ev.DurationMinutes)*time.Minute)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, rule.Loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, want YYYY-MM-DD"})
		return
	}
	target, found := rule.OccurrenceOn(date, rule.Start.Add(a.horizon))
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No occurrence on " + req.Date})
		return
	}

	ov := models.EventOverride{
		EventID:         ev.ID,
		OccurrenceIndex: target.Index,
		Scope:           models.OverrideScope(req.OverrideType),
		Location:        req.Location,
		DurationMinutes: req.Duration,
		IsCancelled:     req.IsCancelled,
		Reason:          req.Reason,
	}
	if req.StartTime != nil {
		t, err := time.ParseInLocation("15:04", *req.StartTime, rule.Loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_time, want HH:MM"})
			return
		}
		startAt := time.Date(target.Start.Year(), target.Start.Month(), target.Start.Day(),
			t.Hour(), t.Minute(), 0, 0, rule.Loc)
		ov.StartAt = &startAt
	}
	if ov.StartAt == nil && ov.Location == nil && ov.DurationMinutes == nil && ov.IsCancelled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Override changes no fields"})
		return
	}

	// Re-timed or re-sized occurrences are conflict-checked inside the
	// transaction that writes the override.
	if err := a.svc.CreateOverride(c.Request.Context(), ev, rule, &ov, rule.Start.Add(a.horizon)); err != nil {
		var ce *schedule.ConflictError
		if errors.As(err, &ce) {
			c.JSON(http.StatusConflict, ce.Conflicts)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save override"})
		return
	}
	c.JSON(http.StatusOK, ov)
}

// ListSessions godoc
// @Summary      Materialized sessions for a class
// @Description  Returns the effective, override-applied schedule within the window
// @Tags         sessions
// @Produce      json
// @Param        class_id    path   int     true  "Class ID"
// @Param        start_date  query  string  true  "RFC3339, or YYYY-MM-DD with tz"
// @Param        end_date    query  string  true  "RFC3339, or YYYY-MM-DD with tz"
// @Param        tz          query  string  false "IANA zone for date-only params and display"
// @Success      200  {array}  schedule.Occurrence
// @Failure      400  {object} map[string]string
// @Router       /program-classes/{class_id}/sessions [get]
func (a *API) ListSessions(c *gin.Context) {
	classID, ok := paramID(c, "class_id")
	if !ok {
		return
	}
	window, loc, ok := parseWindow(c)
	if !ok {
		return
	}

	occs, err := a.svc.MaterializeClass(c.Request.Context(), classID, window.Start, window.End, loc)
	if err != nil {
		var perr *recurrence.ParseError
		if errors.As(err, &perr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": perr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to materialize sessions"})
		return
	}
	c.JSON(http.StatusOK, occs)
}

// InstructorClassSummary is the per-class aggregate used to build a
// cancellation preview.
type InstructorClassSummary struct {
	ClassID           uint   `json:"classId"`
	ClassName         string `json:"className"`
	SessionCount      int    `json:"sessionCount"`
	UpcomingSessions  int    `json:"upcomingSessions"`
	CancelledSessions int    `json:"cancelledSessions"`
	EnrolledCount     int    `json:"enrolledCount"`
}

// InstructorClassesResponse wraps the per-class aggregates with totals.
type InstructorClassesResponse struct {
	Classes              []InstructorClassSummary `json:"classes"`
	SessionCount         int                      `json:"sessionCount"`
	UpcomingSessionCount int                      `json:"upcomingSessionCount"`
	ClassCount           int                      `json:"classCount"`
	StudentCount         int                      `json:"studentCount"`
}

// InstructorClasses godoc
// @Summary      Per-class session aggregates for an instructor
// @Description  Read-only preview data for a bulk cancellation over the date range
// @Tags         instructors
// @Produce      json
// @Param        instructor_id  path   int     true  "Instructor ID"
// @Param        start_date     query  string  true  "RFC3339, or YYYY-MM-DD with tz"
// @Param        end_date       query  string  true  "RFC3339, or YYYY-MM-DD with tz"
// @Param        tz             query  string  false "IANA zone for date-only params"
// @Success      200  {object} InstructorClassesResponse
// @Failure      400  {object} map[string]string
// @Router       /instructors/{instructor_id}/classes [get]
func (a *API) InstructorClasses(c *gin.Context) {
	instructorID, ok := paramID(c, "instructor_id")
	if !ok {
		return
	}
	window, _, ok := parseWindow(c)
	if !ok {
		return
	}

	preview, err := a.svc.PreviewCancellation(c.Request.Context(), instructorID, window.Start, window.End)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build preview"})
		return
	}

	resp := InstructorClassesResponse{
		Classes:              make([]InstructorClassSummary, 0, len(preview.Classes)),
		SessionCount:         preview.SessionCount,
		UpcomingSessionCount: preview.UpcomingSessionCount,
		ClassCount:           preview.ClassCount,
		StudentCount:         preview.StudentCount,
	}
	for _, cp := range preview.Classes {
		resp.Classes = append(resp.Classes, InstructorClassSummary{
			ClassID:           cp.ClassID,
			ClassName:         cp.ClassName,
			SessionCount:      cp.SessionCount,
			UpcomingSessions:  cp.UpcomingSessions,
			CancelledSessions: cp.CancelledSessions,
			EnrolledCount:     cp.StudentCount,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// BulkCancelRequest is the commit body for a bulk cancellation.
type BulkCancelRequest struct {
	InstructorID         uint   `json:"instructor_id" binding:"required"`
	StartDate            string `json:"start_date" binding:"required"`
	EndDate              string `json:"end_date" binding:"required"`
	Reason               string `json:"reason" binding:"required"`
	Tz                   string `json:"tz"`
	ExpectedSessionCount *int   `json:"expected_session_count"`
}

// BulkCancel godoc
// @Summary      Cancel every upcoming session for an instructor in a range
// @Description  Re-derives the affected set inside one transaction and writes one cancellation override per occurrence, all or nothing
// @Tags         instructors
// @Accept       json
// @Produce      json
// @Param        body  body  BulkCancelRequest  true  "Cancellation request"
// @Success      200  {object} map[string]interface{}
// @Failure      400  {object} map[string]string
// @Failure      409  {object} map[string]string
// @Failure      422  {object} map[string]string
// @Router       /program-classes/bulk-cancel [post]
func (a *API) BulkCancel(c *gin.Context) {
	var req BulkCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	start, _, err := parseBoundaryTime(req.StartDate, req.Tz, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, _, err := parseBoundaryTime(req.EndDate, req.Tz, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := a.svc.CommitCancellation(c.Request.Context(), schedule.CancellationRequest{
		InstructorID:         req.InstructorID,
		StartDate:            start,
		EndDate:              end,
		Reason:               req.Reason,
		ExpectedSessionCount: req.ExpectedSessionCount,
	})
	if err != nil {
		var stale *schedule.StalePreviewError
		switch {
		case errors.Is(err, schedule.ErrEmptyCancellation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No upcoming sessions in the selected range"})
		case errors.As(err, &stale):
			c.JSON(http.StatusConflict, gin.H{"error": stale.Error()})
		default:
			log.Println("bulk cancel failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel sessions"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"sessionCount": result.SessionCount,
		"classCount":   result.ClassCount,
		"studentCount": result.StudentCount,
		"batchId":      result.BatchID,
	})
}

// CreateRoomRequest is the request body for adding a room.
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListRooms godoc
// @Summary      List rooms
// @Tags         rooms
// @Produce      json
// @Success      200  {array}  models.Room
// @Router       /rooms [get]
func (a *API) ListRooms(c *gin.Context) {
	rooms, err := a.store.Rooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// CreateRoom godoc
// @Summary      Add a room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        body  body  CreateRoomRequest  true  "Room"
// @Success      201  {object} models.Room
// @Failure      400  {object} map[string]string
// @Router       /rooms [post]
func (a *API) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	room := models.Room{Name: req.Name}
	if err := a.store.CreateRoom(c.Request.Context(), &room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

// ImportRoster godoc
// @Summary      Import an enrollment roster from an .xlsx upload
// @Tags         enrollments
// @Accept       multipart/form-data
// @Produce      json
// @Param        class_id  path      int   true  "Class ID"
// @Param        file      formData  file  true  "Roster spreadsheet"
// @Success      200  {object} map[string]interface{}
// @Failure      400  {object} map[string]string
// @Router       /program-classes/{class_id}/enrollments/import [post]
func (a *API) ImportRoster(c *gin.Context) {
	classID, ok := paramID(c, "class_id")
	if !ok {
		return
	}
	if _, err := a.store.ClassByID(c.Request.Context(), classID); err != nil {
		respondStoreErr(c, err, "Class not found")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing roster file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read roster file"})
		return
	}
	defer f.Close()

	rows, err := excel.ParseRoster(f, classID)
	if err != nil {
		log.Println("roster parse failed:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse roster"})
		return
	}
	if err := a.store.CreateEnrollments(c.Request.Context(), rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save enrollments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Roster imported", "count": len(rows)})
}

// --- helpers ---

type window struct {
	Start time.Time
	End   time.Time
}

func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}

func respondStoreErr(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, schedule.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage failure"})
}

// parseBoundaryTime accepts RFC3339 or, with an explicit IANA zone,
// YYYY-MM-DD. Naive local-only timestamps are rejected. Date-only end
// values are widened to the end of that day.
func parseBoundaryTime(value, tz string, endOfDay bool) (time.Time, *time.Location, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, t.Location(), nil
	}
	if tz == "" {
		return time.Time{}, nil, errors.New("date-only values require an explicit tz")
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, nil, errors.New("unknown tz " + tz)
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, nil, errors.New("invalid date " + value + ", want RFC3339 or YYYY-MM-DD")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Second)
	}
	return t, loc, nil
}

func parseWindow(c *gin.Context) (window, *time.Location, bool) {
	tz := c.Query("tz")
	start, loc, err := parseBoundaryTime(c.Query("start_date"), tz, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date: " + err.Error()})
		return window{}, nil, false
	}
	end, _, err := parseBoundaryTime(c.Query("end_date"), tz, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date: " + err.Error()})
		return window{}, nil, false
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date precedes start_date"})
		return window{}, nil, false
	}
	return window{Start: start, End: end}, loc, true
}
