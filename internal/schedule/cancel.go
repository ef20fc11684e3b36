package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/models"
)

// CancellationPreview is the read-only projection of a bulk cancellation's
// effect. It is recomputed from current state on every call and never
// trusted at commit time.
type CancellationPreview struct {
	SessionCount         int            `json:"session_count"`
	UpcomingSessionCount int            `json:"upcoming_session_count"`
	ClassCount           int            `json:"class_count"`
	StudentCount         int            `json:"student_count"`
	Classes              []ClassPreview `json:"classes"`
}

// ClassPreview is one class's aggregate within a preview window.
type ClassPreview struct {
	ClassID           uint   `json:"class_id"`
	ClassName         string `json:"class_name"`
	SessionCount      int    `json:"session_count"`
	UpcomingSessions  int    `json:"upcoming_sessions"`
	CancelledSessions int    `json:"cancelled_sessions"`
	StudentCount      int    `json:"student_count"`
}

// CancellationRequest asks for every upcoming session of an instructor's
// classes within the date range to be cancelled. ExpectedSessionCount, when
// set, is the count the caller previewed; commit fails with
// StalePreviewError if the re-derived count differs.
type CancellationRequest struct {
	InstructorID         uint      `json:"instructor_id"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	Reason               string    `json:"reason"`
	ExpectedSessionCount *int      `json:"expected_session_count,omitempty"`
}

// CancellationResult reports what a committed bulk cancellation affected.
type CancellationResult struct {
	SessionCount int       `json:"session_count"`
	ClassCount   int       `json:"class_count"`
	StudentCount int       `json:"student_count"`
	BatchID      uuid.UUID `json:"batch_id"`
}

// Notifier is the event-notification port invoked after a successful bulk
// commit, so interested surfaces (e.g. a live calendar view) can refresh.
type Notifier interface {
	CancellationCommitted(ctx context.Context, instructorID uint, result CancellationResult)
}

type noopNotifier struct{}

func (noopNotifier) CancellationCommitted(context.Context, uint, CancellationResult) {}

// PreviewCancellation materializes every class taught by the instructor in
// the window and counts, per class, total sessions, upcoming (not yet
// cancelled, starting within the range) sessions, cancelled sessions and
// current enrollment. Totals cover only classes with at least one upcoming
// session. The call is read-only and side-effect free.
func (s *Service) PreviewCancellation(ctx context.Context, instructorID uint, start, end time.Time) (*CancellationPreview, error) {
	return previewCancellation(ctx, s, s.store, instructorID, start, end, false)
}

// previewCancellation is shared between the read-only preview and the
// locked re-derivation inside commit.
func previewCancellation(ctx context.Context, svc *Service, store Store, instructorID uint, start, end time.Time, lock bool) (*CancellationPreview, error) {
	var (
		classes []models.ProgramClass
		err     error
	)
	if lock {
		classes, err = store.LockClassesByInstructor(ctx, instructorID)
	} else {
		classes, err = store.ClassesByInstructor(ctx, instructorID)
	}
	if err != nil {
		return nil, err
	}

	preview := &CancellationPreview{}
	for i := range classes {
		cls := &classes[i]

		occs, err := materializeClassWith(ctx, svc, store, cls.ID, start, end)
		if err != nil {
			return nil, err
		}

		cp := ClassPreview{ClassID: cls.ID, ClassName: cls.Name}
		for _, occ := range occs {
			if occ.Start.Before(start) || occ.Start.After(end) {
				continue
			}
			cp.SessionCount++
			if occ.Cancelled {
				cp.CancelledSessions++
			} else {
				cp.UpcomingSessions++
			}
		}

		cp.StudentCount, err = store.EnrollmentCount(ctx, cls.ID)
		if err != nil {
			return nil, err
		}

		preview.Classes = append(preview.Classes, cp)
		preview.SessionCount += cp.SessionCount
		preview.UpcomingSessionCount += cp.UpcomingSessions
		if cp.UpcomingSessions > 0 {
			preview.ClassCount++
			preview.StudentCount += cp.StudentCount
		}
	}
	return preview, nil
}

func materializeClassWith(ctx context.Context, svc *Service, store Store, classID uint, start, end time.Time) ([]Occurrence, error) {
	events, err := store.EventsByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	var out []Occurrence
	for i := range events {
		// Widen the expansion window so sessions starting near the range
		// end are not dropped by whole-interval window containment.
		occs, err := svc.materializeEvent(ctx, store, &events[i], start, end.Add(conflictSlack))
		if err != nil {
			return nil, err
		}
		out = append(out, occs...)
	}
	return out, nil
}

// CommitCancellation re-derives the affected set inside one transaction,
// with the instructor's class rows locked, and writes one self-scoped
// cancellation override per affected occurrence, all sharing a batch id.
// Either every occurrence in the batch is cancelled or none are. A commit
// affecting zero upcoming sessions fails with ErrEmptyCancellation rather
// than silently succeeding.
func (s *Service) CommitCancellation(ctx context.Context, req CancellationRequest) (*CancellationResult, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("schedule: end date precedes start date")
	}

	var result CancellationResult
	err := s.store.Transact(ctx, func(tx Store) error {
		preview, err := previewCancellation(ctx, s, tx, req.InstructorID, req.StartDate, req.EndDate, true)
		if err != nil {
			return err
		}
		if preview.UpcomingSessionCount == 0 {
			return ErrEmptyCancellation
		}
		if req.ExpectedSessionCount != nil && *req.ExpectedSessionCount != preview.UpcomingSessionCount {
			return &StalePreviewError{Expected: *req.ExpectedSessionCount, Actual: preview.UpcomingSessionCount}
		}

		batch := uuid.New()
		cancelled := true
		var rows []models.EventOverride

		for _, cp := range preview.Classes {
			if cp.UpcomingSessions == 0 {
				continue
			}
			occs, err := materializeClassWith(ctx, s, tx, cp.ClassID, req.StartDate, req.EndDate)
			if err != nil {
				return err
			}
			for _, occ := range occs {
				if occ.Cancelled || occ.Start.Before(req.StartDate) || occ.Start.After(req.EndDate) {
					continue
				}
				rows = append(rows, models.EventOverride{
					EventID:         occ.EventID,
					OccurrenceIndex: occ.Index,
					Scope:           models.ScopeSelf,
					IsCancelled:     &cancelled,
					Reason:          req.Reason,
					BatchID:         &batch,
				})
			}
		}

		if err := tx.CreateOverrides(ctx, rows); err != nil {
			return err
		}

		result = CancellationResult{
			SessionCount: preview.UpcomingSessionCount,
			ClassCount:   preview.ClassCount,
			StudentCount: preview.StudentCount,
			BatchID:      batch,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.CancellationCommitted(ctx, req.InstructorID, result)
	return &result, nil
}

// PlannerState tracks where a bulk-cancellation interaction stands.
type PlannerState int

const (
	StateIdle PlannerState = iota
	StatePreviewing
	StatePreviewReady
	StateCommitting
	StateCommitted
)

func (s PlannerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StatePreviewReady:
		return "preview_ready"
	case StateCommitting:
		return "committing"
	case StateCommitted:
		return "committed"
	}
	return "unknown"
}

// ErrCommitWithoutPreview rejects a commit on a planner that has no
// current preview.
var ErrCommitWithoutPreview = errors.New("schedule: commit requires a preview first")

// Planner drives one bulk-cancellation flow through
// idle → previewing → preview_ready → committing → committed. A failed
// preview falls back to preview_ready when an earlier preview exists
// (idle otherwise); a failed commit falls back to idle so the caller must
// re-preview against current state.
type Planner struct {
	svc *Service

	mu      sync.Mutex
	state   PlannerState
	preview *CancellationPreview
}

// NewPlanner builds a planner in the idle state.
func NewPlanner(svc *Service) *Planner {
	return &Planner{svc: svc, state: StateIdle}
}

// State returns the planner's current state.
func (p *Planner) State() PlannerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Preview computes and retains a fresh preview.
func (p *Planner) Preview(ctx context.Context, instructorID uint, start, end time.Time) (*CancellationPreview, error) {
	p.mu.Lock()
	p.state = StatePreviewing
	p.mu.Unlock()

	preview, err := p.svc.PreviewCancellation(ctx, instructorID, start, end)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		if p.preview != nil {
			p.state = StatePreviewReady
		} else {
			p.state = StateIdle
		}
		return nil, err
	}
	p.preview = preview
	p.state = StatePreviewReady
	return preview, nil
}

// Commit applies the cancellation. The retained preview is only used to
// populate the request's expected count; the commit itself re-derives
// everything from current state.
func (p *Planner) Commit(ctx context.Context, req CancellationRequest) (*CancellationResult, error) {
	p.mu.Lock()
	if p.state != StatePreviewReady {
		p.mu.Unlock()
		return nil, ErrCommitWithoutPreview
	}
	if req.ExpectedSessionCount == nil && p.preview != nil {
		n := p.preview.UpcomingSessionCount
		req.ExpectedSessionCount = &n
	}
	p.state = StateCommitting
	p.mu.Unlock()

	result, err := p.svc.CommitCancellation(ctx, req)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = StateIdle
		p.preview = nil
		return nil, err
	}
	p.state = StateCommitted
	return result, nil
}
