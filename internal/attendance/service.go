package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"classledger/internal/clock"
	"classledger/internal/events"
	"classledger/internal/ledger"
)

var (
	ErrAlreadyMarked = errors.New("attendance already marked for today")
	ErrCourseEnded   = errors.New("course has ended")
	ErrStorage       = errors.New("storage failure")
)

// StudentDirectory is the slice of the enrollment ledger the tracker needs:
// course dates for the window check.
type StudentDirectory interface {
	GetByRollNo(ctx context.Context, rollNo string) (*ledger.Student, error)
}

type EventPublisher interface {
	Publish(event events.Event) error
}

type Service interface {
	Mark(ctx context.Context, rollNo string) (*Record, error)
	ListByDate(ctx context.Context, date time.Time) ([]Record, error)
	ListForStudent(ctx context.Context, rollNo string) ([]Record, error)
}

type service struct {
	repo     Repository
	students StudentDirectory
	clock    clock.Clock
	events   EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, students StudentDirectory, clk clock.Clock, publisher EventPublisher, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		students: students,
		clock:    clk,
		events:   publisher,
		logger:   logger,
	}
}

// Mark records today's presence for a student. All preconditions are checked
// before any write, so a failed attempt never leaves a partial record.
func (s *service) Mark(ctx context.Context, rollNo string) (*Record, error) {
	student, err := s.students.GetByRollNo(ctx, rollNo)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()

	marked, err := s.repo.ExistsOn(ctx, rollNo, today)
	if err != nil {
		return nil, err
	}
	if marked {
		return nil, ErrAlreadyMarked
	}

	// The end date itself is still inside the course window.
	if today.After(student.CourseEndDate) {
		return nil, ErrCourseEnded
	}

	record := &Record{
		RollNo: rollNo,
		Date:   today,
		Status: StatusPresent,
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, err
	}

	s.publish(events.Event{
		Type:       events.TypeAttendanceMarked,
		RollNo:     rollNo,
		OccurredAt: today,
		Payload:    record,
	})

	return record, nil
}

func (s *service) ListByDate(ctx context.Context, date time.Time) ([]Record, error) {
	return s.repo.ListByDate(ctx, clock.Midnight(date))
}

func (s *service) ListForStudent(ctx context.Context, rollNo string) ([]Record, error) {
	if _, err := s.students.GetByRollNo(ctx, rollNo); err != nil {
		return nil, err
	}
	return s.repo.ListForStudent(ctx, rollNo)
}

func (s *service) publish(event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		s.logger.Warn("event publish failed", "type", event.Type, "roll_no", event.RollNo, "error", err)
	}
}
