package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"classledger/internal/clock"
	"classledger/internal/notify"
)

type Service interface {
	MonthlyAttendance(ctx context.Context, year int, month time.Month) ([]MonthlyAttendanceRow, error)
	ExpiringCourses(ctx context.Context, withinDays int) ([]ExpiringCourseRow, error)
	FinancialSummary(ctx context.Context) (*FinancialSummary, error)
	OutstandingBalances(ctx context.Context) ([]OutstandingBalanceRow, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	SendFeeReminders(ctx context.Context) (int, error)
}

// DefaultExpiryWindowDays bounds both the expiring-courses view and the
// fee-reminder sweep when no explicit window is configured.
const DefaultExpiryWindowDays = 7

type service struct {
	repo       Repository
	clock      clock.Clock
	notifier   notify.Notifier
	windowDays int
	logger     *slog.Logger
}

func NewService(repo Repository, clk clock.Clock, notifier notify.Notifier, windowDays int, logger *slog.Logger) Service {
	if windowDays <= 0 {
		windowDays = DefaultExpiryWindowDays
	}
	return &service{
		repo:       repo,
		clock:      clk,
		notifier:   notifier,
		windowDays: windowDays,
		logger:     logger,
	}
}

// MonthlyAttendance scores each student against the full calendar month
// length, regardless of when they enrolled within it.
func (s *service) MonthlyAttendance(ctx context.Context, year int, month time.Month) ([]MonthlyAttendanceRow, error) {
	if year == 0 {
		today := s.clock.Today()
		year, month = today.Year(), today.Month()
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)
	daysInMonth := nextMonth.AddDate(0, 0, -1).Day()

	rows, err := s.repo.MonthlyPresence(ctx, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].AttendancePercent = float64(rows[i].PresentDays) / float64(daysInMonth) * 100
	}
	return rows, nil
}

func (s *service) ExpiringCourses(ctx context.Context, withinDays int) ([]ExpiringCourseRow, error) {
	if withinDays < 0 {
		withinDays = s.windowDays
	}

	today := s.clock.Today()
	students, err := s.repo.StudentsEndingBetween(ctx, today, today.AddDate(0, 0, withinDays))
	if err != nil {
		return nil, err
	}

	rows := make([]ExpiringCourseRow, 0, len(students))
	for _, st := range students {
		rows = append(rows, ExpiringCourseRow{
			RollNo:        st.RollNo,
			Name:          st.Name,
			CourseEndDate: st.CourseEndDate,
			DaysLeft:      clock.DaysBetween(today, st.CourseEndDate),
		})
	}
	return rows, nil
}

func (s *service) FinancialSummary(ctx context.Context) (*FinancialSummary, error) {
	total, paid, err := s.repo.FeeTotals(ctx)
	if err != nil {
		return nil, err
	}
	return &FinancialSummary{
		TotalFees:    total,
		TotalPaid:    paid,
		TotalPending: total.Sub(paid),
	}, nil
}

func (s *service) OutstandingBalances(ctx context.Context) ([]OutstandingBalanceRow, error) {
	students, err := s.repo.OutstandingStudents(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]OutstandingBalanceRow, 0, len(students))
	for _, st := range students {
		rows = append(rows, OutstandingBalanceRow{
			RollNo:    st.RollNo,
			Name:      st.Name,
			TotalFees: st.TotalFees,
			FeesPaid:  st.FeesPaid,
			Remaining: st.Remaining(),
		})
	}
	return rows, nil
}

func (s *service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	today := s.clock.Today()

	totalStudents, err := s.repo.CountStudents(ctx)
	if err != nil {
		return nil, err
	}
	presentToday, err := s.repo.CountPresentOn(ctx, today)
	if err != nil {
		return nil, err
	}
	activeCourses, err := s.repo.CountCoursesEndingOnOrAfter(ctx, today)
	if err != nil {
		return nil, err
	}
	total, paid, err := s.repo.FeeTotals(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalStudents: totalStudents,
		PresentToday:  presentToday,
		ActiveCourses: activeCourses,
		PendingFees:   total.Sub(paid),
	}, nil
}

// SendFeeReminders notifies every student whose course ends within the
// reminder window and who still owes fees. Returns the number of reminders
// that went out; individual delivery failures are logged and skipped.
func (s *service) SendFeeReminders(ctx context.Context) (int, error) {
	students, err := s.repo.OutstandingStudents(ctx)
	if err != nil {
		return 0, err
	}

	today := s.clock.Today()
	sent := 0
	for _, st := range students {
		daysLeft := clock.DaysBetween(today, st.CourseEndDate)
		if daysLeft > s.windowDays {
			continue
		}

		body := fmt.Sprintf(
			"Dear %s,\n\nThis is a reminder that you have pending fees of %s.\nYour course ends in %d days.\n\nPlease clear your dues as soon as possible.\n\nThank you!",
			st.Name,
			st.Remaining().StringFixed(2),
			daysLeft,
		)
		err := s.notifier.Notify(ctx, notify.Notification{
			Recipient: st.Email,
			Subject:   "Fees Payment Reminder",
			Body:      body,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "fee reminder failed", "roll_no", st.RollNo, "error", err)
			continue
		}
		sent++
	}

	s.logger.InfoContext(ctx, "fee reminder sweep finished", "outstanding", len(students), "sent", sent)
	return sent, nil
}
