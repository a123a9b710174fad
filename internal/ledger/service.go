package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"classledger/internal/clock"
	"classledger/internal/events"
	"classledger/internal/notify"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateRollNumber  = errors.New("roll number already exists")
	ErrStudentNotFound      = errors.New("student not found")
	ErrMissingField         = errors.New("missing required field")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidDateFormat    = errors.New("invalid date format")
	ErrInvalidDateRange     = errors.New("course start date must not be after course end date")
	ErrInvalidFeeAmounts    = errors.New("invalid fee amounts")
	ErrInvalidAmount        = errors.New("payment amount must be positive")
	ErrAmountExceedsBalance = errors.New("payment amount exceeds remaining balance")
	ErrStorage              = errors.New("storage failure")
)

// DateLayout is the wire format for all calendar dates.
const DateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type EnrollInput struct {
	RollNo          string
	Name            string
	Phone           string
	Email           string
	DateOfBirth     string
	CourseStartDate string
	CourseEndDate   string
	TotalFees       string
	FeesPaid        string
}

type PaymentInput struct {
	RollNo      string
	Amount      string
	PaymentDate string
	Method      string
}

// EnrollResult carries the persisted student plus whether the welcome
// notification went out. Notification failure never fails the enrollment.
type EnrollResult struct {
	Student  *Student `json:"student"`
	Notified bool     `json:"notified"`
}

type PaymentResult struct {
	Payment  *Payment `json:"payment"`
	Notified bool     `json:"notified"`
}

// EventPublisher is the audit stream the ledger writes to, best-effort.
type EventPublisher interface {
	Publish(event events.Event) error
}

type Service interface {
	Enroll(ctx context.Context, in EnrollInput) (*EnrollResult, error)
	GetStudent(ctx context.Context, rollNo string) (*Student, error)
	SearchStudents(ctx context.Context, term string) ([]Student, error)
	RecordPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error)
	FeeStatus(ctx context.Context, rollNo string) (*FeeStatus, error)
	ListPayments(ctx context.Context, rollNo string) ([]Payment, error)
}

type service struct {
	repo     Repository
	clock    clock.Clock
	notifier notify.Notifier
	events   EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, clk clock.Clock, notifier notify.Notifier, publisher EventPublisher, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		clock:    clk,
		notifier: notifier,
		events:   publisher,
		logger:   logger,
	}
}

func (s *service) Enroll(ctx context.Context, in EnrollInput) (*EnrollResult, error) {
	student, err := validateEnrollInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, student); err != nil {
		return nil, err
	}

	notified := s.sendWelcome(ctx, student)
	s.publish(events.Event{
		Type:       events.TypeStudentEnrolled,
		RollNo:     student.RollNo,
		OccurredAt: s.clock.Today(),
		Payload:    student,
	})

	return &EnrollResult{Student: student, Notified: notified}, nil
}

func validateEnrollInput(in EnrollInput) (*Student, error) {
	// Validation order matches what the operator should see first:
	// required fields, then email, then fee amounts, then dates.
	required := []string{in.RollNo, in.Name, in.Phone, in.Email, in.DateOfBirth, in.CourseStartDate, in.CourseEndDate}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return nil, ErrMissingField
		}
	}

	if !emailPattern.MatchString(in.Email) {
		return nil, ErrInvalidEmail
	}

	totalFees, err := parseFeeAmount(in.TotalFees)
	if err != nil {
		return nil, err
	}
	feesPaid, err := parseFeeAmount(in.FeesPaid)
	if err != nil {
		return nil, err
	}
	if feesPaid.GreaterThan(totalFees) {
		return nil, ErrInvalidFeeAmounts
	}

	dob, err := parseDate(in.DateOfBirth)
	if err != nil {
		return nil, err
	}
	start, err := parseDate(in.CourseStartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(in.CourseEndDate)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	return &Student{
		RollNo:          strings.TrimSpace(in.RollNo),
		Name:            strings.TrimSpace(in.Name),
		Phone:           strings.TrimSpace(in.Phone),
		Email:           strings.TrimSpace(in.Email),
		DateOfBirth:     dob,
		CourseStartDate: start,
		CourseEndDate:   end,
		TotalFees:       totalFees,
		FeesPaid:        feesPaid,
	}, nil
}

func parseFeeAmount(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || amount.IsNegative() {
		return decimal.Zero, ErrInvalidFeeAmounts
	}
	return amount, nil
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return clock.Midnight(t), nil
}

func (s *service) GetStudent(ctx context.Context, rollNo string) (*Student, error) {
	return s.repo.GetByRollNo(ctx, rollNo)
}

func (s *service) SearchStudents(ctx context.Context, term string) ([]Student, error) {
	return s.repo.Search(ctx, term)
}

func (s *service) RecordPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	paymentDate := s.clock.Today()
	if strings.TrimSpace(in.PaymentDate) != "" {
		paymentDate, err = parseDate(in.PaymentDate)
		if err != nil {
			return nil, err
		}
	}

	payment, err := s.repo.ApplyPayment(ctx, in.RollNo, amount, paymentDate, in.Method)
	if err != nil {
		return nil, err
	}

	notified := s.sendReceipt(ctx, payment)
	s.publish(events.Event{
		Type:       events.TypePaymentRecorded,
		RollNo:     payment.RollNo,
		OccurredAt: s.clock.Today(),
		Payload:    payment,
	})

	return &PaymentResult{Payment: payment, Notified: notified}, nil
}

func (s *service) FeeStatus(ctx context.Context, rollNo string) (*FeeStatus, error) {
	student, err := s.repo.GetByRollNo(ctx, rollNo)
	if err != nil {
		return nil, err
	}

	remaining := student.Remaining()
	status := FeeStatePending
	if remaining.LessThanOrEqual(decimal.Zero) {
		status = FeeStateCompleted
	}

	return &FeeStatus{
		RollNo:             student.RollNo,
		Total:              student.TotalFees,
		Paid:               student.FeesPaid,
		Remaining:          remaining,
		DaysUntilCourseEnd: clock.DaysBetween(s.clock.Today(), student.CourseEndDate),
		Status:             status,
	}, nil
}

func (s *service) ListPayments(ctx context.Context, rollNo string) ([]Payment, error) {
	if _, err := s.repo.GetByRollNo(ctx, rollNo); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, rollNo)
}

func (s *service) sendWelcome(ctx context.Context, student *Student) bool {
	body := fmt.Sprintf(
		"Welcome!\n\nDear %s,\n\nYour registration has been completed successfully.\n\nRoll Number: %s\nCourse Duration: %s to %s\nTotal Fees: %s\nAmount Paid: %s\n\nThank you for joining us!",
		student.Name,
		student.RollNo,
		student.CourseStartDate.Format(DateLayout),
		student.CourseEndDate.Format(DateLayout),
		student.TotalFees.StringFixed(2),
		student.FeesPaid.StringFixed(2),
	)
	return s.send(ctx, notify.Notification{
		Recipient: student.Email,
		Subject:   "Welcome to the class",
		Body:      body,
	})
}

func (s *service) sendReceipt(ctx context.Context, payment *Payment) bool {
	student, err := s.repo.GetByRollNo(ctx, payment.RollNo)
	if err != nil {
		s.logger.WarnContext(ctx, "skipping receipt, student lookup failed", "roll_no", payment.RollNo, "error", err)
		return false
	}

	body := fmt.Sprintf(
		"Payment Receipt\n-----------------\n\nStudent: %s\nRoll No: %s\nDate: %s\nAmount: %s\nMethod: %s\n\nThank you for your payment!",
		student.Name,
		payment.RollNo,
		payment.PaymentDate.Format(DateLayout),
		payment.Amount.StringFixed(2),
		payment.Method,
	)
	return s.send(ctx, notify.Notification{
		Recipient: student.Email,
		Subject:   "Payment Receipt",
		Body:      body,
	})
}

// send delivers best-effort: failures are logged and swallowed so committed
// state is never reported as failed.
func (s *service) send(ctx context.Context, n notify.Notification) bool {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "notification failed", "recipient", n.Recipient, "subject", n.Subject, "error", err)
		return false
	}
	return true
}

func (s *service) publish(event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		s.logger.Warn("event publish failed", "type", event.Type, "roll_no", event.RollNo, "error", err)
	}
}
