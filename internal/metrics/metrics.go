package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	studentsEnrolled       metric.Int64Counter
	paymentsRecorded       metric.Int64Counter
	attendanceMarked       metric.Int64Counter
	reportsGenerated       metric.Int64Counter
	notificationsPublished metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.studentsEnrolled, err = meter.Int64Counter(
		"classledger.students.enrolled",
		metric.WithDescription("Total number of students enrolled"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.paymentsRecorded, err = meter.Int64Counter(
		"classledger.payments.recorded",
		metric.WithDescription("Total number of payments recorded"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, err
	}

	m.attendanceMarked, err = meter.Int64Counter(
		"classledger.attendance.marked",
		metric.WithDescription("Total number of attendance records created"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	m.reportsGenerated, err = meter.Int64Counter(
		"classledger.reports.generated",
		metric.WithDescription("Total number of reports generated"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, err
	}

	m.notificationsPublished, err = meter.Int64Counter(
		"classledger.notifications.published",
		metric.WithDescription("Total number of notifications published"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordStudentEnrolled(ctx context.Context) {
	m.studentsEnrolled.Add(ctx, 1)
}

func (m *Metrics) RecordPaymentRecorded(ctx context.Context) {
	m.paymentsRecorded.Add(ctx, 1)
}

func (m *Metrics) RecordAttendanceMarked(ctx context.Context) {
	m.attendanceMarked.Add(ctx, 1)
}

func (m *Metrics) RecordReportGenerated(ctx context.Context) {
	m.reportsGenerated.Add(ctx, 1)
}

func (m *Metrics) RecordNotificationPublished(ctx context.Context) {
	m.notificationsPublished.Add(ctx, 1)
}
