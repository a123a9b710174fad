package attendance_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"classledger/internal/attendance"
	"classledger/internal/clock"
	"classledger/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	records map[string]attendance.Record // keyed by rollNo + date
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]attendance.Record)}
}

func key(rollNo string, date time.Time) string {
	return rollNo + "|" + date.Format("2006-01-02")
}

func (r *fakeRepo) Insert(ctx context.Context, record *attendance.Record) error {
	k := key(record.RollNo, record.Date)
	if _, ok := r.records[k]; ok {
		return attendance.ErrAlreadyMarked
	}
	r.records[k] = *record
	return nil
}

func (r *fakeRepo) ExistsOn(ctx context.Context, rollNo string, date time.Time) (bool, error) {
	_, ok := r.records[key(rollNo, date)]
	return ok, nil
}

func (r *fakeRepo) ListByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, rec := range r.records {
		if rec.Date.Equal(date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListForStudent(ctx context.Context, rollNo string) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, rec := range r.records {
		if rec.RollNo == rollNo {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	students map[string]*ledger.Student
}

func (d *fakeDirectory) GetByRollNo(ctx context.Context, rollNo string) (*ledger.Student, error) {
	student, ok := d.students[rollNo]
	if !ok {
		return nil, ledger.ErrStudentNotFound
	}
	return student, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T, today time.Time) (attendance.Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	directory := &fakeDirectory{students: map[string]*ledger.Student{
		"R1": {
			RollNo:          "R1",
			Name:            "Asha Verma",
			Email:           "asha@example.com",
			CourseStartDate: date(2024, time.November, 1),
			CourseEndDate:   date(2025, time.January, 31),
			TotalFees:       decimal.NewFromInt(5000),
		},
	}}
	service := attendance.NewService(repo, directory, clock.Fixed{Date: today}, nil, testLogger())
	return service, repo
}

func TestMark(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		service, repo := setup(t, date(2025, time.January, 10))

		record, err := service.Mark(ctx, "R1")
		require.NoError(t, err)
		assert.Equal(t, "R1", record.RollNo)
		assert.Equal(t, attendance.StatusPresent, record.Status)
		assert.Equal(t, date(2025, time.January, 10), record.Date)
		assert.Len(t, repo.records, 1)
	})

	t.Run("SecondMarkSameDayFails", func(t *testing.T) {
		service, repo := setup(t, date(2025, time.January, 10))

		_, err := service.Mark(ctx, "R1")
		require.NoError(t, err)

		_, err = service.Mark(ctx, "R1")
		assert.ErrorIs(t, err, attendance.ErrAlreadyMarked)
		assert.Len(t, repo.records, 1, "exactly one record per day")
	})

	t.Run("CourseEndDateStillMarkable", func(t *testing.T) {
		service, _ := setup(t, date(2025, time.January, 31))

		record, err := service.Mark(ctx, "R1")
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.January, 31), record.Date)
	})

	t.Run("DayAfterCourseEndFails", func(t *testing.T) {
		service, repo := setup(t, date(2025, time.February, 1))

		_, err := service.Mark(ctx, "R1")
		assert.ErrorIs(t, err, attendance.ErrCourseEnded)
		assert.Empty(t, repo.records, "no record on failure")
	})

	t.Run("UnknownStudent", func(t *testing.T) {
		service, _ := setup(t, date(2025, time.January, 10))

		_, err := service.Mark(ctx, "missing")
		assert.ErrorIs(t, err, ledger.ErrStudentNotFound)
	})
}

func TestListForStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownStudent", func(t *testing.T) {
		service, _ := setup(t, date(2025, time.January, 10))

		_, err := service.ListForStudent(ctx, "missing")
		assert.ErrorIs(t, err, ledger.ErrStudentNotFound)
	})

	t.Run("ReturnsMarkedDays", func(t *testing.T) {
		service, _ := setup(t, date(2025, time.January, 10))

		_, err := service.Mark(ctx, "R1")
		require.NoError(t, err)

		records, err := service.ListForStudent(ctx, "R1")
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}
