package report

import (
	"context"
	"fmt"
	"time"

	"classledger/internal/attendance"
	"classledger/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Repository runs the read-only aggregate queries. It never writes; the
// snapshots it returns may be stale by the time they are displayed.
type Repository interface {
	MonthlyPresence(ctx context.Context, from, to time.Time) ([]MonthlyAttendanceRow, error)
	StudentsEndingBetween(ctx context.Context, from, to time.Time) ([]ledger.Student, error)
	FeeTotals(ctx context.Context) (total, paid decimal.Decimal, err error)
	OutstandingStudents(ctx context.Context) ([]ledger.Student, error)
	CountStudents(ctx context.Context) (int, error)
	CountPresentOn(ctx context.Context, date time.Time) (int, error)
	CountCoursesEndingOnOrAfter(ctx context.Context, date time.Time) (int, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) MonthlyPresence(ctx context.Context, from, to time.Time) ([]MonthlyAttendanceRow, error) {
	var rows []MonthlyAttendanceRow
	err := r.db.NewSelect().
		Model((*attendance.Record)(nil)).
		ColumnExpr("a.roll_no").
		ColumnExpr("s.name").
		ColumnExpr("count(*) AS present_days").
		Join("JOIN students AS s ON s.roll_no = a.roll_no").
		Where("a.date >= ? AND a.date < ?", from, to).
		GroupExpr("a.roll_no, s.name").
		OrderExpr("a.roll_no ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, storageErr(err)
	}
	return rows, nil
}

func (r *repository) StudentsEndingBetween(ctx context.Context, from, to time.Time) ([]ledger.Student, error) {
	var students []ledger.Student
	err := r.db.NewSelect().
		Model(&students).
		Where("course_end_date >= ? AND course_end_date <= ?", from, to).
		Order("course_end_date ASC", "roll_no ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return students, nil
}

func (r *repository) FeeTotals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var totals struct {
		TotalFees decimal.Decimal `bun:"total_fees"`
		FeesPaid  decimal.Decimal `bun:"fees_paid"`
	}
	err := r.db.NewSelect().
		Model((*ledger.Student)(nil)).
		ColumnExpr("COALESCE(SUM(total_fees), 0) AS total_fees").
		ColumnExpr("COALESCE(SUM(fees_paid), 0) AS fees_paid").
		Scan(ctx, &totals)
	if err != nil {
		return decimal.Zero, decimal.Zero, storageErr(err)
	}
	return totals.TotalFees, totals.FeesPaid, nil
}

func (r *repository) OutstandingStudents(ctx context.Context) ([]ledger.Student, error) {
	var students []ledger.Student
	err := r.db.NewSelect().
		Model(&students).
		Where("total_fees > fees_paid").
		Order("roll_no ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return students, nil
}

func (r *repository) CountStudents(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().Model((*ledger.Student)(nil)).Count(ctx)
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

func (r *repository) CountPresentOn(ctx context.Context, date time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*attendance.Record)(nil)).
		Where("date = ?", date).
		Count(ctx)
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

func (r *repository) CountCoursesEndingOnOrAfter(ctx context.Context, date time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*ledger.Student)(nil)).
		Where("course_end_date >= ?", date).
		Count(ctx)
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ledger.ErrStorage, err)
}
