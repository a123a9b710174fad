package report

import (
	"time"

	"github.com/shopspring/decimal"
)

type MonthlyAttendanceRow struct {
	RollNo            string  `bun:"roll_no" json:"rollNo"`
	Name              string  `bun:"name" json:"name"`
	PresentDays       int     `bun:"present_days" json:"presentDays"`
	AttendancePercent float64 `bun:"-" json:"attendancePercent"`
}

type ExpiringCourseRow struct {
	RollNo        string    `json:"rollNo"`
	Name          string    `json:"name"`
	CourseEndDate time.Time `json:"courseEndDate"`
	DaysLeft      int       `json:"daysLeft"`
}

type FinancialSummary struct {
	TotalFees    decimal.Decimal `json:"totalFees"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	TotalPending decimal.Decimal `json:"totalPending"`
}

type OutstandingBalanceRow struct {
	RollNo    string          `json:"rollNo"`
	Name      string          `json:"name"`
	TotalFees decimal.Decimal `json:"totalFees"`
	FeesPaid  decimal.Decimal `json:"feesPaid"`
	Remaining decimal.Decimal `json:"remaining"`
}

type DashboardStats struct {
	TotalStudents int             `json:"totalStudents"`
	PresentToday  int             `json:"presentToday"`
	ActiveCourses int             `json:"activeCourses"`
	PendingFees   decimal.Decimal `json:"pendingFees"`
}
