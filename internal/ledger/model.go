package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	RollNo          string          `bun:"roll_no,pk" json:"rollNo"`
	Name            string          `bun:"name,notnull" json:"name"`
	Phone           string          `bun:"phone,notnull" json:"phone"`
	Email           string          `bun:"email,notnull" json:"email"`
	DateOfBirth     time.Time       `bun:"date_of_birth,type:date" json:"dateOfBirth"`
	CourseStartDate time.Time       `bun:"course_start_date,type:date,notnull" json:"courseStartDate"`
	CourseEndDate   time.Time       `bun:"course_end_date,type:date,notnull" json:"courseEndDate"`
	TotalFees       decimal.Decimal `bun:"total_fees,type:numeric(10,2),notnull" json:"totalFees"`
	FeesPaid        decimal.Decimal `bun:"fees_paid,type:numeric(10,2),notnull" json:"feesPaid"`
}

// Remaining is the student's outstanding balance.
func (s *Student) Remaining() decimal.Decimal {
	return s.TotalFees.Sub(s.FeesPaid)
}

// Payment is an append-only ledger entry. Student.FeesPaid is always the
// running sum of payments for that roll number.
type Payment struct {
	bun.BaseModel `bun:"table:payments,alias:p"`

	ID          int64           `bun:"id,pk,autoincrement" json:"id"`
	RollNo      string          `bun:"roll_no,notnull" json:"rollNo"`
	Amount      decimal.Decimal `bun:"amount,type:numeric(10,2),notnull" json:"amount"`
	PaymentDate time.Time       `bun:"payment_date,type:date,notnull" json:"paymentDate"`
	Method      string          `bun:"method,notnull" json:"method"`
	RecordedAt  time.Time       `bun:"recorded_at,nullzero,notnull,default:current_timestamp" json:"recordedAt"`
}

type FeeState string

const (
	FeeStateCompleted FeeState = "Completed"
	FeeStatePending   FeeState = "Pending"
)

// FeeStatus is a read-only projection of a student's balance.
type FeeStatus struct {
	RollNo             string          `json:"rollNo"`
	Total              decimal.Decimal `json:"total"`
	Paid               decimal.Decimal `json:"paid"`
	Remaining          decimal.Decimal `json:"remaining"`
	DaysUntilCourseEnd int             `json:"daysUntilCourseEnd"`
	Status             FeeState        `json:"status"`
}
