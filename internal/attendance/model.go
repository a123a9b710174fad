package attendance

import (
	"time"

	"github.com/uptrace/bun"
)

type Status string

// Only Present is produced today; the column leaves room for Absent/Late.
const StatusPresent Status = "Present"

// Record is one student's presence on one day. The composite key enforces
// at most one record per (roll number, date).
type Record struct {
	bun.BaseModel `bun:"table:attendance_records,alias:a"`

	RollNo string    `bun:"roll_no,pk" json:"rollNo"`
	Date   time.Time `bun:"date,pk,type:date" json:"date"`
	Status Status    `bun:"status,notnull" json:"status"`
}
