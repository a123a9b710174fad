package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Repository interface {
	Insert(ctx context.Context, student *Student) error
	GetByRollNo(ctx context.Context, rollNo string) (*Student, error)
	Search(ctx context.Context, term string) ([]Student, error)
	// ApplyPayment checks the balance and performs both ledger writes
	// (payment insert, fees_paid update) in one transaction. The student row
	// is locked for the duration so no two payments can interleave their
	// check and write.
	ApplyPayment(ctx context.Context, rollNo string, amount decimal.Decimal, paymentDate time.Time, method string) (*Payment, error)
	ListPayments(ctx context.Context, rollNo string) ([]Payment, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) Insert(ctx context.Context, student *Student) error {
	_, err := r.db.NewInsert().Model(student).Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return ErrDuplicateRollNumber
		}
		return storageErr(err)
	}
	return nil
}

func (r *repository) GetByRollNo(ctx context.Context, rollNo string) (*Student, error) {
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("roll_no = ?", rollNo).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, storageErr(err)
	}
	return student, nil
}

func (r *repository) Search(ctx context.Context, term string) ([]Student, error) {
	var students []Student
	q := r.db.NewSelect().Model(&students).Order("roll_no ASC")
	if term != "" {
		pattern := "%" + term + "%"
		q = q.Where("roll_no ILIKE ? OR name ILIKE ? OR phone ILIKE ?", pattern, pattern, pattern)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, storageErr(err)
	}
	return students, nil
}

func (r *repository) ApplyPayment(ctx context.Context, rollNo string, amount decimal.Decimal, paymentDate time.Time, method string) (*Payment, error) {
	var payment *Payment
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		student := new(Student)
		err := tx.NewSelect().
			Model(student).
			Where("roll_no = ?", rollNo).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrStudentNotFound
			}
			return storageErr(err)
		}

		if amount.GreaterThan(student.Remaining()) {
			return ErrAmountExceedsBalance
		}

		p := &Payment{
			RollNo:      rollNo,
			Amount:      amount,
			PaymentDate: paymentDate,
			Method:      method,
		}
		if _, err := tx.NewInsert().Model(p).Returning("*").Exec(ctx); err != nil {
			return storageErr(err)
		}

		newPaid := student.FeesPaid.Add(amount)
		if _, err := tx.NewUpdate().
			Model((*Student)(nil)).
			Set("fees_paid = ?", newPaid).
			Where("roll_no = ?", rollNo).
			Exec(ctx); err != nil {
			return storageErr(err)
		}

		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) ListPayments(ctx context.Context, rollNo string) ([]Payment, error) {
	var payments []Payment
	err := r.db.NewSelect().
		Model(&payments).
		Where("roll_no = ?", rollNo).
		Order("payment_date DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return payments, nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
