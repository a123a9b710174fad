package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Repository interface {
	Insert(ctx context.Context, record *Record) error
	ExistsOn(ctx context.Context, rollNo string, date time.Time) (bool, error)
	ListByDate(ctx context.Context, date time.Time) ([]Record, error)
	ListForStudent(ctx context.Context, rollNo string) ([]Record, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) Insert(ctx context.Context, record *Record) error {
	_, err := r.db.NewInsert().Model(record).Exec(ctx)
	if err != nil {
		// The composite primary key makes the per-day uniqueness check
		// atomic even when two marks race past the ExistsOn read.
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return ErrAlreadyMarked
		}
		return storageErr(err)
	}
	return nil
}

func (r *repository) ExistsOn(ctx context.Context, rollNo string, date time.Time) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Record)(nil)).
		Where("roll_no = ?", rollNo).
		Where("date = ?", date).
		Exists(ctx)
	if err != nil {
		return false, storageErr(err)
	}
	return exists, nil
}

func (r *repository) ListByDate(ctx context.Context, date time.Time) ([]Record, error) {
	var records []Record
	err := r.db.NewSelect().
		Model(&records).
		Where("date = ?", date).
		Order("roll_no ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return records, nil
}

func (r *repository) ListForStudent(ctx context.Context, rollNo string) ([]Record, error) {
	var records []Record
	err := r.db.NewSelect().
		Model(&records).
		Where("roll_no = ?", rollNo).
		Order("date DESC").
		Scan(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return records, nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
