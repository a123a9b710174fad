package ledger_test

import (
	"context"
	"testing"
	"time"

	"classledger/internal/attendance"
	"classledger/internal/ledger"
	"classledger/internal/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStudent(t *testing.T, repo ledger.Repository, rollNo string) {
	t.Helper()
	err := repo.Insert(context.Background(), &ledger.Student{
		RollNo:          rollNo,
		Name:            "Asha Verma",
		Phone:           "9876543210",
		Email:           "asha@example.com",
		DateOfBirth:     time.Date(2001, 4, 12, 0, 0, 0, 0, time.UTC),
		CourseStartDate: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		CourseEndDate:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		TotalFees:       decimal.NewFromInt(5000),
		FeesPaid:        decimal.Zero,
	})
	require.NoError(t, err)
}

func TestRepository_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t,
		(*ledger.Student)(nil),
		(*ledger.Payment)(nil),
		(*attendance.Record)(nil),
	)

	repo := ledger.NewRepository(pgContainer.DB)
	ctx := context.Background()

	t.Run("InsertAndGet", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "students", "payments")

		seedStudent(t, repo, "R1")

		student, err := repo.GetByRollNo(ctx, "R1")
		require.NoError(t, err)
		assert.Equal(t, "Asha Verma", student.Name)
		assert.True(t, student.TotalFees.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("InsertDuplicateRollNo", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "students", "payments")

		seedStudent(t, repo, "R1")

		err := repo.Insert(ctx, &ledger.Student{
			RollNo:          "R1",
			Name:            "Other",
			Phone:           "1112223334",
			Email:           "other@example.com",
			CourseStartDate: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
			CourseEndDate:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			TotalFees:       decimal.NewFromInt(100),
			FeesPaid:        decimal.Zero,
		})
		assert.ErrorIs(t, err, ledger.ErrDuplicateRollNumber)
	})

	t.Run("GetUnknownStudent", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "students", "payments")

		_, err := repo.GetByRollNo(ctx, "ghost")
		assert.ErrorIs(t, err, ledger.ErrStudentNotFound)
	})

	t.Run("ApplyPaymentUpdatesBalance", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "students", "payments")

		seedStudent(t, repo, "R1")

		payment, err := repo.ApplyPayment(ctx, "R1", decimal.NewFromInt(2000), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "Cash")
		require.NoError(t, err)
		assert.NotZero(t, payment.ID)

		student, err := repo.GetByRollNo(ctx, "R1")
		require.NoError(t, err)
		assert.True(t, student.FeesPaid.Equal(decimal.NewFromInt(2000)))
		assert.True(t, student.Remaining().Equal(decimal.NewFromInt(3000)))
	})

	t.Run("ApplyPaymentRejectsOverpayment", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "students", "payments")

		seedStudent(t, repo, "R1")

		_, err := repo.ApplyPayment(ctx, "R1", decimal.NewFromInt(5001), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "Cash")
		assert.ErrorIs(t, err, ledger.ErrAmountExceedsBalance)

		// the rejected attempt must leave no trace
		payments, err := repo.ListPayments(ctx, "R1")
		require.NoError(t, err)
		assert.Empty(t, payments)

		student, err := repo.GetByRollNo(ctx, "R1")
		require.NoError(t, err)
		assert.True(t, student.FeesPaid.IsZero())
	})

	t.Run("ApplyPaymentUnknownStudent", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "students", "payments")

		_, err := repo.ApplyPayment(ctx, "ghost", decimal.NewFromInt(10), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "Cash")
		assert.ErrorIs(t, err, ledger.ErrStudentNotFound)
	})

	t.Run("ListPaymentsNewestFirst", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "students", "payments")

		seedStudent(t, repo, "R1")

		_, err := repo.ApplyPayment(ctx, "R1", decimal.NewFromInt(1000), time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), "Cash")
		require.NoError(t, err)
		_, err = repo.ApplyPayment(ctx, "R1", decimal.NewFromInt(500), time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), "Card")
		require.NoError(t, err)

		payments, err := repo.ListPayments(ctx, "R1")
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(500)))
		assert.True(t, payments[1].Amount.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("SearchByNameFragment", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "students", "payments")

		seedStudent(t, repo, "R1")

		students, err := repo.Search(ctx, "asha")
		require.NoError(t, err)
		assert.Len(t, students, 1)

		students, err = repo.Search(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("AttendanceCompositeKey", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "students", "payments", "attendance_records")

		seedStudent(t, repo, "R1")

		attRepo := attendance.NewRepository(pgContainer.DB)
		day := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

		err := attRepo.Insert(ctx, &attendance.Record{RollNo: "R1", Date: day, Status: attendance.StatusPresent})
		require.NoError(t, err)

		err = attRepo.Insert(ctx, &attendance.Record{RollNo: "R1", Date: day, Status: attendance.StatusPresent})
		assert.ErrorIs(t, err, attendance.ErrAlreadyMarked)

		exists, err := attRepo.ExistsOn(ctx, "R1", day)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
