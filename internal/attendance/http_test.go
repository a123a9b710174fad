package attendance_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classledger/internal/attendance"
	"classledger/internal/ledger"
	"classledger/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

type mockService struct {
	mark func(ctx context.Context, rollNo string) (*attendance.Record, error)
}

func (m *mockService) Mark(ctx context.Context, rollNo string) (*attendance.Record, error) {
	return m.mark(ctx, rollNo)
}

func (m *mockService) ListByDate(ctx context.Context, d time.Time) ([]attendance.Record, error) {
	return nil, nil
}

func (m *mockService) ListForStudent(ctx context.Context, rollNo string) ([]attendance.Record, error) {
	return nil, nil
}

func newRouter(t *testing.T, service attendance.Service) chi.Router {
	t.Helper()
	m, err := metrics.New(otel.Meter("test"))
	require.NoError(t, err)

	router := chi.NewRouter()
	attendance.NewHandler(service, testLogger(), m).RegisterRoutes(router)
	return router
}

func markRequest(rollNo string) *http.Request {
	body, _ := json.Marshal(map[string]string{"rollNo": rollNo})
	req := httptest.NewRequest(http.MethodPost, "/attendance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestMarkHandler(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		service := &mockService{
			mark: func(ctx context.Context, rollNo string) (*attendance.Record, error) {
				return &attendance.Record{RollNo: rollNo, Date: date(2025, time.January, 10), Status: attendance.StatusPresent}, nil
			},
		}
		router := newRouter(t, service)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, markRequest("R1"))

		assert.Equal(t, http.StatusCreated, w.Code)

		var record attendance.Record
		require.NoError(t, json.NewDecoder(w.Body).Decode(&record))
		assert.Equal(t, attendance.StatusPresent, record.Status)
	})

	t.Run("AlreadyMarkedMapsToConflict", func(t *testing.T) {
		service := &mockService{
			mark: func(ctx context.Context, rollNo string) (*attendance.Record, error) {
				return nil, attendance.ErrAlreadyMarked
			},
		}
		router := newRouter(t, service)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, markRequest("R1"))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("CourseEndedMapsToUnprocessable", func(t *testing.T) {
		service := &mockService{
			mark: func(ctx context.Context, rollNo string) (*attendance.Record, error) {
				return nil, attendance.ErrCourseEnded
			},
		}
		router := newRouter(t, service)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, markRequest("R1"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("UnknownStudentMapsToNotFound", func(t *testing.T) {
		service := &mockService{
			mark: func(ctx context.Context, rollNo string) (*attendance.Record, error) {
				return nil, ledger.ErrStudentNotFound
			},
		}
		router := newRouter(t, service)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, markRequest("R1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MissingRollNoRejected", func(t *testing.T) {
		router := newRouter(t, &mockService{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, markRequest(""))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
