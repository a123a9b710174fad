package attendance

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"classledger/internal/httputil"
	"classledger/internal/ledger"
	"classledger/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/attendance", h.Mark)
	router.Get("/attendance", h.ListByDate)
	router.Get("/students/{rollNo}/attendance", h.ListForStudent)
}

type markRequest struct {
	RollNo string `json:"rollNo" validate:"required"`
}

func (h *Handler) Mark(w http.ResponseWriter, r *http.Request) {
	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "roll number is required")
		return
	}

	h.logger.InfoContext(r.Context(), "marking attendance", "roll_no", req.RollNo)
	record, err := h.service.Mark(r.Context(), req.RollNo)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordAttendanceMarked(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, record)
}

func (h *Handler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(ledger.DateLayout, raw)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	records, err := h.service.ListByDate(r.Context(), date)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, records)
}

func (h *Handler) ListForStudent(w http.ResponseWriter, r *http.Request) {
	rollNo := chi.URLParam(r, "rollNo")

	records, err := h.service.ListForStudent(r.Context(), rollNo)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, records)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrStudentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyMarked):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrCourseEnded):
		httputil.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
