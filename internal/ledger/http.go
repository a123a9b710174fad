package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"classledger/internal/httputil"
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
	router.Post("/students", h.Enroll)
	router.Get("/students", h.SearchStudents)
	router.Get("/students/{rollNo}", h.GetStudent)
	router.Get("/students/{rollNo}/fees", h.FeeStatus)
	router.Post("/students/{rollNo}/payments", h.RecordPayment)
	router.Get("/students/{rollNo}/payments", h.ListPayments)
}

type enrollRequest struct {
	RollNo          string `json:"rollNo" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Phone           string `json:"phone" validate:"required"`
	Email           string `json:"email" validate:"required"`
	DateOfBirth     string `json:"dateOfBirth" validate:"required"`
	CourseStartDate string `json:"courseStartDate" validate:"required"`
	CourseEndDate   string `json:"courseEndDate" validate:"required"`
	TotalFees       string `json:"totalFees" validate:"required"`
	FeesPaid        string `json:"feesPaid"`
}

type paymentRequest struct {
	Amount      string `json:"amount" validate:"required"`
	PaymentDate string `json:"paymentDate"`
	Method      string `json:"method" validate:"required"`
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.logger.WarnContext(r.Context(), "enrollment validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "missing required field")
		return
	}

	h.logger.InfoContext(r.Context(), "enrolling student", "roll_no", req.RollNo)
	result, err := h.service.Enroll(r.Context(), EnrollInput{
		RollNo:          req.RollNo,
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		DateOfBirth:     req.DateOfBirth,
		CourseStartDate: req.CourseStartDate,
		CourseEndDate:   req.CourseEndDate,
		TotalFees:       req.TotalFees,
		FeesPaid:        req.FeesPaid,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordStudentEnrolled(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) SearchStudents(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")

	students, err := h.service.SearchStudents(r.Context(), term)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	rollNo := chi.URLParam(r, "rollNo")

	student, err := h.service.GetStudent(r.Context(), rollNo)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) FeeStatus(w http.ResponseWriter, r *http.Request) {
	rollNo := chi.URLParam(r, "rollNo")

	status, err := h.service.FeeStatus(r.Context(), rollNo)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, status)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	rollNo := chi.URLParam(r, "rollNo")

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.logger.WarnContext(r.Context(), "payment validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "amount and method are required")
		return
	}

	h.logger.InfoContext(r.Context(), "recording payment", "roll_no", rollNo, "amount", req.Amount)
	result, err := h.service.RecordPayment(r.Context(), PaymentInput{
		RollNo:      rollNo,
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		Method:      req.Method,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordPaymentRecorded(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	rollNo := chi.URLParam(r, "rollNo")

	payments, err := h.service.ListPayments(r.Context(), rollNo)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, payments)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateRollNumber):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrAmountExceedsBalance):
		httputil.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrMissingField),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidDateFormat),
		errors.Is(err, ErrInvalidDateRange),
		errors.Is(err, ErrInvalidFeeAmounts),
		errors.Is(err, ErrInvalidAmount):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
