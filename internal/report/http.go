package report

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"classledger/internal/httputil"
	"classledger/internal/metrics"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/reports/monthly-attendance", h.MonthlyAttendance)
	router.Get("/reports/expiring-courses", h.ExpiringCourses)
	router.Get("/reports/financial-summary", h.FinancialSummary)
	router.Get("/reports/outstanding-balances", h.OutstandingBalances)
	router.Get("/reports/dashboard", h.DashboardStats)
	router.Post("/reports/fee-reminders", h.SendFeeReminders)
}

func (h *Handler) MonthlyAttendance(w http.ResponseWriter, r *http.Request) {
	var (
		year  int
		month time.Month
	)
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			httputil.RespondWithError(w, http.StatusBadRequest, "month must be 1-12")
			return
		}
		month = time.Month(m)
	}
	if (year == 0) != (month == 0) {
		httputil.RespondWithError(w, http.StatusBadRequest, "year and month must be provided together")
		return
	}

	rows, err := h.service.MonthlyAttendance(r.Context(), year, month)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordReportGenerated(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *Handler) ExpiringCourses(w http.ResponseWriter, r *http.Request) {
	withinDays := -1
	if raw := r.URL.Query().Get("within_days"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			httputil.RespondWithError(w, http.StatusBadRequest, "within_days must be a non-negative integer")
			return
		}
		withinDays = d
	}

	rows, err := h.service.ExpiringCourses(r.Context(), withinDays)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordReportGenerated(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *Handler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.FinancialSummary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordReportGenerated(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *Handler) OutstandingBalances(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.OutstandingBalances(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordReportGenerated(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *Handler) SendFeeReminders(w http.ResponseWriter, r *http.Request) {
	sent, err := h.service.SendFeeReminders(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]int{"sent": sent})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "internal error", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}
