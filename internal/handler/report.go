package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/munsif3/family-expense-tracker-sub001/internal/auth"
	"github.com/munsif3/family-expense-tracker-sub001/internal/report"
)

type ReportHandler struct {
	reports *report.Service
	logger  *slog.Logger
}

func NewReportHandler(rs *report.Service, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: rs, logger: logger}
}

// month returns the requested report month, defaulting to the current one.
// The second return value is false when the parameter is malformed.
func month(r *http.Request) (string, bool) {
	m := r.URL.Query().Get("month")
	if m == "" {
		return time.Now().UTC().Format("2006-01"), true
	}
	if _, err := time.Parse("2006-01", m); err != nil {
		return "", false
	}
	return m, true
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	m, ok := month(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	summary, err := h.reports.MonthlySummary(auth.HouseholdScope(r.Context()), m)
	if err != nil {
		h.logger.Error("monthly summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) Categories(w http.ResponseWriter, r *http.Request) {
	m, ok := month(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	breakdown, err := h.reports.CategoryBreakdown(auth.HouseholdScope(r.Context()), m)
	if err != nil {
		h.logger.Error("category breakdown", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build breakdown")
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (h *ReportHandler) Budgets(w http.ResponseWriter, r *http.Request) {
	m, ok := month(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	progress, err := h.reports.BudgetReport(auth.HouseholdScope(r.Context()), m)
	if err != nil {
		h.logger.Error("budget report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build budget report")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
