package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/auth"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/money"
	"github.com/munsif3/family-expense-tracker-sub001/internal/recurring"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
	"github.com/munsif3/family-expense-tracker-sub001/internal/websocket"
)

type RecurringHandler struct {
	templates  *store.RecurringStore
	categories *store.CategoryStore
	processor  *recurring.Processor
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewRecurringHandler(rs *store.RecurringStore, cs *store.CategoryStore, p *recurring.Processor, hub *websocket.Hub, logger *slog.Logger) *RecurringHandler {
	return &RecurringHandler{templates: rs, categories: cs, processor: p, hub: hub, logger: logger}
}

func (h *RecurringHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type recurringRequest struct {
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	CategoryID  *int64 `json:"category_id"`
	Description string `json:"description"`
	Interval    string `json:"interval"`
	NextRunDate string `json:"next_run_date"`
	Active      *bool  `json:"active"`
}

func (h *RecurringHandler) validate(r *http.Request, req *recurringRequest) (decimal.Decimal, time.Time, string) {
	var zero decimal.Decimal

	if req.Kind != model.KindIncome && req.Kind != model.KindExpense {
		return zero, time.Time{}, "kind must be income or expense"
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return zero, time.Time{}, "invalid amount: " + err.Error()
	}
	if !recurring.ValidInterval(req.Interval) {
		return zero, time.Time{}, "interval must be weekly, monthly, or yearly"
	}
	next, err := parseDate(req.NextRunDate)
	if err != nil {
		return zero, time.Time{}, "next_run_date must be YYYY-MM-DD"
	}
	if req.CategoryID != nil {
		c, err := h.categories.GetByID(auth.HouseholdScope(r.Context()), *req.CategoryID)
		if err != nil || c == nil {
			return zero, time.Time{}, "category not found"
		}
	}
	return amount, next, ""
}

func (h *RecurringHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	amount, next, msg := h.validate(r, &req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	householdID := auth.HouseholdID(r.Context())
	tmpl, err := h.templates.Create(model.RecurringTemplate{
		HouseholdID: householdID,
		UserID:      auth.UserID(r.Context()),
		Kind:        req.Kind,
		Amount:      amount,
		CategoryID:  req.CategoryID,
		Description: strings.TrimSpace(req.Description),
		Interval:    req.Interval,
		NextRunDate: next,
		Active:      active,
	})
	if err != nil {
		h.logger.Error("create recurring template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("recurring_template", "created", tmpl.ID, nil))
	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *RecurringHandler) List(w http.ResponseWriter, r *http.Request) {
	tmpls, err := h.templates.List(auth.HouseholdScope(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if tmpls == nil {
		tmpls = []model.RecurringTemplate{}
	}
	writeJSON(w, http.StatusOK, tmpls)
}

func (h *RecurringHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	tmpl, err := h.templates.GetByID(auth.HouseholdScope(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if tmpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *RecurringHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.templates.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	amount, next, msg := h.validate(r, &req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated := *existing
	updated.Kind = req.Kind
	updated.Amount = amount
	updated.CategoryID = req.CategoryID
	updated.Description = strings.TrimSpace(req.Description)
	updated.Interval = req.Interval
	updated.NextRunDate = next
	if req.Active != nil {
		updated.Active = *req.Active
	}

	tmpl, err := h.templates.Update(sc, id, updated)
	if err != nil {
		h.logger.Error("update recurring template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update template")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("recurring_template", "updated", id, nil))
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *RecurringHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.templates.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	if err := h.templates.Delete(sc, id); err != nil {
		h.logger.Error("delete recurring template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("recurring_template", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Process runs the recurring processor for the caller's household
// immediately, without waiting for the scheduler's next sweep.
func (h *RecurringHandler) Process(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	result, err := h.processor.Run(r.Context(), householdID, time.Now().UTC())
	if err != nil {
		h.logger.Error("process recurring templates", "error", err, "household_id", householdID)
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	if result.Processed > 0 {
		h.broadcast(householdID, websocket.NewMessage("transaction", "created", 0, map[string]any{
			"processed": result.Processed,
		}))
	}
	writeJSON(w, http.StatusOK, result)
}
