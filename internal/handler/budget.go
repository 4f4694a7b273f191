package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/auth"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/money"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
	"github.com/munsif3/family-expense-tracker-sub001/internal/websocket"
)

type BudgetHandler struct {
	budgets    *store.BudgetStore
	categories *store.CategoryStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewBudgetHandler(bs *store.BudgetStore, cs *store.CategoryStore, hub *websocket.Hub, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{budgets: bs, categories: cs, hub: hub, logger: logger}
}

func (h *BudgetHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type budgetRequest struct {
	CategoryID *int64 `json:"category_id"`
	Amount     string `json:"amount"`
	Period     string `json:"period"`
}

// validate parses the amount and checks the category reference. A nil
// category means the overall household budget.
func (h *BudgetHandler) validate(r *http.Request, req *budgetRequest) (decimal.Decimal, string) {
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return decimal.Decimal{}, "invalid amount: " + err.Error()
	}
	if req.Period == "" {
		req.Period = "monthly"
	}
	if req.Period != "monthly" {
		return decimal.Decimal{}, "period must be monthly"
	}
	if req.CategoryID != nil {
		c, err := h.categories.GetByID(auth.HouseholdScope(r.Context()), *req.CategoryID)
		if err != nil || c == nil {
			return decimal.Decimal{}, "category not found"
		}
	}
	return amount, ""
}

func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	amount, msg := h.validate(r, &req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	householdID := auth.HouseholdID(r.Context())
	budget, err := h.budgets.Create(householdID, req.CategoryID, amount, req.Period)
	if err != nil {
		h.logger.Error("create budget", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create budget")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("budget", "created", budget.ID, nil))
	writeJSON(w, http.StatusCreated, budget)
}

func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.budgets.List(auth.HouseholdScope(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}
	if budgets == nil {
		budgets = []model.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.budgets.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get budget")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "budget not found")
		return
	}

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	amount, msg := h.validate(r, &req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	budget, err := h.budgets.Update(sc, id, req.CategoryID, amount, req.Period)
	if err != nil {
		h.logger.Error("update budget", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update budget")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("budget", "updated", id, nil))
	writeJSON(w, http.StatusOK, budget)
}

func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.budgets.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get budget")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "budget not found")
		return
	}

	if err := h.budgets.Delete(sc, id); err != nil {
		h.logger.Error("delete budget", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete budget")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("budget", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
