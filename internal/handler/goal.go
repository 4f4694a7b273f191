package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/munsif3/family-expense-tracker-sub001/internal/auth"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/money"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
	"github.com/munsif3/family-expense-tracker-sub001/internal/websocket"
)

type GoalHandler struct {
	goals  *store.GoalStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewGoalHandler(gs *store.GoalStore, hub *websocket.Hub, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goals: gs, hub: hub, logger: logger}
}

func (h *GoalHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type goalRequest struct {
	Name         string `json:"name"`
	TargetAmount string `json:"target_amount"`
	TargetDate   string `json:"target_date"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	target, err := money.Parse(req.TargetAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid target_amount: "+err.Error())
		return
	}
	var targetDate *time.Time
	if req.TargetDate != "" {
		t, err := parseDate(req.TargetDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "target_date must be YYYY-MM-DD")
			return
		}
		targetDate = &t
	}

	householdID := auth.HouseholdID(r.Context())
	goal, err := h.goals.Create(householdID, req.Name, target, targetDate)
	if err != nil {
		h.logger.Error("create goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("goal", "created", goal.ID, nil))
	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goals.List(auth.HouseholdScope(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}
	if goals == nil {
		goals = []model.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.goals.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get goal")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	target, err := money.Parse(req.TargetAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid target_amount: "+err.Error())
		return
	}
	var targetDate *time.Time
	if req.TargetDate != "" {
		t, err := parseDate(req.TargetDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "target_date must be YYYY-MM-DD")
			return
		}
		targetDate = &t
	}

	goal, err := h.goals.Update(sc, id, req.Name, target, targetDate)
	if err != nil {
		h.logger.Error("update goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("goal", "updated", id, nil))
	writeJSON(w, http.StatusOK, goal)
}

type contributeRequest struct {
	Amount string `json:"amount"`
}

// Contribute adds to a goal's saved amount, marking it achieved when the
// target is reached.
func (h *GoalHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	sc := auth.HouseholdScope(r.Context())
	goal, err := h.goals.Contribute(sc, id, amount)
	if err != nil {
		h.logger.Error("contribute to goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to contribute")
		return
	}
	if goal == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}

	action := "updated"
	if goal.Achieved {
		action = "achieved"
	}
	h.broadcast(sc.HouseholdID(), websocket.NewMessage("goal", action, id, nil))
	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.goals.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get goal")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}

	if err := h.goals.Delete(sc, id); err != nil {
		h.logger.Error("delete goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("goal", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
