package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/munsif3/family-expense-tracker-sub001/internal/auth"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
	"github.com/munsif3/family-expense-tracker-sub001/internal/websocket"
)

type CategoryHandler struct {
	categories *store.CategoryStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewCategoryHandler(cs *store.CategoryStore, hub *websocket.Hub, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: cs, hub: hub, logger: logger}
}

func (h *CategoryHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type categoryRequest struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	SortOrder int    `json:"sort_order"`
}

func (r *categoryRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "name is required"
	}
	if r.Kind != model.KindIncome && r.Kind != model.KindExpense {
		return "kind must be income or expense"
	}
	return ""
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	householdID := auth.HouseholdID(r.Context())
	cat, err := h.categories.Create(householdID, req.Name, req.Kind, req.SortOrder)
	if err != nil {
		h.logger.Error("create category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("category", "created", cat.ID, nil))
	writeJSON(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(auth.HouseholdScope(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if cats == nil {
		cats = []model.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.categories.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get category")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	cat, err := h.categories.Update(sc, id, req.Name, req.Kind, req.SortOrder)
	if err != nil {
		h.logger.Error("update category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("category", "updated", id, nil))
	writeJSON(w, http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.categories.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get category")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	if err := h.categories.Delete(sc, id); err != nil {
		h.logger.Error("delete category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("category", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
