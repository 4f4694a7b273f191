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

type PaymentMethodHandler struct {
	paymentMethods *store.PaymentMethodStore
	hub            *websocket.Hub
	logger         *slog.Logger
}

func NewPaymentMethodHandler(pms *store.PaymentMethodStore, hub *websocket.Hub, logger *slog.Logger) *PaymentMethodHandler {
	return &PaymentMethodHandler{paymentMethods: pms, hub: hub, logger: logger}
}

func (h *PaymentMethodHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type paymentMethodRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (h *PaymentMethodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req paymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	householdID := auth.HouseholdID(r.Context())
	pm, err := h.paymentMethods.Create(householdID, req.Name, req.SortOrder)
	if err != nil {
		h.logger.Error("create payment method", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create payment method")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("payment_method", "created", pm.ID, nil))
	writeJSON(w, http.StatusCreated, pm)
}

func (h *PaymentMethodHandler) List(w http.ResponseWriter, r *http.Request) {
	pms, err := h.paymentMethods.List(auth.HouseholdScope(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list payment methods")
		return
	}
	if pms == nil {
		pms = []model.PaymentMethod{}
	}
	writeJSON(w, http.StatusOK, pms)
}

func (h *PaymentMethodHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.paymentMethods.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get payment method")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "payment method not found")
		return
	}

	var req paymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	pm, err := h.paymentMethods.Update(sc, id, req.Name, req.SortOrder)
	if err != nil {
		h.logger.Error("update payment method", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update payment method")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("payment_method", "updated", id, nil))
	writeJSON(w, http.StatusOK, pm)
}

func (h *PaymentMethodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.paymentMethods.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get payment method")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "payment method not found")
		return
	}

	if err := h.paymentMethods.Delete(sc, id); err != nil {
		h.logger.Error("delete payment method", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete payment method")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("payment_method", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
