package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/munsif3/family-expense-tracker-sub001/internal/auth"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
	"github.com/munsif3/family-expense-tracker-sub001/internal/trip"
	"github.com/munsif3/family-expense-tracker-sub001/internal/websocket"
)

type TripHandler struct {
	trips      *store.TripStore
	txns       *store.TransactionStore
	households *store.HouseholdStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewTripHandler(trs *store.TripStore, ts *store.TransactionStore, hs *store.HouseholdStore, hub *websocket.Hub, logger *slog.Logger) *TripHandler {
	return &TripHandler{trips: trs, txns: ts, households: hs, hub: hub, logger: logger}
}

func (h *TripHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type tripRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *tripRequest) parse() (string, *time.Time, *time.Time, string) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "", nil, nil, "name is required"
	}
	var start, end *time.Time
	if r.StartDate != "" {
		t, err := parseDate(r.StartDate)
		if err != nil {
			return "", nil, nil, "start_date must be YYYY-MM-DD"
		}
		start = &t
	}
	if r.EndDate != "" {
		t, err := parseDate(r.EndDate)
		if err != nil {
			return "", nil, nil, "end_date must be YYYY-MM-DD"
		}
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return "", nil, nil, "end_date is before start_date"
	}
	return name, start, end, ""
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	name, start, end, msg := req.parse()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	householdID := auth.HouseholdID(r.Context())
	t, err := h.trips.Create(householdID, name, start, end)
	if err != nil {
		h.logger.Error("create trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create trip")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("trip", "created", t.ID, nil))
	writeJSON(w, http.StatusCreated, t)
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := h.trips.List(auth.HouseholdScope(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list trips")
		return
	}
	if trips == nil {
		trips = []model.Trip{}
	}
	writeJSON(w, http.StatusOK, trips)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	t, err := h.trips.GetByID(auth.HouseholdScope(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.trips.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	name, start, end, msg := req.parse()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	t, err := h.trips.Update(sc, id, name, start, end)
	if err != nil {
		h.logger.Error("update trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update trip")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("trip", "updated", id, nil))
	writeJSON(w, http.StatusOK, t)
}

func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.trips.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	if err := h.trips.Delete(sc, id); err != nil {
		h.logger.Error("delete trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete trip")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("trip", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type settlementResponse struct {
	TripID    int64           `json:"trip_id"`
	Shares    []trip.Share    `json:"shares"`
	Transfers []trip.Transfer `json:"transfers"`
}

// Settlement computes each member's balance for the trip and the transfers
// that square everyone up.
func (h *TripHandler) Settlement(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	t, err := h.trips.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	members, err := h.households.ListMembers(sc.HouseholdID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	memberIDs := make([]int64, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}

	expenses, err := h.txns.List(sc, store.TransactionFilter{TripID: id})
	if err != nil {
		h.logger.Error("list trip expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list trip expenses")
		return
	}

	shares := trip.Balances(memberIDs, expenses)
	if shares == nil {
		shares = []trip.Share{}
	}
	transfers := trip.Settle(shares)
	if transfers == nil {
		transfers = []trip.Transfer{}
	}

	writeJSON(w, http.StatusOK, settlementResponse{
		TripID:    id,
		Shares:    shares,
		Transfers: transfers,
	})
}
