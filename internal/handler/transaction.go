package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/auth"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/money"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
	"github.com/munsif3/family-expense-tracker-sub001/internal/websocket"
)

type TransactionHandler struct {
	txns           *store.TransactionStore
	categories     *store.CategoryStore
	paymentMethods *store.PaymentMethodStore
	trips          *store.TripStore
	households     *store.HouseholdStore
	hub            *websocket.Hub
	logger         *slog.Logger
}

func NewTransactionHandler(
	ts *store.TransactionStore,
	cs *store.CategoryStore,
	pms *store.PaymentMethodStore,
	trs *store.TripStore,
	hs *store.HouseholdStore,
	hub *websocket.Hub,
	logger *slog.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		txns:           ts,
		categories:     cs,
		paymentMethods: pms,
		trips:          trs,
		households:     hs,
		hub:            hub,
		logger:         logger,
	}
}

func (h *TransactionHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type transactionRequest struct {
	Kind            string `json:"kind"`
	Amount          string `json:"amount"`
	CategoryID      *int64 `json:"category_id"`
	PaymentMethodID *int64 `json:"payment_method_id"`
	TripID          *int64 `json:"trip_id"`
	OccurredAt      string `json:"occurred_at"`
	Description     string `json:"description"`
	IsPersonal      bool   `json:"is_personal"`
	SpentBy         *int64 `json:"spent_by"`
}

// validate checks field values and that every referenced entity belongs to
// the caller's household. References outside the household read as missing.
func (h *TransactionHandler) validate(r *http.Request, req *transactionRequest) (decimal.Decimal, time.Time, string) {
	var zero decimal.Decimal

	if req.Kind != model.KindIncome && req.Kind != model.KindExpense {
		return zero, time.Time{}, "kind must be income or expense"
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return zero, time.Time{}, "invalid amount: " + err.Error()
	}
	occurredAt, err := parseDate(req.OccurredAt)
	if err != nil {
		return zero, time.Time{}, "occurred_at must be YYYY-MM-DD"
	}

	sc := auth.HouseholdScope(r.Context())
	if req.CategoryID != nil {
		c, err := h.categories.GetByID(sc, *req.CategoryID)
		if err != nil || c == nil {
			return zero, time.Time{}, "category not found"
		}
	}
	if req.PaymentMethodID != nil {
		pm, err := h.paymentMethods.GetByID(sc, *req.PaymentMethodID)
		if err != nil || pm == nil {
			return zero, time.Time{}, "payment method not found"
		}
	}
	if req.TripID != nil {
		t, err := h.trips.GetByID(sc, *req.TripID)
		if err != nil || t == nil {
			return zero, time.Time{}, "trip not found"
		}
	}
	if req.SpentBy != nil {
		m, err := h.households.GetMember(auth.HouseholdID(r.Context()), *req.SpentBy)
		if err != nil || m == nil {
			return zero, time.Time{}, "spent_by is not a household member"
		}
	}

	return amount, occurredAt, ""
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	amount, occurredAt, msg := h.validate(r, &req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	householdID := auth.HouseholdID(r.Context())
	household, err := h.households.GetByID(householdID)
	if err != nil || household == nil {
		writeError(w, http.StatusInternalServerError, "failed to load household")
		return
	}

	txn, err := h.txns.Create(model.Transaction{
		HouseholdID:     householdID,
		UserID:          auth.UserID(r.Context()),
		Kind:            req.Kind,
		Amount:          amount,
		Currency:        household.Currency,
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
		TripID:          req.TripID,
		OccurredAt:      occurredAt,
		Description:     strings.TrimSpace(req.Description),
		IsPersonal:      req.IsPersonal,
		SpentBy:         req.SpentBy,
	})
	if err != nil {
		h.logger.Error("create transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("transaction", "created", txn.ID, nil))
	writeJSON(w, http.StatusCreated, txn)
}

// List returns household transactions, newest first. With mine=true only the
// caller's own records are returned.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sc := auth.HouseholdScope(r.Context())
	if q.Get("mine") == "true" {
		sc = auth.OwnerScope(r.Context())
	}

	var f store.TransactionFilter
	f.Kind = q.Get("kind")
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		f.CategoryID = id
	}
	if v := q.Get("trip_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid trip_id")
			return
		}
		f.TripID = id
	}
	if v := q.Get("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		f.To = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = n
	}

	txns, err := h.txns.List(sc, f)
	if err != nil {
		h.logger.Error("list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	txn, err := h.txns.GetByID(auth.HouseholdScope(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}
	if txn == nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.txns.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	amount, occurredAt, msg := h.validate(r, &req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated := *existing
	updated.Kind = req.Kind
	updated.Amount = amount
	updated.CategoryID = req.CategoryID
	updated.PaymentMethodID = req.PaymentMethodID
	updated.TripID = req.TripID
	updated.OccurredAt = occurredAt
	updated.Description = strings.TrimSpace(req.Description)
	updated.IsPersonal = req.IsPersonal
	updated.SpentBy = req.SpentBy

	txn, err := h.txns.Update(sc, id, updated)
	if err != nil {
		h.logger.Error("update transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("transaction", "updated", id, nil))
	writeJSON(w, http.StatusOK, txn)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.txns.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	if err := h.txns.Delete(sc, id); err != nil {
		h.logger.Error("delete transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("transaction", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
