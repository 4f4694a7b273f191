package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/munsif3/family-expense-tracker-sub001/internal/auth"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/money"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
	"github.com/munsif3/family-expense-tracker-sub001/internal/websocket"
)

type AssetHandler struct {
	assets *store.AssetStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAssetHandler(as *store.AssetStore, hub *websocket.Hub, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{assets: as, hub: hub, logger: logger}
}

func (h *AssetHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type assetRequest struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	value, err := money.Parse(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid value: "+err.Error())
		return
	}

	householdID := auth.HouseholdID(r.Context())
	asset, err := h.assets.Create(householdID, req.Name, req.Kind, value)
	if err != nil {
		h.logger.Error("create asset", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create asset")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("asset", "created", asset.ID, nil))
	writeJSON(w, http.StatusCreated, asset)
}

func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assets.List(auth.HouseholdScope(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	writeJSON(w, http.StatusOK, assets)
}

func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.assets.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get asset")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	value, err := money.Parse(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid value: "+err.Error())
		return
	}

	asset, err := h.assets.Update(sc, id, req.Name, req.Kind, value)
	if err != nil {
		h.logger.Error("update asset", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update asset")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("asset", "updated", id, nil))
	writeJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	existing, err := h.assets.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get asset")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	if err := h.assets.Delete(sc, id); err != nil {
		h.logger.Error("delete asset", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete asset")
		return
	}

	h.broadcast(sc.HouseholdID(), websocket.NewMessage("asset", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
