package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/munsif3/family-expense-tracker-sub001/internal/auth"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
	"github.com/munsif3/family-expense-tracker-sub001/internal/websocket"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	users      *store.UserStore
	invites    *store.InviteStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, us *store.UserStore, is *store.InviteStore, hub *websocket.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, users: us, invites: is, hub: hub, logger: logger}
}

func (h *HouseholdHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	household, err := h.households.GetByID(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get household")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "household not found")
		return
	}
	writeJSON(w, http.StatusOK, household)
}

type householdRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Currency) != 3 {
		writeError(w, http.StatusBadRequest, "currency must be a 3-letter code")
		return
	}

	household, err := h.households.Update(householdID, req.Name, req.Currency)
	if err != nil {
		if errors.Is(err, store.ErrNameTaken) {
			writeError(w, http.StatusConflict, "household name already taken")
			return
		}
		h.logger.Error("update household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update household")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("household", "updated", householdID, nil))
	writeJSON(w, http.StatusOK, household)
}

type memberResponse struct {
	model.HouseholdMember
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *HouseholdHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	members, err := h.households.ListMembers(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		resp := memberResponse{HouseholdMember: m}
		if u, err := h.users.GetByID(m.UserID); err == nil && u != nil {
			resp.Name = u.Name
			resp.Email = u.Email
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

type roleRequest struct {
	Role string `json:"role"`
}

// UpdateMemberRole changes a member's role. Admin only; the path id is the
// member's user id.
func (h *HouseholdHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleUser {
		writeError(w, http.StatusBadRequest, "role must be admin or user")
		return
	}

	member, err := h.households.GetMember(householdID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	// A household must always keep at least one admin.
	if member.Role == model.RoleAdmin && req.Role != model.RoleAdmin {
		if n, err := h.countAdmins(householdID); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check admins")
			return
		} else if n <= 1 {
			writeError(w, http.StatusConflict, "cannot demote the last admin")
			return
		}
	}

	updated, err := h.households.UpdateMemberRole(householdID, userID, req.Role)
	if err != nil {
		h.logger.Error("update member role", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("member", "updated", userID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// RemoveMember removes a member from the household. Admin only. The removed
// user's sessions stop passing auth on the next request.
func (h *HouseholdHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	member, err := h.households.GetMember(householdID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}
	if member.Role == model.RoleAdmin {
		if n, err := h.countAdmins(householdID); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check admins")
			return
		} else if n <= 1 {
			writeError(w, http.StatusConflict, "cannot remove the last admin")
			return
		}
	}

	if err := h.households.RemoveMember(householdID, userID); err != nil {
		h.logger.Error("remove member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("member", "removed", userID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateInvite issues an invite token for joining the household. Admin only.
func (h *HouseholdHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleUser {
		writeError(w, http.StatusBadRequest, "role must be admin or user")
		return
	}

	invite, err := h.invites.Create(householdID, req.Email, req.Role)
	if err != nil {
		h.logger.Error("create invite", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create invite")
		return
	}

	writeJSON(w, http.StatusCreated, invite)
}

func (h *HouseholdHandler) countAdmins(householdID int64) (int, error) {
	members, err := h.households.ListMembers(householdID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range members {
		if m.Role == model.RoleAdmin {
			n++
		}
	}
	return n, nil
}
