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
)

const (
	sessionCookieName = "tracker_session"
	minPasswordLen    = 8
)

type AuthHandler struct {
	users      *store.UserStore
	households *store.HouseholdStore
	sessions   *store.SessionStore
	invites    *store.InviteStore
	logger     *slog.Logger
}

func NewAuthHandler(us *store.UserStore, hs *store.HouseholdStore, ss *store.SessionStore, is *store.InviteStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      us,
		households: hs,
		sessions:   ss,
		invites:    is,
		logger:     logger,
	}
}

type registerRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Password      string `json:"password"`
	HouseholdName string `json:"household_name"`
	Currency      string `json:"currency"`
	InviteToken   string `json:"invite_token"`
}

// Register creates a user and either founds a new household or joins an
// existing one via invite token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	if req.InviteToken != "" {
		h.registerViaInvite(w, req)
		return
	}

	req.HouseholdName = strings.TrimSpace(req.HouseholdName)
	if req.HouseholdName == "" {
		writeError(w, http.StatusBadRequest, "household_name is required")
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		writeError(w, http.StatusBadRequest, "currency must be a 3-letter code")
		return
	}

	household, err := h.households.Create(req.HouseholdName, currency)
	if err != nil {
		if errors.Is(err, store.ErrNameTaken) {
			writeError(w, http.StatusConflict, "household name already taken")
			return
		}
		h.logger.Error("create household", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if err := h.households.SeedDefaults(household.ID); err != nil {
		h.logger.Error("seed defaults", "error", err, "household_id", household.ID)
	}

	user, err := h.users.Create(req.Email, req.Name, req.Password)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if _, err := h.households.AddMember(household.ID, user.ID, model.RoleAdmin); err != nil {
		h.logger.Error("add founding member", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.startSession(w, user.ID, household.ID, http.StatusCreated, map[string]any{
		"user":      user,
		"household": household,
	})
}

func (h *AuthHandler) registerViaInvite(w http.ResponseWriter, req registerRequest) {
	invite, err := h.invites.GetByToken(req.InviteToken)
	if err != nil {
		h.logger.Error("invite lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if invite == nil {
		writeError(w, http.StatusBadRequest, "invite is invalid or expired")
		return
	}
	if invite.Email != req.Email {
		writeError(w, http.StatusBadRequest, "invite was issued for a different email")
		return
	}

	household, err := h.households.GetByID(invite.HouseholdID)
	if err != nil || household == nil {
		h.logger.Error("invite household lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user, err := h.users.Create(req.Email, req.Name, req.Password)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if _, err := h.households.AddMember(invite.HouseholdID, user.ID, invite.Role); err != nil {
		h.logger.Error("add invited member", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if err := h.invites.MarkAccepted(invite.ID); err != nil {
		h.logger.Error("mark invite accepted", "error", err, "invite_id", invite.ID)
	}

	h.startSession(w, user.ID, invite.HouseholdID, http.StatusCreated, map[string]any{
		"user":      user,
		"household": household,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	// Same response for unknown email and wrong password
	if user == nil || !h.users.VerifyPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	households, err := h.households.ListHouseholdsForUser(user.ID)
	if err != nil {
		h.logger.Error("login households", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if len(households) == 0 {
		writeError(w, http.StatusForbidden, "no household membership")
		return
	}

	h.startSession(w, user.ID, households[0].ID, http.StatusOK, map[string]any{
		"user":      user,
		"household": households[0],
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if ac, ok := auth.FromContext(r.Context()); ok {
		if err := h.sessions.Delete(ac.SessionID); err != nil {
			h.logger.Error("delete session", "error", err, "session_id", ac.SessionID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID, householdID int64, status int, body map[string]any) {
	sess, err := h.sessions.Create(userID, householdID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "session creation failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, status, body)
}
