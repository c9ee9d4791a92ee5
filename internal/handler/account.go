package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/symvora/internal/apperror"
	"github.com/sakif/symvora/internal/auth"
	"github.com/sakif/symvora/internal/model"
	"github.com/sakif/symvora/internal/service"
)

// AccountHandler serves sign-up, login, logout and the /api/me profile
// endpoints.
//
// TOKEN DELIVERY:
// A successful sign-up or login returns the token in the JSON body (the CLI
// client keeps it in a file and sends it as a Bearer header) and also sets
// it as an HttpOnly cookie for browser clients. RequireAuth accepts either.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateNameRequest struct {
	Name string `json:"name"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse is returned by sign-up and login.
type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// HandleSignUp creates an account.
//
// HTTP: POST /api/auth/signup
// BODY: {"name": "Ada", "email": "ada@example.com", "password": "secret1"}
// 201 with AuthResponse; 400 on a bad form; 409 if the email is taken.
func (h *AccountHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.accounts.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, AuthResponse{User: res.User, Token: res.Token})
}

// HandleLogin signs an existing user in.
//
// HTTP: POST /api/auth/login
// BODY: {"email": "ada@example.com", "password": "secret1"}
// 200 with AuthResponse; 401 on bad credentials.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusOK, AuthResponse{User: res.User, Token: res.Token})
}

// HandleLogout deletes the cookie. Tokens are stateless, so a copy the
// client kept elsewhere stays valid until it expires.
//
// HTTP: POST /api/auth/logout
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the signed-in user.
//
// HTTP: GET /api/me (RequireAuth)
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("Not authenticated"))
		return
	}

	user, err := h.accounts.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateName changes the display name and returns the updated user.
//
// HTTP: PUT /api/me/name (RequireAuth)
// BODY: {"name": "Ada Lovelace"}
func (h *AccountHandler) HandleUpdateName(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("Not authenticated"))
		return
	}

	var req updateNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.UpdateName(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdatePassword replaces the password.
//
// HTTP: PUT /api/me/password (RequireAuth)
// BODY: {"currentPassword": "...", "newPassword": "..."}
// 204 on success; 401 if the current password is wrong.
func (h *AccountHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("Not authenticated"))
		return
	}

	var req updatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.accounts.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.accounts.TokenTTL(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
