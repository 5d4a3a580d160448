package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/storyloom/internal/ctxkeys"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/render"
	"github.com/templui/storyloom/internal/service"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{authService: authService}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	err := render.Decode(r, &req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	h.startSession(w, r, user, http.StatusCreated)
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	err := render.Decode(r, &req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	h.startSession(w, r, user, http.StatusOK)
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, http.StatusOK, ctxkeys.User(r.Context()))
}

// startSession sets the auth cookie and also returns the token for bearer clients.
func (h *authHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User, status int) {
	token, expiry, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		render.Error(w, r, err)
		return
	}

	h.authService.SetJWTCookie(w, token, expiry)
	user.PasswordHash = ""
	render.JSON(w, r, status, sessionResponse{User: user, Token: token, ExpiresAt: expiry})
}
