package handlers

import (
	"context"
	"net/http"

	"taskcanvas/middleware"
	"taskcanvas/models"
	"taskcanvas/services"
)

type AuthAPI interface {
	middleware.Authenticator
	Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)
	CurrentUser(ctx context.Context, userID string) (models.User, error)
	Logout(ctx context.Context, claims *services.Claims) error
}

type AuthHandler struct {
	service AuthAPI
}

func NewAuthHandler(service AuthAPI) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.service.Signup(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.service.Logout(r.Context(), claims); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
