package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/http/middleware"
	"github.com/diagnosis/homepro-bookings/internal/http/response"
	"github.com/diagnosis/homepro-bookings/pkg/auth"
)

type AuthService interface {
	Register(ctx context.Context, req domain.RegisterReq) (*domain.AuthRes, error)
	Login(ctx context.Context, req domain.LoginReq) (*domain.AuthRes, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type AuthHandler struct {
	svc    AuthService
	issuer *auth.Issuer
}

func NewAuthHandler(svc AuthService, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{svc: svc, issuer: issuer}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.With(middleware.RequireJWT(h.issuer)).Get("/me", h.me)
	return r
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterReq
	if err := decode(r, &in); err != nil {
		response.BadRequest(w, response.MsgInvalidBody)
		return
	}
	res, err := h.svc.Register(r.Context(), in)
	if err != nil {
		response.FromError(w, r, "auth.register", "", err)
		return
	}
	response.JSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginReq
	if err := decode(r, &in); err != nil {
		response.BadRequest(w, response.MsgInvalidBody)
		return
	}
	res, err := h.svc.Login(r.Context(), in)
	if err != nil {
		response.FromError(w, r, "auth.login", "", err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context(), middleware.UserID(r))
	if err != nil {
		response.FromError(w, r, "auth.me", "User not found", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"user": u})
}
