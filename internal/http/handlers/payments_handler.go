package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/http/middleware"
	"github.com/diagnosis/homepro-bookings/internal/http/response"
)

type PaymentService interface {
	List(ctx context.Context, userID string) ([]domain.Payment, error)
	Create(ctx context.Context, userID string, req domain.PaymentReq) (*domain.Payment, error)
	Get(ctx context.Context, id, userID string) (*domain.Payment, error)
	SetStatus(ctx context.Context, id, userID, status string) (*domain.Payment, error)
	Delete(ctx context.Context, id, userID string) error
}

const msgPaymentNotFound = "Payment not found"

type PaymentsHandler struct {
	svc PaymentService
}

func NewPaymentsHandler(svc PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

func (h *PaymentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.setStatus)
	r.Delete("/{id}", h.delete)
	return r
}

type paymentRes struct {
	Payment *domain.Payment `json:"payment"`
}

func (h *PaymentsHandler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.List(r.Context(), middleware.UserID(r))
	if err != nil {
		response.FromError(w, r, "payments.list", msgPaymentNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"payments": ps})
}

func (h *PaymentsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.PaymentReq
	if err := decode(r, &in); err != nil {
		response.BadRequest(w, response.MsgInvalidBody)
		return
	}
	p, err := h.svc.Create(r.Context(), middleware.UserID(r), in)
	if err != nil {
		response.FromError(w, r, "payments.create", msgPaymentNotFound, err)
		return
	}
	response.JSON(w, http.StatusCreated, paymentRes{Payment: p})
}

func (h *PaymentsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r))
	if err != nil {
		response.FromError(w, r, "payments.get", msgPaymentNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, paymentRes{Payment: p})
}

func (h *PaymentsHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	status, err := decodeStatus(r)
	if err != nil {
		response.BadRequest(w, response.MsgInvalidBody)
		return
	}
	p, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r), status)
	if err != nil {
		response.FromError(w, r, "payments.set_status", msgPaymentNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, paymentRes{Payment: p})
}

func (h *PaymentsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r)); err != nil {
		response.FromError(w, r, "payments.delete", msgPaymentNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "Payment deleted successfully"})
}
