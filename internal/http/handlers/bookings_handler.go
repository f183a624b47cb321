package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/http/middleware"
	"github.com/diagnosis/homepro-bookings/internal/http/response"
)

type BookingService interface {
	List(ctx context.Context, userID string) ([]domain.Booking, error)
	Create(ctx context.Context, userID string, req domain.BookingReq) (*domain.Booking, error)
	Get(ctx context.Context, id, userID string) (*domain.Booking, error)
	Update(ctx context.Context, id, userID string, patch domain.BookingPatch) (*domain.Booking, error)
	SetStatus(ctx context.Context, id, userID, status string) (*domain.Booking, error)
	Delete(ctx context.Context, id, userID string) error
}

const msgBookingNotFound = "Booking not found"

type BookingsHandler struct {
	svc BookingService
}

func NewBookingsHandler(svc BookingService) *BookingsHandler {
	return &BookingsHandler{svc: svc}
}

// Routes expects RequireJWT to run first.
func (h *BookingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}/status", h.setStatus)
	r.Delete("/{id}", h.delete)
	return r
}

type bookingRes struct {
	Booking *domain.Booking `json:"booking"`
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// decodeStatus reads the status field of a status change. A missing body or a
// non-string value yields "", which the services reject as an invalid status.
func decodeStatus(r *http.Request) (string, error) {
	var in struct {
		Status any `json:"status"`
	}
	if err := decode(r, &in); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	s, _ := in.Status.(string)
	return s, nil
}

func (h *BookingsHandler) list(w http.ResponseWriter, r *http.Request) {
	bs, err := h.svc.List(r.Context(), middleware.UserID(r))
	if err != nil {
		response.FromError(w, r, "bookings.list", msgBookingNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"bookings": bs})
}

func (h *BookingsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.BookingReq
	if err := decode(r, &in); err != nil {
		response.BadRequest(w, response.MsgInvalidBody)
		return
	}
	b, err := h.svc.Create(r.Context(), middleware.UserID(r), in)
	if err != nil {
		response.FromError(w, r, "bookings.create", msgBookingNotFound, err)
		return
	}
	response.JSON(w, http.StatusCreated, bookingRes{Booking: b})
}

func (h *BookingsHandler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r))
	if err != nil {
		response.FromError(w, r, "bookings.get", msgBookingNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, bookingRes{Booking: b})
}

func (h *BookingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch domain.BookingPatch
	if err := decode(r, &patch); err != nil {
		response.BadRequest(w, response.MsgInvalidBody)
		return
	}
	b, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r), patch)
	if err != nil {
		response.FromError(w, r, "bookings.update", msgBookingNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, bookingRes{Booking: b})
}

func (h *BookingsHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	status, err := decodeStatus(r)
	if err != nil {
		response.BadRequest(w, response.MsgInvalidBody)
		return
	}
	b, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r), status)
	if err != nil {
		response.FromError(w, r, "bookings.set_status", msgBookingNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, bookingRes{Booking: b})
}

func (h *BookingsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r)); err != nil {
		response.FromError(w, r, "bookings.delete", msgBookingNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "Booking deleted successfully"})
}
