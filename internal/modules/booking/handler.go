package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes booking HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/bookings", func(r chi.Router) {
		r.Post("/", h.createBooking)
		r.Get("/", h.listBookings)
		r.Post("/purge", h.purgeBookings)
		r.Get("/{id}", h.getBooking)
		r.Post("/{id}/confirm", h.confirmBooking)
		r.Post("/{id}/cancel", h.cancelBooking)
	})
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	b, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, b)
}

func (h *Handler) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, b)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, bookings)
}

func (h *Handler) confirmBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, b)
}

func (h *Handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, b)
}

func (h *Handler) purgeBookings(w http.ResponseWriter, r *http.Request) {
	var req PurgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	n, err := h.service.Purge(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int64{"deleted": n})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond(w, http.StatusNotFound, errorBody("NOT_FOUND", err))
	case errors.Is(err, ErrInvalidTransition):
		respond(w, http.StatusConflict, errorBody("INVALID_TRANSITION", err))
	case errors.Is(err, ErrValidation):
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
	default:
		respond(w, http.StatusInternalServerError, errorBody("INTERNAL", err))
	}
}

func errorBody(code string, err error) map[string]string {
	return map[string]string{"code": code, "error": err.Error()}
}
