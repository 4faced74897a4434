package joborder

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes job order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/job-orders", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/track", h.track) // GET /api/v1/job-orders/track?number=JO-...&plate=ABC123
		r.Get("/number/{number}", h.getByNumber)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Patch("/{id}/status", h.updateStatus)
		r.Post("/{id}/archive", h.archive)
		r.Post("/{id}/unarchive", h.unarchive)
		r.Post("/{id}/parts", h.attachPart)
		r.Delete("/{id}/parts/{lineID}", h.detachPart)
		r.Get("/{id}/subtotal", h.subtotal)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateJobOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	j, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, j)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	j, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, j)
}

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	j, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, j)
}

func (h *Handler) track(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("number")
	plate := r.URL.Query().Get("plate")
	j, err := h.service.Track(r.Context(), number, plate)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, j)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("archived") == "true"
	status := r.URL.Query().Get("status")
	orders, err := h.service.List(r.Context(), includeArchived, status)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateJobOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	j, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, j)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	j, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, j)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Archive(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "job order archived"})
}

func (h *Handler) unarchive(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unarchive(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "job order unarchived"})
}

func (h *Handler) attachPart(w http.ResponseWriter, r *http.Request) {
	var req AttachPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	j, err := h.service.AttachPart(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, j)
}

func (h *Handler) detachPart(w http.ResponseWriter, r *http.Request) {
	j, err := h.service.DetachPart(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineID"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, j)
}

func (h *Handler) subtotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.Subtotal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]float64{"subtotal": total})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPartNotFound):
		respond(w, http.StatusNotFound, errorBody("NOT_FOUND", err))
	case errors.Is(err, ErrInvalidTransition):
		respond(w, http.StatusUnprocessableEntity, errorBody("INVALID_TRANSITION", err))
	case errors.Is(err, ErrArchived):
		respond(w, http.StatusConflict, errorBody("ARCHIVED", err))
	case errors.Is(err, ErrAlreadyInvoiced):
		respond(w, http.StatusConflict, errorBody("ALREADY_INVOICED", err))
	case errors.Is(err, ErrInsufficientStock):
		respond(w, http.StatusUnprocessableEntity, errorBody("INSUFFICIENT_STOCK", err))
	case errors.Is(err, ErrValidation):
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
	default:
		respond(w, http.StatusInternalServerError, errorBody("INTERNAL", err))
	}
}

func errorBody(code string, err error) map[string]string {
	return map[string]string{"code": code, "error": err.Error()}
}
