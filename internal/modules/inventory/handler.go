package inventory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes inventory HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/parts", func(r chi.Router) {
		r.Post("/", h.createPart)
		r.Get("/", h.listParts)
		r.Get("/public", h.listPublicParts)
		r.Get("/low-stock", h.listLowStock)
		r.Get("/{id}", h.getPart)
		r.Put("/{id}", h.updatePart)
		r.Delete("/{id}", h.deletePart)
		r.Post("/{id}/stock", h.adjustStock)
		r.Get("/{id}/adjustments", h.listAdjustments)
	})
}

func (h *Handler) createPart(w http.ResponseWriter, r *http.Request) {
	var req CreatePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	p, err := h.service.CreatePart(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) getPart(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) listParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.service.ListParts(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, parts)
}

func (h *Handler) listPublicParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.service.ListPublicParts(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, parts)
}

func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	parts, err := h.service.ListLowStock(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, parts)
}

func (h *Handler) updatePart(w http.ResponseWriter, r *http.Request) {
	var req UpdatePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	p, err := h.service.UpdatePart(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) deletePart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePart(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "part deleted"})
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	p, err := h.service.AdjustStock(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) listAdjustments(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.service.ListAdjustments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, adjustments)
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
	case errors.Is(err, ErrInsufficientStock):
		respond(w, http.StatusUnprocessableEntity, errorBody("INSUFFICIENT_STOCK", err))
	case errors.Is(err, ErrPartInUse):
		respond(w, http.StatusConflict, errorBody("PART_IN_USE", err))
	case errors.Is(err, ErrValidation):
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
	default:
		respond(w, http.StatusInternalServerError, errorBody("INTERNAL", err))
	}
}

func errorBody(code string, err error) map[string]string {
	return map[string]string{"code": code, "error": err.Error()}
}
