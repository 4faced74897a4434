package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler exposes billing HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/invoices", func(r chi.Router) {
		r.Post("/", h.issueInvoice)
		r.Get("/", h.listInvoices)
		r.Get("/number/{number}", h.getInvoiceByNumber)
		r.Get("/{id}", h.getInvoice)
		r.Post("/{id}/payments", h.recordPayment)
		r.Get("/{id}/payments", h.listPayments)
	})
	r.Get("/api/v1/reports/revenue", h.revenueByMonth) // ?year=2026
}

func (h *Handler) issueInvoice(w http.ResponseWriter, r *http.Request) {
	var req IssueInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	inv, err := h.service.IssueInvoice(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, inv)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) getInvoiceByNumber(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoiceByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListInvoices(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, invoices)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
		return
	}
	inv, err := h.service.RecordPayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, inv)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, payments)
}

func (h *Handler) revenueByMonth(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	report, err := h.service.RevenueByMonth(r.Context(), year)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, report)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrJobOrderNotFound):
		respond(w, http.StatusNotFound, errorBody("NOT_FOUND", err))
	case errors.Is(err, ErrAlreadyInvoiced):
		respond(w, http.StatusConflict, errorBody("ALREADY_INVOICED", err))
	case errors.Is(err, ErrNegativeTotal):
		respond(w, http.StatusUnprocessableEntity, errorBody("NEGATIVE_TOTAL", err))
	case errors.Is(err, ErrOverPayment):
		respond(w, http.StatusUnprocessableEntity, errorBody("OVER_PAYMENT", err))
	case errors.Is(err, ErrValidation):
		respond(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err))
	default:
		respond(w, http.StatusInternalServerError, errorBody("INTERNAL", err))
	}
}

func errorBody(code string, err error) map[string]string {
	return map[string]string{"code": code, "error": err.Error()}
}
