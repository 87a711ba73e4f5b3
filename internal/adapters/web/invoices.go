package web

import (
	"fmt"
	"net/http"

	"invoicing-api/internal/app"
	"invoicing-api/internal/core"
)

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req app.CreateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inv, err := h.svc.CreateInvoice(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, inv, http.StatusCreated)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListInvoices(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoices)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.GetInvoice(r.Context(), urlID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

func (h *Handler) updateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status core.InvoiceStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	inv, err := h.svc.UpdateInvoiceStatus(r.Context(), urlID(r), string(req.Status))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req app.PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inv, err := h.svc.RecordPayment(r.Context(), urlID(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, inv, http.StatusCreated)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RenderInvoicePDF(r.Context(), urlID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Content)
}
