package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"invoicing-api/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// CSV upload: size is managed inside the handler (multipart, up to 10 MB).
	r.Post("/api/import/clients/csv", h.importClientsCSV)

	// Everything else: 1 MB body limit to prevent unbounded request abuse.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// Clients
		r.Post("/api/clients", h.createClient)
		r.Get("/api/clients", h.listClients)
		r.Put("/api/clients/{id}", h.updateClient)
		r.Delete("/api/clients/{id}", h.deleteClient)

		// Invoices
		r.Post("/api/invoices", h.createInvoice)
		r.Get("/api/invoices", h.listInvoices)
		r.Get("/api/invoices/{id}", h.getInvoice)
		r.Put("/api/invoices/{id}/status", h.updateInvoiceStatus)
		r.Post("/api/invoices/{id}/payments", h.recordPayment)
		r.Get("/api/invoices/{id}/pdf", h.invoicePDF)

		// Reporting
		r.Get("/api/metrics", h.dashboardMetrics)
		r.Get("/api/export/invoices/csv", h.exportInvoicesCSV)
		r.Get("/api/audit-logs", h.listAuditLogs)

		// AI query
		r.Post("/api/ai/query", h.aiQuery)

		// Mock outbound email
		r.Post("/api/mock-email/send", h.sendEmail)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// urlID extracts the {id} URL parameter.
func urlID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// decodeJSON decodes the request body into v, writing the error
// response itself on failure. Returns HTTP 413 when the body exceeds
// the RequestBodyLimit; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// sendEmail hands the message to the (mock) notification sender.
func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	var req app.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SendEmail(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Message string `json:"message"`
	}
	writeJSON(w, response{Message: "Email sent successfully (mocked)."})
}
