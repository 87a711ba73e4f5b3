package web

import (
	"net/http"
	"path/filepath"
	"strings"

	"invoicing-api/internal/app"
)

const maxImportSize = 10 << 20 // 10 MB

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req app.ClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	client, err := h.svc.CreateClient(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, client, http.StatusCreated)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListClients(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Clients)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var req app.ClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	client, err := h.svc.UpdateClient(r.Context(), urlID(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, client)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteClient(r.Context(), urlID(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// importClientsCSV accepts a multipart upload under the "file" field.
// Only .csv uploads are accepted; row validation happens in the core.
func (h *Handler) importClientsCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, r, "request too large or malformed", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "no file provided", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		writeError(w, r, "invalid file type", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ImportClientsCSV(r.Context(), file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		Message  string `json:"message"`
		Imported int    `json:"imported"`
	}
	writeJSON(w, response{
		Message:  "Successfully imported clients.",
		Imported: result.Imported,
	})
}
