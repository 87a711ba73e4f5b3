package web

import "net/http"

func (h *Handler) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.svc.DashboardMetrics(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, metrics)
}

func (h *Handler) exportInvoicesCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportInvoicesCSV(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices_export.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) listAuditLogs(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListAuditLogs(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Logs)
}
