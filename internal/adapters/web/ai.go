package web

import "net/http"

func (h *Handler) aiQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.AnswerQuery(r.Context(), req.Query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Answer string `json:"answer"`
	}
	writeJSON(w, response{Answer: result.Answer})
}
