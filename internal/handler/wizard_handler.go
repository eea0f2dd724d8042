package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pesio-ai/be-tbc-triage/internal/dashboard"
)

type nextRequest struct {
	Payload int `json:"payload"`
}

// StartSession opens a new triage session
func (h *HTTPHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizard.Start(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// GetSession returns the current step of a session
func (h *HTTPHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizard.View(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// NextStep advances a session
func (h *HTTPHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	var req nextRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.wizard.Next(r.Context(), mux.Vars(r)["id"], req.Payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PreviousStep moves a session back one step
func (h *HTTPHandler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizard.Back(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RetryStep replays a failed navigation
func (h *HTTPHandler) RetryStep(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizard.Retry(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteSession ends a session
func (h *HTTPHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.wizard.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionHistory returns the navigation trail of a session
func (h *HTTPHandler) SessionHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.wizard.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// GetDashboard returns the aggregate statistics
func (h *HTTPHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.dashboard.Get(r.Context(), dashboard.Filters{
		Province: q.Get("province"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
