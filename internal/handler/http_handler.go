package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/logger"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/middleware"
	"github.com/pesio-ai/be-tbc-triage/internal/service"
)

// HTTPHandler handles HTTP requests
type HTTPHandler struct {
	wizard    *service.WizardService
	locations *service.LocationService
	dashboard *service.DashboardService
	admin     client.AdminClientInterface
	auth      client.AuthClientInterface
	log       *logger.Logger
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(
	wizard *service.WizardService,
	locations *service.LocationService,
	dashboard *service.DashboardService,
	adminClient client.AdminClientInterface,
	auth client.AuthClientInterface,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		wizard:    wizard,
		locations: locations,
		dashboard: dashboard,
		admin:     adminClient,
		auth:      auth,
		log:       log,
	}
}

// Router builds the route table
func (h *HTTPHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	api.HandleFunc("/locations/provinces", h.ListProvinces).Methods(http.MethodGet)
	api.HandleFunc("/locations/provinces/{id:[0-9]+}/cities", h.ListCities).Methods(http.MethodGet)
	api.HandleFunc("/locations/laboratorios/{cityId:[0-9]+}", h.GetLaboratory).Methods(http.MethodGet)

	api.HandleFunc("/wizard/sessions", h.StartSession).Methods(http.MethodPost)
	api.HandleFunc("/wizard/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/wizard/sessions/{id}", h.DeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/wizard/sessions/{id}/next", h.NextStep).Methods(http.MethodPost)
	api.HandleFunc("/wizard/sessions/{id}/back", h.PreviousStep).Methods(http.MethodPost)
	api.HandleFunc("/wizard/sessions/{id}/retry", h.RetryStep).Methods(http.MethodPost)
	api.HandleFunc("/wizard/sessions/{id}/history", h.SessionHistory).Methods(http.MethodGet)

	api.HandleFunc("/dashboard", h.GetDashboard).Methods(http.MethodGet)

	adm := api.PathPrefix("/admin").Subrouter()
	adm.Use(middleware.RequireBearer)
	adm.HandleFunc("/provinces", h.ListAdminProvinces).Methods(http.MethodGet)
	adm.HandleFunc("/provinces", h.CreateProvince).Methods(http.MethodPost)
	adm.HandleFunc("/provinces/{id:[0-9]+}", h.UpdateProvince).Methods(http.MethodPut)
	adm.HandleFunc("/provinces/{id:[0-9]+}", h.DeleteProvince).Methods(http.MethodDelete)
	adm.HandleFunc("/cities", h.ListAdminCities).Methods(http.MethodGet)
	adm.HandleFunc("/cities", h.CreateCity).Methods(http.MethodPost)
	adm.HandleFunc("/cities/form", h.CityForm).Methods(http.MethodGet)
	adm.HandleFunc("/cities/{id:[0-9]+}", h.UpdateCity).Methods(http.MethodPut)
	adm.HandleFunc("/cities/{id:[0-9]+}", h.DeleteCity).Methods(http.MethodDelete)
	adm.HandleFunc("/laboratorios", h.ListAdminLaboratories).Methods(http.MethodGet)
	adm.HandleFunc("/laboratorios", h.CreateLaboratory).Methods(http.MethodPost)
	adm.HandleFunc("/laboratorios/{id:[0-9]+}", h.UpdateLaboratory).Methods(http.MethodPut)
	adm.HandleFunc("/laboratorios/{id:[0-9]+}", h.DeleteLaboratory).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, errors.NotFound("route"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"}})
	})
	return r
}

// Health handles liveness probes
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges administrator credentials for a backend token
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListProvinces handles the public province list
func (h *HTTPHandler) ListProvinces(w http.ResponseWriter, r *http.Request) {
	provinces, err := h.locations.Provinces(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(provinces))
}

// ListCities handles the cities of a province
func (h *HTTPHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}
	cities, err := h.locations.Cities(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cities))
}

// GetLaboratory handles the laboratory assigned to a city
func (h *HTTPHandler) GetLaboratory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "cityId")
	if !ok {
		return
	}
	lab, err := h.locations.Laboratory(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lab)
}

// ── helpers ──────────────────────────────────────────────────────────────────

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil && status != http.StatusNoContent {
		json.NewEncoder(w).Encode(v)
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	detail := errorDetail{Code: string(errors.CodeOf(err)), Message: err.Error()}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		detail.Message = appErr.Message
		detail.Field = appErr.Field
	}

	event := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
		if status == http.StatusInternalServerError {
			detail.Message = "internal error"
		}
	}
	event.Err(err).Str("code", detail.Code).Msg("request failed")

	writeJSON(w, status, errorBody{Error: detail})
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, r, errors.InvalidInput("body", "invalid request body"))
		return false
	}
	return true
}

func (h *HTTPHandler) pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		h.writeError(w, r, errors.InvalidInput(name, "a positive integer is required"))
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.InvalidInput(name, "a non-negative integer is required")
	}
	return n, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
