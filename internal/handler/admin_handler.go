package handler

import (
	"net/http"

	"github.com/pesio-ai/be-tbc-triage/internal/admin"
	"github.com/pesio-ai/be-tbc-triage/internal/client"
)

// adminService returns an admin service for one request. Its cache
// lives only as long as the request, so every read reaches the backend
// with the caller's token.
func (h *HTTPHandler) adminService() *admin.Service {
	return admin.NewService(h.admin, h.log)
}

// ListAdminProvinces lists provinces
func (h *HTTPHandler) ListAdminProvinces(w http.ResponseWriter, r *http.Request) {
	list, err := h.adminService().Provinces(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// CreateProvince creates a province
func (h *HTTPHandler) CreateProvince(w http.ResponseWriter, r *http.Request) {
	var req client.Province
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.adminService().CreateProvince(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProvince updates a province
func (h *HTTPHandler) UpdateProvince(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}
	var req client.Province
	if !h.decode(w, r, &req) {
		return
	}
	updated, err := h.adminService().UpdateProvince(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteProvince deletes a province
func (h *HTTPHandler) DeleteProvince(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.adminService().DeleteProvince(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAdminCities lists cities
func (h *HTTPHandler) ListAdminCities(w http.ResponseWriter, r *http.Request) {
	list, err := h.adminService().Cities(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// CreateCity creates a city
func (h *HTTPHandler) CreateCity(w http.ResponseWriter, r *http.Request) {
	var form admin.CityForm
	if !h.decode(w, r, &form) {
		return
	}
	created, err := h.adminService().CreateCity(r.Context(), form)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateCity updates a city
func (h *HTTPHandler) UpdateCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}
	var form admin.CityForm
	if !h.decode(w, r, &form) {
		return
	}
	updated, err := h.adminService().UpdateCity(r.Context(), id, form)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCity deletes a city
func (h *HTTPHandler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.adminService().DeleteCity(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CityForm applies a province choice to a city form: the laboratory is
// kept only if it belongs to that province, and the laboratories of the
// province are listed.
func (h *HTTPHandler) CityForm(w http.ResponseWriter, r *http.Request) {
	provinceID, err := queryInt(r, "provinceId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	labID, err := queryInt(r, "laboratorioId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	state, err := h.adminService().PrepareCityForm(r.Context(), admin.CityForm{LaboratorioID: labID}, provinceID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// ListAdminLaboratories lists laboratories
func (h *HTTPHandler) ListAdminLaboratories(w http.ResponseWriter, r *http.Request) {
	list, err := h.adminService().Laboratories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// CreateLaboratory creates a laboratory
func (h *HTTPHandler) CreateLaboratory(w http.ResponseWriter, r *http.Request) {
	var req client.LaboratoryInput
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.adminService().CreateLaboratory(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateLaboratory updates a laboratory
func (h *HTTPHandler) UpdateLaboratory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}
	var req client.LaboratoryInput
	if !h.decode(w, r, &req) {
		return
	}
	updated, err := h.adminService().UpdateLaboratory(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteLaboratory deletes a laboratory
func (h *HTTPHandler) DeleteLaboratory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.adminService().DeleteLaboratory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
