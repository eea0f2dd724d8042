package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/httpclient"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/logger"
	"github.com/pesio-ai/be-tbc-triage/internal/repository"
	"github.com/pesio-ai/be-tbc-triage/internal/service"
	"github.com/pesio-ai/be-tbc-triage/internal/stats"
	"github.com/pesio-ai/be-tbc-triage/internal/wizard"
)

type MockStepsClient struct {
	GetStepFunc func(ctx context.Context, id int) (*client.Step, error)
}

func (m *MockStepsClient) GetStep(ctx context.Context, id int) (*client.Step, error) {
	return m.GetStepFunc(ctx, id)
}

type MockLocationsClient struct {
	GetProvincesFunc  func(ctx context.Context) ([]client.Province, error)
	GetCitiesFunc     func(ctx context.Context, provinceID int) ([]client.City, error)
	GetLaboratoryFunc func(ctx context.Context, cityID int) (*client.Laboratory, error)
}

func (m *MockLocationsClient) GetProvinces(ctx context.Context) ([]client.Province, error) {
	return m.GetProvincesFunc(ctx)
}

func (m *MockLocationsClient) GetCities(ctx context.Context, provinceID int) ([]client.City, error) {
	return m.GetCitiesFunc(ctx, provinceID)
}

func (m *MockLocationsClient) GetLaboratory(ctx context.Context, cityID int) (*client.Laboratory, error) {
	return m.GetLaboratoryFunc(ctx, cityID)
}

type MockStatsClient struct {
	LogConsultationFunc func(ctx context.Context, entry *client.ConsultationLog) error
	GetDashboardFunc    func(ctx context.Context, q client.DashboardQuery) (*client.RawDashboard, error)
}

func (m *MockStatsClient) LogConsultation(ctx context.Context, entry *client.ConsultationLog) error {
	return m.LogConsultationFunc(ctx, entry)
}

func (m *MockStatsClient) GetDashboard(ctx context.Context, q client.DashboardQuery) (*client.RawDashboard, error) {
	return m.GetDashboardFunc(ctx, q)
}

func questionnaire() map[int]*client.Step {
	return map[int]*client.Step{
		1: {ID: 1, Code: client.CodeProvince, Title: "Provincia", NextStepID: 2},
		2: {ID: 2, Code: client.CodeCity, Title: "Ciudad", NextStepID: 3},
		3: {ID: 3, Code: client.CodeQuestion, Title: "¿Grupo de riesgo?", Options: []client.Option{
			{ID: 31, Label: "SÍ, es Grupo de Riesgo", NextStepID: 9},
			{ID: 32, Label: "No", NextStepID: 9},
		}},
		9: {
			ID: 9, Code: client.CodeResult, Title: "Protocolo: PRIORIZADO", Variant: 4, IsEnd: true,
			Content: `{"medical":"Derivar a guardia.","logistics":{"5":"Enviar muestra al laboratorio provincial."}}`,
		},
	}
}

// backend fakes the REST admin and auth endpoints and records the
// Authorization header of every admin call.
type backend struct {
	mu        sync.Mutex
	nextID    int
	provinces []client.Province
	labs      []client.Laboratory
	cities    []client.City
	auth      []string
}

func newBackend() *backend {
	return &backend{
		nextID:    100,
		provinces: []client.Province{{ID: 5, Name: "Santa Fe"}, {ID: 6, Name: "Córdoba"}},
		labs: []client.Laboratory{
			{ID: 20, Name: "Lab Rosario", ProvinceID: 5},
			{ID: 30, Name: "Lab Córdoba", ProvinceID: 6},
		},
	}
}

func (b *backend) authHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.auth...)
}

func (b *backend) router() http.Handler {
	r := mux.NewRouter()
	send := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	r.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			send(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
			return
		}
		send(w, http.StatusOK, client.LoginResponse{AccessToken: "tok", User: json.RawMessage(`{"email":"` + req.Email + `"}`)})
	}).Methods(http.MethodPost)

	adm := r.PathPrefix("/admin").Subrouter()
	adm.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			b.mu.Lock()
			b.auth = append(b.auth, header)
			b.mu.Unlock()
			if header != "Bearer tok" {
				send(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	adm.HandleFunc("/provinces", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		send(w, http.StatusOK, b.provinces)
	}).Methods(http.MethodGet)
	adm.HandleFunc("/provinces", func(w http.ResponseWriter, r *http.Request) {
		var p client.Province
		json.NewDecoder(r.Body).Decode(&p)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		p.ID = b.nextID
		b.provinces = append(b.provinces, p)
		send(w, http.StatusCreated, p)
	}).Methods(http.MethodPost)
	adm.HandleFunc("/provinces/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(mux.Vars(r)["id"])
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, p := range b.provinces {
			if p.ID == id {
				b.provinces = append(b.provinces[:i], b.provinces[i+1:]...)
				b.cities = slices.DeleteFunc(b.cities, func(c client.City) bool { return c.ProvinceID == id })
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		send(w, http.StatusNotFound, map[string]string{"message": "no such province"})
	}).Methods(http.MethodDelete)
	adm.HandleFunc("/cities", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		send(w, http.StatusOK, b.cities)
	}).Methods(http.MethodGet)
	adm.HandleFunc("/cities", func(w http.ResponseWriter, r *http.Request) {
		var in client.CityInput
		json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		c := client.City{ID: b.nextID, Name: in.Name, ZipCode: in.ZipCode, ProvinceID: in.ProvinceID, LaboratorioID: in.LaboratorioID}
		b.cities = append(b.cities, c)
		send(w, http.StatusCreated, c)
	}).Methods(http.MethodPost)
	adm.HandleFunc("/laboratorios", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		send(w, http.StatusOK, b.labs)
	}).Methods(http.MethodGet)
	return r
}

type testEnv struct {
	server  *httptest.Server
	backend *backend

	mu     sync.Mutex
	logged []client.ConsultationLog
	query  client.DashboardQuery
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{backend: newBackend()}

	upstream := httptest.NewServer(env.backend.router())
	t.Cleanup(upstream.Close)
	rest := httpclient.NewClient(upstream.URL, httpclient.WithTimeout(5*time.Second))

	graph := questionnaire()
	steps := &MockStepsClient{GetStepFunc: func(ctx context.Context, id int) (*client.Step, error) {
		step, ok := graph[id]
		if !ok {
			return nil, errors.NotFound("step")
		}
		copied := *step
		return &copied, nil
	}}
	locations := &MockLocationsClient{
		GetProvincesFunc: func(ctx context.Context) ([]client.Province, error) {
			return []client.Province{{ID: 5, Name: "Santa Fe"}}, nil
		},
		GetCitiesFunc: func(ctx context.Context, provinceID int) ([]client.City, error) {
			if provinceID != 5 {
				return nil, nil
			}
			return []client.City{{ID: 12, Name: "Rosario", ProvinceID: 5}}, nil
		},
		GetLaboratoryFunc: func(ctx context.Context, cityID int) (*client.Laboratory, error) {
			if cityID != 12 {
				return nil, errors.NotFound("laboratory")
			}
			return &client.Laboratory{ID: 20, Name: "Lab Rosario", ProvinceID: 5}, nil
		},
	}
	statsClient := &MockStatsClient{
		LogConsultationFunc: func(ctx context.Context, entry *client.ConsultationLog) error {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.logged = append(env.logged, *entry)
			return nil
		},
		GetDashboardFunc: func(ctx context.Context, q client.DashboardQuery) (*client.RawDashboard, error) {
			env.mu.Lock()
			env.query = q
			env.mu.Unlock()
			return &client.RawDashboard{
				ByProvince: []client.RawNamedCount{{Name: "Santa Fe", Value: json.RawMessage(`"3"`)}},
			}, nil
		},
	}

	log := logger.Nop()
	recorder := stats.NewRecorder(locations, statsClient, log, false)
	wiz := service.NewWizardService(steps, locations, recorder,
		repository.NewMemorySessionStore(), repository.NewMemoryAuditStore(),
		service.WizardConfig{Transitions: wizard.Transitions{InitialStepID: 1}, SessionTTL: time.Hour}, log)

	h := NewHTTPHandler(
		wiz,
		service.NewLocationService(locations),
		service.NewDashboardService(statsClient),
		client.NewAdminClient(rest),
		client.NewAuthClient(rest),
		log,
	)
	env.server = httptest.NewServer(h.Router())
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) consultations() []client.ConsultationLog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]client.ConsultationLog(nil), e.logged...)
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
