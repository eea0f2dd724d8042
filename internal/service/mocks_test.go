package service

import (
	"context"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
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

func boolPtr(b bool) *bool { return &b }

// questionnaire: 1 province, 2 city, 3 risk, 4 weight, 9 result
func questionnaire() map[int]*client.Step {
	return map[int]*client.Step{
		1: {ID: 1, Code: client.CodeProvince, Title: "Provincia", NextStepID: 2},
		2: {ID: 2, Code: client.CodeCity, Title: "Ciudad", NextStepID: 3},
		3: {ID: 3, Code: client.CodeQuestion, Title: "¿Grupo de riesgo?", Options: []client.Option{
			{ID: 31, Label: "SÍ, es Grupo de Riesgo", NextStepID: 4},
			{ID: 32, Label: "No", NextStepID: 4},
		}},
		4: {ID: 4, Code: client.CodeQuestion, Title: "Peso", Options: []client.Option{
			{ID: 41, Label: "30 a 34 kg", NextStepID: 9},
			{ID: 42, Label: "55 kg o más", NextStepID: 9},
		}},
		9: {
			ID: 9, Code: client.CodeResult, Title: "Protocolo: PRIORIZADO", Variant: 3, IsEnd: true,
			Content: `{"medical":"Derivar a neumonología.","logistics":{"5":"Enviar muestra al laboratorio provincial."}}`,
		},
	}
}

func stepsFrom(graph map[int]*client.Step) *MockStepsClient {
	return &MockStepsClient{GetStepFunc: func(ctx context.Context, id int) (*client.Step, error) {
		step, ok := graph[id]
		if !ok {
			return nil, errors.NotFound("step")
		}
		copied := *step
		return &copied, nil
	}}
}

func santaFeLocations() *MockLocationsClient {
	lat, lng := -32.95, -60.66
	return &MockLocationsClient{
		GetProvincesFunc: func(ctx context.Context) ([]client.Province, error) {
			return []client.Province{{ID: 1, Name: "Buenos Aires"}, {ID: 5, Name: "Santa Fe"}}, nil
		},
		GetCitiesFunc: func(ctx context.Context, provinceID int) ([]client.City, error) {
			return []client.City{{ID: 12, Name: "Rosario", ProvinceID: 5}}, nil
		},
		GetLaboratoryFunc: func(ctx context.Context, cityID int) (*client.Laboratory, error) {
			return &client.Laboratory{ID: 20, Name: "Laboratorio Central Rosario", ProvinceID: 5, Latitude: &lat, Longitude: &lng}, nil
		},
	}
}
