package stats

import (
	"context"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
)

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
