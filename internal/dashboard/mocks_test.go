package dashboard

import (
	"context"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
)

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

type MockProvinceLister struct {
	ListProvincesFunc func(ctx context.Context) ([]client.Province, error)
}

func (m *MockProvinceLister) ListProvinces(ctx context.Context) ([]client.Province, error) {
	return m.ListProvincesFunc(ctx)
}
