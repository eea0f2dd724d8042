package client

import "context"

// StepsClientInterface fetches step definitions
type StepsClientInterface interface {
	GetStep(ctx context.Context, id int) (*Step, error)
}

// LocationsClientInterface fetches the public location reference data
type LocationsClientInterface interface {
	GetProvinces(ctx context.Context) ([]Province, error)
	GetCities(ctx context.Context, provinceID int) ([]City, error)
	GetLaboratory(ctx context.Context, cityID int) (*Laboratory, error)
}

// StatsClientInterface posts consultation outcomes and reads aggregates
type StatsClientInterface interface {
	LogConsultation(ctx context.Context, entry *ConsultationLog) error
	GetDashboard(ctx context.Context, q DashboardQuery) (*RawDashboard, error)
}

// AdminClientInterface is the reference data CRUD surface
type AdminClientInterface interface {
	ListProvinces(ctx context.Context) ([]Province, error)
	CreateProvince(ctx context.Context, p *Province) (*Province, error)
	UpdateProvince(ctx context.Context, id int, p *Province) (*Province, error)
	DeleteProvince(ctx context.Context, id int) error

	ListCities(ctx context.Context) ([]City, error)
	CreateCity(ctx context.Context, c *CityInput) (*City, error)
	UpdateCity(ctx context.Context, id int, c *CityInput) (*City, error)
	DeleteCity(ctx context.Context, id int) error

	ListLaboratories(ctx context.Context) ([]Laboratory, error)
	CreateLaboratory(ctx context.Context, l *LaboratoryInput) (*Laboratory, error)
	UpdateLaboratory(ctx context.Context, id int, l *LaboratoryInput) (*Laboratory, error)
	DeleteLaboratory(ctx context.Context, id int) error
}

// AuthClientInterface logs administrators in
type AuthClientInterface interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
}
