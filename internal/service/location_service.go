package service

import (
	"context"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

// LocationService exposes the public location reference data
type LocationService struct {
	locations client.LocationsClientInterface
}

// NewLocationService creates a new location service
func NewLocationService(locations client.LocationsClientInterface) *LocationService {
	return &LocationService{locations: locations}
}

// Provinces lists every province
func (s *LocationService) Provinces(ctx context.Context) ([]client.Province, error) {
	return s.locations.GetProvinces(ctx)
}

// Cities lists the cities of a province
func (s *LocationService) Cities(ctx context.Context, provinceID int) ([]client.City, error) {
	if provinceID <= 0 {
		return nil, errors.InvalidInput("provinceId", "a positive province id is required")
	}
	return s.locations.GetCities(ctx, provinceID)
}

// Laboratory returns the laboratory assigned to a city
func (s *LocationService) Laboratory(ctx context.Context, cityID int) (*client.Laboratory, error) {
	if cityID <= 0 {
		return nil, errors.InvalidInput("cityId", "a positive city id is required")
	}
	lab, err := s.locations.GetLaboratory(ctx, cityID)
	if err != nil {
		return nil, err
	}
	if lab == nil {
		return nil, errors.NotFound("laboratory")
	}
	return lab, nil
}
