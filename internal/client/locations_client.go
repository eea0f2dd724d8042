package client

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/httpclient"
)

// LocationsClient reads provinces, cities and assigned laboratories
type LocationsClient struct {
	client *httpclient.Client
	prefix string
}

// NewLocationsClient creates a new locations client. prefix is the route
// group the backend exposes them under ("/steps" or "/locations").
func NewLocationsClient(c *httpclient.Client, prefix string) *LocationsClient {
	if prefix == "" {
		prefix = "/steps"
	}
	return &LocationsClient{client: c, prefix: prefix}
}

// GetProvinces lists every province
func (c *LocationsClient) GetProvinces(ctx context.Context) ([]Province, error) {
	var provinces []Province
	if err := c.client.Get(ctx, c.prefix+"/provinces", nil, &provinces); err != nil {
		return nil, fmt.Errorf("failed to list provinces: %w", err)
	}
	return provinces, nil
}

// GetCities lists the cities of a province
func (c *LocationsClient) GetCities(ctx context.Context, provinceID int) ([]City, error) {
	var cities []City
	path := fmt.Sprintf("%s/provinces/%d/cities", c.prefix, provinceID)
	if err := c.client.Get(ctx, path, nil, &cities); err != nil {
		return nil, fmt.Errorf("failed to list cities of province %d: %w", provinceID, err)
	}
	return cities, nil
}

// GetLaboratory returns the laboratory assigned to a city
func (c *LocationsClient) GetLaboratory(ctx context.Context, cityID int) (*Laboratory, error) {
	var lab Laboratory
	path := fmt.Sprintf("%s/laboratorios/%d", c.prefix, cityID)
	if err := c.client.Get(ctx, path, nil, &lab); err != nil {
		return nil, fmt.Errorf("failed to get laboratory of city %d: %w", cityID, err)
	}
	if lab.ID == 0 {
		return nil, nil
	}
	return &lab, nil
}
