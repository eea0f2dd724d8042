package client

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/httpclient"
)

// CityInput is the create/update payload for a city. LaboratorioID is
// sent as null when unset.
type CityInput struct {
	Name          string `json:"name"`
	ZipCode       string `json:"zipCode"`
	ProvinceID    int    `json:"provinceId"`
	LaboratorioID *int   `json:"laboratorioId"`
}

// LaboratoryInput is the create/update payload for a laboratory
type LaboratoryInput struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	Horario    string   `json:"horario"`
	ProvinceID int      `json:"provinceId"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// AdminClient is a client for the /admin reference data endpoints.
// Calls need a bearer token, either on the context or from the
// client's token source.
type AdminClient struct {
	client *httpclient.Client
}

// NewAdminClient creates a new admin client
func NewAdminClient(c *httpclient.Client) *AdminClient {
	return &AdminClient{client: c}
}

// ListProvinces lists provinces
func (c *AdminClient) ListProvinces(ctx context.Context) ([]Province, error) {
	var out []Province
	if err := c.client.Get(ctx, "/admin/provinces", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list provinces: %w", err)
	}
	return out, nil
}

// CreateProvince creates a province
func (c *AdminClient) CreateProvince(ctx context.Context, p *Province) (*Province, error) {
	var out Province
	if err := c.client.Post(ctx, "/admin/provinces", p, &out); err != nil {
		return nil, fmt.Errorf("failed to create province: %w", err)
	}
	return &out, nil
}

// UpdateProvince updates a province
func (c *AdminClient) UpdateProvince(ctx context.Context, id int, p *Province) (*Province, error) {
	var out Province
	if err := c.client.Put(ctx, fmt.Sprintf("/admin/provinces/%d", id), p, &out); err != nil {
		return nil, fmt.Errorf("failed to update province %d: %w", id, err)
	}
	return &out, nil
}

// DeleteProvince deletes a province
func (c *AdminClient) DeleteProvince(ctx context.Context, id int) error {
	if err := c.client.Delete(ctx, fmt.Sprintf("/admin/provinces/%d", id)); err != nil {
		return fmt.Errorf("failed to delete province %d: %w", id, err)
	}
	return nil
}

// ListCities lists cities
func (c *AdminClient) ListCities(ctx context.Context) ([]City, error) {
	var out []City
	if err := c.client.Get(ctx, "/admin/cities", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return out, nil
}

// CreateCity creates a city
func (c *AdminClient) CreateCity(ctx context.Context, in *CityInput) (*City, error) {
	var out City
	if err := c.client.Post(ctx, "/admin/cities", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create city: %w", err)
	}
	return &out, nil
}

// UpdateCity updates a city
func (c *AdminClient) UpdateCity(ctx context.Context, id int, in *CityInput) (*City, error) {
	var out City
	if err := c.client.Put(ctx, fmt.Sprintf("/admin/cities/%d", id), in, &out); err != nil {
		return nil, fmt.Errorf("failed to update city %d: %w", id, err)
	}
	return &out, nil
}

// DeleteCity deletes a city
func (c *AdminClient) DeleteCity(ctx context.Context, id int) error {
	if err := c.client.Delete(ctx, fmt.Sprintf("/admin/cities/%d", id)); err != nil {
		return fmt.Errorf("failed to delete city %d: %w", id, err)
	}
	return nil
}

// ListLaboratories lists laboratories
func (c *AdminClient) ListLaboratories(ctx context.Context) ([]Laboratory, error) {
	var out []Laboratory
	if err := c.client.Get(ctx, "/admin/laboratorios", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list laboratories: %w", err)
	}
	return out, nil
}

// CreateLaboratory creates a laboratory
func (c *AdminClient) CreateLaboratory(ctx context.Context, in *LaboratoryInput) (*Laboratory, error) {
	var out Laboratory
	if err := c.client.Post(ctx, "/admin/laboratorios", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create laboratory: %w", err)
	}
	return &out, nil
}

// UpdateLaboratory updates a laboratory
func (c *AdminClient) UpdateLaboratory(ctx context.Context, id int, in *LaboratoryInput) (*Laboratory, error) {
	var out Laboratory
	if err := c.client.Put(ctx, fmt.Sprintf("/admin/laboratorios/%d", id), in, &out); err != nil {
		return nil, fmt.Errorf("failed to update laboratory %d: %w", id, err)
	}
	return &out, nil
}

// DeleteLaboratory deletes a laboratory
func (c *AdminClient) DeleteLaboratory(ctx context.Context, id int) error {
	if err := c.client.Delete(ctx, fmt.Sprintf("/admin/laboratorios/%d", id)); err != nil {
		return fmt.Errorf("failed to delete laboratory %d: %w", id, err)
	}
	return nil
}
