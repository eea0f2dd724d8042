// Package admin manages the reference data (provinces, cities and
// laboratories) behind the administration screens.
package admin

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/logger"
)

// list is one cached reference list. It is fetched on first use and
// replaced by every reload.
type list[T any] struct {
	fetch func(context.Context) ([]T, error)

	mu     sync.RWMutex
	loaded bool
	items  []T
}

func newList[T any](fetch func(context.Context) ([]T, error)) *list[T] {
	return &list[T]{fetch: fetch}
}

func (l *list[T]) get(ctx context.Context) ([]T, error) {
	l.mu.RLock()
	if l.loaded {
		defer l.mu.RUnlock()
		return slices.Clone(l.items), nil
	}
	l.mu.RUnlock()

	if err := l.reload(ctx); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items), nil
}

// a failed reload keeps the previous items
func (l *list[T]) reload(ctx context.Context) error {
	items, err := l.fetch(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items, l.loaded = items, true
	return nil
}

// Service keeps local copies of the reference lists for one admin
// screen and refreshes the affected lists after every change. It is not
// shared between users: backend calls carry the caller's token.
type Service struct {
	admin client.AdminClientInterface
	log   *logger.Logger

	provinces *list[client.Province]
	cities    *list[client.City]
	labs      *list[client.Laboratory]
}

// NewService creates a new admin service
func NewService(admin client.AdminClientInterface, log *logger.Logger) *Service {
	return &Service{
		admin:     admin,
		log:       log.Component("admin"),
		provinces: newList(admin.ListProvinces),
		cities:    newList(admin.ListCities),
		labs:      newList(admin.ListLaboratories),
	}
}

// Load fetches the three lists concurrently, replacing whatever was
// cached
func (s *Service) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.provinces.reload(gctx) })
	g.Go(func() error { return s.cities.reload(gctx) })
	g.Go(func() error { return s.labs.reload(gctx) })
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("failed to load reference data")
		return err
	}
	return nil
}

// Provinces returns the cached provinces, loading them on first use
func (s *Service) Provinces(ctx context.Context) ([]client.Province, error) {
	return s.provinces.get(ctx)
}

// Cities returns the cached cities, loading them on first use
func (s *Service) Cities(ctx context.Context) ([]client.City, error) {
	return s.cities.get(ctx)
}

// Laboratories returns the cached laboratories, loading them on first use
func (s *Service) Laboratories(ctx context.Context) ([]client.Laboratory, error) {
	return s.labs.get(ctx)
}

// CreateProvince validates and creates a province
func (s *Service) CreateProvince(ctx context.Context, p *client.Province) (*client.Province, error) {
	if err := ValidateProvince(p); err != nil {
		return nil, err
	}
	created, err := s.admin.CreateProvince(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("province_id", created.ID).Str("name", created.Name).Msg("province created")
	s.reloadProvinces(ctx)
	return created, nil
}

// UpdateProvince validates and updates a province
func (s *Service) UpdateProvince(ctx context.Context, id int, p *client.Province) (*client.Province, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := ValidateProvince(p); err != nil {
		return nil, err
	}
	updated, err := s.admin.UpdateProvince(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("province_id", id).Msg("province updated")
	s.reloadProvinces(ctx)
	return updated, nil
}

// DeleteProvince deletes a province
func (s *Service) DeleteProvince(ctx context.Context, id int) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.admin.DeleteProvince(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("province_id", id).Msg("province deleted")
	// the backend drops the province's cities and laboratories with it
	s.reloadProvinces(ctx)
	s.reloadCities(ctx)
	s.reloadLabs(ctx)
	return nil
}

// CreateCity validates and creates a city
func (s *Service) CreateCity(ctx context.Context, f CityForm) (*client.City, error) {
	if err := s.validateCity(ctx, f); err != nil {
		return nil, err
	}
	created, err := s.admin.CreateCity(ctx, f.Payload())
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("city_id", created.ID).Str("name", created.Name).Msg("city created")
	s.reloadCities(ctx)
	return created, nil
}

// UpdateCity validates and updates a city
func (s *Service) UpdateCity(ctx context.Context, id int, f CityForm) (*client.City, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := s.validateCity(ctx, f); err != nil {
		return nil, err
	}
	updated, err := s.admin.UpdateCity(ctx, id, f.Payload())
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("city_id", id).Msg("city updated")
	s.reloadCities(ctx)
	return updated, nil
}

// DeleteCity deletes a city
func (s *Service) DeleteCity(ctx context.Context, id int) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.admin.DeleteCity(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("city_id", id).Msg("city deleted")
	s.reloadCities(ctx)
	return nil
}

// CreateLaboratory validates and creates a laboratory
func (s *Service) CreateLaboratory(ctx context.Context, l *client.LaboratoryInput) (*client.Laboratory, error) {
	if err := ValidateLaboratory(l); err != nil {
		return nil, err
	}
	created, err := s.admin.CreateLaboratory(ctx, l)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("laboratory_id", created.ID).Str("name", created.Name).Msg("laboratory created")
	s.reloadLabs(ctx)
	return created, nil
}

// UpdateLaboratory validates and updates a laboratory
func (s *Service) UpdateLaboratory(ctx context.Context, id int, l *client.LaboratoryInput) (*client.Laboratory, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := ValidateLaboratory(l); err != nil {
		return nil, err
	}
	updated, err := s.admin.UpdateLaboratory(ctx, id, l)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("laboratory_id", id).Msg("laboratory updated")
	s.reloadLabs(ctx)
	return updated, nil
}

// DeleteLaboratory deletes a laboratory
func (s *Service) DeleteLaboratory(ctx context.Context, id int) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.admin.DeleteLaboratory(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("laboratory_id", id).Msg("laboratory deleted")
	s.reloadLabs(ctx)
	return nil
}

// CityFormState is a city form together with the laboratories it can
// choose from
type CityFormState struct {
	Form       CityForm            `json:"form"`
	LabChoices []client.Laboratory `json:"labChoices"`
}

// PrepareCityForm applies a province change to f and lists the
// laboratories of the resulting province.
func (s *Service) PrepareCityForm(ctx context.Context, f CityForm, provinceID int) (*CityFormState, error) {
	labs, err := s.Laboratories(ctx)
	if err != nil {
		return nil, err
	}
	if provinceID != f.ProvinceID {
		f.SetProvince(provinceID, labs)
	}
	return &CityFormState{Form: f, LabChoices: LabChoices(labs, f.ProvinceID)}, nil
}

// validateCity checks f, fetching the laboratories only when a
// laboratory was chosen
func (s *Service) validateCity(ctx context.Context, f CityForm) error {
	if err := f.Validate(nil); err != nil || f.LaboratorioID <= 0 {
		return err
	}
	labs, err := s.Laboratories(ctx)
	if err != nil {
		return err
	}
	return f.Validate(labs)
}

func (s *Service) reloadProvinces(ctx context.Context) {
	if err := s.provinces.reload(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to reload provinces")
	}
}

func (s *Service) reloadCities(ctx context.Context) {
	if err := s.cities.reload(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to reload cities")
	}
}

func (s *Service) reloadLabs(ctx context.Context) {
	if err := s.labs.reload(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to reload laboratories")
	}
}

func requireID(id int) error {
	if id <= 0 {
		return errors.InvalidInput("id", "a positive id is required")
	}
	return nil
}
