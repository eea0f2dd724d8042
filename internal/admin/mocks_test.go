package admin

import (
	"context"
	"slices"
	"sync"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

// fakeAdmin is an in-memory reference data backend that counts list calls
type fakeAdmin struct {
	mu        sync.Mutex
	nextID    int
	provinces []client.Province
	cities    []client.City
	labs      []client.Laboratory
	lists     map[string]int
	sent      []*client.CityInput
	listErr   error
}

func newFakeAdmin() *fakeAdmin {
	lab := 20
	return &fakeAdmin{
		nextID:    100,
		provinces: []client.Province{{ID: 5, Name: "Santa Fe"}, {ID: 6, Name: "Córdoba"}},
		cities:    []client.City{{ID: 12, Name: "Rosario", ZipCode: "2000", ProvinceID: 5, LaboratorioID: &lab}},
		labs: []client.Laboratory{
			{ID: 20, Name: "Lab Rosario", ProvinceID: 5},
			{ID: 21, Name: "Lab Santa Fe", ProvinceID: 5},
			{ID: 30, Name: "Lab Córdoba", ProvinceID: 6},
		},
		lists: map[string]int{},
	}
}

func (f *fakeAdmin) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[name]
}

func (f *fakeAdmin) list(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[name]++
	return f.listErr
}

func (f *fakeAdmin) id() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID
}

func (f *fakeAdmin) ListProvinces(ctx context.Context) ([]client.Province, error) {
	if err := f.list("provinces"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.Province(nil), f.provinces...), nil
}

func (f *fakeAdmin) CreateProvince(ctx context.Context, p *client.Province) (*client.Province, error) {
	created := client.Province{ID: f.id(), Name: p.Name}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.provinces = append(f.provinces, created)
	return &created, nil
}

func (f *fakeAdmin) UpdateProvince(ctx context.Context, id int, p *client.Province) (*client.Province, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.provinces {
		if f.provinces[i].ID == id {
			f.provinces[i].Name = p.Name
			out := f.provinces[i]
			return &out, nil
		}
	}
	return nil, errors.NotFound("province")
}

func (f *fakeAdmin) DeleteProvince(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.provinces {
		if f.provinces[i].ID == id {
			f.provinces = append(f.provinces[:i], f.provinces[i+1:]...)
			f.cities = slices.DeleteFunc(f.cities, func(c client.City) bool { return c.ProvinceID == id })
			f.labs = slices.DeleteFunc(f.labs, func(l client.Laboratory) bool { return l.ProvinceID == id })
			return nil
		}
	}
	return errors.NotFound("province")
}

func (f *fakeAdmin) ListCities(ctx context.Context) ([]client.City, error) {
	if err := f.list("cities"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.City(nil), f.cities...), nil
}

func (f *fakeAdmin) CreateCity(ctx context.Context, in *client.CityInput) (*client.City, error) {
	created := client.City{ID: f.id(), Name: in.Name, ZipCode: in.ZipCode, ProvinceID: in.ProvinceID, LaboratorioID: in.LaboratorioID}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, in)
	f.cities = append(f.cities, created)
	return &created, nil
}

func (f *fakeAdmin) UpdateCity(ctx context.Context, id int, in *client.CityInput) (*client.City, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, in)
	for i := range f.cities {
		if f.cities[i].ID == id {
			f.cities[i] = client.City{ID: id, Name: in.Name, ZipCode: in.ZipCode, ProvinceID: in.ProvinceID, LaboratorioID: in.LaboratorioID}
			out := f.cities[i]
			return &out, nil
		}
	}
	return nil, errors.NotFound("city")
}

func (f *fakeAdmin) DeleteCity(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cities {
		if f.cities[i].ID == id {
			f.cities = append(f.cities[:i], f.cities[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("city")
}

func (f *fakeAdmin) ListLaboratories(ctx context.Context) ([]client.Laboratory, error) {
	if err := f.list("labs"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.Laboratory(nil), f.labs...), nil
}

func (f *fakeAdmin) CreateLaboratory(ctx context.Context, in *client.LaboratoryInput) (*client.Laboratory, error) {
	created := client.Laboratory{ID: f.id(), Name: in.Name, Address: in.Address, Phone: in.Phone, Horario: in.Horario, ProvinceID: in.ProvinceID}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labs = append(f.labs, created)
	return &created, nil
}

func (f *fakeAdmin) UpdateLaboratory(ctx context.Context, id int, in *client.LaboratoryInput) (*client.Laboratory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.labs {
		if f.labs[i].ID == id {
			f.labs[i].Name = in.Name
			f.labs[i].ProvinceID = in.ProvinceID
			out := f.labs[i]
			return &out, nil
		}
	}
	return nil, errors.NotFound("laboratory")
}

func (f *fakeAdmin) DeleteLaboratory(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.labs {
		if f.labs[i].ID == id {
			f.labs = append(f.labs[:i], f.labs[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("laboratory")
}
