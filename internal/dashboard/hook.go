package dashboard

import (
	"context"
	"sync"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

// Filter keys accepted by SetFilter
const (
	FilterProvince = "province"
	FilterFrom     = "from"
	FilterTo       = "to"
)

// Filters narrow the dashboard. Province is a province name or
// client.AllProvinces; dates are YYYY-MM-DD or empty.
type Filters struct {
	Province string `json:"province"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// DefaultFilters is the national view over all dates
func DefaultFilters() Filters {
	return Filters{Province: client.AllProvinces}
}

// National reports whether no province is selected
func (f Filters) National() bool {
	return f.Province == "" || f.Province == client.AllProvinces
}

// Query is the backend query for f
func (f Filters) Query() client.DashboardQuery {
	return client.DashboardQuery{Province: f.Province, From: f.From, To: f.To}
}

// ProvinceLister lists the provinces offered by the province filter
type ProvinceLister interface {
	ListProvinces(ctx context.Context) ([]client.Province, error)
}

// Hook is the state behind one dashboard view. Stats only goes to the
// backend when the filters differ from those of the last successful
// fetch.
type Hook struct {
	stats     client.StatsClientInterface
	provinces ProvinceLister

	mu        sync.Mutex
	filters   Filters
	fetched   *Filters
	data      *Stats
	provList  []client.Province
	provReady bool
}

// NewHook creates a hook with the default filters
func NewHook(stats client.StatsClientInterface, provinces ProvinceLister) *Hook {
	return &Hook{stats: stats, provinces: provinces, filters: DefaultFilters()}
}

// Filters returns the current filters
func (h *Hook) Filters() Filters {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.filters
}

// SetFilter changes one filter. An empty province means all provinces.
func (h *Hook) SetFilter(key, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch key {
	case FilterProvince:
		if value == "" {
			value = client.AllProvinces
		}
		h.filters.Province = value
	case FilterFrom:
		h.filters.From = value
	case FilterTo:
		h.filters.To = value
	default:
		return errors.InvalidInput("filter", "unknown filter "+key)
	}
	return nil
}

// Clear restores the default filters
func (h *Hook) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.filters = DefaultFilters()
}

// Stats returns the aggregates for the current filters
func (h *Hook) Stats(ctx context.Context) (*Stats, error) {
	h.mu.Lock()
	f := h.filters
	if h.fetched != nil && *h.fetched == f {
		data := h.data
		h.mu.Unlock()
		return data, nil
	}
	h.mu.Unlock()

	data, err := Fetch(ctx, h.stats, f)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.fetched = &f
	h.data = data
	return data, nil
}

// Provinces returns the province filter choices, loaded on first use
func (h *Hook) Provinces(ctx context.Context) ([]client.Province, error) {
	h.mu.Lock()
	if h.provReady {
		defer h.mu.Unlock()
		return h.provList, nil
	}
	h.mu.Unlock()

	list, err := h.provinces.ListProvinces(ctx)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.provList = list
	h.provReady = true
	return list, nil
}
