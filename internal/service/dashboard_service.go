package service

import (
	"context"
	"time"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/dashboard"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

const dateLayout = "2006-01-02"

// DashboardView is the dashboard payload with its chart series
type DashboardView struct {
	Filters    dashboard.Filters     `json:"filters"`
	Stats      *dashboard.Stats      `json:"stats"`
	Bars       []dashboard.Bar       `json:"bars"`
	CityGroups []dashboard.CityGroup `json:"cityGroups"`
	Total      int                   `json:"total"`
}

// DashboardService reads the aggregate statistics
type DashboardService struct {
	stats client.StatsClientInterface
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(stats client.StatsClientInterface) *DashboardService {
	return &DashboardService{stats: stats}
}

// Get validates the filters and returns the shaped aggregates
func (s *DashboardService) Get(ctx context.Context, f dashboard.Filters) (*DashboardView, error) {
	if f.Province == "" {
		f.Province = client.AllProvinces
	}
	if err := ValidateDateRange(f.From, f.To); err != nil {
		return nil, err
	}

	st, err := dashboard.Fetch(ctx, s.stats, f)
	if err != nil {
		return nil, err
	}
	return &DashboardView{
		Filters:    f,
		Stats:      st,
		Bars:       st.BarSeries(f),
		CityGroups: st.CityGroups(),
		Total:      st.Total(),
	}, nil
}

// ValidateDateRange checks optional YYYY-MM-DD bounds
func ValidateDateRange(from, to string) error {
	var fromDate, toDate time.Time
	var err error
	if from != "" {
		if fromDate, err = time.Parse(dateLayout, from); err != nil {
			return errors.InvalidInput("from", "invalid date format, expected YYYY-MM-DD")
		}
	}
	if to != "" {
		if toDate, err = time.Parse(dateLayout, to); err != nil {
			return errors.InvalidInput("to", "invalid date format, expected YYYY-MM-DD")
		}
	}
	if from != "" && to != "" && toDate.Before(fromDate) {
		return errors.InvalidInput("to", "end date cannot be before start date")
	}
	return nil
}
