package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/httpclient"
)

// AllProvinces is the dashboard sentinel for "no province filter"
const AllProvinces = "TODAS"

// StatsClient is a client for the statistics endpoints
type StatsClient struct {
	client *httpclient.Client
}

// NewStatsClient creates a new stats client
func NewStatsClient(c *httpclient.Client) *StatsClient {
	return &StatsClient{client: c}
}

// LogConsultation records one finished consultation
func (c *StatsClient) LogConsultation(ctx context.Context, entry *ConsultationLog) error {
	if err := c.client.Post(ctx, "/stats/log", entry, nil); err != nil {
		return fmt.Errorf("failed to log consultation: %w", err)
	}
	return nil
}

// GetDashboard fetches the dashboard aggregates
func (c *StatsClient) GetDashboard(ctx context.Context, q DashboardQuery) (*RawDashboard, error) {
	var raw RawDashboard
	if err := c.client.Get(ctx, "/stats/dashboard", q.Values(), &raw); err != nil {
		return nil, fmt.Errorf("failed to get dashboard: %w", err)
	}
	return &raw, nil
}

// Values encodes the query, leaving out the all-provinces sentinel and
// empty dates.
func (q DashboardQuery) Values() url.Values {
	v := url.Values{}
	if q.Province != "" && q.Province != AllProvinces {
		v.Set("province", q.Province)
	}
	if q.From != "" {
		v.Set("from", q.From)
	}
	if q.To != "" {
		v.Set("to", q.To)
	}
	return v
}
