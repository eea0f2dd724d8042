// Package dashboard fetches the aggregate consultation statistics and
// shapes them for charts.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
)

// NamedCount is one slice of a breakdown
type NamedCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// CityCount is the number of consultations of one city
type CityCount struct {
	Province string `json:"province"`
	City     string `json:"city"`
	Value    int    `json:"value"`
}

// TrendPoint is the number of consultations on one day
type TrendPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// Stats is the normalized dashboard payload. Every breakdown is non-nil.
type Stats struct {
	ByProvince  []NamedCount `json:"byProvince"`
	ByCity      []CityCount  `json:"byCity"`
	BySeverity  []NamedCount `json:"bySeverity"`
	ByTrend     []TrendPoint `json:"byTrend"`
	ByDiagnosis []NamedCount `json:"byDiagnosis"`
	ByWeight    []NamedCount `json:"byWeight"`
	ByRisk      []NamedCount `json:"byRisk"`
}

// Bar is one bar of the location chart
type Bar struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// CityGroup is the cities of one province with their total
type CityGroup struct {
	Province string      `json:"province"`
	Total    int         `json:"total"`
	Cities   []CityCount `json:"cities"`
}

// Fetch loads the aggregates for f and coerces every count to an int
func Fetch(ctx context.Context, stats client.StatsClientInterface, f Filters) (*Stats, error) {
	raw, err := stats.GetDashboard(ctx, f.Query())
	if err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

// Normalize converts the raw payload. Counts may be numbers or numeric
// strings; anything else counts as zero. Missing breakdowns become empty.
func Normalize(raw *client.RawDashboard) *Stats {
	if raw == nil {
		raw = &client.RawDashboard{}
	}
	s := &Stats{
		ByProvince:  named(raw.ByProvince),
		BySeverity:  named(raw.BySeverity),
		ByDiagnosis: named(raw.ByDiagnosis),
		ByWeight:    named(raw.ByWeight),
		ByRisk:      named(raw.ByRisk),
		ByCity:      make([]CityCount, 0, len(raw.ByCity)),
		ByTrend:     make([]TrendPoint, 0, len(raw.ByTrend)),
	}
	for _, c := range raw.ByCity {
		s.ByCity = append(s.ByCity, CityCount{Province: c.Province, City: c.City, Value: Count(c.Value)})
	}
	for _, p := range raw.ByTrend {
		s.ByTrend = append(s.ByTrend, TrendPoint{Date: p.Date, Value: Count(p.Value)})
	}
	return s
}

func named(rows []client.RawNamedCount) []NamedCount {
	out := make([]NamedCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, NamedCount{Name: r.Name, Value: Count(r.Value)})
	}
	return out
}

// Count reads a JSON number or numeric string as an int
func Count(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return round(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return round(f)
}

func round(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

// BarSeries is the location chart: provinces at national level, or the
// cities of the selected province.
func (s *Stats) BarSeries(f Filters) []Bar {
	if f.National() {
		bars := make([]Bar, 0, len(s.ByProvince))
		for _, p := range s.ByProvince {
			bars = append(bars, Bar{Label: p.Name, Value: p.Value})
		}
		return bars
	}
	bars := []Bar{}
	for _, c := range s.ByCity {
		if c.Province == f.Province {
			bars = append(bars, Bar{Label: c.City, Value: c.Value})
		}
	}
	return bars
}

// CityGroups groups the city rows by province, ordered by province name
func (s *Stats) CityGroups() []CityGroup {
	idx := map[string]int{}
	groups := []CityGroup{}
	for _, c := range s.ByCity {
		i, ok := idx[c.Province]
		if !ok {
			i = len(groups)
			idx[c.Province] = i
			groups = append(groups, CityGroup{Province: c.Province})
		}
		groups[i].Cities = append(groups[i].Cities, c)
		groups[i].Total += c.Value
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Province < groups[b].Province })
	return groups
}

// Total is the number of consultations in the trend
func (s *Stats) Total() int {
	total := 0
	for _, p := range s.ByTrend {
		total += p.Value
	}
	return total
}
