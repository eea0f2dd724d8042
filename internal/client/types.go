package client

import "encoding/json"

// Step codes understood by the wizard
const (
	CodeProvince = "STEP_PROVINCE"
	CodeCity     = "STEP_CITY"
	CodeQuestion = "STEP_QUESTION"
	CodeResult   = "STEP_RESULT"
)

// Step is a server-owned wizard step definition
type Step struct {
	ID      int      `json:"id"`
	Code    string   `json:"code"`
	Title   string   `json:"title"`
	Content string   `json:"content,omitempty"`
	Variant int      `json:"variant"`
	IsEnd   bool     `json:"is_end"`
	Options []Option `json:"options,omitempty"`
	// NextStepID is the explicit target for location steps
	NextStepID int `json:"nextStepId,omitempty"`
}

// Option is one answer of a branching question
type Option struct {
	ID         int    `json:"id"`
	Label      string `json:"label"`
	NextStepID int    `json:"nextStepId"`
	Value      string `json:"value,omitempty"`

	// Structured metadata; when present it replaces text inference.
	RiskFlag    *bool  `json:"riskFlag,omitempty"`
	Category    string `json:"category,omitempty"`
	WeightRange string `json:"weightRange,omitempty"`
}

// Province is a reference province
type Province struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// City is a reference city. LaboratorioID is nil when no lab is assigned.
type City struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	ZipCode       string      `json:"zipCode"`
	ProvinceID    int         `json:"provinceId"`
	LaboratorioID *int        `json:"laboratorioId"`
	Province      *Province   `json:"province,omitempty"`
	Laboratorio   *Laboratory `json:"laboratorio,omitempty"`
}

// Laboratory is a sample reception centre
type Laboratory struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone"`
	Horario    string    `json:"horario"`
	ProvinceID int       `json:"provinceId"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	Province   *Province `json:"province,omitempty"`
}

// HasLocation reports whether the lab can be shown on a map
func (l *Laboratory) HasLocation() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// ConsultationLog is the anonymized outcome posted at the end of a session
type ConsultationLog struct {
	ProvinceName       string `json:"provinceName"`
	CityName           string `json:"cityName"`
	ResultVariant      int    `json:"resultVariant"`
	DiagnosisType      string `json:"diagnosisType"`
	IsRiskGroup        bool   `json:"isRiskGroup"`
	PatientWeightRange string `json:"patientWeightRange"`
}

// DashboardQuery filters the dashboard aggregates. Empty fields are omitted.
type DashboardQuery struct {
	Province string
	From     string
	To       string
}

// RawDashboard is the dashboard payload as the backend sends it. Counts
// may arrive as numbers or numeric strings, so they stay raw here.
type RawDashboard struct {
	ByProvince  []RawNamedCount `json:"byProvince"`
	ByCity      []RawCityCount  `json:"byCity"`
	BySeverity  []RawNamedCount `json:"bySeverity"`
	ByTrend     []RawTrendPoint `json:"byTrend"`
	ByDiagnosis []RawNamedCount `json:"byDiagnosis"`
	ByWeight    []RawNamedCount `json:"byWeight"`
	ByRisk      []RawNamedCount `json:"byRisk"`
}

// RawNamedCount is a {name, value} row
type RawNamedCount struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// RawCityCount is a {province, city, value} row
type RawCityCount struct {
	Province string          `json:"province"`
	City     string          `json:"city"`
	Value    json.RawMessage `json:"value"`
}

// RawTrendPoint is a {date, value} row; date is YYYY-MM-DD
type RawTrendPoint struct {
	Date  string          `json:"date"`
	Value json.RawMessage `json:"value"`
}

// LoginResponse is returned by the backend auth endpoint
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
}
