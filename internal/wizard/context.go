package wizard

import (
	"maps"
	"slices"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
)

// Answer is the option chosen on a question step
type Answer struct {
	StepID      int    `json:"stepId"`
	Label       string `json:"label"`
	Value       string `json:"value,omitempty"`
	RiskFlag    *bool  `json:"riskFlag,omitempty"`
	Category    string `json:"category,omitempty"`
	WeightRange string `json:"weightRange,omitempty"`
}

func answerFrom(stepID int, opt client.Option) Answer {
	return Answer{
		StepID:      stepID,
		Label:       opt.Label,
		Value:       opt.Value,
		RiskFlag:    opt.RiskFlag,
		Category:    opt.Category,
		WeightRange: opt.WeightRange,
	}
}

// Context is what a session collects on its way to a result.
// History holds the steps left behind by forward navigation; the step
// currently shown is never in it.
type Context struct {
	SelectedProvinceID *int           `json:"selectedProvinceId,omitempty"`
	SelectedCityID     *int           `json:"selectedCityId,omitempty"`
	History            []int          `json:"history"`
	Answers            map[int]Answer `json:"answers"`
}

// NewContext returns the empty context a session starts with
func NewContext() Context {
	return Context{History: []int{}, Answers: map[int]Answer{}}
}

// Clone returns a deep copy
func (c Context) Clone() Context {
	out := Context{
		History: slices.Clone(c.History),
		Answers: maps.Clone(c.Answers),
	}
	if out.History == nil {
		out.History = []int{}
	}
	if out.Answers == nil {
		out.Answers = map[int]Answer{}
	}
	if c.SelectedProvinceID != nil {
		id := *c.SelectedProvinceID
		out.SelectedProvinceID = &id
	}
	if c.SelectedCityID != nil {
		id := *c.SelectedCityID
		out.SelectedCityID = &id
	}
	return out
}

// OrderedAnswers returns the answers sorted by step id
func (c Context) OrderedAnswers() []Answer {
	ids := slices.Sorted(maps.Keys(c.Answers))
	out := make([]Answer, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.Answers[id])
	}
	return out
}

func (c *Context) visit(stepID int) {
	if !slices.Contains(c.History, stepID) {
		c.History = append(c.History, stepID)
	}
}
