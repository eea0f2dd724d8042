package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/service"
)

// scriptedPrompter answers prompts from queues and records the titles
// it was asked. An exhausted queue aborts like ctrl-c would.
type scriptedPrompter struct {
	choices  []int
	confirms []bool
	inputs   []string

	asked   []string
	offered [][]Choice
}

func (p *scriptedPrompter) Choose(ctx context.Context, title string, choices []Choice) (int, error) {
	p.asked = append(p.asked, title)
	p.offered = append(p.offered, choices)
	if len(p.choices) == 0 {
		return 0, huh.ErrUserAborted
	}
	v := p.choices[0]
	p.choices = p.choices[1:]
	return v, nil
}

func (p *scriptedPrompter) Confirm(ctx context.Context, title string) (bool, error) {
	p.asked = append(p.asked, title)
	if len(p.confirms) == 0 {
		return false, huh.ErrUserAborted
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

func (p *scriptedPrompter) Input(ctx context.Context, title, initial string, validate func(string) error) (string, error) {
	p.asked = append(p.asked, title)
	if len(p.inputs) == 0 {
		return "", huh.ErrUserAborted
	}
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	if validate != nil {
		if err := validate(v); err != nil {
			return "", err
		}
	}
	return v, nil
}

// fakeSessions walks a fixed province, city, question, result path and
// records the calls made.
type fakeSessions struct {
	calls     []string
	failNext  int
	deleted   bool
	onRetry   *service.StepView
	nextViews map[int]*service.StepView
}

func (f *fakeSessions) Start(ctx context.Context) (*service.StepView, error) {
	f.calls = append(f.calls, "start")
	return provinceView(), nil
}

func (f *fakeSessions) View(ctx context.Context, id string) (*service.StepView, error) {
	f.calls = append(f.calls, "view")
	return provinceView(), nil
}

func (f *fakeSessions) Next(ctx context.Context, id string, payload int) (*service.StepView, error) {
	f.calls = append(f.calls, fmt.Sprintf("next:%d", payload))
	if f.failNext > 0 {
		f.failNext--
		return nil, fmt.Errorf("backend unreachable")
	}
	if v, ok := f.nextViews[payload]; ok {
		return v, nil
	}
	return provinceView(), nil
}

func (f *fakeSessions) Back(ctx context.Context, id string) (*service.StepView, error) {
	f.calls = append(f.calls, "back")
	return provinceView(), nil
}

func (f *fakeSessions) Retry(ctx context.Context, id string) (*service.StepView, error) {
	f.calls = append(f.calls, "retry")
	return f.onRetry, nil
}

func (f *fakeSessions) Delete(ctx context.Context, id string) error {
	f.deleted = true
	return nil
}

func provinceView() *service.StepView {
	return &service.StepView{
		SessionID: "s1", Status: "ready", Kind: "province",
		Step:      &client.Step{ID: 1, Code: client.CodeProvince, Title: "Provincia"},
		Provinces: []client.Province{{ID: 5, Name: "Santa Fe"}},
	}
}
