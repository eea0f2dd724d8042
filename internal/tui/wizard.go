package tui

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/pesio-ai/be-tbc-triage/internal/service"
	"github.com/pesio-ai/be-tbc-triage/internal/wizard"
)

// backChoice is the value of the "go back" entry. Real choices are
// positive ids.
const backChoice = -1

var errUnrenderable = stderrors.New("step cannot be shown in the terminal")

// Sessions is the part of the wizard service the terminal runner drives
type Sessions interface {
	Start(ctx context.Context) (*service.StepView, error)
	View(ctx context.Context, id string) (*service.StepView, error)
	Next(ctx context.Context, id string, payload int) (*service.StepView, error)
	Back(ctx context.Context, id string) (*service.StepView, error)
	Retry(ctx context.Context, id string) (*service.StepView, error)
	Delete(ctx context.Context, id string) error
}

// WizardRunner runs one triage session interactively until the user
// quits.
type WizardRunner struct {
	sessions Sessions
	prompt   Prompter
	out      io.Writer
}

// NewWizardRunner creates a runner writing to out
func NewWizardRunner(sessions Sessions, prompt Prompter, out io.Writer) *WizardRunner {
	return &WizardRunner{sessions: sessions, prompt: prompt, out: out}
}

// Run starts a session and loops over its steps. Aborting a prompt
// ends the run without error.
func (r *WizardRunner) Run(ctx context.Context) error {
	view, err := r.sessions.Start(ctx)
	if err != nil {
		return err
	}
	defer r.sessions.Delete(context.WithoutCancel(ctx), view.SessionID)

	for {
		next, err := r.step(ctx, view)
		if stderrors.Is(err, huh.ErrUserAborted) || (err == nil && next == nil) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, errUnrenderable) {
				return err
			}
			fmt.Fprintln(r.out, ErrorStyle.Render(err.Error()))
			continue
		}
		view = next
	}
}

// step renders view and performs the navigation the user picks. A nil
// view with a nil error means the user is done.
func (r *WizardRunner) step(ctx context.Context, v *service.StepView) (*service.StepView, error) {
	if v.Status == wizard.StatusError {
		fmt.Fprintln(r.out, ErrorStyle.Render("No se pudo cargar el paso: "+v.Error))
		retry, err := r.prompt.Confirm(ctx, "¿Reintentar?")
		if err != nil || !retry {
			return nil, err
		}
		return r.sessions.Retry(ctx, v.SessionID)
	}
	if v.DataError != "" {
		fmt.Fprintln(r.out, ErrorStyle.Render(v.DataError))
	}

	switch v.Kind {
	case wizard.KindResult:
		fmt.Fprintln(r.out, RenderResult(v))
		again, err := r.prompt.Confirm(ctx, "¿Nueva consulta?")
		if err != nil || !again {
			return nil, err
		}
		return r.sessions.Next(ctx, v.SessionID, 0)

	case wizard.KindProvince, wizard.KindCity, wizard.KindQuestion:
		choices := choicesFor(v)
		if len(choices) == 0 {
			reload, err := r.prompt.Confirm(ctx, "No hay opciones disponibles. ¿Reintentar?")
			if err != nil || !reload {
				return nil, err
			}
			return r.sessions.View(ctx, v.SessionID)
		}
		value, err := r.prompt.Choose(ctx, v.Step.Title, choices)
		if err != nil {
			return nil, err
		}
		if value == backChoice {
			return r.sessions.Back(ctx, v.SessionID)
		}
		return r.sessions.Next(ctx, v.SessionID, value)
	}

	code := ""
	if v.Step != nil {
		code = v.Step.Code
	}
	return nil, fmt.Errorf("%w: %q", errUnrenderable, code)
}

func choicesFor(v *service.StepView) []Choice {
	var choices []Choice
	switch v.Kind {
	case wizard.KindProvince:
		for _, p := range v.Provinces {
			choices = append(choices, Choice{Label: p.Name, Value: p.ID})
		}
	case wizard.KindCity:
		for _, c := range v.Cities {
			choices = append(choices, Choice{Label: c.Name, Value: c.ID})
		}
	case wizard.KindQuestion:
		for _, o := range v.Options {
			choices = append(choices, Choice{Label: o.Label, Value: o.NextStepID})
		}
	}
	if v.CanGoBack {
		choices = append(choices, Choice{Label: "← Volver", Value: backChoice})
	}
	return choices
}
