package tui

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/pesio-ai/be-tbc-triage/internal/dashboard"
)

const (
	menuProvince = iota + 1
	menuFrom
	menuTo
	menuClear
	menuQuit
)

// DashboardRunner shows the statistics and lets the user change the
// filters until they quit.
type DashboardRunner struct {
	hook   *dashboard.Hook
	prompt Prompter
	out    io.Writer
}

// NewDashboardRunner creates a runner over hook
func NewDashboardRunner(hook *dashboard.Hook, prompt Prompter, out io.Writer) *DashboardRunner {
	return &DashboardRunner{hook: hook, prompt: prompt, out: out}
}

// Run loops: render, ask for a filter change, apply it
func (r *DashboardRunner) Run(ctx context.Context) error {
	for {
		f := r.hook.Filters()
		st, err := r.hook.Stats(ctx)
		if err != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render("No se pudieron cargar las estadísticas: "+err.Error()))
		} else {
			fmt.Fprintln(r.out, RenderDashboard(f, st))
		}

		choice, err := r.prompt.Choose(ctx, "Filtros", []Choice{
			{Label: "Provincia", Value: menuProvince},
			{Label: "Desde", Value: menuFrom},
			{Label: "Hasta", Value: menuTo},
			{Label: "Limpiar filtros", Value: menuClear},
			{Label: "Salir", Value: menuQuit},
		})
		if stderrors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case menuQuit:
			return nil
		case menuClear:
			r.hook.Clear()
		case menuProvince:
			err = r.pickProvince(ctx)
		case menuFrom:
			err = r.pickDate(ctx, dashboard.FilterFrom, "Desde (AAAA-MM-DD)", f.From)
		case menuTo:
			err = r.pickDate(ctx, dashboard.FilterTo, "Hasta (AAAA-MM-DD)", f.To)
		}
		if stderrors.Is(err, huh.ErrUserAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render(err.Error()))
		}
	}
}

func (r *DashboardRunner) pickProvince(ctx context.Context) error {
	provinces, err := r.hook.Provinces(ctx)
	if err != nil {
		return err
	}
	choices := []Choice{{Label: "Todas", Value: 0}}
	for _, p := range provinces {
		choices = append(choices, Choice{Label: p.Name, Value: p.ID})
	}
	id, err := r.prompt.Choose(ctx, "Provincia", choices)
	if err != nil {
		return err
	}
	name := ""
	for _, p := range provinces {
		if p.ID == id {
			name = p.Name
		}
	}
	return r.hook.SetFilter(dashboard.FilterProvince, name)
}

func (r *DashboardRunner) pickDate(ctx context.Context, key, title, current string) error {
	value, err := r.prompt.Input(ctx, title, current, validDate)
	if err != nil {
		return err
	}
	return r.hook.SetFilter(key, value)
}

// validDate accepts an empty value, which removes the bound
func validDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return stderrors.New("fecha inválida, use AAAA-MM-DD")
	}
	return nil
}
