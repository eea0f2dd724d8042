package tui

import (
	"context"

	"github.com/charmbracelet/huh"
)

// Choice is one entry of a selection prompt
type Choice struct {
	Label string
	Value int
}

// Prompter asks the user for input. HuhPrompter is the terminal
// implementation.
type Prompter interface {
	Choose(ctx context.Context, title string, choices []Choice) (int, error)
	Confirm(ctx context.Context, title string) (bool, error)
	Input(ctx context.Context, title, initial string, validate func(string) error) (string, error)
}

// HuhPrompter prompts with huh forms
type HuhPrompter struct {
	Accessible bool
}

// Choose shows a single-choice list and returns the chosen value
func (p HuhPrompter) Choose(ctx context.Context, title string, choices []Choice) (int, error) {
	opts := make([]huh.Option[int], 0, len(choices))
	for _, c := range choices {
		opts = append(opts, huh.NewOption(c.Label, c.Value))
	}
	var value int
	sel := huh.NewSelect[int]().
		Title(title).
		Options(opts...).
		Value(&value)
	if err := p.run(ctx, sel); err != nil {
		return 0, err
	}
	return value, nil
}

// Confirm asks a yes/no question
func (p HuhPrompter) Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Sí").
		Negative("No").
		Value(&ok)
	if err := p.run(ctx, field); err != nil {
		return false, err
	}
	return ok, nil
}

// Input reads a line of text
func (p HuhPrompter) Input(ctx context.Context, title, initial string, validate func(string) error) (string, error) {
	value := initial
	field := huh.NewInput().
		Title(title).
		Value(&value)
	if validate != nil {
		field = field.Validate(validate)
	}
	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}

func (p HuhPrompter) run(ctx context.Context, field huh.Field) error {
	return huh.NewForm(huh.NewGroup(field)).
		WithAccessible(p.Accessible).
		RunWithContext(ctx)
}
