// Package wizard drives one triage session through the server-owned
// step graph: location pickers, branching questions and a result.
package wizard

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

// Status is the loading state of a navigator, orthogonal to the step
// it shows.
type Status string

const (
	StatusLoading       Status = "loading"
	StatusReady         Status = "ready"
	StatusError         Status = "error"
	StatusTransitioning Status = "transitioning"
)

var (
	// ErrBusy is returned while another navigation is in flight. The call
	// had no effect.
	ErrBusy = errors.New(errors.ErrCodeConflict, "a navigation is already in progress")
	// ErrSuperseded is returned by a navigation cancelled while loading;
	// its response was dropped
	ErrSuperseded = errors.New(errors.ErrCodeConflict, "navigation superseded")
	// ErrNoStep is returned when navigating before any step has loaded
	ErrNoStep = errors.New(errors.ErrCodeConflict, "no step loaded")
	// ErrUnknownOption is returned for a question payload that matches
	// none of the step's options
	ErrUnknownOption = errors.InvalidInput("payload", "option not offered by the current step")
	// ErrInvalidPayload is returned for a non-positive location id
	ErrInvalidPayload = errors.InvalidInput("payload", "a positive id is required")
	// ErrUnknownCode is returned for a step code the navigator cannot drive
	ErrUnknownCode = errors.New(errors.ErrCodeInternal, "unknown step code")
	// ErrNoTransition is returned when a location step has no explicit
	// next step and no fallback is configured
	ErrNoTransition = errors.New(errors.ErrCodeInternal, "step has no next step")
)

// Transitions configures where the navigator goes when a step does not
// say so itself.
type Transitions struct {
	InitialStepID      int
	ProvinceNextStepID int
	CityNextStepID     int
}

// transition is a staged navigation: the step to load and the context
// mutation to commit once it has loaded.
type transition struct {
	action string
	target int
	apply  func(*Context)
}

// Snapshot is a read-only copy of a navigator's state
type Snapshot struct {
	Status     Status       `json:"status"`
	Step       *client.Step `json:"step,omitempty"`
	Kind       Kind         `json:"kind"`
	Context    Context      `json:"context"`
	CanGoBack  bool         `json:"canGoBack"`
	Completion uint64       `json:"completion"`
	Error      string       `json:"error,omitempty"`
	// PendingAction names the navigation a Retry would replay
	PendingAction string `json:"pendingAction,omitempty"`
}

// Record is the persistable part of a navigator
type Record struct {
	StepID     int     `json:"stepId"`
	Context    Context `json:"context"`
	Completion uint64  `json:"completion"`
	// Submitted is the last completion whose outcome was reported
	Submitted uint64 `json:"submitted"`
}

// Navigator owns the current step, the history and the collected
// context of a single session. Navigations are strictly sequential: a
// call made while another is in flight returns ErrBusy. Every load is
// tagged with a generation; a response whose generation is no longer
// current is dropped.
type Navigator struct {
	steps client.StepsClientInterface
	cfg   Transitions

	mu         sync.Mutex
	inflight   uint64
	status     Status
	step       *client.Step
	ctx        Context
	pending    *transition
	lastErr    error
	generation uint64
	completion uint64
	submitted  uint64
}

// NewNavigator creates a navigator. Nothing is loaded until Start.
func NewNavigator(steps client.StepsClientInterface, cfg Transitions) *Navigator {
	if cfg.InitialStepID <= 0 {
		cfg.InitialStepID = 1
	}
	return &Navigator{
		steps:  steps,
		cfg:    cfg,
		status: StatusLoading,
		ctx:    NewContext(),
	}
}

// Start loads the initial step
func (n *Navigator) Start(ctx context.Context) error {
	return n.navigate(ctx, StatusLoading, func() (*transition, error) {
		return &transition{action: "start", target: n.cfg.InitialStepID}, nil
	})
}

// Restore loads rec's step and adopts its context
func (n *Navigator) Restore(ctx context.Context, rec Record) error {
	restored := rec.Context.Clone()
	err := n.navigate(ctx, StatusLoading, func() (*transition, error) {
		return &transition{action: "restore", target: rec.StepID, apply: func(c *Context) { *c = restored }}, nil
	})
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.completion = rec.Completion
	n.submitted = rec.Submitted
	n.mu.Unlock()
	return nil
}

// Next advances from the current step. payload is the province id,
// the city id or the chosen option's nextStepId depending on the step;
// it is ignored on a terminal step, where Next starts a new session.
func (n *Navigator) Next(ctx context.Context, payload int) error {
	return n.navigate(ctx, StatusTransitioning, func() (*transition, error) {
		if n.step == nil {
			return nil, ErrNoStep
		}
		return n.planNext(n.step, payload)
	})
}

// Back returns to the previous step. With no previous step it does
// nothing.
func (n *Navigator) Back(ctx context.Context) error {
	return n.navigate(ctx, StatusTransitioning, func() (*transition, error) {
		if n.step == nil {
			return nil, ErrNoStep
		}
		history := slices.Clone(n.ctx.History)
		for len(history) > 0 {
			prev := history[len(history)-1]
			history = history[:len(history)-1]
			if prev != n.step.ID {
				return &transition{action: "back", target: prev, apply: func(c *Context) { c.History = history }}, nil
			}
		}
		return nil, nil
	})
}

// Retry replays the navigation that failed. It does nothing unless the
// navigator is in the error state.
func (n *Navigator) Retry(ctx context.Context) error {
	return n.navigate(ctx, StatusLoading, func() (*transition, error) {
		if n.status != StatusError || n.pending == nil {
			return nil, nil
		}
		return n.pending, nil
	})
}

// Reset discards the session and loads the initial step again
func (n *Navigator) Reset(ctx context.Context) error {
	return n.navigate(ctx, StatusLoading, func() (*transition, error) {
		return &transition{action: "reset", target: n.cfg.InitialStepID, apply: func(c *Context) { *c = NewContext() }}, nil
	})
}

// Snapshot returns a copy of the current state
func (n *Navigator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()

	snap := Snapshot{
		Status:     n.status,
		Kind:       KindOf(n.step),
		Context:    n.ctx.Clone(),
		Completion: n.completion,
		CanGoBack:  n.step != nil && !IsTerminal(n.step) && len(n.ctx.History) > 0,
	}
	if n.step != nil {
		step := *n.step
		snap.Step = &step
	}
	if n.lastErr != nil && n.status == StatusError {
		snap.Error = n.lastErr.Error()
	}
	if n.pending != nil {
		snap.PendingAction = n.pending.action
	}
	return snap
}

// Record returns the persistable state, or false before the first step
// has loaded.
func (n *Navigator) Record() (Record, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.step == nil {
		return Record{}, false
	}
	return Record{StepID: n.step.ID, Context: n.ctx.Clone(), Completion: n.completion, Submitted: n.submitted}, true
}

// ClaimSubmission marks completion as reported. It returns false when
// completion is not the current one or was already claimed, including
// by a navigator this one was restored from.
func (n *Navigator) ClaimSubmission(completion uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if completion == 0 || completion != n.completion || completion <= n.submitted {
		return false
	}
	n.submitted = completion
	return true
}

func (n *Navigator) planNext(step *client.Step, payload int) (*transition, error) {
	if IsTerminal(step) {
		return &transition{action: "restart", target: n.cfg.InitialStepID, apply: func(c *Context) { *c = NewContext() }}, nil
	}

	switch KindOf(step) {
	case KindProvince:
		if payload <= 0 {
			return nil, ErrInvalidPayload
		}
		target, err := n.locationTarget(step, n.cfg.ProvinceNextStepID)
		if err != nil {
			return nil, err
		}
		provinceID := payload
		return &transition{action: "next", target: target, apply: func(c *Context) {
			if c.SelectedProvinceID == nil || *c.SelectedProvinceID != provinceID {
				c.SelectedCityID = nil
			}
			c.SelectedProvinceID = &provinceID
			c.visit(step.ID)
		}}, nil

	case KindCity:
		if payload <= 0 {
			return nil, ErrInvalidPayload
		}
		target, err := n.locationTarget(step, n.cfg.CityNextStepID)
		if err != nil {
			return nil, err
		}
		cityID := payload
		return &transition{action: "next", target: target, apply: func(c *Context) {
			c.SelectedCityID = &cityID
			c.visit(step.ID)
		}}, nil

	case KindQuestion:
		idx := slices.IndexFunc(step.Options, func(o client.Option) bool { return o.NextStepID == payload })
		if idx < 0 || payload <= 0 {
			return nil, fmt.Errorf("%w: step %d has no option leading to %d", ErrUnknownOption, step.ID, payload)
		}
		answer := answerFrom(step.ID, step.Options[idx])
		return &transition{action: "next", target: payload, apply: func(c *Context) {
			c.Answers[step.ID] = answer
			c.visit(step.ID)
		}}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCode, step.Code)
}

func (n *Navigator) locationTarget(step *client.Step, fallback int) (int, error) {
	if step.NextStepID > 0 {
		return step.NextStepID, nil
	}
	if fallback > 0 {
		return fallback, nil
	}
	return 0, fmt.Errorf("%w: step %d (%s)", ErrNoTransition, step.ID, step.Code)
}

// Cancel abandons the navigation in flight, if any. Its response will
// be dropped and the navigator accepts new calls at once.
func (n *Navigator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.inflight == 0 {
		return
	}
	n.generation++
	n.inflight = 0
	if n.step != nil {
		n.status = StatusReady
	} else {
		n.status = StatusError
	}
}

// navigate plans a transition under the lock, loads its target without
// holding it, then commits. A nil plan is a no-op.
func (n *Navigator) navigate(ctx context.Context, during Status, plan func() (*transition, error)) error {
	n.mu.Lock()
	if n.inflight != 0 {
		n.mu.Unlock()
		return ErrBusy
	}
	t, err := plan()
	if err != nil || t == nil {
		n.mu.Unlock()
		return err
	}
	n.generation++
	gen := n.generation
	n.inflight = gen
	n.status = during
	n.mu.Unlock()

	step, err := n.steps.GetStep(ctx, t.target)

	n.mu.Lock()
	defer n.mu.Unlock()

	if gen != n.generation {
		return ErrSuperseded
	}
	n.inflight = 0

	if err == nil && step == nil {
		err = errors.NotFound(fmt.Sprintf("step %d", t.target))
	}
	if err != nil {
		n.status = StatusError
		n.pending = t
		n.lastErr = err
		return err
	}

	if t.apply != nil {
		t.apply(&n.ctx)
	}
	n.step = step
	n.status = StatusReady
	n.pending = nil
	n.lastErr = nil
	if IsTerminal(step) {
		n.completion++
	}
	return nil
}
