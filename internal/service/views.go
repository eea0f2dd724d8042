package service

import (
	"context"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/repository"
	"github.com/pesio-ai/be-tbc-triage/internal/result"
	"github.com/pesio-ai/be-tbc-triage/internal/stats"
	"github.com/pesio-ai/be-tbc-triage/internal/wizard"
)

// StepView is everything a client needs to render the current step of a
// session.
type StepView struct {
	SessionID     string         `json:"sessionId"`
	Status        wizard.Status  `json:"status"`
	Kind          wizard.Kind    `json:"kind"`
	Step          *client.Step   `json:"step,omitempty"`
	CanGoBack     bool           `json:"canGoBack"`
	Error         string         `json:"error,omitempty"`
	PendingAction string         `json:"pendingAction,omitempty"`
	Context       wizard.Context `json:"context"`

	Provinces []client.Province `json:"provinces,omitempty"`
	Cities    []client.City     `json:"cities,omitempty"`
	Options   []client.Option   `json:"options,omitempty"`
	Result    *ResultView       `json:"result,omitempty"`

	// DataError is set when the step's supporting data could not be
	// loaded. The session itself is unaffected.
	DataError string `json:"dataError,omitempty"`
}

// ResultView is the rendered outcome of a terminal step
type ResultView struct {
	Tone           result.Tone           `json:"tone"`
	Icon           string                `json:"icon"`
	Content        result.Content        `json:"content"`
	Laboratory     *client.Laboratory    `json:"laboratory,omitempty"`
	Classification result.Classification `json:"classification"`
}

// viewFunc fills the kind-specific part of a view
type viewFunc func(ctx context.Context, sessionID string, snap wizard.Snapshot, v *StepView)

func (s *WizardService) renderers() map[wizard.Kind]viewFunc {
	return map[wizard.Kind]viewFunc{
		wizard.KindProvince: s.provinceView,
		wizard.KindCity:     s.cityView,
		wizard.KindQuestion: questionView,
		wizard.KindResult:   s.resultView,
	}
}

func (s *WizardService) render(ctx context.Context, sessionID string, snap wizard.Snapshot) *StepView {
	v := &StepView{
		SessionID:     sessionID,
		Status:        snap.Status,
		Kind:          snap.Kind,
		Step:          snap.Step,
		CanGoBack:     snap.CanGoBack,
		Error:         snap.Error,
		PendingAction: snap.PendingAction,
		Context:       snap.Context,
	}
	if snap.Step == nil {
		return v
	}
	if fn, ok := s.views[snap.Kind]; ok {
		fn(ctx, sessionID, snap, v)
	} else {
		v.DataError = "unsupported step code " + snap.Step.Code
	}
	return v
}

func (s *WizardService) provinceView(ctx context.Context, _ string, _ wizard.Snapshot, v *StepView) {
	provinces, err := s.locations.GetProvinces(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", v.SessionID).Msg("failed to load provinces")
		v.DataError = err.Error()
		return
	}
	v.Provinces = provinces
}

func (s *WizardService) cityView(ctx context.Context, _ string, snap wizard.Snapshot, v *StepView) {
	if snap.Context.SelectedProvinceID == nil {
		v.Cities = []client.City{}
		return
	}
	cities, err := s.locations.GetCities(ctx, *snap.Context.SelectedProvinceID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", v.SessionID).Msg("failed to load cities")
		v.DataError = err.Error()
		return
	}
	v.Cities = cities
}

func questionView(_ context.Context, _ string, snap wizard.Snapshot, v *StepView) {
	v.Options = snap.Step.Options
}

// resultView shapes the result and reports the outcome once per
// completion.
func (s *WizardService) resultView(ctx context.Context, sessionID string, snap wizard.Snapshot, v *StepView) {
	step := snap.Step
	tone := result.ToneOf(step.Variant)
	rv := &ResultView{
		Tone:           tone,
		Icon:           tone.Icon(),
		Content:        result.ParseContent(step.Content, snap.Context.SelectedProvinceID),
		Classification: result.Derive(snap.Context.OrderedAnswers(), step.Title),
	}

	if cityID := snap.Context.SelectedCityID; cityID != nil {
		lab, err := s.locations.GetLaboratory(ctx, *cityID)
		if err != nil {
			s.log.Warn().Err(err).Str("session_id", sessionID).Int("city_id", *cityID).Msg("failed to load laboratory")
		} else {
			rv.Laboratory = lab
		}
	}
	v.Result = rv

	if snap.Status == wizard.StatusReady && s.claimSubmission(ctx, sessionID, snap.Completion) {
		s.recorder.Record(ctx, stats.Key{SessionID: sessionID, Completion: snap.Completion}, stats.Outcome{
			ProvinceID:     snap.Context.SelectedProvinceID,
			CityID:         snap.Context.SelectedCityID,
			Variant:        step.Variant,
			Classification: rv.Classification,
		})
	}
}

// claimSubmission latches a completion on the live navigator and
// persists the latch before the outcome is reported, so a restored
// session does not report it again.
func (s *WizardService) claimSubmission(ctx context.Context, sessionID string, completion uint64) bool {
	s.mu.Lock()
	ls, ok := s.live[sessionID]
	s.mu.Unlock()
	if !ok || !ls.nav.ClaimSubmission(completion) {
		return false
	}

	rec, ok := ls.nav.Record()
	if !ok {
		return true
	}
	if err := s.sessions.Save(ctx, &repository.SessionRecord{ID: sessionID, State: rec}); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to persist submission latch")
	}
	return true
}
