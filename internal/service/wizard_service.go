package service

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/logger"
	"github.com/pesio-ai/be-tbc-triage/internal/repository"
	"github.com/pesio-ai/be-tbc-triage/internal/stats"
	"github.com/pesio-ai/be-tbc-triage/internal/wizard"
)

// WizardConfig configures the wizard service
type WizardConfig struct {
	Transitions wizard.Transitions
	SessionTTL  time.Duration
}

type liveSession struct {
	nav      *wizard.Navigator
	lastSeen time.Time
}

// WizardService runs triage sessions on behalf of HTTP and CLI clients.
// Live sessions are kept in memory and persisted after every
// navigation, so a session survives a restart of the service.
type WizardService struct {
	steps     client.StepsClientInterface
	locations client.LocationsClientInterface
	recorder  *stats.Recorder
	sessions  repository.SessionStore
	audit     repository.AuditStore
	log       *logger.Logger
	cfg       WizardConfig
	views     map[wizard.Kind]viewFunc
	now       func() time.Time

	mu   sync.Mutex
	live map[string]*liveSession
}

// NewWizardService creates a new wizard service
func NewWizardService(
	steps client.StepsClientInterface,
	locations client.LocationsClientInterface,
	recorder *stats.Recorder,
	sessions repository.SessionStore,
	audit repository.AuditStore,
	cfg WizardConfig,
	log *logger.Logger,
) *WizardService {
	s := &WizardService{
		steps:     steps,
		locations: locations,
		recorder:  recorder,
		sessions:  sessions,
		audit:     audit,
		log:       log.Component("wizard"),
		cfg:       cfg,
		now:       time.Now,
		live:      map[string]*liveSession{},
	}
	s.views = s.renderers()
	return s
}

// Start opens a new session on the initial step. A session whose first
// load failed is still returned, in the error state, so it can be
// retried.
func (s *WizardService) Start(ctx context.Context) (*StepView, error) {
	id := uuid.NewString()
	nav := wizard.NewNavigator(s.steps, s.cfg.Transitions)

	s.mu.Lock()
	s.live[id] = &liveSession{nav: nav, lastSeen: s.now()}
	s.mu.Unlock()

	err := nav.Start(ctx)
	s.afterNavigation(ctx, id, repository.ActionStart, nil, nav, err, nil)

	s.log.Info().Str("session_id", id).Bool("loaded", err == nil).Msg("Wizard session started")
	return s.respond(ctx, id, nav, err)
}

// View returns the current step of a session
func (s *WizardService) View(ctx context.Context, id string) (*StepView, error) {
	nav, err := s.navigator(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, id, nav.Snapshot()), nil
}

// Next advances a session. See wizard.Navigator.Next for payload.
func (s *WizardService) Next(ctx context.Context, id string, payload int) (*StepView, error) {
	nav, err := s.navigator(ctx, id)
	if err != nil {
		return nil, err
	}

	before := nav.Snapshot()
	action := repository.ActionNext
	if wizard.IsTerminal(before.Step) {
		action = repository.ActionRestart
	}

	err = nav.Next(ctx, payload)
	s.afterNavigation(ctx, id, action, stepID(before), nav, err, map[string]any{"payload": payload})
	return s.respond(ctx, id, nav, err)
}

// Back returns a session to its previous step
func (s *WizardService) Back(ctx context.Context, id string) (*StepView, error) {
	nav, err := s.navigator(ctx, id)
	if err != nil {
		return nil, err
	}

	before := nav.Snapshot()
	err = nav.Back(ctx)
	s.afterNavigation(ctx, id, repository.ActionBack, stepID(before), nav, err, nil)
	return s.respond(ctx, id, nav, err)
}

// Retry replays the navigation that failed
func (s *WizardService) Retry(ctx context.Context, id string) (*StepView, error) {
	nav, err := s.navigator(ctx, id)
	if err != nil {
		return nil, err
	}

	before := nav.Snapshot()
	err = nav.Retry(ctx)
	s.afterNavigation(ctx, id, repository.ActionRetry, stepID(before), nav, err, map[string]any{"pending": before.PendingAction})
	return s.respond(ctx, id, nav, err)
}

// Delete ends a session
func (s *WizardService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	ls, wasLive := s.live[id]
	delete(s.live, id)
	s.mu.Unlock()

	if wasLive {
		ls.nav.Cancel()
	}

	err := s.sessions.Delete(ctx, id)
	if err != nil && !(wasLive && errors.Is(err, errors.ErrCodeNotFound)) {
		return err
	}

	s.recorder.Forget(id)
	s.appendAudit(ctx, &repository.AuditEntry{SessionID: id, Action: repository.ActionDelete, Succeeded: true})
	s.log.Info().Str("session_id", id).Msg("Wizard session deleted")
	return nil
}

// History returns the audit trail of a session
func (s *WizardService) History(ctx context.Context, id string) ([]*repository.AuditEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.InvalidInput("id", "invalid session id")
	}
	return s.audit.ListBySession(ctx, id)
}

// Sweep drops sessions idle for longer than the configured TTL and
// returns how many were removed.
func (s *WizardService) Sweep(ctx context.Context) (int, error) {
	if s.cfg.SessionTTL <= 0 {
		return 0, nil
	}
	before := s.now().Add(-s.cfg.SessionTTL)

	expired := map[string]struct{}{}
	s.mu.Lock()
	for id, ls := range s.live {
		if ls.lastSeen.Before(before) {
			ls.nav.Cancel()
			delete(s.live, id)
			expired[id] = struct{}{}
		}
	}
	s.mu.Unlock()

	stored, err := s.sessions.DeleteIdle(ctx, before)
	if err != nil {
		return 0, err
	}
	for _, id := range stored {
		s.mu.Lock()
		_, stillLive := s.live[id]
		s.mu.Unlock()
		if !stillLive {
			expired[id] = struct{}{}
		}
	}

	for id := range expired {
		s.recorder.Forget(id)
		s.appendAudit(ctx, &repository.AuditEntry{SessionID: id, Action: repository.ActionExpire, Succeeded: true})
	}
	if len(expired) > 0 {
		s.log.Info().Int("count", len(expired)).Msg("Expired idle wizard sessions")
	}
	return len(expired), nil
}

// RunJanitor sweeps idle sessions every interval until ctx is done
func (s *WizardService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.Warn().Err(err).Msg("failed to sweep idle sessions")
			}
		}
	}
}

// navigator returns the live navigator of a session, restoring it from
// the store when it is not in memory.
func (s *WizardService) navigator(ctx context.Context, id string) (*wizard.Navigator, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.InvalidInput("id", "invalid session id")
	}

	s.mu.Lock()
	if ls, ok := s.live[id]; ok {
		ls.lastSeen = s.now()
		s.mu.Unlock()
		return ls.nav, nil
	}
	s.mu.Unlock()

	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	nav := wizard.NewNavigator(s.steps, s.cfg.Transitions)
	if err := nav.Restore(ctx, rec.State); err != nil {
		return nil, errors.Wrap(err, errors.CodeOf(err), "failed to restore session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ls, ok := s.live[id]; ok {
		// restored concurrently by another request
		return ls.nav, nil
	}
	s.live[id] = &liveSession{nav: nav, lastSeen: s.now()}
	s.log.Debug().Str("session_id", id).Int("step_id", rec.State.StepID).Msg("Wizard session restored")
	return nav, nil
}

// respond turns the outcome of a navigation into a view. A failed step
// load is not an error for the caller: the view carries the error state
// and the pending action to retry.
func (s *WizardService) respond(ctx context.Context, id string, nav *wizard.Navigator, navErr error) (*StepView, error) {
	snap := nav.Snapshot()
	if navErr != nil && !(snap.Status == wizard.StatusError && snap.PendingAction != "") {
		return nil, navErr
	}
	return s.render(ctx, id, snap), nil
}

// afterNavigation persists the session and appends an audit entry. Both
// are best effort.
func (s *WizardService) afterNavigation(ctx context.Context, id, action string, from *int, nav *wizard.Navigator, navErr error, metadata map[string]any) {
	if stderrors.Is(navErr, wizard.ErrBusy) {
		return
	}

	snap := nav.Snapshot()
	entry := &repository.AuditEntry{
		SessionID:  id,
		Action:     action,
		FromStepID: from,
		Succeeded:  navErr == nil,
		Metadata:   metadata,
	}
	if navErr == nil {
		entry.ToStepID = stepID(snap)
	} else {
		msg := navErr.Error()
		entry.Error = &msg
	}
	s.appendAudit(ctx, entry)

	if navErr != nil {
		return
	}
	rec, ok := nav.Record()
	if !ok {
		return
	}
	if err := s.sessions.Save(ctx, &repository.SessionRecord{ID: id, State: rec}); err != nil {
		s.log.Warn().Err(err).Str("session_id", id).Msg("failed to persist wizard session")
	}
}

func (s *WizardService) appendAudit(ctx context.Context, entry *repository.AuditEntry) {
	if err := s.audit.Append(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Str("session_id", entry.SessionID).
			Str("action", entry.Action).
			Msg("failed to append wizard audit entry")
	}
}

func stepID(snap wizard.Snapshot) *int {
	if snap.Step == nil {
		return nil
	}
	id := snap.Step.ID
	return &id
}
