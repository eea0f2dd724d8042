// Package stats submits the anonymized outcome of every completed triage
// session to the statistics backend.
package stats

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/logger"
	"github.com/pesio-ai/be-tbc-triage/internal/result"
)

// UnknownName replaces a province or city name that could not be resolved
const UnknownName = "Desconocida"

const submitTimeout = 10 * time.Second

// Key identifies one completion of one session. A session that is
// restarted and finished again gets a new completion number.
type Key struct {
	SessionID  string
	Completion uint64
}

// Outcome is what a finished session reports
type Outcome struct {
	ProvinceID     *int
	CityID         *int
	Variant        int
	Classification result.Classification
}

// Recorder posts each completion at most once. Submission failures are
// logged and never reach the caller.
type Recorder struct {
	locations client.LocationsClientInterface
	stats     client.StatsClientInterface
	log       *logger.Logger
	async     bool

	mu    sync.Mutex
	fired map[Key]struct{}
	wg    sync.WaitGroup
}

// NewRecorder creates a recorder. With async set, Record returns at once
// and the submission runs in the background; Wait blocks until those
// submissions are done.
func NewRecorder(locations client.LocationsClientInterface, stats client.StatsClientInterface, log *logger.Logger, async bool) *Recorder {
	return &Recorder{
		locations: locations,
		stats:     stats,
		log:       log.Component("stats"),
		async:     async,
		fired:     make(map[Key]struct{}),
	}
}

// Record submits o for key unless it was already submitted. It reports
// whether a submission was started. Outcomes without both a province and
// a city are never submitted.
func (r *Recorder) Record(ctx context.Context, key Key, o Outcome) bool {
	if o.ProvinceID == nil || o.CityID == nil {
		return false
	}

	r.mu.Lock()
	if _, done := r.fired[key]; done {
		r.mu.Unlock()
		return false
	}
	r.fired[key] = struct{}{}
	r.wg.Add(1)
	r.mu.Unlock()

	submit := func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), submitTimeout)
		defer cancel()
		r.submit(ctx, key, o)
	}
	if r.async {
		go submit()
	} else {
		submit()
	}
	return true
}

// Forget drops the latches of a session
func (r *Recorder) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.fired {
		if k.SessionID == sessionID {
			delete(r.fired, k)
		}
	}
}

// Wait blocks until every started submission has finished
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) submit(ctx context.Context, key Key, o Outcome) {
	provinceName, cityName := r.resolveNames(ctx, *o.ProvinceID, *o.CityID)

	entry := &client.ConsultationLog{
		ProvinceName:       provinceName,
		CityName:           cityName,
		ResultVariant:      o.Variant,
		DiagnosisType:      o.Classification.DiagnosisType,
		IsRiskGroup:        o.Classification.IsRiskGroup,
		PatientWeightRange: o.Classification.WeightRange,
	}
	if entry.PatientWeightRange == "" {
		entry.PatientWeightRange = result.WeightUnspecified
	}
	if entry.DiagnosisType == "" {
		entry.DiagnosisType = result.DiagnosisUnknown
	}

	if err := r.stats.LogConsultation(ctx, entry); err != nil {
		r.log.Warn().Err(err).
			Str("session_id", key.SessionID).
			Uint64("completion", key.Completion).
			Msg("failed to log consultation")
		return
	}

	r.log.Info().
		Str("session_id", key.SessionID).
		Str("province", provinceName).
		Str("city", cityName).
		Int("variant", o.Variant).
		Str("diagnosis", entry.DiagnosisType).
		Msg("consultation logged")
}

// resolveNames looks the ids up in freshly fetched reference lists. A
// failed fetch leaves the name unknown.
func (r *Recorder) resolveNames(ctx context.Context, provinceID, cityID int) (string, string) {
	provinceName, cityName := UnknownName, UnknownName

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		provinces, err := r.locations.GetProvinces(gctx)
		if err != nil {
			return err
		}
		for _, p := range provinces {
			if p.ID == provinceID {
				provinceName = p.Name
			}
		}
		return nil
	})
	g.Go(func() error {
		cities, err := r.locations.GetCities(gctx, provinceID)
		if err != nil {
			return err
		}
		for _, c := range cities {
			if c.ID == cityID {
				cityName = c.Name
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		r.log.Warn().Err(err).Int("province_id", provinceID).Int("city_id", cityID).Msg("failed to resolve location names")
	}
	return provinceName, cityName
}
