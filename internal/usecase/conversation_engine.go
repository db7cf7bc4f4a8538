package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
	domrepo "github.com/haniae/Team2-CBA-Project-sub004/internal/domain/repository"
	domsvc "github.com/haniae/Team2-CBA-Project-sub004/internal/domain/service"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/services/nlp"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/services/scenario"
	applogger "github.com/haniae/Team2-CBA-Project-sub004/pkg/logger"
)

// Engine failure taxonomy. ErrModelFailure and ErrNoData are distinct on
// purpose: a broken model and missing history are different problems.
var (
	ErrBadRequest   = errors.New("could not extract a forecast request from turn")
	ErrNoData       = errors.New("no historical data for ticker/metric")
	ErrModelFailure = errors.New("forecast model failure")
)

// historyPeriods is how many trailing periods feed a model call.
const historyPeriods = 12

// ForecastConversationEngine orchestrates one forecast conversation: it
// classifies each turn, dispatches to the matching handler, drives the
// ForecastModel and scenario calculator, and mutates ConversationState.
// A failing model call or persistence write never corrupts the last-known-good
// active forecast.
type ForecastConversationEngine struct {
	model   domsvc.ForecastModel
	series  domrepo.SeriesStore
	gateway domrepo.PersistenceGateway
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewForecastConversationEngine(
	model domsvc.ForecastModel,
	series domrepo.SeriesStore,
	gateway domrepo.PersistenceGateway,
	metrics domrepo.Metrics,
) *ForecastConversationEngine {
	return &ForecastConversationEngine{
		model:   model,
		series:  series,
		gateway: gateway,
		metrics: metrics,
	}
}

// SetLogger injects a structured logger.
func (e *ForecastConversationEngine) SetLogger(l *applogger.Logger) { e.l = l }

// HandleTurn fully resolves one turn, including any model invocation, before
// returning. Turns for one conversation are serialized on the state's lock,
// so a second model call can never race an outstanding one.
func (e *ForecastConversationEngine) HandleTurn(ctx context.Context, st *ConversationState, text string) (*models.TurnOutcome, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	start := time.Now()
	cls, ok := nlp.Classify(text, st.active != nil)
	if !ok {
		out, err := e.handleFresh(ctx, st, text)
		e.observeTurn(models.InteractionForecast, start, err)
		return out, err
	}

	var (
		out *models.TurnOutcome
		err error
	)
	switch cls.Type {
	case models.InteractionSave:
		out = e.handleSave(ctx, st, cls.SaveName)
	case models.InteractionCompare:
		out, err = e.handleCompare(ctx, st, cls.CompareName)
	case models.InteractionModelSwitch:
		out, err = e.handleModelSwitch(ctx, st, cls.Model)
	case models.InteractionParameterAdjust:
		out, err = e.handleParameterAdjust(ctx, st, cls)
	case models.InteractionScenario:
		out = e.handleScenario(st, cls.Params)
	case models.InteractionConfidence:
		out = e.handleConfidence(st)
	case models.InteractionExplainability:
		out = e.handleExplainability(st)
	default:
		out, err = e.handleFresh(ctx, st, text)
	}
	e.observeTurn(cls.Type, start, err)
	if out != nil {
		out.ConversationID = st.id
	}
	return out, err
}

func (e *ForecastConversationEngine) observeTurn(t models.InteractionType, start time.Time, err error) {
	e.metrics.RecordTurn(string(t))
	e.metrics.RecordLatency("turn", time.Since(start).Seconds())
	if err != nil {
		e.metrics.RecordError("turn_" + string(t))
	}
}

// --- fresh forecast ---

func (e *ForecastConversationEngine) handleFresh(ctx context.Context, st *ConversationState, text string) (*models.TurnOutcome, error) {
	req, ok := nlp.ParseForecastRequest(text)
	if !ok {
		return nil, ErrBadRequest
	}

	res, err := e.generate(ctx, req.Ticker, req.Metric, req.Model, req.Horizon, nil)
	if err != nil {
		return nil, err
	}

	params := models.GenerationParams{Model: req.Model, Horizon: req.Horizon}
	e.activate(st, models.ActiveForecast{Result: res, Params: params, CreatedAt: time.Now()})

	return &models.TurnOutcome{
		ConversationID: st.id,
		Type:           models.InteractionForecast,
		Forecast:       &res,
	}, nil
}

// --- read-only handlers: never change the active forecast ---

func (e *ForecastConversationEngine) handleExplainability(st *ConversationState) *models.TurnOutcome {
	res := st.active.Result
	payload := &models.ExplainPayload{Performance: res.Performance}
	if res.HasDrivers() {
		payload.Drivers = res.Drivers
	} else {
		// The model returned no attribution; signal that instead of failing.
		payload.Limited = true
	}
	return &models.TurnOutcome{Type: models.InteractionExplainability, Explain: payload}
}

func (e *ForecastConversationEngine) handleConfidence(st *ConversationState) *models.TurnOutcome {
	res := st.active.Result
	intervals := make([]models.IntervalWidth, len(res.Points))
	for i, p := range res.Points {
		intervals[i] = models.IntervalWidth{
			Period: p.Period,
			Lower:  p.Lower,
			Upper:  p.Upper,
			Width:  p.Upper - p.Lower,
		}
	}
	return &models.TurnOutcome{
		Type:       models.InteractionConfidence,
		Confidence: &models.ConfidencePayload{Score: res.Confidence, Intervals: intervals},
	}
}

// --- regeneration handlers: replace active only on success ---

func (e *ForecastConversationEngine) handleModelSwitch(ctx context.Context, st *ConversationState, kind models.ModelKind) (*models.TurnOutcome, error) {
	old := *st.active
	params := old.Params.Clone()
	params.Model = kind

	res, err := e.generate(ctx, old.Result.Ticker, old.Result.Metric, kind, params.Horizon, params.ExcludedPeriods)
	if err != nil {
		return nil, err
	}

	comparison := comparisonPayload(old.Result, res, string(old.Result.Model), string(kind))
	e.activate(st, models.ActiveForecast{Result: res, Params: params, CreatedAt: time.Now()})

	return &models.TurnOutcome{
		Type:       models.InteractionModelSwitch,
		Forecast:   &res,
		Comparison: comparison,
	}, nil
}

func (e *ForecastConversationEngine) handleParameterAdjust(ctx context.Context, st *ConversationState, cls nlp.Classification) (*models.TurnOutcome, error) {
	old := *st.active
	params := old.Params.Clone()
	switch {
	case cls.Horizon > 0:
		params.Horizon = cls.Horizon
	case cls.ExcludePeriod > 0:
		params.ExcludedPeriods = append(params.ExcludedPeriods, cls.ExcludePeriod)
	default:
		return nil, ErrBadRequest
	}

	res, err := e.generate(ctx, old.Result.Ticker, old.Result.Metric, params.Model, params.Horizon, params.ExcludedPeriods)
	if err != nil {
		return nil, err
	}

	baseLabel := fmt.Sprintf("%s horizon=%d", old.Result.Model, old.Params.Horizon)
	otherLabel := fmt.Sprintf("%s horizon=%d", params.Model, params.Horizon)
	comparison := comparisonPayload(old.Result, res, baseLabel, otherLabel)
	e.activate(st, models.ActiveForecast{Result: res, Params: params, CreatedAt: time.Now()})

	return &models.TurnOutcome{
		Type:       models.InteractionParameterAdjust,
		Forecast:   &res,
		Comparison: comparison,
	}, nil
}

// --- scenario ---

func (e *ForecastConversationEngine) handleScenario(st *ConversationState, params []models.ScenarioParameter) *models.TurnOutcome {
	baseline := *st.active
	adjusted, breakdown, warnings := scenario.Apply(baseline.Result, params)
	multiplier, marginShift := scenario.CombinedMultiplier(params)

	// Compounding always starts from the current active, and the baseline is
	// preserved in history before it is replaced.
	applied := make([]models.ScenarioParameter, 0, len(baseline.Applied)+len(params))
	applied = append(applied, baseline.Applied...)
	applied = append(applied, params...)

	st.pushHistoryLocked(baseline)
	st.replaceActiveLocked(models.ActiveForecast{
		Result:    adjusted,
		Applied:   applied,
		Params:    baseline.Params.Clone(),
		CreatedAt: time.Now(),
	})

	return &models.TurnOutcome{
		Type:     models.InteractionScenario,
		Forecast: &adjusted,
		Scenario: &models.ScenarioPayload{
			Breakdown:         breakdown,
			RevenueMultiplier: multiplier,
			MarginShift:       marginShift,
		},
		Warnings: warnings,
	}
}

// --- persistence handlers ---

func (e *ForecastConversationEngine) handleSave(ctx context.Context, st *ConversationState, name string) *models.TurnOutcome {
	active := st.active.Clone()
	st.saveNamedLocked(name, active)

	// In-memory state is the source of truth for this session; the durable
	// mirror is best effort and its failure is logged, not raised.
	durable := true
	if err := e.gateway.Save(ctx, st.id, name, active); err != nil {
		durable = false
		e.metrics.RecordError("persistence_save")
		if e.l != nil {
			e.l.Warn("durable forecast save failed",
				applogger.String("conversation", st.id),
				applogger.String("name", name),
				applogger.Error(err),
			)
		}
	}

	return &models.TurnOutcome{
		Type: models.InteractionSave,
		Save: &models.SavePayload{Name: name, Durable: durable},
	}
}

func (e *ForecastConversationEngine) handleCompare(ctx context.Context, st *ConversationState, name string) (*models.TurnOutcome, error) {
	other, found := st.namedLocked(name)
	if !found {
		loaded, ok, err := e.gateway.Load(ctx, st.id, name)
		if err != nil {
			e.metrics.RecordError("persistence_load")
			if e.l != nil {
				e.l.Warn("durable forecast load failed",
					applogger.String("conversation", st.id),
					applogger.String("name", name),
					applogger.Error(err),
				)
			}
		} else if ok {
			other, found = loaded, true
		}
	}

	if !found {
		// Unknown name is expected control flow: answer with what is known.
		return &models.TurnOutcome{
			Type:       models.InteractionCompare,
			KnownNames: e.knownNames(ctx, st),
		}, nil
	}

	comparison := comparisonPayload(st.active.Result, other.Result, "active", name)
	return &models.TurnOutcome{Type: models.InteractionCompare, Comparison: comparison}, nil
}

func (e *ForecastConversationEngine) knownNames(ctx context.Context, st *ConversationState) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, n := range st.savedNamesLocked() {
		seen[n] = struct{}{}
		names = append(names, n)
	}
	durable, err := e.gateway.List(ctx, st.id)
	if err != nil {
		e.metrics.RecordError("persistence_list")
	} else {
		for _, n := range durable {
			if _, dup := seen[n]; !dup {
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

// SavedForecastNames lists saved forecast names for a conversation without
// taking a turn: the in-memory saves, optionally merged with the durable
// mirror. A conversation with no live state can still have durable saves.
func (e *ForecastConversationEngine) SavedForecastNames(ctx context.Context, convs *ConversationManager, id string, durable bool) ([]string, error) {
	seen := make(map[string]struct{})
	names := []string{}
	if st, ok := convs.Get(id); ok {
		for _, n := range st.SavedNames() {
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	if durable {
		mirrored, err := e.gateway.List(ctx, id)
		if err != nil {
			e.metrics.RecordError("persistence_list")
			return nil, fmt.Errorf("list durable forecasts: %w", err)
		}
		for _, n := range mirrored {
			if _, dup := seen[n]; !dup {
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// --- shared helpers ---

// activate pushes the previous active forecast (if any) to history and
// installs the replacement atomically.
func (e *ForecastConversationEngine) activate(st *ConversationState, f models.ActiveForecast) {
	if st.active != nil {
		st.pushHistoryLocked(*st.active)
	}
	st.replaceActiveLocked(f)
}

func (e *ForecastConversationEngine) generate(ctx context.Context, ticker, metric string, kind models.ModelKind, horizon int, exclude []int) (models.ForecastResult, error) {
	history, err := e.series.GetLatestNPeriods(ctx, ticker, metric, historyPeriods)
	if err != nil {
		e.metrics.RecordError("series_store")
		return models.ForecastResult{}, fmt.Errorf("load series %s/%s: %w", ticker, metric, err)
	}
	history = dropExcluded(history, exclude)
	if len(history) == 0 {
		return models.ForecastResult{}, ErrNoData
	}

	start := time.Now()
	res, err := e.model.Generate(ctx, ticker, metric, kind, horizon, history)
	e.metrics.RecordLatency("model_generate", time.Since(start).Seconds())
	if err != nil {
		e.metrics.RecordError("model")
		return models.ForecastResult{}, fmt.Errorf("%w: %v", ErrModelFailure, err)
	}
	return res, nil
}

func dropExcluded(points []models.SeriesPoint, exclude []int) []models.SeriesPoint {
	if len(exclude) == 0 {
		return points
	}
	drop := make(map[int]struct{}, len(exclude))
	for _, p := range exclude {
		drop[p] = struct{}{}
	}
	out := points[:0:0]
	for _, p := range points {
		if _, skip := drop[p.Period]; !skip {
			out = append(out, p)
		}
	}
	return out
}

// comparisonPayload builds a per-period side-by-side table over the union of
// both forecasts' periods; a period absent from one side reads as zero.
func comparisonPayload(base, other models.ForecastResult, baseLabel, otherLabel string) *models.ComparisonPayload {
	baseByPeriod := make(map[int]float64, len(base.Points))
	for _, p := range base.Points {
		baseByPeriod[p.Period] = p.Value
	}
	otherByPeriod := make(map[int]float64, len(other.Points))
	for _, p := range other.Points {
		otherByPeriod[p.Period] = p.Value
	}

	periodSet := make(map[int]struct{}, len(baseByPeriod)+len(otherByPeriod))
	for p := range baseByPeriod {
		periodSet[p] = struct{}{}
	}
	for p := range otherByPeriod {
		periodSet[p] = struct{}{}
	}
	periods := make([]int, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Ints(periods)

	rows := make([]models.ComparisonRow, 0, len(periods))
	for _, p := range periods {
		b := baseByPeriod[p]
		o := otherByPeriod[p]
		rows = append(rows, models.ComparisonRow{Period: p, Base: b, Other: o, Delta: o - b})
	}

	return &models.ComparisonPayload{
		BaseLabel:       baseLabel,
		OtherLabel:      otherLabel,
		BaseConfidence:  base.Confidence,
		OtherConfidence: other.Confidence,
		Rows:            rows,
	}
}
