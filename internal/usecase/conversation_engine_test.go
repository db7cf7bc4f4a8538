package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

// --- fakes ---

type fakeModel struct {
	err         error
	lastHistory []models.SeriesPoint
}

func (f *fakeModel) Generate(_ context.Context, ticker, metric string, kind models.ModelKind, horizon int, history []models.SeriesPoint) (models.ForecastResult, error) {
	f.lastHistory = history
	if f.err != nil {
		return models.ForecastResult{}, f.err
	}
	base := 100.0
	if kind == models.ModelProphet {
		base = 200.0
	}
	points := make([]models.ForecastPoint, horizon)
	for i := range points {
		v := base + float64(i)*10
		points[i] = models.ForecastPoint{Period: 2026 + i, Value: v, Lower: v - 5, Upper: v + 5}
	}
	return models.ForecastResult{
		Ticker:     ticker,
		Metric:     metric,
		Model:      kind,
		Horizon:    horizon,
		Points:     points,
		Confidence: 0.85,
		Drivers:    map[string]float64{"trend": 0.7, "seasonality": 0.3},
	}, nil
}

type fakeSeries struct {
	points []models.SeriesPoint
	err    error
}

func (f *fakeSeries) GetSeries(_ context.Context, _, _ string, _, _ int) ([]models.SeriesPoint, error) {
	return f.points, f.err
}

func (f *fakeSeries) GetLatestNPeriods(_ context.Context, _, _ string, _ int) ([]models.SeriesPoint, error) {
	return f.points, f.err
}

type fakeGateway struct {
	saved    map[string]models.ActiveForecast
	failSave bool
	failLoad bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{saved: make(map[string]models.ActiveForecast)}
}

func (g *fakeGateway) Save(_ context.Context, id, name string, f models.ActiveForecast) error {
	if g.failSave {
		return errors.New("gateway down")
	}
	g.saved[id+"/"+strings.ToLower(name)] = f
	return nil
}

func (g *fakeGateway) Load(_ context.Context, id, name string) (models.ActiveForecast, bool, error) {
	if g.failLoad {
		return models.ActiveForecast{}, false, errors.New("gateway down")
	}
	f, ok := g.saved[id+"/"+strings.ToLower(name)]
	return f, ok, nil
}

func (g *fakeGateway) List(_ context.Context, id string) ([]string, error) {
	if g.failLoad {
		return nil, errors.New("gateway down")
	}
	var names []string
	for k := range g.saved {
		if strings.HasPrefix(k, id+"/") {
			names = append(names, strings.TrimPrefix(k, id+"/"))
		}
	}
	return names, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordTurn(string)            {}
func (nopMetrics) RecordMessageSent(_, _ string) {}
func (nopMetrics) RecordError(string)           {}
func (nopMetrics) RecordLatency(string, float64) {}

func defaultSeries() *fakeSeries {
	return &fakeSeries{points: []models.SeriesPoint{
		{Period: 2023, Value: 90},
		{Period: 2024, Value: 95},
		{Period: 2025, Value: 100},
	}}
}

func newTestEngine(model *fakeModel, series *fakeSeries, gw *fakeGateway) (*ForecastConversationEngine, *ConversationState) {
	e := NewForecastConversationEngine(model, series, gw, nopMetrics{})
	st := NewConversationState("c1", 0)
	return e, st
}

// --- tests ---

func TestFreshForecastTurn(t *testing.T) {
	e, st := newTestEngine(&fakeModel{}, defaultSeries(), newFakeGateway())

	out, err := e.HandleTurn(context.Background(), st, "forecast revenue for AAPL over 3 years")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Type != models.InteractionForecast {
		t.Fatalf("unexpected type %s", out.Type)
	}
	if out.ConversationID != "c1" {
		t.Fatalf("unexpected conversation id %q", out.ConversationID)
	}
	if out.Forecast == nil || len(out.Forecast.Points) != 3 {
		t.Fatalf("unexpected forecast %+v", out.Forecast)
	}
	if !st.HasActive() {
		t.Fatalf("expected active forecast after fresh turn")
	}
}

func TestFreshTurnUnparseable(t *testing.T) {
	e, st := newTestEngine(&fakeModel{}, defaultSeries(), newFakeGateway())

	_, err := e.HandleTurn(context.Background(), st, "forecast something for me")
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	if st.HasActive() {
		t.Fatalf("failed turn must not activate a forecast")
	}
}

func TestFreshTurnNoData(t *testing.T) {
	e, st := newTestEngine(&fakeModel{}, &fakeSeries{}, newFakeGateway())

	_, err := e.HandleTurn(context.Background(), st, "forecast revenue for AAPL")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestModelFailureLeavesActiveUntouched(t *testing.T) {
	model := &fakeModel{}
	e, st := newTestEngine(model, defaultSeries(), newFakeGateway())
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, st, "forecast revenue for AAPL"); err != nil {
		t.Fatalf("setup turn failed: %v", err)
	}
	before, _ := st.Active()
	histBefore := len(st.History())

	model.err = errors.New("backend exploded")
	_, err := e.HandleTurn(ctx, st, "switch to prophet")
	if !errors.Is(err, ErrModelFailure) {
		t.Fatalf("expected ErrModelFailure, got %v", err)
	}

	after, _ := st.Active()
	if after.Result.Model != before.Result.Model {
		t.Fatalf("active forecast changed on failure: %s -> %s", before.Result.Model, after.Result.Model)
	}
	if after.Result.Points[0].Value != before.Result.Points[0].Value {
		t.Fatalf("active forecast values changed on failure")
	}
	if len(st.History()) != histBefore {
		t.Fatalf("history changed on failure")
	}
}

func TestModelSwitchReplacesActiveAndCompares(t *testing.T) {
	e, st := newTestEngine(&fakeModel{}, defaultSeries(), newFakeGateway())
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, st, "forecast revenue for AAPL"); err != nil {
		t.Fatalf("setup turn failed: %v", err)
	}

	out, err := e.HandleTurn(ctx, st, "switch to prophet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Type != models.InteractionModelSwitch {
		t.Fatalf("unexpected type %s", out.Type)
	}
	if out.Comparison == nil {
		t.Fatalf("expected comparison payload")
	}
	// old arima=100, new prophet=200 for the first period
	row := out.Comparison.Rows[0]
	if row.Base != 100 || row.Other != 200 || row.Delta != 100 {
		t.Fatalf("unexpected comparison row %+v", row)
	}

	active, _ := st.Active()
	if active.Result.Model != models.ModelProphet {
		t.Fatalf("expected prophet active, got %s", active.Result.Model)
	}
	if len(st.History()) != 1 {
		t.Fatalf("expected old forecast in history")
	}
}

func TestExcludeOutlierDropsPeriodFromHistory(t *testing.T) {
	model := &fakeModel{}
	e, st := newTestEngine(model, defaultSeries(), newFakeGateway())
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, st, "forecast revenue for AAPL"); err != nil {
		t.Fatalf("setup turn failed: %v", err)
	}

	if _, err := e.HandleTurn(ctx, st, "exclude 2024 as an outlier"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range model.lastHistory {
		if p.Period == 2024 {
			t.Fatalf("excluded period fed to model")
		}
	}
	active, _ := st.Active()
	if len(active.Params.ExcludedPeriods) != 1 || active.Params.ExcludedPeriods[0] != 2024 {
		t.Fatalf("exclusion not recorded: %+v", active.Params)
	}
}

func TestScenarioCompoundsOnActive(t *testing.T) {
	e, st := newTestEngine(&fakeModel{}, defaultSeries(), newFakeGateway())
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, st, "forecast revenue for AAPL"); err != nil {
		t.Fatalf("setup turn failed: %v", err)
	}

	out, err := e.HandleTurn(ctx, st, "what if volume increases 10%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Type != models.InteractionScenario {
		t.Fatalf("unexpected type %s", out.Type)
	}
	active, _ := st.Active()
	if v := active.Result.Points[0].Value; v < 109.99 || v > 110.01 {
		t.Fatalf("expected ~110, got %v", v)
	}
	if len(st.History()) != 1 {
		t.Fatalf("baseline must be pushed to history")
	}

	// Second scenario compounds on the adjusted active, not the baseline.
	if _, err := e.HandleTurn(ctx, st, "what if price falls 5%"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	active, _ = st.Active()
	want := 100.0 * 1.10 * 0.95
	if v := active.Result.Points[0].Value; v < want-0.01 || v > want+0.01 {
		t.Fatalf("expected ~%v, got %v", want, v)
	}
	if len(active.Applied) != 2 {
		t.Fatalf("applied parameters must accumulate: %+v", active.Applied)
	}
	if len(st.History()) != 2 {
		t.Fatalf("each scenario must snapshot its baseline")
	}
}

func TestConfidenceIntervals(t *testing.T) {
	e, st := newTestEngine(&fakeModel{}, defaultSeries(), newFakeGateway())
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, st, "forecast revenue for AAPL"); err != nil {
		t.Fatalf("setup turn failed: %v", err)
	}

	out, err := e.HandleTurn(ctx, st, "how confident are you in this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Type != models.InteractionConfidence {
		t.Fatalf("unexpected type %s", out.Type)
	}
	if out.Confidence.Score != 0.85 {
		t.Fatalf("unexpected score %v", out.Confidence.Score)
	}
	if w := out.Confidence.Intervals[0].Width; w != 10 {
		t.Fatalf("unexpected interval width %v", w)
	}
}

func TestExplainabilityWithAndWithoutDrivers(t *testing.T) {
	model := &fakeModel{}
	e, st := newTestEngine(model, defaultSeries(), newFakeGateway())
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, st, "forecast revenue for AAPL"); err != nil {
		t.Fatalf("setup turn failed: %v", err)
	}

	out, err := e.HandleTurn(ctx, st, "why is it going up")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Explain == nil || out.Explain.Limited || len(out.Explain.Drivers) == 0 {
		t.Fatalf("expected drivers, got %+v", out.Explain)
	}

	// A model without attribution degrades to a limited answer, not an error.
	st2 := NewConversationState("c2", 0)
	st2.mu.Lock()
	f := mkForecast(100)
	f.Result.Drivers = nil
	st2.replaceActiveLocked(f)
	st2.mu.Unlock()

	out, err = e.HandleTurn(ctx, st2, "why is it going up")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Explain == nil || !out.Explain.Limited {
		t.Fatalf("expected limited explanation, got %+v", out.Explain)
	}
}

func TestSaveDurableAndDegraded(t *testing.T) {
	gw := newFakeGateway()
	e, st := newTestEngine(&fakeModel{}, defaultSeries(), gw)
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, st, "forecast revenue for AAPL"); err != nil {
		t.Fatalf("setup turn failed: %v", err)
	}

	out, err := e.HandleTurn(ctx, st, `save this as "bull"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Save == nil || !out.Save.Durable || out.Save.Name != "bull" {
		t.Fatalf("unexpected save payload %+v", out.Save)
	}

	// A failing gateway degrades to in-memory only; the turn still succeeds.
	gw.failSave = true
	out, err = e.HandleTurn(ctx, st, `save this as "bear"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Save.Durable {
		t.Fatalf("expected degraded save")
	}
	if _, ok := st.Named("bear"); !ok {
		t.Fatalf("in-memory save must survive gateway failure")
	}
}

func TestCompareUnknownReturnsKnownNames(t *testing.T) {
	e, st := newTestEngine(&fakeModel{}, defaultSeries(), newFakeGateway())
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, st, "forecast revenue for AAPL"); err != nil {
		t.Fatalf("setup turn failed: %v", err)
	}
	if _, err := e.HandleTurn(ctx, st, `save this as "bull"`); err != nil {
		t.Fatalf("save turn failed: %v", err)
	}

	out, err := e.HandleTurn(ctx, st, "compare this to the moon")
	if err != nil {
		t.Fatalf("unknown name must not error: %v", err)
	}
	if out.Comparison != nil {
		t.Fatalf("unexpected comparison for unknown name")
	}
	found := false
	for _, n := range out.KnownNames {
		if n == "bull" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected known names to include bull, got %v", out.KnownNames)
	}
}

func TestCompareFallsBackToGateway(t *testing.T) {
	gw := newFakeGateway()
	e, st := newTestEngine(&fakeModel{}, defaultSeries(), gw)
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, st, "forecast revenue for AAPL"); err != nil {
		t.Fatalf("setup turn failed: %v", err)
	}

	// Durable save from an earlier session, absent from memory.
	gw.saved["c1/base"] = mkForecast(150)

	out, err := e.HandleTurn(ctx, st, "compare this with base")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Comparison == nil {
		t.Fatalf("expected comparison from durable forecast")
	}
	if out.Comparison.Rows[0].Other != 150 {
		t.Fatalf("unexpected other value %v", out.Comparison.Rows[0].Other)
	}
}

func TestSavedForecastNamesMergesMemoryAndDurable(t *testing.T) {
	gw := newFakeGateway()
	e, _ := newTestEngine(&fakeModel{}, defaultSeries(), gw)
	ctx := context.Background()

	convs := NewConversationManager(0)
	st := convs.GetOrCreate("c1")
	if _, err := e.HandleTurn(ctx, st, "forecast revenue for AAPL"); err != nil {
		t.Fatalf("setup turn failed: %v", err)
	}
	if _, err := e.HandleTurn(ctx, st, `save this as "bull"`); err != nil {
		t.Fatalf("save turn failed: %v", err)
	}
	gw.saved["c1/legacy"] = mkForecast(1)

	names, err := e.SavedForecastNames(ctx, convs, "c1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fmt.Sprint(names) != "[bull legacy]" {
		t.Fatalf("unexpected names %v", names)
	}
}
