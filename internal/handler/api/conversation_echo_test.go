package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/usecase"
	xlogger "github.com/haniae/Team2-CBA-Project-sub004/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubModel struct {
	err error
}

func (m *stubModel) Generate(_ context.Context, ticker, metric string, kind models.ModelKind, horizon int, history []models.SeriesPoint) (models.ForecastResult, error) {
	if m.err != nil {
		return models.ForecastResult{}, m.err
	}
	last := 0
	if len(history) > 0 {
		last = history[len(history)-1].Period
	}
	pts := make([]models.ForecastPoint, horizon)
	for i := range pts {
		pts[i] = models.ForecastPoint{Period: last + i + 1, Value: 100, Lower: 95, Upper: 105}
	}
	return models.ForecastResult{
		Ticker: ticker, Metric: metric, Model: kind, Horizon: horizon,
		Points: pts, Confidence: 0.8,
	}, nil
}

type stubSeries struct {
	empty bool
}

func (s *stubSeries) points() []models.SeriesPoint {
	if s.empty {
		return nil
	}
	return []models.SeriesPoint{{Period: 2023, Value: 90}, {Period: 2024, Value: 95}, {Period: 2025, Value: 100}}
}

func (s *stubSeries) GetSeries(_ context.Context, _, _ string, _, _ int) ([]models.SeriesPoint, error) {
	return s.points(), nil
}

func (s *stubSeries) GetLatestNPeriods(_ context.Context, _, _ string, _ int) ([]models.SeriesPoint, error) {
	return s.points(), nil
}

type stubGateway struct {
	saved map[string]models.ActiveForecast
}

func (g *stubGateway) Save(_ context.Context, id, name string, f models.ActiveForecast) error {
	g.saved[id+"/"+strings.ToLower(name)] = f
	return nil
}

func (g *stubGateway) Load(_ context.Context, id, name string) (models.ActiveForecast, bool, error) {
	f, ok := g.saved[id+"/"+strings.ToLower(name)]
	return f, ok, nil
}

func (g *stubGateway) List(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

type noMetrics struct{}

func (noMetrics) RecordTurn(string)             {}
func (noMetrics) RecordMessageSent(_, _ string) {}
func (noMetrics) RecordError(string)            {}
func (noMetrics) RecordLatency(string, float64) {}

func newTestHandler(t *testing.T, model *stubModel, series *stubSeries) *ConversationEchoHandler {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	gw := &stubGateway{saved: make(map[string]models.ActiveForecast)}
	engine := usecase.NewForecastConversationEngine(model, series, gw, noMetrics{})
	return NewConversationEchoHandler(l, engine, usecase.NewConversationManager(0))
}

func doTurn(t *testing.T, h *ConversationEchoHandler, e *echo.Echo, convID, text string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"text": text})
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/"+convID+"/turns", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(convID)
	if err := h.Turn(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func envelopeStatus(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var env struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env.Status
}

func TestTurnSuccess(t *testing.T) {
	h := newTestHandler(t, &stubModel{}, &stubSeries{})
	e := echo.New()

	rec := doTurn(t, h, e, "c1", "forecast revenue for AAPL")
	if got := envelopeStatus(t, rec); got != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", got, rec.Body.String())
	}
}

func TestTurnUnparseableMapsToBadRequest(t *testing.T) {
	h := newTestHandler(t, &stubModel{}, &stubSeries{})
	e := echo.New()

	rec := doTurn(t, h, e, "c1", "hello there")
	if got := envelopeStatus(t, rec); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", got, rec.Body.String())
	}
}

func TestTurnNoDataMapsToUnprocessable(t *testing.T) {
	h := newTestHandler(t, &stubModel{}, &stubSeries{empty: true})
	e := echo.New()

	rec := doTurn(t, h, e, "c1", "forecast revenue for AAPL")
	if got := envelopeStatus(t, rec); got != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", got, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ERR_NO_DATA") {
		t.Fatalf("expected ERR_NO_DATA code: %s", rec.Body.String())
	}
}

func TestTurnModelFailureMapsToBadGateway(t *testing.T) {
	h := newTestHandler(t, &stubModel{err: errors.New("upstream down")}, &stubSeries{})
	e := echo.New()

	rec := doTurn(t, h, e, "c1", "forecast revenue for AAPL")
	if got := envelopeStatus(t, rec); got != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", got, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ERR_MODEL_FAILURE") {
		t.Fatalf("expected ERR_MODEL_FAILURE code: %s", rec.Body.String())
	}
}

func TestTurnRateLimited(t *testing.T) {
	h := newTestHandler(t, &stubModel{}, &stubSeries{})
	e := echo.New()

	limited := 0
	for i := 0; i < 12; i++ {
		rec := doTurn(t, h, e, "c1", "forecast revenue for AAPL")
		if envelopeStatus(t, rec) == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited == 0 {
		t.Fatalf("expected at least one rate-limited turn")
	}
}

func TestTurnMissingTextFailsValidation(t *testing.T) {
	h := newTestHandler(t, &stubModel{}, &stubSeries{})
	e := echo.New()

	rec := doTurn(t, h, e, "c1", "")
	if got := envelopeStatus(t, rec); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", got, rec.Body.String())
	}
}
