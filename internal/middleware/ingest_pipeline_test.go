package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

type countingProc struct {
	calls int
}

func (p *countingProc) Process(_ context.Context, _ *models.Observation) error {
	p.calls++
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordTurn(string)             {}
func (nopMetrics) RecordMessageSent(_, _ string) {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}

func obs(ticker string) *models.Observation {
	return &models.Observation{Ticker: ticker, Metric: "price", Timestamp: time.Now().Unix(), Value: 123.45}
}

func TestPipelineRejectsInvalidObservations(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{})
	ctx := context.Background()

	cases := []*models.Observation{
		nil,
		{Metric: "price", Timestamp: 1, Value: 1},
		{Ticker: "AAPL", Timestamp: 1, Value: 1},
		{Ticker: "AAPL", Metric: "price", Timestamp: 0, Value: 1},
	}
	for i, o := range cases {
		if err := p.Process(ctx, o); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if proc.calls != 0 {
		t.Fatalf("invalid observations must not reach downstream, got %d calls", proc.calls)
	}
}

func TestPipelineForwardsValidObservations(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	if err := p.Process(context.Background(), obs("AAPL")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.calls != 1 {
		t.Fatalf("expected 1 downstream call, got %d", proc.calls)
	}
}

func TestPipelineThrottlesPerTicker(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{}, WithMaxRPS(1))
	ctx := context.Background()

	// Two immediate observations for one ticker: second is throttled silently.
	if err := p.Process(ctx, obs("AAPL")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Process(ctx, obs("AAPL")); err != nil {
		t.Fatalf("throttle must drop silently: %v", err)
	}
	if proc.calls != 1 {
		t.Fatalf("expected second observation throttled, got %d calls", proc.calls)
	}

	// A different ticker is not throttled.
	if err := p.Process(ctx, obs("MSFT")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.calls != 2 {
		t.Fatalf("expected independent per-ticker throttle, got %d calls", proc.calls)
	}
}

func TestPipelineTransformHook(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{},
		WithTransform(func(o *models.Observation) *models.Observation {
			o.Metric = "close"
			return o
		}),
	)

	o := obs("AAPL")
	if err := p.Process(context.Background(), o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Metric != "close" {
		t.Fatalf("transform not applied: %s", o.Metric)
	}
}
