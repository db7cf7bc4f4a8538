package nlp

import (
	"testing"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

func TestParseForecastRequestFull(t *testing.T) {
	req, ok := ParseForecastRequest("forecast revenue for AAPL over 5 years using prophet")
	if !ok {
		t.Fatalf("expected ok")
	}
	if req.Ticker != "AAPL" {
		t.Fatalf("unexpected ticker %q", req.Ticker)
	}
	if req.Metric != "revenue" {
		t.Fatalf("unexpected metric %q", req.Metric)
	}
	if req.Model != models.ModelProphet {
		t.Fatalf("unexpected model %s", req.Model)
	}
	if req.Horizon != 5 {
		t.Fatalf("unexpected horizon %d", req.Horizon)
	}
}

func TestParseForecastRequestDefaults(t *testing.T) {
	req, ok := ParseForecastRequest("show me a forecast for MSFT")
	if !ok {
		t.Fatalf("expected ok")
	}
	if req.Ticker != "MSFT" {
		t.Fatalf("unexpected ticker %q", req.Ticker)
	}
	if req.Metric != "revenue" {
		t.Fatalf("unexpected default metric %q", req.Metric)
	}
	if req.Model != models.DefaultModelKind() {
		t.Fatalf("unexpected default model %s", req.Model)
	}
	if req.Horizon != 3 {
		t.Fatalf("unexpected default horizon %d", req.Horizon)
	}
}

func TestParseForecastRequestBareTicker(t *testing.T) {
	req, ok := ParseForecastRequest("NVDA eps next 2 years")
	if !ok {
		t.Fatalf("expected ok")
	}
	if req.Ticker != "NVDA" {
		t.Fatalf("unexpected ticker %q", req.Ticker)
	}
	if req.Metric != "eps" {
		t.Fatalf("unexpected metric %q", req.Metric)
	}
	if req.Horizon != 2 {
		t.Fatalf("unexpected horizon %d", req.Horizon)
	}
}

func TestParseForecastRequestReservedUppercase(t *testing.T) {
	// GDP and EPS look like tickers but never are.
	if _, ok := ParseForecastRequest("what does GDP do to EPS"); ok {
		t.Fatalf("expected no ticker")
	}
}

func TestParseForecastRequestNoTicker(t *testing.T) {
	if _, ok := ParseForecastRequest("forecast something for me"); ok {
		t.Fatalf("expected no ticker")
	}
}
