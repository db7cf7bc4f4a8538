package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
	domrepo "github.com/haniae/Team2-CBA-Project-sub004/internal/domain/repository"
)

// ForecastRequest is a fresh forecast ask extracted from an unclassified turn.
type ForecastRequest struct {
	Ticker  string
	Metric  string
	Model   models.ModelKind
	Horizon int
}

const defaultHorizon = 3

var (
	tickerAfterPrepRe = regexp.MustCompile(`\b(?:for|of)\s+([A-Z]{1,5})\b`)
	tickerBareRe      = regexp.MustCompile(`\b([A-Z]{2,5})\b`)
	horizonYearsRe    = regexp.MustCompile(`(?i)\b(\d+)\s*(?:years?|periods?)\b`)
)

// Tokens that look like tickers but never are in this domain.
var reservedUppercase = map[string]struct{}{
	"GDP": {}, "EPS": {}, "COGS": {}, "FCF": {}, "PP": {}, "USD": {},
}

var metricTriggers = []struct {
	trigger string
	metric  domrepo.Metric
}{
	{"free cash flow", domrepo.MetricFCF},
	{"fcf", domrepo.MetricFCF},
	{"net income", domrepo.MetricNetIncome},
	{"profit", domrepo.MetricNetIncome},
	{"earnings per share", domrepo.MetricEPS},
	{"eps", domrepo.MetricEPS},
	{"sales", domrepo.MetricRevenue},
	{"revenue", domrepo.MetricRevenue},
}

// ParseForecastRequest extracts (ticker, metric, model, horizon) from a fresh
// forecast turn such as "forecast revenue for AAPL over 5 years using prophet".
// A ticker is required; everything else falls back to defaults.
func ParseForecastRequest(text string) (ForecastRequest, bool) {
	ticker := extractTicker(text)
	if ticker == "" {
		return ForecastRequest{}, false
	}

	req := ForecastRequest{
		Ticker:  ticker,
		Metric:  string(domrepo.DefaultMetric()),
		Model:   models.DefaultModelKind(),
		Horizon: defaultHorizon,
	}

	lower := strings.ToLower(text)
	for _, t := range metricTriggers {
		if strings.Contains(lower, t.trigger) {
			req.Metric = string(t.metric)
			break
		}
	}
	for _, k := range models.ModelKinds() {
		if strings.Contains(lower, string(k)) {
			req.Model = k
			break
		}
	}
	if m := horizonYearsRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			req.Horizon = n
		}
	}
	return req, true
}

func extractTicker(text string) string {
	if m := tickerAfterPrepRe.FindStringSubmatch(text); m != nil {
		if _, reserved := reservedUppercase[m[1]]; !reserved {
			return m[1]
		}
	}
	for _, m := range tickerBareRe.FindAllStringSubmatch(text, -1) {
		if _, reserved := reservedUppercase[m[1]]; !reserved {
			return m[1]
		}
	}
	return ""
}
