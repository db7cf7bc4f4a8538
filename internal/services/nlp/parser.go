package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

// kindTriggers maps trigger nouns to parameter kinds. Ordered so multi-word
// triggers are tried before their substrings (e.g. "marketing spend" before
// bare "revenue", "cost of goods" before "cogs").
var kindTriggers = []struct {
	trigger string
	kind    models.ParameterKind
}{
	{"marketing spend", models.KindMarketingSpend},
	{"marketing budget", models.KindMarketingSpend},
	{"interest rate", models.KindInterestRate},
	{"tax rate", models.KindTaxRate},
	{"market share", models.KindMarketShare},
	{"cost of goods", models.KindCOGS},
	{"cogs", models.KindCOGS},
	{"volume", models.KindVolume},
	{"margin", models.KindMargin},
	{"gdp", models.KindGDP},
	{"pricing", models.KindPrice},
	{"price", models.KindPrice},
	{"revenue", models.KindRevenueGrowth},
}

var (
	connectorRe = regexp.MustCompile(`(?i)\band\b|\bplus\b|\bcombined\s+with\b|\balong\s+with\b|,`)
	magnitudeRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(%|percentage\s+points?|percent|pp)\b`)
	positiveRe  = regexp.MustCompile(`(?i)\b(increas\w*|ris(?:e|es|ing)|rose|grow\w*|grew|improv\w*|expand\w*|gain\w*|up)\b`)
	negativeRe  = regexp.MustCompile(`(?i)\b(decreas\w*|fall\w*|fell|drop\w*|declin\w*|deteriorat\w*|shrink\w*|shrank|los(?:e|es|ing)|lost|down)\b`)
	doubleRe    = regexp.MustCompile(`(?i)\bdoubl\w*\b`)
	halveRe     = regexp.MustCompile(`(?i)\bhalv\w*\b`)
)

// ParseScenarioParameters extracts typed, signed assumptions from a what-if
// clause, e.g. "volume increases 15% and COGS falls 5%". It fails silently:
// sub-clauses with no recognizable kind or magnitude are dropped, and an
// empty result is not an error.
func ParseScenarioParameters(clause string) []models.ScenarioParameter {
	var out []models.ScenarioParameter
	for _, sub := range connectorRe.Split(clause, -1) {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		p, ok := parseSubClause(sub)
		if !ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parseSubClause(sub string) (models.ScenarioParameter, bool) {
	lower := strings.ToLower(sub)

	kind, ok := matchKind(lower)
	if !ok {
		return models.ScenarioParameter{}, false
	}

	// double/halve carry an implicit magnitude and direction.
	if doubleRe.MatchString(sub) {
		return models.ScenarioParameter{Kind: kind, Magnitude: 1.0, Unit: models.UnitPercentOfBase}, true
	}
	if halveRe.MatchString(sub) {
		return models.ScenarioParameter{Kind: kind, Magnitude: -0.5, Unit: models.UnitPercentOfBase}, true
	}

	m := magnitudeRe.FindStringSubmatch(sub)
	if m == nil {
		return models.ScenarioParameter{}, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return models.ScenarioParameter{}, false
	}
	magnitude := value / 100

	unit := models.UnitPercentOfBase
	switch u := strings.ToLower(m[2]); {
	case u == "pp" || strings.HasPrefix(u, "percentage"):
		unit = models.UnitPercentagePoints
	}

	// The direction word decides the sign; digits are never pre-signed in
	// this domain. No cue defaults to positive.
	if negativeRe.MatchString(sub) && !positiveRe.MatchString(sub) {
		magnitude = -magnitude
	}

	return models.ScenarioParameter{Kind: kind, Magnitude: magnitude, Unit: unit}, true
}

func matchKind(lower string) (models.ParameterKind, bool) {
	for _, t := range kindTriggers {
		if strings.Contains(lower, t.trigger) {
			return t.kind, true
		}
	}
	return "", false
}
