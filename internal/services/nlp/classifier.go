package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

// Classification is the typed outcome of Classify: the interaction type plus
// whatever arguments the matched template carried.
type Classification struct {
	Type          models.InteractionType
	SaveName      string
	CompareName   string
	Model         models.ModelKind
	Horizon       int
	ExcludePeriod int
	Params        []models.ScenarioParameter
}

var (
	saveRe    = regexp.MustCompile(`(?i)\bsave\b.*?\bas\b\s+(?:"([^"]+)"|'([^']+)'|((?-i:[A-Z])\w*|\w+_\w+))`)
	compareRe = regexp.MustCompile(`(?i)\bcompare\b.*?\b(?:to|with|against)\b\s+(?:the\s+)?(?:"([^"]+)"|'([^']+)'|([A-Za-z]\w*))`)
	switchRe  = regexp.MustCompile(`(?i)\b(?:switch\s+to|use)\s+(?:the\s+)?([a-z]+)\b`)
	horizonRe = regexp.MustCompile(`(?i)\b(?:change|set)\s+(?:the\s+)?horizon\s+to\s+(\d+)\b`)
	excludeRe = regexp.MustCompile(`(?i)\bexclude\s+(\d{4})\s+as\s+(?:an\s+)?outlier\b`)
	whatIfRe  = regexp.MustCompile(`(?i)\bwhat\s+(?:would\s+happen\s+)?if\b(.+)`)
	whyRe     = regexp.MustCompile(`(?i)\bwhy\b`)
	driverRe  = regexp.MustCompile(`(?i)\bdriv(?:er|ers|ing)\b|\bbreakdown\b`)
)

var confidenceLexicon = []string{"how confident", "uncertainty", "confidence interval"}

var genericReferences = map[string]struct{}{
	"it":           {},
	"this":         {},
	"that":         {},
	"the forecast": {},
}

// Classify maps a follow-up utterance to an interaction type, first match
// wins in priority order. Without an active forecast every classification
// short-circuits: the turn is a fresh forecast request.
func Classify(utterance string, hasActive bool) (Classification, bool) {
	if !hasActive {
		return Classification{}, false
	}
	lower := strings.ToLower(utterance)

	if m := saveRe.FindStringSubmatch(utterance); m != nil {
		return Classification{Type: models.InteractionSave, SaveName: firstGroup(m)}, true
	}
	if m := compareRe.FindStringSubmatch(utterance); m != nil {
		return Classification{Type: models.InteractionCompare, CompareName: firstGroup(m)}, true
	}
	if m := switchRe.FindStringSubmatch(utterance); m != nil {
		kind := models.ModelKind(strings.ToLower(m[1]))
		if models.IsValidModelKind(kind) {
			return Classification{Type: models.InteractionModelSwitch, Model: kind}, true
		}
	}
	if m := horizonRe.FindStringSubmatch(utterance); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Classification{Type: models.InteractionParameterAdjust, Horizon: n}, true
	}
	if m := excludeRe.FindStringSubmatch(utterance); m != nil {
		year, _ := strconv.Atoi(m[1])
		return Classification{Type: models.InteractionParameterAdjust, ExcludePeriod: year}, true
	}
	if m := whatIfRe.FindStringSubmatch(utterance); m != nil {
		// Scenario only if the remainder yields at least one parameter;
		// otherwise fall through to the remaining matchers.
		if params := ParseScenarioParameters(m[1]); len(params) > 0 {
			return Classification{Type: models.InteractionScenario, Params: params}, true
		}
	}
	for _, phrase := range confidenceLexicon {
		if strings.Contains(lower, phrase) {
			return Classification{Type: models.InteractionConfidence}, true
		}
	}
	if whyRe.MatchString(utterance) || driverRe.MatchString(utterance) {
		return Classification{Type: models.InteractionExplainability}, true
	}
	// Pronoun-only turns: bare references to the active forecast are most
	// commonly asking what is behind it.
	if _, ok := genericReferences[normalizeReference(lower)]; ok {
		return Classification{Type: models.InteractionExplainability}, true
	}

	return Classification{}, false
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

func normalizeReference(lower string) string {
	trimmed := strings.TrimSpace(lower)
	trimmed = strings.Trim(trimmed, ".!?")
	return strings.TrimSpace(trimmed)
}
