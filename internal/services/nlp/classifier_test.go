package nlp

import (
	"testing"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

func TestClassifyWithoutActiveForecast(t *testing.T) {
	// Every follow-up template short-circuits to a fresh request when no
	// forecast is active.
	for _, utterance := range []string{
		"switch to prophet",
		"save this as Base",
		"why?",
		"what if volume increases 10%",
	} {
		if _, ok := Classify(utterance, false); ok {
			t.Fatalf("%q: expected no classification without active forecast", utterance)
		}
	}
}

func TestClassifySave(t *testing.T) {
	cls, ok := Classify(`save this as "base case"`, true)
	if !ok || cls.Type != models.InteractionSave {
		t.Fatalf("expected save, got %+v ok=%v", cls, ok)
	}
	if cls.SaveName != "base case" {
		t.Fatalf("unexpected name %q", cls.SaveName)
	}
}

func TestClassifySaveBareName(t *testing.T) {
	cls, ok := Classify("save it as Optimistic", true)
	if !ok || cls.Type != models.InteractionSave {
		t.Fatalf("expected save, got %+v ok=%v", cls, ok)
	}
	if cls.SaveName != "Optimistic" {
		t.Fatalf("unexpected name %q", cls.SaveName)
	}
}

func TestClassifySaveUnderscoreName(t *testing.T) {
	cls, ok := Classify("save this as bear_case", true)
	if !ok || cls.Type != models.InteractionSave {
		t.Fatalf("expected save, got %+v ok=%v", cls, ok)
	}
	if cls.SaveName != "bear_case" {
		t.Fatalf("unexpected name %q", cls.SaveName)
	}
}

func TestClassifySaveRejectsLowercaseFiller(t *testing.T) {
	// A bare lowercase word after "as" is a filler, not a name; only quoted,
	// capitalized, or underscored tokens name a save.
	if cls, ok := Classify("save it as my base case", true); ok {
		t.Fatalf("expected no match, got %+v", cls)
	}
}

func TestClassifyCompare(t *testing.T) {
	cls, ok := Classify(`compare this to the "base case"`, true)
	if !ok || cls.Type != models.InteractionCompare {
		t.Fatalf("expected compare, got %+v ok=%v", cls, ok)
	}
	if cls.CompareName != "base case" {
		t.Fatalf("unexpected name %q", cls.CompareName)
	}
}

func TestClassifyModelSwitch(t *testing.T) {
	cls, ok := Classify("switch to prophet", true)
	if !ok || cls.Type != models.InteractionModelSwitch {
		t.Fatalf("expected model switch, got %+v ok=%v", cls, ok)
	}
	if cls.Model != models.ModelProphet {
		t.Fatalf("unexpected model %s", cls.Model)
	}
}

func TestClassifyUnknownModelFallsThrough(t *testing.T) {
	// "use the crystal ball" matches the switch template but names no model.
	cls, ok := Classify("use the crystal ball", true)
	if ok {
		t.Fatalf("expected fall-through, got %+v", cls)
	}
}

func TestClassifyHorizonAdjust(t *testing.T) {
	cls, ok := Classify("change the horizon to 5", true)
	if !ok || cls.Type != models.InteractionParameterAdjust {
		t.Fatalf("expected parameter adjust, got %+v ok=%v", cls, ok)
	}
	if cls.Horizon != 5 {
		t.Fatalf("unexpected horizon %d", cls.Horizon)
	}
}

func TestClassifyExcludeOutlier(t *testing.T) {
	cls, ok := Classify("exclude 2020 as an outlier", true)
	if !ok || cls.Type != models.InteractionParameterAdjust {
		t.Fatalf("expected parameter adjust, got %+v ok=%v", cls, ok)
	}
	if cls.ExcludePeriod != 2020 {
		t.Fatalf("unexpected period %d", cls.ExcludePeriod)
	}
}

func TestClassifyScenario(t *testing.T) {
	cls, ok := Classify("what would happen if volume increases 15% and COGS falls 5%", true)
	if !ok || cls.Type != models.InteractionScenario {
		t.Fatalf("expected scenario, got %+v ok=%v", cls, ok)
	}
	if len(cls.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(cls.Params))
	}
}

func TestClassifyWhatIfWithoutParamsFallsThrough(t *testing.T) {
	// No extractable parameter: the what-if template must not claim the turn.
	cls, ok := Classify("what if we are wrong, why did it pick these drivers", true)
	if !ok || cls.Type != models.InteractionExplainability {
		t.Fatalf("expected explainability, got %+v ok=%v", cls, ok)
	}
}

func TestClassifyConfidence(t *testing.T) {
	for _, utterance := range []string{
		"how confident are you in this",
		"show me the confidence interval",
		"what is the uncertainty here",
	} {
		cls, ok := Classify(utterance, true)
		if !ok || cls.Type != models.InteractionConfidence {
			t.Fatalf("%q: expected confidence, got %+v ok=%v", utterance, cls, ok)
		}
	}
}

func TestClassifyExplainability(t *testing.T) {
	for _, utterance := range []string{
		"why is it going up",
		"what are the main drivers",
		"show me the breakdown",
	} {
		cls, ok := Classify(utterance, true)
		if !ok || cls.Type != models.InteractionExplainability {
			t.Fatalf("%q: expected explainability, got %+v ok=%v", utterance, cls, ok)
		}
	}
}

func TestClassifyGenericReference(t *testing.T) {
	cls, ok := Classify("the forecast?", true)
	if !ok || cls.Type != models.InteractionExplainability {
		t.Fatalf("expected explainability for bare reference, got %+v ok=%v", cls, ok)
	}
}

func TestClassifyPrioritySaveBeatsExplainability(t *testing.T) {
	// Contains both a save template and "why"; save is ranked higher.
	cls, ok := Classify("save this as Final, and tell me why it works", true)
	if !ok || cls.Type != models.InteractionSave {
		t.Fatalf("expected save to win, got %+v ok=%v", cls, ok)
	}
	if cls.SaveName != "Final" {
		t.Fatalf("unexpected name %q", cls.SaveName)
	}
}

func TestClassifyUnmatchedIsFreshRequest(t *testing.T) {
	if cls, ok := Classify("forecast revenue for MSFT over 4 years", true); ok {
		t.Fatalf("expected fresh request fall-through, got %+v", cls)
	}
}
