package nlp

import (
	"testing"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

func TestParseSingleParameter(t *testing.T) {
	got := ParseScenarioParameters("volume increases 15%")
	if len(got) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(got))
	}
	p := got[0]
	if p.Kind != models.KindVolume {
		t.Fatalf("unexpected kind %s", p.Kind)
	}
	if p.Magnitude != 0.15 {
		t.Fatalf("unexpected magnitude %v", p.Magnitude)
	}
	if p.Unit != models.UnitPercentOfBase {
		t.Fatalf("unexpected unit %s", p.Unit)
	}
}

func TestParseCompoundClause(t *testing.T) {
	got := ParseScenarioParameters("volume increases 15% and COGS falls 5%")
	if len(got) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(got))
	}
	if got[0].Kind != models.KindVolume || got[0].Magnitude != 0.15 {
		t.Fatalf("unexpected first param %+v", got[0])
	}
	if got[1].Kind != models.KindCOGS || got[1].Magnitude != -0.05 {
		t.Fatalf("unexpected second param %+v", got[1])
	}
}

func TestParseDirectionWords(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"margin improves 2pp", 0.02},
		{"margin deteriorates 2pp", -0.02},
		{"revenue grows 20%", 0.20},
		{"revenue drops 20%", -0.20},
		{"gdp down 1%", -0.01},
	}
	for _, c := range cases {
		got := ParseScenarioParameters(c.in)
		if len(got) != 1 {
			t.Fatalf("%q: expected 1 parameter, got %d", c.in, len(got))
		}
		if got[0].Magnitude != c.want {
			t.Fatalf("%q: magnitude %v, want %v", c.in, got[0].Magnitude, c.want)
		}
	}
}

func TestParseNoDirectionDefaultsPositive(t *testing.T) {
	got := ParseScenarioParameters("marketing spend 20%")
	if len(got) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(got))
	}
	if got[0].Kind != models.KindMarketingSpend {
		t.Fatalf("unexpected kind %s", got[0].Kind)
	}
	if got[0].Magnitude != 0.20 {
		t.Fatalf("expected positive default, got %v", got[0].Magnitude)
	}
}

func TestParsePercentagePoints(t *testing.T) {
	got := ParseScenarioParameters("margin expands 3 percentage points")
	if len(got) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(got))
	}
	if got[0].Unit != models.UnitPercentagePoints {
		t.Fatalf("unexpected unit %s", got[0].Unit)
	}
	if got[0].Magnitude != 0.03 {
		t.Fatalf("unexpected magnitude %v", got[0].Magnitude)
	}
}

func TestParseDoubleAndHalve(t *testing.T) {
	got := ParseScenarioParameters("marketing spend doubles")
	if len(got) != 1 || got[0].Magnitude != 1.0 {
		t.Fatalf("double: got %+v", got)
	}
	got = ParseScenarioParameters("the marketing budget is halved")
	if len(got) != 1 || got[0].Magnitude != -0.5 {
		t.Fatalf("halve: got %+v", got)
	}
}

func TestParseMultiWordTriggersWinOverSubstrings(t *testing.T) {
	got := ParseScenarioParameters("interest rates rise 1%")
	if len(got) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(got))
	}
	if got[0].Kind != models.KindInterestRate {
		t.Fatalf("unexpected kind %s", got[0].Kind)
	}
}

func TestParseDropsUnrecognizableSubClauses(t *testing.T) {
	got := ParseScenarioParameters("the weather improves 10% and volume rises 5%")
	// "weather" has no kind; only the volume clause survives.
	if len(got) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(got))
	}
	if got[0].Kind != models.KindVolume || got[0].Magnitude != 0.05 {
		t.Fatalf("unexpected param %+v", got[0])
	}
}

func TestParseEmptyClause(t *testing.T) {
	if got := ParseScenarioParameters("everything stays the same"); len(got) != 0 {
		t.Fatalf("expected no parameters, got %+v", got)
	}
}

func TestParseKindWithoutMagnitudeIsDropped(t *testing.T) {
	if got := ParseScenarioParameters("volume goes up a lot"); len(got) != 0 {
		t.Fatalf("expected no parameters, got %+v", got)
	}
}
