package usecase

import (
	"testing"
	"time"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

func mkForecast(value float64) models.ActiveForecast {
	return models.ActiveForecast{
		Result: models.ForecastResult{
			Ticker:  "AAPL",
			Metric:  "revenue",
			Model:   models.ModelARIMA,
			Horizon: 1,
			Points:  []models.ForecastPoint{{Period: 2026, Value: value, Lower: value * 0.9, Upper: value * 1.1}},
		},
		Params:    models.GenerationParams{Model: models.ModelARIMA, Horizon: 1},
		CreatedAt: time.Now(),
	}
}

func TestStateHistoryRingEviction(t *testing.T) {
	st := NewConversationState("c1", 3)

	for i := 0; i < 5; i++ {
		st.mu.Lock()
		st.pushHistoryLocked(mkForecast(float64(i)))
		st.mu.Unlock()
	}

	hist := st.History()
	if len(hist) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(hist))
	}
	// Oldest two evicted; survivors are 2, 3, 4 in order.
	for i, want := range []float64{2, 3, 4} {
		if got := hist[i].Result.Points[0].Value; got != want {
			t.Fatalf("snapshot %d: got %v, want %v", i, got, want)
		}
	}
}

func TestStateHistoryCapDefault(t *testing.T) {
	st := NewConversationState("c1", 0)
	if st.historyCap != DefaultHistoryCap {
		t.Fatalf("expected default cap, got %d", st.historyCap)
	}
}

func TestStateSaveLastWriteWinsCaseInsensitive(t *testing.T) {
	st := NewConversationState("c1", 0)

	st.mu.Lock()
	st.saveNamedLocked("Base Case", mkForecast(100))
	st.saveNamedLocked("base case", mkForecast(200))
	st.mu.Unlock()

	got, ok := st.Named("BASE CASE")
	if !ok {
		t.Fatalf("expected save to resolve")
	}
	if got.Result.Points[0].Value != 200 {
		t.Fatalf("expected last write to win, got %v", got.Result.Points[0].Value)
	}
	if names := st.SavedNames(); len(names) != 1 {
		t.Fatalf("case variants must collapse to one entry: %v", names)
	}
}

func TestStateReplaceActiveClones(t *testing.T) {
	st := NewConversationState("c1", 0)
	f := mkForecast(100)

	st.mu.Lock()
	st.replaceActiveLocked(f)
	st.mu.Unlock()

	// Mutating the caller's copy must not leak into state.
	f.Result.Points[0].Value = 999

	active, ok := st.Active()
	if !ok {
		t.Fatalf("expected active forecast")
	}
	if active.Result.Points[0].Value != 100 {
		t.Fatalf("active forecast shares memory with caller: %v", active.Result.Points[0].Value)
	}
}

func TestManagerGetOrCreate(t *testing.T) {
	m := NewConversationManager(0)

	st1 := m.GetOrCreate("c1")
	st2 := m.GetOrCreate("c1")
	if st1 != st2 {
		t.Fatalf("expected same state for same id")
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 conversation, got %d", m.Len())
	}

	m.Remove("c1")
	if _, ok := m.Get("c1"); ok {
		t.Fatalf("expected conversation removed")
	}
}
