package metrics

import "testing"

func TestNewIsSafeToCallRepeatedly(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("second New panicked: %v", r)
		}
	}()

	a := New()
	b := New()

	if a.turnsTotal != b.turnsTotal || a.latency != b.latency {
		t.Fatalf("recorders must share the registered collectors")
	}

	a.RecordTurn("forecast")
	b.RecordTurn("scenario")
	b.RecordMessageSent("kafka", "AAPL")
	b.RecordError("turn_scenario")
	b.RecordLatency("turn", 0.01)
}
