package log

import "testing"

func TestPairsToMap(t *testing.T) {
	m := pairsToMap([]interface{}{SamplesKey, 10, FeaturesKey, 3})
	if len(m) != 2 {
		t.Fatalf("got %d fields, want 2", len(m))
	}
	if m[SamplesKey] != 10 || m[FeaturesKey] != 3 {
		t.Errorf("unexpected field values: %v", m)
	}
}

func TestPairsToMapDropsMalformedPairs(t *testing.T) {
	// Trailing key without a value, and a non-string key.
	m := pairsToMap([]interface{}{AlphaKey, 0.01, 42, "x", "dangling"})
	if _, ok := m[AlphaKey]; !ok {
		t.Error("well-formed pair was dropped")
	}
	if len(m) != 1 {
		t.Errorf("malformed pairs leaked into fields: %v", m)
	}
}

func TestGetLoggerWithNameChaining(t *testing.T) {
	SetupLogger("disabled")

	l := GetLoggerWithName("prune").With(ModelNameKey, "Selector")
	if l == nil {
		t.Fatal("With returned nil logger")
	}
	// Must not panic with the logger disabled.
	l.Info("selection complete", AlphaKey, 0.1)
	l.Debug("scan", SamplesKey, 100)
}
