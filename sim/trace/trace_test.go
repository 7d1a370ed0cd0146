package trace

import (
	"testing"
)

func TestSimulationTrace_RecordRouting_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a routing record is recorded
	st.RecordRouting(RoutingRecord{
		CustomerID: 1,
		Clock:      20.5,
		Chosen:     0,
		Reason:     "random",
		Loads:      []int{0, 1, 2},
	})

	// THEN the trace contains one routing record with correct data
	if len(st.Routings) != 1 {
		t.Fatalf("expected 1 routing, got %d", len(st.Routings))
	}
	if st.Routings[0].Chosen != 0 {
		t.Errorf("expected server 0, got %d", st.Routings[0].Chosen)
	}
	if st.Routings[0].Regret != 0 {
		t.Errorf("expected regret 0 for least-loaded choice, got %f", st.Routings[0].Regret)
	}
}

func TestSimulationTrace_RecordRouting_ComputesRegret(t *testing.T) {
	// GIVEN a decision that picked a busier server
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN recorded
	st.RecordRouting(RoutingRecord{CustomerID: 7, Chosen: 2, Loads: []int{1, 0, 3}})

	// THEN regret is chosen load minus the least load
	if st.Routings[0].Regret != 3 {
		t.Errorf("expected regret 3, got %f", st.Routings[0].Regret)
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN multiple records are added
	st.RecordRouting(RoutingRecord{CustomerID: 1, Clock: 100, Chosen: 1})
	st.RecordRouting(RoutingRecord{CustomerID: 2, Clock: 150, Chosen: 0})

	// THEN order is preserved
	if st.Routings[0].CustomerID != 1 || st.Routings[1].CustomerID != 2 {
		t.Error("routing order not preserved")
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true},
		{"verbose", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.valid {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
		}
	}
}

func TestTraceConfig_Enabled(t *testing.T) {
	if (TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("none level must not be enabled")
	}
	if (TraceConfig{}).Enabled() {
		t.Error("empty level must not be enabled")
	}
	if !(TraceConfig{Level: TraceLevelDecisions}).Enabled() {
		t.Error("decisions level must be enabled")
	}
}
