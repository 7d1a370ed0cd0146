package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalDecisions != 0 {
		t.Errorf("expected 0 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.UniqueTargets != 0 {
		t.Errorf("expected 0 unique targets, got %d", summary.UniqueTargets)
	}
	if summary.MeanRegret != 0 || summary.MaxRegret != 0 {
		t.Error("expected 0 regret values")
	}
	if len(summary.TargetDistribution) != 0 {
		t.Error("expected empty target distribution")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary == nil || summary.TotalDecisions != 0 || summary.TargetDistribution == nil {
		t.Fatalf("expected zero-value summary for nil trace, got %+v", summary)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with three routing decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordRouting(RoutingRecord{CustomerID: 1, Chosen: 0, Loads: []int{0, 0}})
	st.RecordRouting(RoutingRecord{CustomerID: 2, Chosen: 0, Loads: []int{1, 0}})
	st.RecordRouting(RoutingRecord{CustomerID: 3, Chosen: 1, Loads: []int{2, 3}})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalDecisions != 3 {
		t.Errorf("expected 3 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.UniqueTargets != 2 {
		t.Errorf("expected 2 unique targets, got %d", summary.UniqueTargets)
	}
	if summary.TargetDistribution[0] != 2 || summary.TargetDistribution[1] != 1 {
		t.Errorf("unexpected distribution %v", summary.TargetDistribution)
	}
	if summary.SuboptimalCount != 2 {
		t.Errorf("expected 2 suboptimal decisions, got %d", summary.SuboptimalCount)
	}
	if summary.MaxRegret != 1 {
		t.Errorf("expected max regret 1, got %f", summary.MaxRegret)
	}
	if summary.MeanRegret < 0.66 || summary.MeanRegret > 0.67 {
		t.Errorf("expected mean regret ~0.667, got %f", summary.MeanRegret)
	}
}
