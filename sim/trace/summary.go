package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions     int         `yaml:"total_decisions" json:"total_decisions"`
	MeanRegret         float64     `yaml:"mean_regret" json:"mean_regret"`
	MaxRegret          float64     `yaml:"max_regret" json:"max_regret"`
	SuboptimalCount    int         `yaml:"suboptimal_count" json:"suboptimal_count"` // decisions with Regret > 0
	UniqueTargets      int         `yaml:"unique_targets" json:"unique_targets"`
	TargetDistribution map[int]int `yaml:"target_distribution" json:"target_distribution"` // server index → customers routed
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		TargetDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Routings)
	if len(st.Routings) > 0 {
		totalRegret := 0.0
		for _, r := range st.Routings {
			summary.TargetDistribution[r.Chosen]++
			totalRegret += r.Regret
			if r.Regret > summary.MaxRegret {
				summary.MaxRegret = r.Regret
			}
			if r.Regret > 0 {
				summary.SuboptimalCount++
			}
		}
		summary.MeanRegret = totalRegret / float64(len(st.Routings))
	}

	summary.UniqueTargets = len(summary.TargetDistribution)

	return summary
}
