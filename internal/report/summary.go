package report

import "boxhaul/internal/haul"

// Summary aggregates a batch of runs.
type Summary struct {
	Runs         int     `json:"runs"`
	AllDelivered int     `json:"all_delivered"`
	Stuck        int     `json:"stuck"`
	Failed       int     `json:"failed"`
	Boxes        int     `json:"boxes"`
	Delivered    int     `json:"delivered"`
	TotalActions int     `json:"total_actions"`
	AvgActions   float64 `json:"avg_actions"`
	AvgCycles    float64 `json:"avg_cycles"`
	AvgBatch     float64 `json:"avg_boxes_per_cycle"`
	Violations   int     `json:"violations"`

	Reports []Report `json:"reports,omitempty"`

	cycles int
}

func (s *Summary) Add(r Report) {
	s.Runs++
	switch r.Status {
	case haul.StatusAllDelivered:
		s.AllDelivered++
	case haul.StatusStuck:
		s.Stuck++
	}
	s.Boxes += r.Boxes
	s.Delivered += r.Delivered
	s.TotalActions += r.Actions
	s.Violations += len(r.Violations)
	s.cycles += len(r.Cycles)
	s.Reports = append(s.Reports, r)

	s.AvgActions = float64(s.TotalActions) / float64(s.Runs)
	s.AvgCycles = float64(s.cycles) / float64(s.Runs)
	if s.cycles > 0 {
		s.AvgBatch = float64(s.Delivered) / float64(s.cycles)
	}
}

// AddFailure counts a run that never produced a report.
func (s *Summary) AddFailure() { s.Failed++ }
