package health

import (
	"log"

	"github.com/ignite/exec-dashboard/internal/kpi"
)

// Classify maps a raw KPI value to a health state. Bands are evaluated in
// strict priority order critical, warning, good, excellent; the first
// matching band wins, which resolves overlapping or gapped configurations
// deterministically.
//
// Unknown KPIs and values no band matches both resolve to StatusGood. The
// fallback keeps the dashboard renderable when configuration lags behind
// the warehouse; each occurrence is logged so operators can close the gap.
func (r *Registry) Classify(id kpi.ID, value float64) kpi.HealthStatus {
	rule, ok := r.rules[id]
	if !ok {
		log.Printf("[health] no threshold rule for %q, defaulting to good", id)
		return kpi.StatusGood
	}

	ordered := []struct {
		status kpi.HealthStatus
		band   Band
	}{
		{kpi.StatusCritical, rule.Critical},
		{kpi.StatusWarning, rule.Warning},
		{kpi.StatusGood, rule.Good},
		{kpi.StatusExcellent, rule.Excellent},
	}
	for _, c := range ordered {
		if c.band.Matches(value) {
			return c.status
		}
	}

	log.Printf("[health] value %v for %q matched no band, defaulting to good", value, id)
	return kpi.StatusGood
}

// ClassifyReading annotates a reading with its health state.
func (r *Registry) ClassifyReading(reading kpi.Reading) kpi.Classified {
	return kpi.Classified{
		Reading:      reading,
		HealthStatus: r.Classify(reading.ID, reading.CurrentValue),
	}
}

// ClassifyAll annotates a batch of readings, preserving input order.
func (r *Registry) ClassifyAll(readings []kpi.Reading) []kpi.Classified {
	out := make([]kpi.Classified, 0, len(readings))
	for _, reading := range readings {
		out = append(out, r.ClassifyReading(reading))
	}
	return out
}
