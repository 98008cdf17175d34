package health

import (
	"math"

	"github.com/ignite/exec-dashboard/internal/kpi"
)

// Factor is one weighted contribution to the composite health score.
type Factor struct {
	Category kpi.Category `json:"category"`
	Label    string       `json:"label"`
	Score    float64      `json:"score"`  // 0-100
	Weight   float64      `json:"weight"` // fraction of the overall score
}

// CompositeScore is the aggregate business health figure.
type CompositeScore struct {
	Overall     float64          `json:"overall"`
	Financial   float64          `json:"financial"`
	Operational float64          `json:"operational"`
	Customer    float64          `json:"customer"`
	Status      kpi.HealthStatus `json:"status"`
	Factors     []Factor         `json:"factors"`
}

// Per-category KPI weights for the composite rollup. Normalized at score
// time, so the operational set not summing to 1 is harmless.
var categoryKPIWeights = map[kpi.Category]map[kpi.ID]float64{
	kpi.CategoryFinancial: {
		kpi.Revenue:       0.25,
		kpi.RevenueGrowth: 0.20,
		kpi.ProfitMargin:  0.25,
		kpi.ExpenseRatio:  0.15,
		kpi.MRR:           0.10,
		kpi.ARR:           0.05,
	},
	kpi.CategoryCustomer: {
		kpi.CustomerHealth: 0.25,
		kpi.ChurnRate:      0.20,
		kpi.CLV:            0.15,
		kpi.CAC:            0.10,
		kpi.LTVCACRatio:    0.15,
		kpi.NPS:            0.10,
		kpi.CSAT:           0.05,
	},
	kpi.CategoryOperational: {
		kpi.OperationalEfficiency: 0.30,
		kpi.EmployeeSatisfaction:  0.25,
		kpi.MarketShare:           0.20,
	},
}

// Relative importance of each category in the overall figure.
var categoryWeights = map[kpi.Category]float64{
	kpi.CategoryFinancial:   0.40,
	kpi.CategoryCustomer:    0.35,
	kpi.CategoryOperational: 0.25,
}

// Score aggregates the factor list into a composite score. The overall
// figure is the weight-normalized sum of factor scores; category sub-scores
// use the same formula restricted to that category's factors. Normalizing
// by the actual weight sum means a factor list whose weights do not sum to
// exactly 1 still scores a perfect list at 100.
func Score(factors []Factor) CompositeScore {
	score := CompositeScore{Factors: factors}
	score.Overall = weightedAverage(factors, "")
	score.Financial = weightedAverage(factors, kpi.CategoryFinancial)
	score.Operational = weightedAverage(factors, kpi.CategoryOperational)
	score.Customer = weightedAverage(factors, kpi.CategoryCustomer)
	score.Status = StatusForScore(score.Overall)
	return score
}

// weightedAverage computes the normalized weighted sum over factors in
// category, or all factors when category is empty. An empty selection
// scores a neutral 50 so a category with no data never reads as critical.
func weightedAverage(factors []Factor, category kpi.Category) float64 {
	var sum, weight float64
	for _, f := range factors {
		if category != "" && f.Category != category {
			continue
		}
		sum += f.Score * f.Weight
		weight += f.Weight
	}
	if weight == 0 {
		return 50
	}
	return round1(sum / weight)
}

// StatusForScore applies the fixed global banding for composite scores.
// This banding is deliberately distinct from per-KPI thresholds.
func StatusForScore(score float64) kpi.HealthStatus {
	switch {
	case score >= 80:
		return kpi.StatusExcellent
	case score >= 60:
		return kpi.StatusGood
	case score >= 40:
		return kpi.StatusWarning
	default:
		return kpi.StatusCritical
	}
}

// FactorsFromClassified derives the weighted factor list for a batch of
// classified KPIs. Each KPI contributes a 0-100 score normalized from its
// health state, target performance, and trend, weighted by its share of
// its category times the category's share of the overall figure.
func FactorsFromClassified(kpis []kpi.Classified) []Factor {
	factors := make([]Factor, 0, len(kpis))
	for _, c := range kpis {
		def, err := kpi.Lookup(c.ID)
		if err != nil {
			continue // unknown KPIs are surfaced by registry validation, not scored
		}
		kpiWeight, ok := categoryKPIWeights[def.Category][c.ID]
		if !ok {
			continue
		}
		weight := kpiWeight * categoryWeights[def.Category] / categoryWeightSum(def.Category)
		factors = append(factors, Factor{
			Category: def.Category,
			Label:    def.DisplayName,
			Score:    normalizeScore(c),
			Weight:   weight,
		})
	}
	return factors
}

func categoryWeightSum(category kpi.Category) float64 {
	var sum float64
	for _, w := range categoryKPIWeights[category] {
		sum += w
	}
	if sum == 0 {
		return 1
	}
	return sum
}

// normalizeScore maps one classified KPI onto a 0-100 scale: a base score
// from its health state, adjusted for performance against target and for
// trend direction.
func normalizeScore(c kpi.Classified) float64 {
	base := map[kpi.HealthStatus]float64{
		kpi.StatusExcellent: 90,
		kpi.StatusGood:      75,
		kpi.StatusWarning:   50,
		kpi.StatusCritical:  25,
	}[c.HealthStatus]
	if base == 0 {
		base = 50
	}

	ratio := 1.0
	if c.TargetValue > 0 {
		ratio = c.CurrentValue / c.TargetValue
	}
	if kpi.LowerIsBetter(c.ID) {
		// Invert so beating the target from below scores above 1.
		ratio = math.Max(0, math.Min(2, 2-ratio))
	}

	var perf float64
	if ratio >= 1.0 {
		perf = math.Min(10, (ratio-1.0)*20)
	} else {
		perf = math.Max(-15, (ratio-1.0)*30)
	}

	var trend float64
	switch c.Trend {
	case kpi.TrendUp:
		trend = 5
	case kpi.TrendDown:
		trend = -5
	}

	return math.Max(0, math.Min(100, base+perf+trend))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
