package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/ignite/exec-dashboard/internal/health"
	"github.com/ignite/exec-dashboard/internal/kpi"
)

// BuildExecutiveSummary produces the C-level rollup for one refresh cycle:
// highlights, top risks and opportunities, and a short narrative keyed to
// the overall health status.
func BuildExecutiveSummary(kpis []kpi.Classified, insights []Insight, score health.CompositeScore, now time.Time) ExecutiveSummary {
	return ExecutiveSummary{
		ID:               fmt.Sprintf("exec-summary-%s", now.Format("20060102")),
		Period:           periodLabel(now),
		OverallHealth:    score.Status,
		KeyHighlights:    keyHighlights(kpis, score),
		TopRisks:         topRisks(insights),
		TopOpportunities: topOpportunities(insights, kpis),
		Narrative:        narrative(score, insights),
		GeneratedAt:      now,
	}
}

func periodLabel(now time.Time) string {
	return fmt.Sprintf("Q%d %d", (int(now.Month())-1)/3+1, now.Year())
}

// keyHighlights picks at most four headline facts for the summary card.
func keyHighlights(kpis []kpi.Classified, score health.CompositeScore) []string {
	highlights := []string{
		fmt.Sprintf("Overall business health: %s (%.0f/100)", score.Status, score.Overall),
	}

	bestLabel, bestScore := "Financial", score.Financial
	if score.Customer > bestScore {
		bestLabel, bestScore = "Customer", score.Customer
	}
	if score.Operational > bestScore {
		bestLabel, bestScore = "Operational", score.Operational
	}
	highlights = append(highlights, fmt.Sprintf("Strongest performance: %s (%.0f/100)", bestLabel, bestScore))

	var critical, momentum int
	for _, c := range kpis {
		if c.HealthStatus == kpi.StatusCritical {
			critical++
		}
		if c.Trend == kpi.TrendUp &&
			(c.HealthStatus == kpi.StatusGood || c.HealthStatus == kpi.StatusExcellent) {
			momentum++
		}
	}
	if critical > 0 {
		highlights = append(highlights, fmt.Sprintf("Critical attention needed: %d KPIs in critical state", critical))
	}
	if momentum > 0 {
		highlights = append(highlights, fmt.Sprintf("Positive momentum: %d KPIs trending up from a healthy base", momentum))
	}

	if len(highlights) > 4 {
		highlights = highlights[:4]
	}
	return highlights
}

// topRisks surfaces up to three high-priority insights as named risks.
func topRisks(insights []Insight) []BusinessRisk {
	var risks []BusinessRisk
	for _, ins := range insights {
		if ins.Priority != PriorityHigh {
			continue
		}
		risks = append(risks, BusinessRisk{
			Title:       ins.Title,
			Description: ins.Observation,
			KPIID:       ins.KPIID,
		})
		if len(risks) == 3 {
			break
		}
	}
	return risks
}

// topOpportunities combines positive insights with overperforming KPIs.
func topOpportunities(insights []Insight, kpis []kpi.Classified) []BusinessOpportunity {
	var opps []BusinessOpportunity
	for _, ins := range insights {
		if ins.Priority == PriorityHigh {
			continue
		}
		if !strings.Contains(ins.Title, "Momentum") && !strings.Contains(ins.Title, "Exceeds") {
			continue
		}
		opps = append(opps, BusinessOpportunity{
			Title:       ins.Title,
			Description: ins.BusinessImpact,
			KPIID:       ins.KPIID,
		})
		if len(opps) == 2 {
			break
		}
	}
	for _, c := range kpis {
		if kpi.LowerIsBetter(c.ID) || c.TargetValue <= 0 || c.CurrentValue <= c.TargetValue*1.1 {
			continue
		}
		opps = append(opps, BusinessOpportunity{
			Title:       fmt.Sprintf("Scale %s Success", kpiLabel(c.ID)),
			Description: fmt.Sprintf("Exceptional performance in %s presents a scaling opportunity", kpiLabel(c.ID)),
			KPIID:       c.ID,
		})
		break
	}
	return opps
}

var statusDescriptors = map[kpi.HealthStatus]string{
	kpi.StatusExcellent: "strong performance across all business areas",
	kpi.StatusGood:      "solid performance with opportunities for improvement",
	kpi.StatusWarning:   "mixed performance requiring focused attention",
	kpi.StatusCritical:  "significant challenges demanding immediate action",
}

func narrative(score health.CompositeScore, insights []Insight) string {
	descriptor, ok := statusDescriptors[score.Status]
	if !ok {
		descriptor = "mixed results"
	}

	var risks, opportunities int
	for _, ins := range insights {
		switch ins.Priority {
		case PriorityHigh:
			risks++
		case PriorityLow:
			opportunities++
		}
	}

	return fmt.Sprintf(
		"Business performance shows %s with an overall health score of %.0f/100. "+
			"Financial health stands at %.0f/100, customer metrics at %.0f/100, and operational efficiency at %.0f/100. "+
			"Key priorities include addressing the %d identified risks while capitalizing on %d growth opportunities. "+
			"Leadership should prioritize the high-impact recommendations while maintaining performance in existing strengths.",
		descriptor, score.Overall, score.Financial, score.Customer, score.Operational, risks, opportunities)
}
