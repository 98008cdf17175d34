package insight

import (
	"fmt"

	"github.com/ignite/exec-dashboard/internal/kpi"
)

// Rule pairs a predicate over one classified KPI with the Liquid templates
// that produce the insight narrative when it fires. Rules are static
// configuration: built once at process start, validated, then immutable.
type Rule struct {
	ID       string
	Name     string
	KPI      kpi.ID // empty matches any KPI
	Priority Priority

	Condition func(c kpi.Classified) bool

	// Narrative templates, rendered with the bindings built in engine.go.
	Title          string
	Observation    string
	BusinessImpact string
	Action         string
}

// belowTarget reports whether a higher-is-better KPI sits under 80% of its
// target. Lower-is-better metrics are excluded: a low churn rate is not
// underperformance.
func belowTarget(c kpi.Classified) bool {
	if kpi.LowerIsBetter(c.ID) || c.TargetValue <= 0 {
		return false
	}
	return c.CurrentValue < c.TargetValue*0.8
}

func targetGapPct(c kpi.Classified) float64 {
	if c.TargetValue <= 0 {
		return 0
	}
	return (c.TargetValue - c.CurrentValue) / c.TargetValue * 100
}

// DefaultRules returns the built-in rule table in registration order.
// Registration order is the tie-break when several insights share a
// priority, so the critical alert stays ahead of the erosion alert when
// both fire for the same KPI.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       "critical-alert",
			Name:     "Critical Level Alert",
			Priority: PriorityHigh,
			Condition: func(c kpi.Classified) bool {
				return c.HealthStatus == kpi.StatusCritical
			},
			Title:          "{{ name }} at Critical Level",
			Observation:    "{{ name }} stands at {{ value }} {{ unit }}, inside the critical band",
			BusinessImpact: "Critical performance in {{ name }} threatens near-term business objectives and demands executive attention",
			Action:         "Convene the accountable owners and agree corrective measures within the week",
		},
		{
			ID:       "decline-alert",
			Name:     "Declining Trend Alert",
			Priority: PriorityHigh,
			Condition: func(c kpi.Classified) bool {
				return c.Trend == kpi.TrendDown && c.HealthStatus == kpi.StatusWarning
			},
			Title:          "Declining {{ name }} Trend",
			Observation:    "{{ name }} is in the warning band at {{ value }} {{ unit }} and still trending down",
			BusinessImpact: "Continued decline would push {{ name }} into critical territory and erode competitive position",
			Action:         "Implement an intervention plan this cycle to reverse the negative trend",
		},
		{
			ID:       "margin-erosion",
			Name:     "Profit Margin Erosion",
			KPI:      kpi.ProfitMargin,
			Priority: PriorityHigh,
			Condition: func(c kpi.Classified) bool {
				return c.Trend == kpi.TrendDown && c.CurrentValue < 10
			},
			Title:          "Profit Margin Erosion",
			Observation:    "Profit margin has fallen to {{ value }}%, below the 10% sustainability floor, and is still declining",
			BusinessImpact: "Margins this thin leave no buffer for investment or demand shocks and signal pricing or cost-structure problems",
			Action:         "Run a pricing and cost-structure review within 30 days",
		},
		{
			ID:       "rising-expense",
			Name:     "Rising Expense Ratio",
			KPI:      kpi.ExpenseRatio,
			Priority: PriorityMedium,
			Condition: func(c kpi.Classified) bool {
				return c.Trend == kpi.TrendUp && c.CurrentValue > 85
			},
			Title:          "Rising Expense Ratio",
			Observation:    "Expenses have climbed to {{ value }}% of revenue and the ratio is still rising",
			BusinessImpact: "Cost growth is outpacing revenue, compressing profitability with each period",
			Action:         "Review discretionary spend and renegotiate the largest vendor contracts",
		},
		{
			ID:       "positive-outlier",
			Name:     "Positive Outlier",
			Priority: PriorityMedium,
			Condition: func(c kpi.Classified) bool {
				return c.HealthStatus == kpi.StatusExcellent && c.Trend == kpi.TrendUp
			},
			Title:          "Strong {{ name }} Momentum",
			Observation:    "{{ name }} is in the excellent band at {{ value }} {{ unit }} with a continuing upward trend",
			BusinessImpact: "This momentum is a source of competitive advantage and a candidate for further investment",
			Action:         "Document the drivers and scale the practices behind this performance",
		},
		{
			ID:       "severe-underperformance",
			Name:     "Severe Target Shortfall",
			Priority: PriorityHigh,
			Condition: func(c kpi.Classified) bool {
				return belowTarget(c) && targetGapPct(c) > 30
			},
			Title:          "{{ name }} Well Below Target",
			Observation:    "{{ name }} is {{ gap }}% below its target of {{ target }} {{ unit }}",
			BusinessImpact: "A shortfall of this size puts the annual plan at risk and will surface in board reporting",
			Action:         "Stand up a recovery plan with weekly checkpoints to close the {{ gap }}% gap",
		},
		{
			ID:       "underperformance",
			Name:     "Target Shortfall",
			Priority: PriorityMedium,
			Condition: func(c kpi.Classified) bool {
				return belowTarget(c) && targetGapPct(c) <= 30
			},
			Title:          "{{ name }} Below Target",
			Observation:    "{{ name }} is {{ gap }}% below its target of {{ target }} {{ unit }}",
			BusinessImpact: "The performance gap could affect overall business objectives and stakeholder confidence",
			Action:         "Agree an improvement plan to close the {{ gap }}% performance gap",
		},
		{
			ID:       "overperformance",
			Name:     "Target Overachievement",
			Priority: PriorityLow,
			Condition: func(c kpi.Classified) bool {
				if kpi.LowerIsBetter(c.ID) || c.TargetValue <= 0 {
					return false
				}
				return c.CurrentValue > c.TargetValue*1.2
			},
			Title:          "{{ name }} Exceeds Target",
			Observation:    "{{ name }} is {{ excess }}% above its target of {{ target }} {{ unit }}",
			BusinessImpact: "Exceptional performance creates room for scaling and for sharing the practices behind it",
			Action:         "Capture the success factors and consider raising the target",
		},
	}
}

// ValidateRules fails fast on configuration errors: a rule scoped to a KPI
// with no definition would otherwise misbehave on every evaluation.
func ValidateRules(rules []Rule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.ID == "" {
			return fmt.Errorf("insight rule %q has no id", r.Name)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate insight rule id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Condition == nil {
			return fmt.Errorf("insight rule %q has no condition", r.ID)
		}
		if r.KPI != "" {
			if _, err := kpi.Lookup(r.KPI); err != nil {
				return fmt.Errorf("insight rule %q: %w", r.ID, err)
			}
		}
	}
	return nil
}
