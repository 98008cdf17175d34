package insight

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ignite/exec-dashboard/internal/kpi"
)

// recommendationTemplate is one entry in the static theme table. Matching
// is a keyword lookup against the insight title, the general template
// catching everything else; there is no algorithm beyond this.
type recommendationTemplate struct {
	theme          string
	keywords       []string
	title          string
	description    string
	actionType     ActionType
	expectedImpact string
	timeframe      Timeframe
	effort         Effort
	confidence     Confidence
}

var recommendationTemplates = []recommendationTemplate{
	{
		theme:          "revenue",
		keywords:       []string{"revenue", "mrr", "arr"},
		title:          "Accelerate Revenue Growth Initiative",
		description:    "Implement a revenue acceleration program focused on the highest-impact opportunities",
		actionType:     ActionIncrease,
		expectedImpact: "10-15% revenue increase within 2 quarters",
		timeframe:      TimeframeShortTerm,
		effort:         EffortHigh,
		confidence:     ConfidenceHigh,
	},
	{
		theme:          "churn",
		keywords:       []string{"churn", "retention"},
		title:          "Customer Retention Excellence Program",
		description:    "Launch targeted customer success initiatives to reduce churn and improve satisfaction",
		actionType:     ActionPrioritize,
		expectedImpact: "20-30% reduction in churn rate within 6 months",
		timeframe:      TimeframeShortTerm,
		effort:         EffortMedium,
		confidence:     ConfidenceHigh,
	},
	{
		theme:          "margin",
		keywords:       []string{"margin", "profit"},
		title:          "Profit Margin Optimization Program",
		description:    "Improve margins through pricing optimization and cost management",
		actionType:     ActionIncrease,
		expectedImpact: "3-5% margin improvement within 6 months",
		timeframe:      TimeframeShortTerm,
		effort:         EffortHigh,
		confidence:     ConfidenceMedium,
	},
	{
		theme:          "cost",
		keywords:       []string{"cost", "expense", "cac"},
		title:          "Strategic Cost Optimization Initiative",
		description:    "Review and optimize the cost structure while maintaining quality and service levels",
		actionType:     ActionReduce,
		expectedImpact: "5-10% cost reduction within 3 months",
		timeframe:      TimeframeShortTerm,
		effort:         EffortMedium,
		confidence:     ConfidenceMedium,
	},
	{
		theme:          "general",
		title:          "Performance Improvement Initiative",
		description:    "Implement targeted improvement actions based on the insight analysis",
		actionType:     ActionInvestigate,
		expectedImpact: "Measurable improvement in key metrics",
		timeframe:      TimeframeShortTerm,
		effort:         EffortMedium,
		confidence:     ConfidenceMedium,
	},
}

// LinkRecommendations associates one recommended action with each high- and
// medium-priority insight. Duplicate titles collapse to the first
// occurrence and the result is ordered by confidence, high first, with
// input order breaking ties.
func LinkRecommendations(insights []Insight) []Recommendation {
	var recs []Recommendation
	seen := make(map[string]bool)

	for _, ins := range insights {
		if ins.Priority == PriorityLow {
			continue
		}
		tpl := matchTemplate(ins)
		key := strings.ToLower(strings.ReplaceAll(tpl.title, " ", ""))
		if seen[key] {
			continue
		}
		seen[key] = true
		recs = append(recs, Recommendation{
			ID:             uuid.NewString(),
			InsightID:      ins.ID,
			KPIID:          ins.KPIID,
			Title:          tpl.title,
			Description:    tpl.description,
			ActionType:     tpl.actionType,
			ExpectedImpact: tpl.expectedImpact,
			Timeframe:      tpl.timeframe,
			Effort:         tpl.effort,
			Confidence:     tpl.confidence,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence.rank() < recs[j].Confidence.rank()
	})
	return recs
}

func matchTemplate(ins Insight) recommendationTemplate {
	haystack := strings.ToLower(ins.Title + " " + string(ins.KPIID))
	for _, tpl := range recommendationTemplates {
		for _, kw := range tpl.keywords {
			if strings.Contains(haystack, kw) {
				return tpl
			}
		}
	}
	// Last entry is the keywordless general template.
	return recommendationTemplates[len(recommendationTemplates)-1]
}

// kpiLabel resolves a display name for narrative use, falling back to the
// raw identifier for unknown KPIs.
func kpiLabel(id kpi.ID) string {
	if def, err := kpi.Lookup(id); err == nil {
		return def.DisplayName
	}
	return string(id)
}
