// Package insight derives natural-language observations and recommended
// actions from classified KPIs. Rules are a static ordered table of
// (predicate, narrative template) pairs evaluated per KPI; no rule looks
// across metrics.
package insight

import (
	"time"

	"github.com/ignite/exec-dashboard/internal/kpi"
)

// Priority ranks insights for leadership attention.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort rank for a priority, high first. Unknown values
// sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// ValidPriority reports whether p is one of the three known levels.
func ValidPriority(p Priority) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Insight is one generated observation following the what / so-what /
// now-what narrative structure.
type Insight struct {
	ID              string    `json:"id"`
	KPIID           kpi.ID    `json:"kpi_id"`
	Title           string    `json:"title"`
	Observation     string    `json:"observation"`     // what: factual metric behavior
	BusinessImpact  string    `json:"business_impact"` // so what: why leadership should care
	Action          string    `json:"action"`          // now what: decision or follow-up
	Priority        Priority  `json:"priority"`
	GeneratedAt     time.Time `json:"generated_at"`
	IsAutoGenerated bool      `json:"is_auto_generated"`
}

// Patch carries a partial edit to an insight. Nil fields are left unchanged.
type Patch struct {
	Title          *string   `json:"title,omitempty"`
	Observation    *string   `json:"observation,omitempty"`
	BusinessImpact *string   `json:"business_impact,omitempty"`
	Action         *string   `json:"action,omitempty"`
	Priority       *Priority `json:"priority,omitempty"`
}

// UpdateResult is the structured outcome of an update. An unknown id is a
// routine condition (stale UI state), reported via Success rather than an
// error.
type UpdateResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Insight *Insight `json:"insight,omitempty"`
}

// ActionType categorizes what a recommendation asks leadership to do.
type ActionType string

const (
	ActionIncrease    ActionType = "increase"
	ActionReduce      ActionType = "reduce"
	ActionInvestigate ActionType = "investigate"
	ActionPrioritize  ActionType = "prioritize"
	ActionMaintain    ActionType = "maintain"
)

// Timeframe is the recommended implementation horizon.
type Timeframe string

const (
	TimeframeImmediate Timeframe = "immediate"
	TimeframeShortTerm Timeframe = "short-term"
	TimeframeLongTerm  Timeframe = "long-term"
)

// Effort estimates implementation cost.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// Confidence grades how certain the recommendation's impact estimate is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceLow:
		return 2
	}
	return 3
}

// Recommendation is a static action suggestion linked one-to-one with an
// insight.
type Recommendation struct {
	ID             string     `json:"id"`
	InsightID      string     `json:"insight_id"`
	KPIID          kpi.ID     `json:"kpi_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ActionType     ActionType `json:"action_type"`
	ExpectedImpact string     `json:"expected_impact"`
	Timeframe      Timeframe  `json:"timeframe"`
	Effort         Effort     `json:"effort"`
	Confidence     Confidence `json:"confidence"`
}

// BusinessRisk is a leadership-facing risk extracted from high-priority
// insights.
type BusinessRisk struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	KPIID       kpi.ID `json:"kpi_id"`
}

// BusinessOpportunity is a leadership-facing growth opportunity.
type BusinessOpportunity struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	KPIID       kpi.ID `json:"kpi_id"`
}

// ExecutiveSummary is the C-level rollup generated each refresh.
type ExecutiveSummary struct {
	ID               string                `json:"id"`
	Period           string                `json:"period"` // e.g. "Q3 2026"
	OverallHealth    kpi.HealthStatus      `json:"overall_health"`
	KeyHighlights    []string              `json:"key_highlights"`
	TopRisks         []BusinessRisk        `json:"top_risks"`
	TopOpportunities []BusinessOpportunity `json:"top_opportunities"`
	Narrative        string                `json:"narrative"`
	GeneratedAt      time.Time             `json:"generated_at"`
}
