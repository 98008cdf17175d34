// Package kpi defines the metric vocabulary shared by the classification,
// scoring, and insight engines: identifiers, categories, readings, and the
// health states a reading can be classified into.
package kpi

import "time"

// ID identifies one tracked business metric.
type ID string

// Tracked KPI identifiers. Every ID used in a reading must have a matching
// Definition and threshold rule; the registries validate this at startup.
const (
	Revenue               ID = "revenue"
	RevenueGrowth         ID = "revenue-growth"
	ProfitMargin          ID = "profit-margin"
	ExpenseRatio          ID = "expense-ratio"
	CustomerHealth        ID = "customer-health"
	ChurnRate             ID = "churn-rate"
	CLV                   ID = "clv"
	CAC                   ID = "cac"
	LTVCACRatio           ID = "ltv-cac-ratio"
	MRR                   ID = "mrr"
	ARR                   ID = "arr"
	NPS                   ID = "nps"
	CSAT                  ID = "csat"
	OperationalEfficiency ID = "operational-efficiency"
	EmployeeSatisfaction  ID = "employee-satisfaction"
	MarketShare           ID = "market-share"
)

// Category groups KPIs for the composite health rollup.
type Category string

const (
	CategoryFinancial   Category = "financial"
	CategoryOperational Category = "operational"
	CategoryCustomer    Category = "customer"
)

// Trend is the direction of a KPI between the previous and current period.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// HealthStatus is the classification of a KPI value against its bands.
type HealthStatus string

const (
	StatusExcellent HealthStatus = "excellent"
	StatusGood      HealthStatus = "good"
	StatusWarning   HealthStatus = "warning"
	StatusCritical  HealthStatus = "critical"
)

// HistoricalValue is one period of a KPI's history.
type HistoricalValue struct {
	Period string  `json:"period"` // e.g. "2026-07"
	Value  float64 `json:"value"`
}

// Reading is one refresh cycle's observation of a KPI. Readings are
// immutable once produced; a new refresh supersedes rather than mutates.
type Reading struct {
	ID               ID                `json:"id"`
	CurrentValue     float64           `json:"current_value"`
	PreviousValue    float64           `json:"previous_value"`
	TargetValue      float64           `json:"target_value"`
	Trend            Trend             `json:"trend"`
	HistoricalValues []HistoricalValue `json:"historical_values,omitempty"`
	LastUpdated      time.Time         `json:"last_updated"`
}

// Classified is a Reading annotated with its health state. Derived fresh
// on every classification pass, never persisted independently.
type Classified struct {
	Reading
	HealthStatus HealthStatus `json:"health_status"`
}
