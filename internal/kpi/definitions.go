package kpi

import "fmt"

// Definition is the display metadata for one KPI. The engines use it to
// group KPIs by category for the composite rollup and to name metrics in
// generated narratives.
type Definition struct {
	ID          ID       `json:"id"`
	DisplayName string   `json:"display_name"`
	Unit        string   `json:"unit"` // "usd", "percent", "score", "ratio"
	Category    Category `json:"category"`
}

// definitions is the built-in metadata table, ordered the way the dashboard
// presents them: financial, then customer, then operational.
var definitions = []Definition{
	{Revenue, "Revenue", "usd", CategoryFinancial},
	{RevenueGrowth, "Revenue Growth", "percent", CategoryFinancial},
	{ProfitMargin, "Profit Margin", "percent", CategoryFinancial},
	{ExpenseRatio, "Expense Ratio", "percent", CategoryFinancial},
	{MRR, "Monthly Recurring Revenue", "usd", CategoryFinancial},
	{ARR, "Annual Recurring Revenue", "usd", CategoryFinancial},
	{CustomerHealth, "Customer Health", "score", CategoryCustomer},
	{ChurnRate, "Churn Rate", "percent", CategoryCustomer},
	{CLV, "Customer Lifetime Value", "usd", CategoryCustomer},
	{CAC, "Customer Acquisition Cost", "usd", CategoryCustomer},
	{LTVCACRatio, "LTV:CAC Ratio", "ratio", CategoryCustomer},
	{NPS, "Net Promoter Score", "score", CategoryCustomer},
	{CSAT, "Customer Satisfaction", "score", CategoryCustomer},
	{OperationalEfficiency, "Operational Efficiency", "percent", CategoryOperational},
	{EmployeeSatisfaction, "Employee Satisfaction", "score", CategoryOperational},
	{MarketShare, "Market Share", "percent", CategoryOperational},
}

var definitionIndex = func() map[ID]Definition {
	idx := make(map[ID]Definition, len(definitions))
	for _, d := range definitions {
		idx[d.ID] = d
	}
	return idx
}()

// Definitions returns the built-in definition table in presentation order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition for id. A missing definition is a
// configuration error; callers validating at startup should treat it as
// fatal rather than defaulting.
func Lookup(id ID) (Definition, error) {
	d, ok := definitionIndex[id]
	if !ok {
		return Definition{}, fmt.Errorf("kpi: no definition for %q", id)
	}
	return d, nil
}

// LowerIsBetter reports whether a smaller value is healthier for this KPI.
// Encoded here for the scorer's target-performance adjustment; the
// threshold bands encode the same polarity through their min/max bounds.
func LowerIsBetter(id ID) bool {
	switch id {
	case ChurnRate, ExpenseRatio, CAC:
		return true
	}
	return false
}
