package collector

import (
	"context"
	"time"

	"github.com/ignite/exec-dashboard/internal/kpi"
)

// Source supplies KPI readings for a refresh cycle. Implementations fetch
// from a warehouse, an API, or generate demo data.
type Source interface {
	// Fetch returns one reading per KPI. A partial result with an error is
	// allowed; the collector classifies whatever came back.
	Fetch(ctx context.Context) ([]kpi.Reading, error)
}

// demoReading describes one KPI's simulated state.
type demoReading struct {
	id       kpi.ID
	current  float64
	previous float64
	target   float64
	trend    kpi.Trend
}

// demoReadings covers every defined KPI with values that exercise all four
// health bands on a demo dashboard.
var demoReadings = []demoReading{
	{kpi.Revenue, 1250000, 1180000, 1200000, kpi.TrendUp},
	{kpi.RevenueGrowth, 12.5, 10.2, 15, kpi.TrendUp},
	{kpi.ProfitMargin, 18.2, 17.8, 18, kpi.TrendUp},
	{kpi.ExpenseRatio, 78.5, 79.2, 75, kpi.TrendDown},
	{kpi.CustomerHealth, 82, 80, 85, kpi.TrendUp},
	{kpi.ChurnRate, 3.8, 4.1, 5, kpi.TrendDown},
	{kpi.CLV, 5400, 5250, 5000, kpi.TrendUp},
	{kpi.CAC, 580, 610, 600, kpi.TrendDown},
	{kpi.LTVCACRatio, 3.2, 3.0, 3, kpi.TrendUp},
	{kpi.MRR, 155000, 148000, 150000, kpi.TrendUp},
	{kpi.ARR, 1860000, 1776000, 1800000, kpi.TrendUp},
	{kpi.NPS, 47, 45, 50, kpi.TrendUp},
	{kpi.CSAT, 86, 85, 85, kpi.TrendStable},
	{kpi.OperationalEfficiency, 74, 76, 80, kpi.TrendDown},
	{kpi.EmployeeSatisfaction, 81, 81, 80, kpi.TrendStable},
	{kpi.MarketShare, 13.8, 13.5, 15, kpi.TrendUp},
}

// DemoSource produces deterministic simulated readings so the dashboard is
// fully populated without a warehouse connection.
type DemoSource struct {
	now func() time.Time
}

// NewDemoSource creates a demo source using wall-clock timestamps.
func NewDemoSource() *DemoSource {
	return &DemoSource{now: time.Now}
}

// Fetch returns a reading for every defined KPI with twelve months of
// synthetic history trending toward the current value.
func (d *DemoSource) Fetch(_ context.Context) ([]kpi.Reading, error) {
	at := d.now().UTC()
	readings := make([]kpi.Reading, 0, len(demoReadings))
	for _, dr := range demoReadings {
		readings = append(readings, kpi.Reading{
			ID:               dr.id,
			CurrentValue:     dr.current,
			PreviousValue:    dr.previous,
			TargetValue:      dr.target,
			Trend:            dr.trend,
			HistoricalValues: demoHistory(dr, at),
			LastUpdated:      at,
		})
	}
	return readings, nil
}

// demoHistory interpolates twelve monthly points ending at the previous
// value, so charts show a gradual approach to today's reading.
func demoHistory(dr demoReading, at time.Time) []kpi.HistoricalValue {
	const months = 12
	start := dr.previous * 0.88
	step := (dr.previous - start) / float64(months-1)
	history := make([]kpi.HistoricalValue, 0, months)
	for i := 0; i < months; i++ {
		period := at.AddDate(0, i-months, 0)
		history = append(history, kpi.HistoricalValue{
			Period: period.Format("2006-01"),
			Value:  start + step*float64(i),
		})
	}
	return history
}
