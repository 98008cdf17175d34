// Package health classifies KPI readings against banded thresholds and
// rolls classified KPIs up into a composite 0-100 business health score.
package health

import (
	"fmt"
	"os"

	"github.com/ignite/exec-dashboard/internal/kpi"
	"gopkg.in/yaml.v3"
)

// Band is one (min, max) range for a health state. A nil bound leaves that
// side open, which is how "higher is better" vs "lower is better" is
// encoded: revenue's critical band has only a max, expense-ratio's only a min.
type Band struct {
	Min *float64 `yaml:"min" json:"min,omitempty"`
	Max *float64 `yaml:"max" json:"max,omitempty"`
}

// Matches reports whether value falls inside the band.
func (b Band) Matches(value float64) bool {
	if b.Min != nil && value < *b.Min {
		return false
	}
	if b.Max != nil && value > *b.Max {
		return false
	}
	return true
}

// bounded reports whether at least one side of the band is set. A band with
// neither bound would match everything and mask misconfiguration.
func (b Band) bounded() bool {
	return b.Min != nil || b.Max != nil
}

// ThresholdRule holds the four bands for one KPI.
type ThresholdRule struct {
	KPI       kpi.ID `yaml:"kpi" json:"kpi"`
	Excellent Band   `yaml:"excellent" json:"excellent"`
	Good      Band   `yaml:"good" json:"good"`
	Warning   Band   `yaml:"warning" json:"warning"`
	Critical  Band   `yaml:"critical" json:"critical"`
}

// Registry maps KPI identifiers to their threshold rules. Read-only after
// construction, so Classify is safe for concurrent readers without locking.
type Registry struct {
	rules map[kpi.ID]ThresholdRule
}

func ptr(v float64) *float64 { return &v }

// defaultRules carries the business-approved band cutoffs. Overridable per
// deployment via a thresholds YAML file (see LoadOverrides).
func defaultRules() []ThresholdRule {
	return []ThresholdRule{
		{KPI: kpi.Revenue,
			Critical:  Band{Max: ptr(249999)},
			Warning:   Band{Min: ptr(250000), Max: ptr(499999)},
			Good:      Band{Min: ptr(500000), Max: ptr(999999)},
			Excellent: Band{Min: ptr(1000000)}},
		{KPI: kpi.RevenueGrowth,
			Critical:  Band{Max: ptr(4.9)},
			Warning:   Band{Min: ptr(5), Max: ptr(9.9)},
			Good:      Band{Min: ptr(10), Max: ptr(14.9)},
			Excellent: Band{Min: ptr(15)}},
		{KPI: kpi.ProfitMargin,
			Critical:  Band{Max: ptr(9.9)},
			Warning:   Band{Min: ptr(10), Max: ptr(14.9)},
			Good:      Band{Min: ptr(15), Max: ptr(19.9)},
			Excellent: Band{Min: ptr(20)}},
		{KPI: kpi.ExpenseRatio,
			Excellent: Band{Max: ptr(70)},
			Good:      Band{Min: ptr(70.1), Max: ptr(80)},
			Warning:   Band{Min: ptr(80.1), Max: ptr(90)},
			Critical:  Band{Min: ptr(90.1)}},
		{KPI: kpi.CustomerHealth,
			Critical:  Band{Max: ptr(59.9)},
			Warning:   Band{Min: ptr(60), Max: ptr(69.9)},
			Good:      Band{Min: ptr(70), Max: ptr(79.9)},
			Excellent: Band{Min: ptr(80)}},
		{KPI: kpi.ChurnRate,
			Excellent: Band{Max: ptr(3)},
			Good:      Band{Min: ptr(3.1), Max: ptr(5)},
			Warning:   Band{Min: ptr(5.1), Max: ptr(8)},
			Critical:  Band{Min: ptr(8.1)}},
		{KPI: kpi.CLV,
			Critical:  Band{Max: ptr(1499)},
			Warning:   Band{Min: ptr(1500), Max: ptr(2999)},
			Good:      Band{Min: ptr(3000), Max: ptr(4999)},
			Excellent: Band{Min: ptr(5000)}},
		{KPI: kpi.CAC,
			Excellent: Band{Max: ptr(400)},
			Good:      Band{Min: ptr(400.01), Max: ptr(600)},
			Warning:   Band{Min: ptr(600.01), Max: ptr(800)},
			Critical:  Band{Min: ptr(800.01)}},
		{KPI: kpi.LTVCACRatio,
			Critical:  Band{Max: ptr(1.99)},
			Warning:   Band{Min: ptr(2), Max: ptr(2.99)},
			Good:      Band{Min: ptr(3), Max: ptr(4.99)},
			Excellent: Band{Min: ptr(5)}},
		{KPI: kpi.MRR,
			Critical:  Band{Max: ptr(99999)},
			Warning:   Band{Min: ptr(100000), Max: ptr(124999)},
			Good:      Band{Min: ptr(125000), Max: ptr(149999)},
			Excellent: Band{Min: ptr(150000)}},
		{KPI: kpi.ARR,
			Critical:  Band{Max: ptr(1199999)},
			Warning:   Band{Min: ptr(1200000), Max: ptr(1499999)},
			Good:      Band{Min: ptr(1500000), Max: ptr(1799999)},
			Excellent: Band{Min: ptr(1800000)}},
		{KPI: kpi.NPS,
			Critical:  Band{Max: ptr(9)},
			Warning:   Band{Min: ptr(10), Max: ptr(29)},
			Good:      Band{Min: ptr(30), Max: ptr(49)},
			Excellent: Band{Min: ptr(50)}},
		{KPI: kpi.CSAT,
			Critical:  Band{Max: ptr(64)},
			Warning:   Band{Min: ptr(65), Max: ptr(74)},
			Good:      Band{Min: ptr(75), Max: ptr(84)},
			Excellent: Band{Min: ptr(85)}},
		{KPI: kpi.OperationalEfficiency,
			Critical:  Band{Max: ptr(69)},
			Warning:   Band{Min: ptr(70), Max: ptr(79)},
			Good:      Band{Min: ptr(80), Max: ptr(89)},
			Excellent: Band{Min: ptr(90)}},
		{KPI: kpi.EmployeeSatisfaction,
			Critical:  Band{Max: ptr(64)},
			Warning:   Band{Min: ptr(65), Max: ptr(74)},
			Good:      Band{Min: ptr(75), Max: ptr(84)},
			Excellent: Band{Min: ptr(85)}},
		{KPI: kpi.MarketShare,
			Critical:  Band{Max: ptr(9.9)},
			Warning:   Band{Min: ptr(10), Max: ptr(14.9)},
			Good:      Band{Min: ptr(15), Max: ptr(19.9)},
			Excellent: Band{Min: ptr(20)}},
	}
}

// NewRegistry builds a registry from the built-in rule table.
func NewRegistry() *Registry {
	r := &Registry{rules: make(map[kpi.ID]ThresholdRule)}
	for _, rule := range defaultRules() {
		r.rules[rule.KPI] = rule
	}
	return r
}

// thresholdFile is the YAML override format: a list of rules.
type thresholdFile struct {
	Thresholds []ThresholdRule `yaml:"thresholds"`
}

// LoadOverrides merges per-deployment threshold rules from a YAML file.
// Rules replace the built-in rule for the same KPI wholesale; new KPIs are
// rejected at Validate time if they have no definition.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading threshold overrides: %w", err)
	}
	var f thresholdFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing threshold overrides: %w", err)
	}
	for _, rule := range f.Thresholds {
		r.rules[rule.KPI] = rule
	}
	return nil
}

// Rule returns the threshold rule for id.
func (r *Registry) Rule(id kpi.ID) (ThresholdRule, bool) {
	rule, ok := r.rules[id]
	return rule, ok
}

// Validate checks the registry once at startup: every rule must reference a
// known KPI definition and every band must be bounded on at least one side.
// The server refuses to start on a validation error rather than silently
// producing misleading classifications.
func (r *Registry) Validate() error {
	for id, rule := range r.rules {
		if _, err := kpi.Lookup(id); err != nil {
			return fmt.Errorf("threshold rule references unknown KPI %q", id)
		}
		bands := []struct {
			name string
			band Band
		}{
			{"excellent", rule.Excellent},
			{"good", rule.Good},
			{"warning", rule.Warning},
			{"critical", rule.Critical},
		}
		for _, b := range bands {
			if !b.band.bounded() {
				return fmt.Errorf("threshold rule for %q: %s band has no bounds", id, b.name)
			}
		}
	}
	for _, def := range kpi.Definitions() {
		if _, ok := r.rules[def.ID]; !ok {
			return fmt.Errorf("no threshold rule for KPI %q", def.ID)
		}
	}
	return nil
}
