package insight

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/exec-dashboard/internal/kpi"
	"github.com/osteele/liquid"
)

// Engine evaluates the static rule table against classified KPIs and
// renders the firing rules' narrative templates.
type Engine struct {
	rules     []Rule
	templates map[string]parsedTemplates

	// Injectable for deterministic tests.
	now   func() time.Time
	newID func() string
}

type parsedTemplates struct {
	title, observation, impact, action *liquid.Template
}

// NewEngine builds an engine over rules, validating them and parsing every
// narrative template up front. Template and rule configuration errors are
// caught here, at process start, not per evaluation.
func NewEngine(rules []Rule) (*Engine, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	lq := liquid.NewEngine()
	e := &Engine{
		rules:     rules,
		templates: make(map[string]parsedTemplates, len(rules)),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, r := range rules {
		var pt parsedTemplates
		var err error
		if pt.title, err = lq.ParseString(r.Title); err != nil {
			return nil, fmt.Errorf("rule %q title template: %w", r.ID, err)
		}
		if pt.observation, err = lq.ParseString(r.Observation); err != nil {
			return nil, fmt.Errorf("rule %q observation template: %w", r.ID, err)
		}
		if pt.impact, err = lq.ParseString(r.BusinessImpact); err != nil {
			return nil, fmt.Errorf("rule %q impact template: %w", r.ID, err)
		}
		if pt.action, err = lq.ParseString(r.Action); err != nil {
			return nil, fmt.Errorf("rule %q action template: %w", r.ID, err)
		}
		e.templates[r.ID] = pt
	}
	return e, nil
}

// Generate runs every rule against every classified KPI and returns the
// resulting insights sorted by priority, high first. Ties keep the
// KPI-then-rule evaluation order (stable sort), so insights for one KPI
// stay in rule-registration order. A KPI that satisfies no rule produces
// no insights, which is the healthy case rather than an error.
func (e *Engine) Generate(kpis []kpi.Classified) []Insight {
	var out []Insight
	now := e.now()
	for _, c := range kpis {
		for _, r := range e.rules {
			if r.KPI != "" && r.KPI != c.ID {
				continue
			}
			if !r.Condition(c) {
				continue
			}
			out = append(out, e.render(r, c, now))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

// GenerateForKPI is the single-KPI variant of Generate.
func (e *Engine) GenerateForKPI(id kpi.ID, kpis []kpi.Classified) []Insight {
	var scoped []kpi.Classified
	for _, c := range kpis {
		if c.ID == id {
			scoped = append(scoped, c)
		}
	}
	return e.Generate(scoped)
}

func (e *Engine) render(r Rule, c kpi.Classified, now time.Time) Insight {
	bindings := templateBindings(c)
	return Insight{
		ID:              e.newID(),
		KPIID:           c.ID,
		Title:           e.renderOne(r.ID, "title", bindings, c),
		Observation:     e.renderOne(r.ID, "observation", bindings, c),
		BusinessImpact:  e.renderOne(r.ID, "impact", bindings, c),
		Action:          e.renderOne(r.ID, "action", bindings, c),
		Priority:        r.Priority,
		GeneratedAt:     now,
		IsAutoGenerated: true,
	}
}

func (e *Engine) renderOne(ruleID, field string, bindings liquid.Bindings, c kpi.Classified) string {
	pt := e.templates[ruleID]
	var tpl *liquid.Template
	switch field {
	case "title":
		tpl = pt.title
	case "observation":
		tpl = pt.observation
	case "impact":
		tpl = pt.impact
	case "action":
		tpl = pt.action
	}
	out, err := tpl.RenderString(bindings)
	if err != nil {
		// Templates are validated at startup; a render error here means a
		// binding bug, not bad configuration. Degrade to the raw KPI id.
		log.Printf("[insight] rendering %s/%s for %s: %v", ruleID, field, c.ID, err)
		return string(c.ID)
	}
	return out
}

// templateBindings builds the variables the narrative templates can use.
// Numeric values are pre-formatted so templates stay free of filter logic.
func templateBindings(c kpi.Classified) liquid.Bindings {
	name := string(c.ID)
	unit := ""
	if def, err := kpi.Lookup(c.ID); err == nil {
		name = def.DisplayName
		unit = unitLabel(def.Unit)
	}
	return liquid.Bindings{
		"name":     name,
		"unit":     unit,
		"value":    formatNumber(c.CurrentValue),
		"previous": formatNumber(c.PreviousValue),
		"target":   formatNumber(c.TargetValue),
		"status":   string(c.HealthStatus),
		"trend":    string(c.Trend),
		"gap":      formatNumber(round1(targetGapPct(c))),
		"excess":   formatNumber(round1(-targetGapPct(c))),
	}
}

func unitLabel(unit string) string {
	switch unit {
	case "usd":
		return "USD"
	case "percent":
		return "%"
	case "score":
		return "pts"
	case "ratio":
		return "x"
	}
	return unit
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
