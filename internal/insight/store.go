package insight

import (
	"sync"
)

// Store holds the current generation of insights in memory. The collector
// replaces the whole batch on each refresh; humans edit individual records
// through Update. A single mutex guards the list and its id index so
// concurrent updates through the API cannot lose writes.
type Store struct {
	mu       sync.RWMutex
	insights []Insight
	byID     map[string]int // id -> index into insights
}

// NewStore creates an empty insight store.
func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Replace swaps in a freshly generated batch, discarding the previous one.
func (s *Store) Replace(batch []Insight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights = make([]Insight, len(batch))
	copy(s.insights, batch)
	s.byID = make(map[string]int, len(batch))
	for i, ins := range s.insights {
		s.byID[ins.ID] = i
	}
}

// List returns a copy of the current insights in stored order.
func (s *Store) List() []Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Insight, len(s.insights))
	copy(out, s.insights)
	return out
}

// Get returns the insight with the given id.
func (s *Store) Get(id string) (Insight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Insight{}, false
	}
	return s.insights[i], true
}

// ForKPI returns the current insights for one KPI, in stored order.
func (s *Store) ForKPI(id string) []Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Insight
	for _, ins := range s.insights {
		if string(ins.KPIID) == id {
			out = append(out, ins)
		}
	}
	return out
}

// Update merges a partial patch into the insight with the given id. Only
// non-nil patch fields overwrite. An unknown id leaves the store untouched
// and reports failure through the result, never a panic or error: stale
// ids are a routine user-facing condition.
func (s *Store) Update(id string, patch Patch) UpdateResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return UpdateResult{Success: false, Message: "Insight not found"}
	}

	ins := &s.insights[i]
	if patch.Title != nil {
		ins.Title = *patch.Title
	}
	if patch.Observation != nil {
		ins.Observation = *patch.Observation
	}
	if patch.BusinessImpact != nil {
		ins.BusinessImpact = *patch.BusinessImpact
	}
	if patch.Action != nil {
		ins.Action = *patch.Action
	}
	if patch.Priority != nil {
		ins.Priority = *patch.Priority
	}
	ins.IsAutoGenerated = false

	updated := *ins
	return UpdateResult{Success: true, Insight: &updated}
}

// Len returns the number of stored insights.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.insights)
}
