package orchestrator

import (
	"strings"
	"time"

	"pokedex-service/internal/domain/entity"
)

// SetSearchText records the query and re-derives the filtered view after the
// debounce window elapses. Rapid successive calls reset the window.
func (o *Orchestrator) SetSearchText(query string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.searchText = query
	if o.debounce != nil {
		o.debounce.Stop()
	}
	o.debounce = time.AfterFunc(o.cfg.GetSearchDebounce(), o.applyFilter)
}

// SearchText returns the current raw query, which may not be applied to the
// filtered view yet while the debounce window is open.
func (o *Orchestrator) SearchText() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.searchText
}

// applyFilter recomputes the filtered view from the current query.
func (o *Orchestrator) applyFilter() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recomputeFilteredLocked()
}

// recomputeFilteredLocked derives the filtered view: case-insensitive
// substring match against names, with an empty query yielding the full list.
// Callers hold o.mu.
func (o *Orchestrator) recomputeFilteredLocked() {
	query := strings.ToLower(strings.TrimSpace(o.searchText))
	if query == "" {
		o.filtered = o.items
		return
	}

	filtered := make([]entity.Pokemon, 0, len(o.items))
	for _, item := range o.items {
		if strings.Contains(strings.ToLower(item.Name), query) {
			filtered = append(filtered, item)
		}
	}
	o.filtered = filtered
}
