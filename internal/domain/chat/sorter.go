package chat

import (
	"sort"
)

// SortByActivity orders entities by most-recent-activity, newest first.
// The input slice is never mutated; entities with equal activity keep their
// original relative order (stable sort).
func SortByActivity(entities []Entity) []Entity {
	sorted := make([]Entity, len(entities))
	copy(sorted, entities)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastActivity().After(sorted[j].LastActivity())
	})

	return sorted
}
