package planner

import "sort"

// Strategy is one self-contained allocation heuristic. Plan returns nil
// when the strategy degenerates on the given input (empty lists, zero
// totals); the orchestrator skips nil results.
type Strategy interface {
	// Name identifies the strategy in logs and rationales.
	Name() string

	// Plan builds one alternative from a consistent input snapshot.
	// Implementations must not mutate resources or tasks.
	Plan(resources []Resource, tasks []Task) *Alternative
}

// Strategies returns the fixed, ordered set of registered strategies.
// The order is part of the observable contract: deduplication keeps the
// first of two equally-scored duplicates, so reordering changes output.
func Strategies() []Strategy {
	return []Strategy{
		priorityStrategy{},
		balancedStrategy{},
		specializationStrategy{},
		overloadStrategy{},
		greedyStrategy{},
	}
}

// byPriority returns a copy of tasks stable-sorted by priority
// ascending. Ties keep input order, which strategies rely on for
// deterministic tie-breaking.
func byPriority(tasks []Task) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}

// byPriorityAndSize sorts by priority ascending, then required hours
// descending: important and large tasks first.
func byPriorityAndSize(tasks []Task) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].RequiredHours > sorted[j].RequiredHours
	})
	return sorted
}
