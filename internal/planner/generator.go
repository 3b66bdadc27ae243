package planner

import "sort"

// Generate runs every registered strategy over the given snapshot and
// returns the surviving alternatives, best first.
//
// Pipeline: run strategies in fixed order, keep non-nil results,
// deduplicate by allocation content, normalize, stable-sort by score
// descending. The empty slice is a valid result: empty inputs or
// across-the-board strategy degeneration are not errors.
func Generate(resources []Resource, tasks []Task) []Alternative {
	alternatives := []Alternative{}
	if len(resources) == 0 || len(tasks) == 0 {
		return alternatives
	}

	for _, strategy := range Strategies() {
		if alt := strategy.Plan(resources, tasks); alt != nil {
			alternatives = append(alternatives, *alt)
		}
	}

	alternatives = dedupe(alternatives)
	alternatives = normalize(alternatives)

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].Score > alternatives[j].Score
	})
	return alternatives
}
