package planner

// dustThreshold drops normalized allocations under half an hour; slices
// that small are not worth scheduling.
const dustThreshold = 0.5

// normalize merges duplicate (resource, task) commitments within each
// alternative, rounds the summed hours to one decimal place, and drops
// dust entries. Alternatives left with no allocations are dropped
// entirely. Idempotent: normalizing twice equals normalizing once.
func normalize(alternatives []Alternative) []Alternative {
	normalized := make([]Alternative, 0, len(alternatives))

	for _, alt := range alternatives {
		type pair struct{ resource, task int64 }
		sums := make(map[pair]float64, len(alt.Allocations))
		order := make([]pair, 0, len(alt.Allocations))

		for _, a := range alt.Allocations {
			p := pair{a.ResourceID, a.TaskID}
			if _, ok := sums[p]; !ok {
				order = append(order, p)
			}
			sums[p] += a.Hours
		}

		merged := make([]Allocation, 0, len(order))
		for _, p := range order {
			hours := round1(sums[p])
			if hours < dustThreshold {
				continue
			}
			merged = append(merged, Allocation{
				ResourceID: p.resource,
				TaskID:     p.task,
				Hours:      hours,
			})
		}

		if len(merged) == 0 {
			continue
		}
		alt.Allocations = merged
		normalized = append(normalized, alt)
	}
	return normalized
}
