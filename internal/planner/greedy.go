package planner

import (
	"fmt"
	"math"
)

// minCommitHours is the dust threshold for the greedy strategy: resources
// with less spare capacity are not considered, and commitments this
// small are discarded rather than recorded.
const minCommitHours = 0.1

// greedyStrategy maximizes coverage by always committing the most
// "efficient" resource: the one with the best ratio of spare capacity to
// current load, preferring larger spare capacity on ties.
type greedyStrategy struct{}

func (greedyStrategy) Name() string { return "greedy" }

func (greedyStrategy) Plan(resources []Resource, tasks []Task) *Alternative {
	if len(resources) == 0 || len(tasks) == 0 {
		return nil
	}

	remaining := capacityMap(resources)
	load := make(map[int64]float64, len(resources))

	var allocations []Allocation
	var totalAllocated float64

	for _, task := range byPriorityAndSize(tasks) {
		need := task.RequiredHours

		for need > 0 {
			best := pickMostEfficient(resources, remaining, load)
			if best == nil {
				break
			}

			hours := math.Min(need, remaining[best.ID])
			if hours <= minCommitHours {
				// Sub-threshold commitment: discard, and stop since no
				// other resource can offer more for this need.
				break
			}

			allocations = append(allocations, Allocation{
				ResourceID: best.ID,
				TaskID:     task.ID,
				Hours:      hours,
			})
			remaining[best.ID] -= hours
			load[best.ID] += hours
			need -= hours
			totalAllocated += hours
		}
	}

	totalRequired := totalRequiredHours(tasks)
	var coverage float64
	if totalRequired > 0 {
		coverage = totalAllocated / totalRequired
	}

	var efficiency float64
	for _, r := range resources {
		if r.AvailableHours > 0 {
			efficiency += math.Min(1, load[r.ID]/r.AvailableHours)
		}
	}
	efficiency /= float64(len(resources))

	priorityCoverage := priorityWeightedCoverage(tasks, allocations)

	score := coverage*50 + efficiency*25 + priorityCoverage*15

	explanation := fmt.Sprintf(
		"Greedy efficiency allocation: each commitment picks the resource "+
			"with the best spare-capacity-to-load ratio, maximizing coverage. "+
			"Covered %.1f%% of required hours at %.1f%% resource efficiency.",
		coverage*100, efficiency*100)

	return &Alternative{
		Explanation: explanation,
		Score:       score,
		Allocations: allocations,
	}
}

// pickMostEfficient returns the resource maximizing remaining capacity
// over current load (load floored at 1.0), tie-broken by larger
// remaining capacity, then by input order. Resources at or below the
// dust threshold are ignored; nil means nothing qualifies.
func pickMostEfficient(resources []Resource, remaining, load map[int64]float64) *Resource {
	var best *Resource
	var bestEff, bestRemaining float64
	for i := range resources {
		r := &resources[i]
		rem := remaining[r.ID]
		if rem <= minCommitHours {
			continue
		}
		eff := rem / math.Max(load[r.ID], 1.0)
		if best == nil || eff > bestEff || (eff == bestEff && rem > bestRemaining) {
			best = r
			bestEff = eff
			bestRemaining = rem
		}
	}
	return best
}
