package planner

import (
	"fmt"
	"math"
)

// loadCapFactor allows a resource to run 20% past the ideal even load
// before the overload strategy starts avoiding it.
const loadCapFactor = 1.2

// overloadStrategy keeps per-resource load as even as possible: each
// commitment goes to the least-loaded resource still under 1.2x the
// ideal load, falling back to any resource with spare capacity (without
// the cap) once every resource has crossed it.
type overloadStrategy struct{}

func (overloadStrategy) Name() string { return "overload" }

func (overloadStrategy) Plan(resources []Resource, tasks []Task) *Alternative {
	if len(resources) == 0 || len(tasks) == 0 {
		return nil
	}
	if totalAvailableHours(resources) == 0 {
		return nil
	}

	totalRequired := totalRequiredHours(tasks)
	idealLoad := totalRequired / float64(len(resources))
	loadCap := idealLoad * loadCapFactor

	remaining := capacityMap(resources)
	load := make(map[int64]float64, len(resources))

	var allocations []Allocation

	for _, task := range byPriorityAndSize(tasks) {
		need := task.RequiredHours

		for need > 0 {
			best, underCap := pickLeastLoaded(resources, remaining, load, loadCap)
			if best == nil {
				break
			}

			hours := math.Min(need, remaining[best.ID])
			if underCap {
				hours = math.Min(hours, loadCap-load[best.ID])
			}
			if hours <= 0 {
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
		}
	}

	var totalAllocated float64
	for _, a := range allocations {
		totalAllocated += a.Hours
	}

	var coverage float64
	balance := 1.0
	if totalRequired > 0 {
		coverage = totalAllocated / totalRequired
		balance = 1 - overloadBeyondCapacity(resources, allocations)/totalRequired
	}

	score := coverage*40 + balance*35

	var maxLoad float64
	for _, l := range load {
		maxLoad = math.Max(maxLoad, l)
	}

	explanation := fmt.Sprintf(
		"Overload-minimizing allocation: commitments always go to the "+
			"least-loaded resource, keeping everyone near the ideal load of "+
			"%.1f hours. Covered %.1f%% of required hours; heaviest resource "+
			"carries %.1f hours.",
		idealLoad, coverage*100, maxLoad)

	return &Alternative{
		Explanation: explanation,
		Score:       score,
		Allocations: allocations,
	}
}

// pickLeastLoaded returns the least-loaded resource with spare capacity
// under the load cap, or without the cap when none qualifies. Ties keep
// the earliest resource in input order. The second return reports
// whether the cap filter applied, so the caller knows to bound the
// commitment by it.
func pickLeastLoaded(resources []Resource, remaining, load map[int64]float64, loadCap float64) (*Resource, bool) {
	var best *Resource
	for i := range resources {
		r := &resources[i]
		if remaining[r.ID] <= 0 || load[r.ID] >= loadCap {
			continue
		}
		if best == nil || load[r.ID] < load[best.ID] {
			best = r
		}
	}
	if best != nil {
		return best, true
	}
	for i := range resources {
		r := &resources[i]
		if remaining[r.ID] <= 0 {
			continue
		}
		if best == nil || load[r.ID] < load[best.ID] {
			best = r
		}
	}
	return best, false
}
