package planner

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Shared scoring helpers. All variance figures are population variance
// over the full resource or task list, matching the score formulas the
// strategies advertise in their rationales.

func totalAvailableHours(resources []Resource) float64 {
	var total float64
	for _, r := range resources {
		total += r.AvailableHours
	}
	return total
}

func totalRequiredHours(tasks []Task) float64 {
	var total float64
	for _, t := range tasks {
		total += t.RequiredHours
	}
	return total
}

// capacityMap builds the per-strategy remaining-capacity counter. Each
// strategy gets a fresh map so runs never share mutable state.
func capacityMap(resources []Resource) map[int64]float64 {
	remaining := make(map[int64]float64, len(resources))
	for _, r := range resources {
		remaining[r.ID] = r.AvailableHours
	}
	return remaining
}

func allocatedPerResource(allocations []Allocation) map[int64]float64 {
	load := make(map[int64]float64)
	for _, a := range allocations {
		load[a.ResourceID] += a.Hours
	}
	return load
}

func allocatedPerTask(allocations []Allocation) map[int64]float64 {
	covered := make(map[int64]float64)
	for _, a := range allocations {
		covered[a.TaskID] += a.Hours
	}
	return covered
}

// utilizationVariance measures how unevenly resources are loaded:
// population variance of per-resource allocated/available ratios,
// clamped to [0, 1]. Zero means perfectly even.
func utilizationVariance(resources []Resource, allocations []Allocation) float64 {
	if len(resources) == 0 {
		return 0
	}
	load := allocatedPerResource(allocations)
	ratios := make([]float64, 0, len(resources))
	for _, r := range resources {
		if r.AvailableHours > 0 {
			ratios = append(ratios, load[r.ID]/r.AvailableHours)
		} else {
			ratios = append(ratios, 0)
		}
	}
	return math.Min(1, stat.PopVariance(ratios, nil))
}

// coverageVariance is the population variance of per-task coverage
// ratios, unclamped. Callers clamp as their formula requires.
func coverageVariance(tasks []Task, allocations []Allocation) float64 {
	if len(tasks) == 0 {
		return 0
	}
	covered := allocatedPerTask(allocations)
	ratios := make([]float64, 0, len(tasks))
	for _, t := range tasks {
		ratios = append(ratios, covered[t.ID]/t.RequiredHours)
	}
	return stat.PopVariance(ratios, nil)
}

// overloadBeyondCapacity sums hours committed past each resource's
// availability. The remaining-capacity counters make this zero by
// construction today; the term is kept because the score formulas quote
// it and future strategies may relax the guard.
func overloadBeyondCapacity(resources []Resource, allocations []Allocation) float64 {
	load := allocatedPerResource(allocations)
	var overload float64
	for _, r := range resources {
		overload += math.Max(0, load[r.ID]-r.AvailableHours)
	}
	return overload
}

// priorityWeightedCoverage averages (6 - priority) * coverage over all
// tasks, rewarding plans that finish important work first.
func priorityWeightedCoverage(tasks []Task, allocations []Allocation) float64 {
	if len(tasks) == 0 {
		return 0
	}
	covered := allocatedPerTask(allocations)
	var sum float64
	for _, t := range tasks {
		ratio := math.Min(1, covered[t.ID]/t.RequiredHours)
		sum += float64(6-t.Priority) * ratio
	}
	return sum / float64(len(tasks))
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
