package planner

import (
	"fmt"
	"math"
)

// priorityStrategy staffs tasks strictly in priority order: each task,
// highest priority first, sweeps resources in input order and takes
// whatever capacity is left until its need is met.
type priorityStrategy struct{}

func (priorityStrategy) Name() string { return "priority" }

func (priorityStrategy) Plan(resources []Resource, tasks []Task) *Alternative {
	if len(resources) == 0 || len(tasks) == 0 {
		return nil
	}

	sorted := byPriority(tasks)
	remaining := capacityMap(resources)

	var allocations []Allocation
	var totalAllocated float64

	for _, task := range sorted {
		need := task.RequiredHours
		for _, r := range resources {
			if need <= 0 {
				break
			}
			if remaining[r.ID] <= 0 {
				continue
			}
			hours := math.Min(need, remaining[r.ID])
			allocations = append(allocations, Allocation{
				ResourceID: r.ID,
				TaskID:     task.ID,
				Hours:      hours,
			})
			remaining[r.ID] -= hours
			need -= hours
			totalAllocated += hours
		}
	}

	totalRequired := totalRequiredHours(tasks)
	var coverage float64
	if totalRequired > 0 {
		coverage = totalAllocated / totalRequired
	}

	priorityBonus := priorityWeightedCoverage(tasks, allocations)

	var overloadPenalty float64
	if totalRequired > 0 {
		overloadPenalty = overloadBeyondCapacity(resources, allocations) / totalRequired
	}

	score := math.Max(0, coverage*50+priorityBonus*20-overloadPenalty*30)

	explanation := fmt.Sprintf(
		"Priority-ordered allocation: the most important tasks are staffed first, "+
			"so priority %d work draws on capacity before anything else. "+
			"Covered %.1f%% of required hours.",
		sorted[0].Priority, coverage*100)

	return &Alternative{
		Explanation: explanation,
		Score:       score,
		Allocations: allocations,
	}
}
