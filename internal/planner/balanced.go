package planner

import (
	"fmt"
	"math"
)

// balancedStrategy hands every task a proportional share of the total
// capacity: a task needing a quarter of all required hours may draw a
// quarter of all available hours. Tasks and resources are walked in
// input order.
type balancedStrategy struct{}

func (balancedStrategy) Name() string { return "balanced" }

func (balancedStrategy) Plan(resources []Resource, tasks []Task) *Alternative {
	totalAvailable := totalAvailableHours(resources)
	totalRequired := totalRequiredHours(tasks)
	if totalAvailable == 0 || totalRequired == 0 {
		return nil
	}

	remaining := capacityMap(resources)

	var allocations []Allocation
	var totalAllocated float64

	for _, task := range tasks {
		// A task may draw its proportional share of the pool, but never
		// more than it actually needs.
		share := math.Min(task.RequiredHours/totalRequired*totalAvailable, task.RequiredHours)
		var allocatedToTask float64

		for _, r := range resources {
			if allocatedToTask >= share {
				break
			}
			if remaining[r.ID] <= 0 {
				continue
			}
			hours := math.Min(share-allocatedToTask, remaining[r.ID])
			allocations = append(allocations, Allocation{
				ResourceID: r.ID,
				TaskID:     task.ID,
				Hours:      hours,
			})
			remaining[r.ID] -= hours
			allocatedToTask += hours
			totalAllocated += hours
		}
	}

	coverage := totalAllocated / totalRequired
	balanceScore := 1 - utilizationVariance(resources, allocations)
	fairnessScore := 1 - math.Min(1, coverageVariance(tasks, allocations))

	score := coverage*40 + balanceScore*25 + fairnessScore*15

	explanation := fmt.Sprintf(
		"Proportional allocation: every task receives a share of capacity "+
			"matching its fraction of total demand, spreading load fairly across "+
			"tasks. Covered %.1f%% of required hours.",
		coverage*100)

	return &Alternative{
		Explanation: explanation,
		Score:       score,
		Allocations: allocations,
	}
}
