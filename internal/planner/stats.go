package planner

import "fmt"

// ResourceStat describes one resource's share of an alternative.
type ResourceStat struct {
	ResourceID         int64   `json:"resource_id"`
	ResourceName       string  `json:"resource_name"`
	AvailableHours     float64 `json:"available_hours"`
	AllocatedHours     float64 `json:"allocated_hours"`
	UtilizationPercent float64 `json:"utilization_percent"`
	Overloaded         bool    `json:"overloaded"`
}

// TaskStat describes how well an alternative covers one task.
type TaskStat struct {
	TaskID          int64   `json:"task_id"`
	TaskTitle       string  `json:"task_title"`
	RequiredHours   float64 `json:"required_hours"`
	AllocatedHours  float64 `json:"allocated_hours"`
	CoveragePercent float64 `json:"coverage_percent"`
	Priority        int     `json:"priority"`
}

// Stats summarizes one alternative against the resource and task
// snapshot it was generated from.
type Stats struct {
	TotalResources         int            `json:"total_resources"`
	TotalTasks             int            `json:"total_tasks"`
	TotalAvailableHours    float64        `json:"total_available_hours"`
	TotalRequiredHours     float64        `json:"total_required_hours"`
	TotalAllocatedHours    float64        `json:"total_allocated_hours"`
	OverallCoveragePercent float64        `json:"overall_coverage_percent"`
	ResourceStats          []ResourceStat `json:"resource_stats"`
	TaskStats              []TaskStat     `json:"task_stats"`
	Warnings               []string       `json:"warnings"`
}

// ComputeStats builds distribution statistics for one alternative.
// A nil alternative yields totals only, with a warning.
func ComputeStats(alt *Alternative, resources []Resource, tasks []Task) Stats {
	stats := Stats{
		TotalResources:      len(resources),
		TotalTasks:          len(tasks),
		TotalAvailableHours: totalAvailableHours(resources),
		TotalRequiredHours:  totalRequiredHours(tasks),
		ResourceStats:       []ResourceStat{},
		TaskStats:           []TaskStat{},
		Warnings:            []string{},
	}

	if alt == nil {
		stats.Warnings = append(stats.Warnings, "no alternatives to analyze")
		return stats
	}

	load := allocatedPerResource(alt.Allocations)
	for _, r := range resources {
		allocated := load[r.ID]
		var utilization float64
		if r.AvailableHours > 0 {
			utilization = allocated / r.AvailableHours * 100
		}
		overloaded := allocated > r.AvailableHours
		if overloaded {
			stats.Warnings = append(stats.Warnings, fmt.Sprintf(
				"resource %q is overloaded: %.1f hours allocated of %.1f available",
				r.Name, allocated, r.AvailableHours))
		}
		stats.ResourceStats = append(stats.ResourceStats, ResourceStat{
			ResourceID:         r.ID,
			ResourceName:       r.Name,
			AvailableHours:     r.AvailableHours,
			AllocatedHours:     allocated,
			UtilizationPercent: utilization,
			Overloaded:         overloaded,
		})
		stats.TotalAllocatedHours += allocated
	}

	covered := allocatedPerTask(alt.Allocations)
	for _, t := range tasks {
		allocated := covered[t.ID]
		var coverage float64
		if t.RequiredHours > 0 {
			coverage = allocated / t.RequiredHours * 100
		}
		if allocated < t.RequiredHours {
			stats.Warnings = append(stats.Warnings, fmt.Sprintf(
				"task %q is under-covered: %.1f hours allocated of %.1f required",
				t.Title, allocated, t.RequiredHours))
		}
		stats.TaskStats = append(stats.TaskStats, TaskStat{
			TaskID:          t.ID,
			TaskTitle:       t.Title,
			RequiredHours:   t.RequiredHours,
			AllocatedHours:  allocated,
			CoveragePercent: coverage,
			Priority:        t.Priority,
		})
	}

	if stats.TotalRequiredHours > 0 {
		stats.OverallCoveragePercent = stats.TotalAllocatedHours / stats.TotalRequiredHours * 100
	}
	if stats.TotalRequiredHours > stats.TotalAvailableHours {
		stats.Warnings = append(stats.Warnings, fmt.Sprintf(
			"insufficient capacity: %.1f hours required, %.1f hours available",
			stats.TotalRequiredHours, stats.TotalAvailableHours))
	}
	return stats
}
