// Package demo holds a small example data set for trying the system out.
package demo

import "github.com/enzy247/allocd/internal/planner"

// Resources returns the demo resource set.
func Resources() []planner.Resource {
	return []planner.Resource{
		{Name: "Ivan Ivanov", Type: "developer", AvailableHours: 160},
		{Name: "Maria Petrova", Type: "designer", AvailableHours: 120},
		{Name: "Alexey Sidorov", Type: "developer", AvailableHours: 140},
		{Name: "Anna Kozlova", Type: "tester", AvailableHours: 100},
		{Name: "Dmitry Volkov", Type: "project manager", AvailableHours: 80},
	}
}

// Tasks returns the demo task set.
func Tasks() []planner.Task {
	return []planner.Task{
		{Title: "Develop new features", RequiredHours: 200, Priority: 1},
		{Title: "Design the user interface", RequiredHours: 80, Priority: 2},
		{Title: "Test the system", RequiredHours: 120, Priority: 2},
		{Title: "Write project documentation", RequiredHours: 60, Priority: 3},
		{Title: "Optimize performance", RequiredHours: 100, Priority: 3},
	}
}
