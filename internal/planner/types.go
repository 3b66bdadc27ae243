package planner

// Resource is a unit of capacity (a person, a machine) that can be
// committed to tasks. Type is a free-form category label used for
// specialization matching; Name is display-only.
type Resource struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	AvailableHours float64 `json:"available_hours"`
}

// Task is a unit of demand. Priority ranges 1..5 with 1 highest.
type Task struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	RequiredHours float64 `json:"required_hours"`
	Priority      int     `json:"priority"`
}

// Allocation commits hours from one resource to one task. A strategy may
// emit several allocations for the same (resource, task) pair; they are
// summed during normalization.
type Allocation struct {
	ResourceID int64   `json:"resource_id"`
	TaskID     int64   `json:"task_id"`
	Hours      float64 `json:"hours"`
}

// Alternative is one complete allocation plan. Scores use
// strategy-specific scales and are comparable only within a single
// Generate call.
type Alternative struct {
	Explanation string       `json:"explanation"`
	Score       float64      `json:"score"`
	Allocations []Allocation `json:"allocations"`
}
