package store

import (
	"time"

	"github.com/enzy247/allocd/internal/planner"
)

// Alternative is a persisted allocation plan. RunID groups the
// alternatives produced by one generation call.
type Alternative struct {
	ID          int64                `json:"id"`
	RunID       string               `json:"run_id"`
	Explanation string               `json:"explanation"`
	Score       float64              `json:"score"`
	Allocations []planner.Allocation `json:"allocations"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Plan returns the planner-shaped view of the alternative.
func (a Alternative) Plan() planner.Alternative {
	return planner.Alternative{
		Explanation: a.Explanation,
		Score:       a.Score,
		Allocations: a.Allocations,
	}
}

// Choice records one user selection, with the feature snapshot of the
// chosen alternative at selection time. The snapshot is kept for audit;
// training recomputes features from the alternatives themselves.
type Choice struct {
	ID              int64     `json:"id"`
	AlternativeID   int64     `json:"alternative_id"`
	SelectedAt      time.Time `json:"selected_at"`
	Coverage        float64   `json:"coverage"`
	PriorityScore   float64   `json:"priority_score"`
	BalanceScore    float64   `json:"balance_score"`
	OverloadPenalty float64   `json:"overload_penalty"`
	TotalScore      float64   `json:"total_score"`
	NumResources    int       `json:"num_resources"`
	NumTasks        int       `json:"num_tasks"`
	MLScore         *float64  `json:"ml_score,omitempty"`
}
