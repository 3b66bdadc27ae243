package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResources() []Resource {
	return []Resource{
		{ID: 1, Name: "Dana", Type: "developer", AvailableHours: 10},
		{ID: 2, Name: "Sam", Type: "designer", AvailableHours: 5},
		{ID: 3, Name: "Quinn", Type: "tester", AvailableHours: 8},
	}
}

func testTasks() []Task {
	return []Task{
		{ID: 1, Title: "Develop feature X", RequiredHours: 12, Priority: 1},
		{ID: 2, Title: "Design UI for dashboard", RequiredHours: 9, Priority: 2},
		{ID: 3, Title: "Testing pass", RequiredHours: 10, Priority: 2},
	}
}

// perResourceHours sums allocated hours by resource.
func perResourceHours(allocations []Allocation) map[int64]float64 {
	sums := make(map[int64]float64)
	for _, a := range allocations {
		sums[a.ResourceID] += a.Hours
	}
	return sums
}

func TestStrategies_FixedOrder(t *testing.T) {
	names := []string{}
	for _, s := range Strategies() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"priority", "balanced", "specialization", "overload", "greedy"}, names)
}

func TestCapacityInvariant_AllStrategies(t *testing.T) {
	resources := testResources()
	tasks := testTasks() // total demand 31h exceeds 23h of capacity

	for _, s := range Strategies() {
		alt := s.Plan(resources, tasks)
		require.NotNil(t, alt, "strategy %s", s.Name())

		sums := perResourceHours(alt.Allocations)
		for _, r := range resources {
			assert.LessOrEqual(t, sums[r.ID], r.AvailableHours+1e-9,
				"strategy %s overcommitted resource %d", s.Name(), r.ID)
		}
	}
}

func TestCoverageNeverExceedsDemand(t *testing.T) {
	resources := []Resource{
		{ID: 1, Name: "Dana", Type: "developer", AvailableHours: 100},
		{ID: 2, Name: "Sam", Type: "designer", AvailableHours: 100},
	}
	tasks := []Task{
		{ID: 1, Title: "Develop feature", RequiredHours: 8, Priority: 1},
		{ID: 2, Title: "Design UI", RequiredHours: 4, Priority: 3},
	}
	totalRequired := 12.0

	for _, s := range Strategies() {
		alt := s.Plan(resources, tasks)
		require.NotNil(t, alt, "strategy %s", s.Name())

		var total float64
		for _, a := range alt.Allocations {
			total += a.Hours
		}
		assert.LessOrEqual(t, total, totalRequired+1e-9,
			"strategy %s allocated more than demanded", s.Name())
	}
}

func TestPriorityStrategy_ConcreteScenario(t *testing.T) {
	resources := []Resource{
		{ID: 1, Name: "R1", Type: "developer", AvailableHours: 10},
		{ID: 2, Name: "R2", Type: "designer", AvailableHours: 5},
	}
	tasks := []Task{
		{ID: 1, Title: "Develop feature", RequiredHours: 8, Priority: 1},
		{ID: 2, Title: "Design UI", RequiredHours: 4, Priority: 2},
	}

	alt := priorityStrategy{}.Plan(resources, tasks)
	require.NotNil(t, alt)

	// T1 saturates R1 down to 2h, T2 drains those 2h then takes 2h from R2.
	expected := []Allocation{
		{ResourceID: 1, TaskID: 1, Hours: 8},
		{ResourceID: 1, TaskID: 2, Hours: 2},
		{ResourceID: 2, TaskID: 2, Hours: 2},
	}
	assert.Equal(t, expected, alt.Allocations)

	// Full coverage, priority bonus (5*1 + 4*1)/2 = 4.5, no overload:
	// 1.0*50 + 4.5*20 - 0 = 140.
	assert.InDelta(t, 140.0, alt.Score, 1e-9)
}

func TestPriorityStrategy_EmptyInputs(t *testing.T) {
	assert.Nil(t, priorityStrategy{}.Plan(nil, testTasks()))
	assert.Nil(t, priorityStrategy{}.Plan(testResources(), nil))
}

func TestBalancedStrategy_NilOnZeroTotals(t *testing.T) {
	drained := []Resource{{ID: 1, Name: "idle", Type: "developer", AvailableHours: 0}}
	assert.Nil(t, balancedStrategy{}.Plan(drained, testTasks()))
	assert.Nil(t, balancedStrategy{}.Plan(testResources(), nil))
}

func TestBalancedStrategy_ProportionalShares(t *testing.T) {
	resources := []Resource{
		{ID: 1, Name: "Dana", Type: "developer", AvailableHours: 6},
		{ID: 2, Name: "Sam", Type: "designer", AvailableHours: 6},
	}
	// T1 demands 2/3 of the total, so it may draw 2/3 of the 12h pool.
	tasks := []Task{
		{ID: 1, Title: "Develop feature", RequiredHours: 8, Priority: 1},
		{ID: 2, Title: "Design UI", RequiredHours: 4, Priority: 2},
	}

	alt := balancedStrategy{}.Plan(resources, tasks)
	require.NotNil(t, alt)

	perTask := make(map[int64]float64)
	for _, a := range alt.Allocations {
		perTask[a.TaskID] += a.Hours
	}
	assert.InDelta(t, 8.0, perTask[1], 1e-9)
	assert.InDelta(t, 4.0, perTask[2], 1e-9)
}

func TestSpecializationStrategy_RoutesByType(t *testing.T) {
	resources := []Resource{
		{ID: 1, Name: "Sam", Type: "designer", AvailableHours: 10},
		{ID: 2, Name: "Dana", Type: "developer", AvailableHours: 10},
	}
	tasks := []Task{
		{ID: 1, Title: "Develop feature X", RequiredHours: 6, Priority: 1},
	}

	alt := specializationStrategy{}.Plan(resources, tasks)
	require.NotNil(t, alt)

	// The developer is suitable and must be committed before the
	// designer, despite the designer coming first in input order.
	require.NotEmpty(t, alt.Allocations)
	assert.Equal(t, int64(2), alt.Allocations[0].ResourceID)
	assert.InDelta(t, 6.0, alt.Allocations[0].Hours, 1e-9)
}

func TestSpecializationStrategy_FallsBackWithoutMatch(t *testing.T) {
	resources := []Resource{
		{ID: 1, Name: "Sam", Type: "designer", AvailableHours: 4},
		{ID: 2, Name: "Dana", Type: "developer", AvailableHours: 10},
	}
	tasks := []Task{
		// No keyword from the table appears in this title.
		{ID: 1, Title: "Quarterly budget review", RequiredHours: 6, Priority: 1},
	}

	alt := specializationStrategy{}.Plan(resources, tasks)
	require.NotNil(t, alt)

	// Falls back to input order across the whole pool.
	sums := perResourceHours(alt.Allocations)
	assert.InDelta(t, 4.0, sums[1], 1e-9)
	assert.InDelta(t, 2.0, sums[2], 1e-9)
}

func TestOverloadStrategy_TerminatesWhenCapBinds(t *testing.T) {
	// One big and one tiny resource: once both cross 1.2x the ideal
	// load, the fallback path must still make progress.
	resources := []Resource{
		{ID: 1, Name: "big", Type: "developer", AvailableHours: 100},
		{ID: 2, Name: "small", Type: "developer", AvailableHours: 2},
	}
	tasks := []Task{
		{ID: 1, Title: "Develop feature", RequiredHours: 20, Priority: 1},
	}

	alt := overloadStrategy{}.Plan(resources, tasks)
	require.NotNil(t, alt)

	var total float64
	for _, a := range alt.Allocations {
		total += a.Hours
	}
	assert.InDelta(t, 20.0, total, 1e-9)

	sums := perResourceHours(alt.Allocations)
	assert.InDelta(t, 18.0, sums[1], 1e-9)
	assert.InDelta(t, 2.0, sums[2], 1e-9)
}

func TestOverloadStrategy_SpreadsLoadEvenly(t *testing.T) {
	resources := []Resource{
		{ID: 1, Name: "a", Type: "developer", AvailableHours: 10},
		{ID: 2, Name: "b", Type: "developer", AvailableHours: 10},
	}
	tasks := []Task{
		{ID: 1, Title: "Develop feature", RequiredHours: 10, Priority: 1},
	}

	alt := overloadStrategy{}.Plan(resources, tasks)
	require.NotNil(t, alt)

	// Ideal load is 5h each; the cap (6h) forces the spillover onto the
	// second resource instead of saturating the first.
	sums := perResourceHours(alt.Allocations)
	assert.InDelta(t, 6.0, sums[1], 1e-9)
	assert.InDelta(t, 4.0, sums[2], 1e-9)
}

func TestGreedyStrategy_DiscardsDustCommitments(t *testing.T) {
	resources := []Resource{
		{ID: 1, Name: "a", Type: "developer", AvailableHours: 9.95},
		{ID: 2, Name: "b", Type: "developer", AvailableHours: 5},
	}
	tasks := []Task{
		{ID: 1, Title: "Develop feature", RequiredHours: 10, Priority: 1},
	}

	alt := greedyStrategy{}.Plan(resources, tasks)
	require.NotNil(t, alt)

	// After draining the first resource, 0.05h of need remains; that
	// commitment is below the 0.1h threshold and must be discarded.
	require.Len(t, alt.Allocations, 1)
	assert.Equal(t, int64(1), alt.Allocations[0].ResourceID)
	assert.InDelta(t, 9.95, alt.Allocations[0].Hours, 1e-9)
}

func TestGreedyStrategy_PrefersUnloadedCapacity(t *testing.T) {
	resources := []Resource{
		{ID: 1, Name: "a", Type: "developer", AvailableHours: 4},
		{ID: 2, Name: "b", Type: "developer", AvailableHours: 9},
	}
	tasks := []Task{
		{ID: 1, Title: "Develop feature", RequiredHours: 6, Priority: 1},
	}

	alt := greedyStrategy{}.Plan(resources, tasks)
	require.NotNil(t, alt)

	// Both start unloaded, so the larger spare capacity wins.
	require.NotEmpty(t, alt.Allocations)
	assert.Equal(t, int64(2), alt.Allocations[0].ResourceID)
	assert.InDelta(t, 6.0, alt.Allocations[0].Hours, 1e-9)
}

func TestRound1(t *testing.T) {
	assert.InDelta(t, 2.3, round1(2.25), 1e-9)
	assert.InDelta(t, 2.2, round1(2.24), 1e-9)
	assert.InDelta(t, 0.0, round1(0.04), 1e-9)
	assert.True(t, math.Signbit(round1(-0.26)) && round1(-0.26) == -0.3)
}
