package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_MergesPairsAndDropsDust(t *testing.T) {
	alts := []Alternative{{
		Explanation: "raw",
		Score:       50,
		Allocations: []Allocation{
			{ResourceID: 1, TaskID: 1, Hours: 2.04},
			{ResourceID: 1, TaskID: 1, Hours: 3.02},
			{ResourceID: 2, TaskID: 1, Hours: 0.3}, // dust, dropped
		},
	}}

	got := normalize(alts)
	require.Len(t, got, 1)
	require.Len(t, got[0].Allocations, 1)
	assert.Equal(t, Allocation{ResourceID: 1, TaskID: 1, Hours: 5.1}, got[0].Allocations[0])
}

func TestNormalize_DropsEmptiedAlternatives(t *testing.T) {
	alts := []Alternative{{
		Score:       10,
		Allocations: []Allocation{{ResourceID: 1, TaskID: 1, Hours: 0.2}},
	}}
	assert.Empty(t, normalize(alts))
}

func TestNormalize_Idempotent(t *testing.T) {
	alts := []Alternative{{
		Score: 42,
		Allocations: []Allocation{
			{ResourceID: 1, TaskID: 1, Hours: 1.23},
			{ResourceID: 1, TaskID: 2, Hours: 4.56},
			{ResourceID: 2, TaskID: 1, Hours: 0.49},
			{ResourceID: 2, TaskID: 1, Hours: 0.49},
		},
	}}

	once := normalize(alts)
	twice := normalize(once)
	assert.Equal(t, once, twice)
}

func TestDedupe_KeepsHigherScore(t *testing.T) {
	shared := []Allocation{
		{ResourceID: 1, TaskID: 1, Hours: 5},
		{ResourceID: 2, TaskID: 2, Hours: 3},
	}
	// Same set in a different order still counts as a duplicate.
	reordered := []Allocation{
		{ResourceID: 2, TaskID: 2, Hours: 3},
		{ResourceID: 1, TaskID: 1, Hours: 5},
	}

	alts := []Alternative{
		{Explanation: "low", Score: 60, Allocations: shared},
		{Explanation: "high", Score: 90, Allocations: reordered},
	}

	got := dedupe(alts)
	require.Len(t, got, 1)
	assert.Equal(t, "high", got[0].Explanation)
	assert.InDelta(t, 90.0, got[0].Score, 1e-9)
}

func TestDedupe_TiesKeepFirst(t *testing.T) {
	shared := []Allocation{{ResourceID: 1, TaskID: 1, Hours: 5}}
	alts := []Alternative{
		{Explanation: "first", Score: 70, Allocations: shared},
		{Explanation: "second", Score: 70, Allocations: shared},
	}

	got := dedupe(alts)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Explanation)
}

func TestDedupe_RoundingDecidesIdentity(t *testing.T) {
	alts := []Alternative{
		{Explanation: "a", Score: 10, Allocations: []Allocation{{ResourceID: 1, TaskID: 1, Hours: 5.04}}},
		{Explanation: "b", Score: 20, Allocations: []Allocation{{ResourceID: 1, TaskID: 1, Hours: 4.96}}},
		{Explanation: "c", Score: 30, Allocations: []Allocation{{ResourceID: 1, TaskID: 1, Hours: 5.26}}},
	}

	// 5.04 and 4.96 both round to 5.0; 5.26 rounds to 5.3 and is distinct.
	got := dedupe(alts)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Explanation)
	assert.Equal(t, "c", got[1].Explanation)
}
