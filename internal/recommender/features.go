package recommender

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/enzy247/allocd/internal/planner"
)

// FeatureCount is the dimensionality of the feature vector.
const FeatureCount = 11

// FeatureNames lists the features in vector order, for introspection.
var FeatureNames = []string{
	"coverage",
	"priority_score",
	"balance_score",
	"overload_penalty",
	"total_score",
	"num_allocations",
	"num_resources",
	"num_tasks",
	"total_required",
	"total_available",
	"resource_utilization_std",
}

// Features extracts the classifier's feature vector from one
// alternative against the snapshot it was generated from. Counts and
// hour totals are scaled to keep every feature near [0, 1].
func Features(alt planner.Alternative, resources []planner.Resource, tasks []planner.Task) []float64 {
	var totalRequired, totalAvailable float64
	for _, t := range tasks {
		totalRequired += t.RequiredHours
	}
	for _, r := range resources {
		totalAvailable += r.AvailableHours
	}

	perResource := make(map[int64]float64)
	perTask := make(map[int64]float64)
	var totalAllocated float64
	for _, a := range alt.Allocations {
		perResource[a.ResourceID] += a.Hours
		perTask[a.TaskID] += a.Hours
		totalAllocated += a.Hours
	}

	var coverage float64
	if totalRequired > 0 {
		coverage = totalAllocated / totalRequired
	}

	// Priority score: coverage of each task weighted by its priority,
	// with the 1..5 scale normalized to 0..1.
	var priorityScore float64
	if len(tasks) > 0 {
		for _, t := range tasks {
			taskCoverage := math.Min(1, perTask[t.ID]/t.RequiredHours)
			weight := float64(6-t.Priority) / 5.0
			priorityScore += taskCoverage * weight
		}
		priorityScore /= float64(len(tasks))
	}

	// Utilization spread across resources. With no usable resources the
	// neutral 0.5 keeps the feature uninformative rather than extreme.
	var utilizations []float64
	for _, r := range resources {
		if r.AvailableHours > 0 {
			utilizations = append(utilizations, perResource[r.ID]/r.AvailableHours)
		}
	}
	utilizationStd := 0.5
	balanceScore := 0.5
	if len(utilizations) > 0 {
		utilizationStd = stat.PopStdDev(utilizations, nil)
		balanceScore = math.Max(0, math.Min(1, 1-utilizationStd))
	}

	var overloadPenalty float64
	if totalRequired > 0 {
		var overload float64
		for _, r := range resources {
			overload += math.Max(0, perResource[r.ID]-r.AvailableHours)
		}
		overloadPenalty = math.Min(1, overload/totalRequired)
	}

	return []float64{
		coverage,
		priorityScore,
		balanceScore,
		overloadPenalty,
		alt.Score / 100.0,
		float64(len(alt.Allocations)) / 50.0,
		float64(len(resources)) / 20.0,
		float64(len(tasks)) / 20.0,
		totalRequired / 1000.0,
		totalAvailable / 1000.0,
		utilizationStd,
	}
}
