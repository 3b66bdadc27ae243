package planner

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// specializationTable maps resource types to title keywords. A resource
// type is "suitable" for a task when any of its keywords appears in the
// lowercased task title. The table is ordered: suitable types are
// collected, and their resources tried, in this order. Static domain
// configuration, not behavior; extend it freely without touching the
// algorithm below.
var specializationTable = []struct {
	resourceType string
	keywords     []string
}{
	{"developer", []string{"develop", "code", "programming", "feature", "system"}},
	{"designer", []string{"design", "interface", "ui", "ux", "mockup"}},
	{"tester", []string{"testing", "test", "verification", "qa"}},
	{"analyst", []string{"analysis", "requirements", "documentation", "research"}},
	{"project manager", []string{"project", "management", "coordination", "planning"}},
}

// specializationStrategy routes tasks to resources whose type matches
// the task title. Tasks without a keyword match, or left under-covered
// by their matching types, fall back to the remaining pool.
type specializationStrategy struct{}

func (specializationStrategy) Name() string { return "specialization" }

func (specializationStrategy) Plan(resources []Resource, tasks []Task) *Alternative {
	if len(resources) == 0 || len(tasks) == 0 {
		return nil
	}

	byType := make(map[string][]Resource)
	for _, r := range resources {
		byType[r.Type] = append(byType[r.Type], r)
	}

	remaining := capacityMap(resources)
	sorted := byPriorityAndSize(tasks)

	var allocations []Allocation
	var totalAllocated float64
	var typeMatches int

	for _, task := range sorted {
		need := task.RequiredHours
		title := strings.ToLower(task.Title)

		suitable := make(map[string]bool)
		var candidates []Resource
		for _, entry := range specializationTable {
			for _, kw := range entry.keywords {
				if strings.Contains(title, kw) {
					suitable[entry.resourceType] = true
					candidates = append(candidates, byType[entry.resourceType]...)
					break
				}
			}
		}
		if len(suitable) == 0 {
			candidates = resources
		}

		// First pass: candidates only. The whole candidate list counts
		// as tried even when the need runs out early.
		tried := make(map[int64]bool, len(candidates))
		for _, r := range candidates {
			tried[r.ID] = true
		}
		for _, r := range candidates {
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
			if suitable[r.Type] {
				typeMatches++
			}
		}

		// Second pass: sweep everything not yet tried if the task is
		// still short.
		if need > 0 {
			for _, r := range resources {
				if need <= 0 {
					break
				}
				if tried[r.ID] || remaining[r.ID] <= 0 {
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
	}

	totalRequired := totalRequiredHours(tasks)
	var coverage float64
	if totalRequired > 0 {
		coverage = totalAllocated / totalRequired
	}

	usedResources := make(map[int64]bool)
	for _, a := range allocations {
		usedResources[a.ResourceID] = true
	}
	typesUsed := make(map[string]bool)
	for _, r := range resources {
		if usedResources[r.ID] {
			typesUsed[r.Type] = true
		}
	}

	var typeDiversity float64
	if len(byType) > 0 {
		typeDiversity = float64(len(typesUsed)) / float64(len(byType))
	}
	var matchRatio float64
	if len(allocations) > 0 {
		matchRatio = float64(typeMatches) / float64(len(allocations))
	}

	score := coverage*40 + typeDiversity*20 + matchRatio*15

	typeNames := make([]string, 0, len(byType))
	for name := range byType {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	explanation := fmt.Sprintf(
		"Specialization-matched allocation: task titles are matched against "+
			"resource types (%s) so work lands on suited specialists where "+
			"possible. Covered %.1f%% of required hours using %d resource types; "+
			"%.1f%% of commitments matched a specialization.",
		strings.Join(typeNames, ", "), coverage*100, len(typesUsed), matchRatio*100)

	return &Alternative{
		Explanation: explanation,
		Score:       score,
		Allocations: allocations,
	}
}
