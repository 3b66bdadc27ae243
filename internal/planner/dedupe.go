package planner

import (
	"fmt"
	"sort"
	"strings"
)

// dedupe collapses alternatives whose allocation sets are identical
// after rounding hours to one decimal place. Comparison is
// order-independent. The higher-scoring copy wins; ties keep the first
// encountered, preserving strategy order.
func dedupe(alternatives []Alternative) []Alternative {
	seen := make(map[string]int, len(alternatives))
	unique := make([]Alternative, 0, len(alternatives))

	for _, alt := range alternatives {
		key := allocationKey(alt.Allocations)
		if i, ok := seen[key]; ok {
			if alt.Score > unique[i].Score {
				unique[i] = alt
			}
			continue
		}
		seen[key] = len(unique)
		unique = append(unique, alt)
	}
	return unique
}

// allocationKey builds an order-independent fingerprint of an allocation
// set with hours rounded to one decimal place.
func allocationKey(allocations []Allocation) string {
	parts := make([]string, len(allocations))
	for i, a := range allocations {
		parts[i] = fmt.Sprintf("%d:%d:%.1f", a.ResourceID, a.TaskID, round1(a.Hours))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
