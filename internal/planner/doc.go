// Package planner generates competing resource allocation plans.
//
// Given a snapshot of capacity-limited resources and priority-weighted
// tasks, the planner runs a fixed set of independent allocation
// strategies, each producing at most one scored Alternative with a
// human-readable rationale. Raw strategy output is deduplicated by
// allocation content, normalized (duplicate commitments merged, dust
// below half an hour dropped), and returned sorted by score descending.
//
// The planner is pure: it performs no I/O, holds no state between calls,
// and never mutates its inputs. Strategies track remaining capacity in
// local maps, so a single resource is never committed beyond its
// available hours within one alternative. Total task coverage is not
// guaranteed; under-allocation is expected when capacity is short and is
// exactly what the coverage term of each score measures.
//
// Input validation (positive hours, priority in 1..5) is the caller's
// responsibility.
package planner
