// Package dag composes jobs from one or more job sets into a directed
// dependency graph, validates it, and produces the generation-ordered
// submission plan handed to the scheduler.
//
// Construction is pure accumulation: nothing is checked globally until
// Validate or TopologicalPlan runs. Once a plan has been produced the graph
// is frozen and further mutation fails.
package dag
