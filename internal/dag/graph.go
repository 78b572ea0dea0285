package dag

import (
	"sort"

	"github.com/raggleton/htcondenser/internal/jobs"
)

// Graph is a directed dependency graph over uniquely named jobs. Edges point
// from a dependent job to its prerequisites.
type Graph struct {
	nodes  map[string]*node
	order  []string
	frozen bool
}

// node is a single vertex. It is un-exported to force interaction through
// the public API using job names.
type node struct {
	job *jobs.Job
	// prereqs is the set of job names that must finish before this one runs.
	prereqs map[string]struct{}
	// prereqOrder preserves edge insertion order for deterministic reports.
	prereqOrder []string
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddJobSet merges every member job of js into the graph as a node. If any
// member's name already exists in the graph, nothing is merged and the full
// set of clashing names is reported. A job with quantity above one still
// contributes exactly one node.
func (g *Graph) AddJobSet(js *jobs.JobSet) error {
	if g.frozen {
		return ErrFrozen
	}
	var dupes []string
	for _, j := range js.Jobs() {
		if _, exists := g.nodes[j.Name]; exists {
			dupes = append(dupes, j.Name)
		}
	}
	if len(dupes) > 0 {
		return &DuplicateNodeError{Names: dupes}
	}
	for _, j := range js.Jobs() {
		g.nodes[j.Name] = &node{job: j, prereqs: make(map[string]struct{})}
		g.order = append(g.order, j.Name)
	}
	return nil
}

// AddEdge records that dependent cannot start until prerequisite has
// finished. Both names must already be present in the graph.
func (g *Graph) AddEdge(dependent, prerequisite string) error {
	if g.frozen {
		return ErrFrozen
	}
	dep, ok := g.nodes[dependent]
	if !ok {
		return &UnknownNodeError{Name: dependent}
	}
	if _, ok := g.nodes[prerequisite]; !ok {
		return &UnknownNodeError{Name: prerequisite}
	}
	if _, exists := dep.prereqs[prerequisite]; exists {
		return nil
	}
	dep.prereqs[prerequisite] = struct{}{}
	dep.prereqOrder = append(dep.prereqOrder, prerequisite)
	return nil
}

// Require is shorthand for adding one edge per listed prerequisite.
func (g *Graph) Require(dependent string, prerequisites ...string) error {
	for _, p := range prerequisites {
		if err := g.AddEdge(dependent, p); err != nil {
			return err
		}
	}
	return nil
}

// Len reports the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Names returns every job name in insertion order.
func (g *Graph) Names() []string {
	return append([]string(nil), g.order...)
}

// Job returns the job registered under name.
func (g *Graph) Job(name string) (*jobs.Job, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, false
	}
	return n.job, true
}

// Prerequisites returns the names a job directly depends on, in edge
// insertion order.
func (g *Graph) Prerequisites(name string) ([]string, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, &UnknownNodeError{Name: name}
	}
	return append([]string(nil), n.prereqOrder...), nil
}

// JobSets returns the distinct sets owning this graph's jobs, in the order
// their first job was added.
func (g *Graph) JobSets() []*jobs.JobSet {
	var sets []*jobs.JobSet
	seen := make(map[*jobs.JobSet]bool)
	for _, name := range g.order {
		set := g.nodes[name].job.Set()
		if set == nil || seen[set] {
			continue
		}
		seen[set] = true
		sets = append(sets, set)
	}
	return sets
}

// Validate checks the whole graph for cycles using a depth-first traversal
// with three-colour marking. On failure the returned CycleError carries the
// first discovered cycle as an ordered walk.
func (g *Graph) Validate() error {
	const (
		white = iota // unvisited
		grey         // on the current traversal stack
		black        // fully explored, known cycle-free
	)
	colour := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(name string) *CycleError
	visit = func(name string) *CycleError {
		colour[name] = grey
		stack = append(stack, name)
		for _, prereq := range g.nodes[name].prereqOrder {
			switch colour[prereq] {
			case grey:
				// Found a back edge; slice the cycle out of the stack.
				start := 0
				for i, n := range stack {
					if n == prereq {
						start = i
						break
					}
				}
				cycle := append([]string(nil), stack[start:]...)
				cycle = append(cycle, prereq)
				return &CycleError{Cycle: cycle}
			case white:
				if err := visit(prereq); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		colour[name] = black
		return nil
	}

	for _, name := range g.order {
		if colour[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopologicalPlan partitions the nodes into the minimal number of
// generations such that every node's prerequisites lie in a strictly
// earlier generation. Nodes within one generation are mutually independent
// and carry no ordering guarantee; each generation is returned sorted by
// name for stable output. A successful call freezes the graph.
func (g *Graph) TopologicalPlan() ([][]string, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	// generation(n) = 0 with no prerequisites, else 1 + max over prereqs.
	gen := make(map[string]int, len(g.nodes))
	var compute func(name string) int
	compute = func(name string) int {
		if v, done := gen[name]; done {
			return v
		}
		highest := -1
		for prereq := range g.nodes[name].prereqs {
			if pg := compute(prereq); pg > highest {
				highest = pg
			}
		}
		gen[name] = highest + 1
		return highest + 1
	}

	depth := 0
	for _, name := range g.order {
		if d := compute(name); d > depth {
			depth = d
		}
	}

	plan := make([][]string, depth+1)
	for _, name := range g.order {
		plan[gen[name]] = append(plan[gen[name]], name)
	}
	for _, generation := range plan {
		sort.Strings(generation)
	}
	if len(g.nodes) == 0 {
		plan = nil
	}

	g.frozen = true
	return plan, nil
}
