package submit

import (
	"fmt"

	"github.com/raggleton/htcondenser/internal/dag"
	"github.com/raggleton/htcondenser/internal/jobs"
	"github.com/raggleton/htcondenser/internal/staging"
)

// NodeSpec is everything the scheduler needs to run one graph node. A node
// with Quantity above one is still a single spec; multiplying execution
// instances is the scheduler's job.
type NodeSpec struct {
	Name string
	// Exe is the executable reference as the worker invokes it.
	Exe string
	// Args is the argument list after file-reference rewriting.
	Args []string
	// WorkerArgs is the full argument vector for the execution wrapper,
	// including copy directives.
	WorkerArgs []string
	Resources  jobs.ResourceProfile
	Quantity   int
	Retry      int
	// Generation is the node's position in the topological plan; all
	// prerequisites live in strictly earlier generations.
	Generation int
	// Prerequisites lists the node names that must finish first.
	Prerequisites []string
}

// Plan is a complete, validated submission order for one graph.
type Plan struct {
	// Generations holds node names partitioned so that members of one
	// generation are mutually independent.
	Generations [][]string
	// Nodes are the per-node specs, ordered by generation and then name.
	Nodes []NodeSpec
}

// BuildPlan validates the graph and assembles its submission plan. The
// graph is frozen afterwards.
func BuildPlan(g *dag.Graph, r *staging.Resolver) (*Plan, error) {
	generations, err := g.TopologicalPlan()
	if err != nil {
		return nil, err
	}

	plan := &Plan{Generations: generations}
	for gen, names := range generations {
		for _, name := range names {
			job, ok := g.Job(name)
			if !ok {
				return nil, &dag.UnknownNodeError{Name: name}
			}
			set := job.Set()
			if set == nil {
				return nil, fmt.Errorf("job %s is not owned by a JobSet", name)
			}
			args, err := job.RewrittenArgs(r)
			if err != nil {
				return nil, err
			}
			workerArgs, err := job.WorkerArgs(r)
			if err != nil {
				return nil, err
			}
			prereqs, err := g.Prerequisites(name)
			if err != nil {
				return nil, err
			}
			plan.Nodes = append(plan.Nodes, NodeSpec{
				Name:          name,
				Exe:           set.Exe,
				Args:          args,
				WorkerArgs:    workerArgs,
				Resources:     set.Resources,
				Quantity:      job.Quantity,
				Retry:         job.Retry,
				Generation:    gen,
				Prerequisites: prereqs,
			})
		}
	}
	return plan, nil
}

// StagingRequests collects every upload needed before the graph can be
// submitted, one entry per distinct staged destination.
func StagingRequests(g *dag.Graph, r *staging.Resolver) ([]staging.Request, error) {
	var reqs []staging.Request
	seen := make(map[string]bool)
	for _, set := range g.JobSets() {
		setReqs, err := set.UploadRequests(r)
		if err != nil {
			return nil, err
		}
		for _, req := range setReqs {
			if seen[req.Destination] {
				continue
			}
			seen[req.Destination] = true
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}
