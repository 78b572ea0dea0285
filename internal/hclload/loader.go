package hclload

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/raggleton/htcondenser/internal/ctxlog"
	"github.com/raggleton/htcondenser/internal/dag"
	"github.com/raggleton/htcondenser/internal/fsutil"
	"github.com/raggleton/htcondenser/internal/schema"
)

// Loader turns job description files into a validated dependency graph.
type Loader struct{}

// NewLoader creates a job description loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from the given paths, builds each
// job_set block into a JobSet, and merges them all into one graph. Edges
// declared through `requires` are applied after every set has been merged, so
// jobs may depend on jobs from other sets and other files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*dag.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no job description files found under %v", paths)
	}
	logger.Debug("Discovered job description files.", "count", len(files))

	parser := hclparse.NewParser()
	g := dag.New()

	type pendingEdge struct {
		dependent string
		prereqs   []string
	}
	var edges []pendingEdge

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", file, diags)
		}

		var root schema.Root
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("decoding %s: %w", file, diags)
		}

		for _, block := range root.JobSets {
			set, err := translateJobSet(block)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if err := g.AddJobSet(set); err != nil {
				return nil, fmt.Errorf("%s: job set %q: %w", file, set.Name, err)
			}
			for _, jb := range block.Jobs {
				if len(jb.Requires) > 0 {
					edges = append(edges, pendingEdge{dependent: jb.Name, prereqs: jb.Requires})
				}
			}
			logger.Debug("Merged job set.", "name", set.Name, "jobs", set.Len())
		}
	}

	for _, e := range edges {
		if err := g.Require(e.dependent, e.prereqs...); err != nil {
			return nil, err
		}
	}

	logger.Debug("Job description loading complete.", "nodes", g.Len())
	return g, nil
}
