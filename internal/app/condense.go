package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/raggleton/htcondenser/internal/condor"
	"github.com/raggleton/htcondenser/internal/ctxlog"
	"github.com/raggleton/htcondenser/internal/hclload"
	"github.com/raggleton/htcondenser/internal/staging"
	"github.com/raggleton/htcondenser/internal/submit"
)

// Condense is the submission-preparation tool: it loads job descriptions,
// validates the dependency graph, and writes the scheduler descriptions plus
// a staging manifest.
type Condense struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *CondenseConfig
}

// NewCondense builds the tool with its own isolated logger.
func NewCondense(outW io.Writer, cfg *CondenseConfig) *Condense {
	return &Condense{
		outW:   outW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr),
		cfg:    cfg,
	}
}

// Run executes one condense pass end to end.
func (c *Condense) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, c.logger)
	logger := c.logger

	resolver, err := staging.NewResolver(c.cfg.StorageRoot)
	if err != nil {
		return err
	}

	graph, err := hclload.NewLoader().Load(ctx, c.cfg.JobPath)
	if err != nil {
		return fmt.Errorf("loading job descriptions: %w", err)
	}
	logger.Info("Job descriptions loaded.", "nodes", graph.Len())

	plan, err := submit.BuildPlan(graph, resolver)
	if err != nil {
		return err
	}
	logger.Info("Submission plan built.", "generations", len(plan.Generations))

	requests, err := submit.StagingRequests(graph, resolver)
	if err != nil {
		return err
	}
	c.printStaging(requests)

	emitter := condor.New(condor.Config{
		DAGFile:             c.cfg.DAGFile,
		StatusFile:          c.cfg.StatusFile,
		StatusUpdateSeconds: c.cfg.StatusUpdateSeconds,
		DotFile:             c.cfg.DotFile,
		Wrapper:             c.cfg.Wrapper,
	})
	if err := emitter.Write(ctx, graph, plan); err != nil {
		return err
	}

	fmt.Fprintf(c.outW, "Status feed will be written to %s\n", emitter.StatusFile())
	return nil
}

// printStaging lists every copy the user must perform before submitting,
// with the source size when the file is already present locally.
func (c *Condense) printStaging(requests []staging.Request) {
	if len(requests) == 0 {
		return
	}
	fmt.Fprintf(c.outW, "Stage these %d file(s) before submitting:\n", len(requests))
	for _, req := range requests {
		size := ""
		if info, err := os.Stat(req.Source); err == nil {
			size = fmt.Sprintf(" (%s)", humanize.Bytes(uint64(info.Size())))
		}
		fmt.Fprintf(c.outW, "  %s -> %s%s\n", req.Source, req.Destination, size)
	}
}
