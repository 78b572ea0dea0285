package condor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raggleton/htcondenser/internal/ctxlog"
	"github.com/raggleton/htcondenser/internal/dag"
	"github.com/raggleton/htcondenser/internal/jobs"
	"github.com/raggleton/htcondenser/internal/submit"
)

// jobVarName is the submit-file variable carrying each node's wrapper
// argument string, shared between the DAG file and the submit descriptions.
const jobVarName = "jobOpts"

// Config locates the files the emitter produces and the wrapper script the
// submit descriptions point at.
type Config struct {
	// DAGFile is the path the DAG description is written to.
	DAGFile string
	// StatusFile is where the scheduler maintains the node status feed.
	StatusFile string
	// StatusUpdateSeconds is the feed refresh period.
	StatusUpdateSeconds int
	// DotFile, when set, asks the scheduler to write a graph visualisation.
	DotFile string
	// Wrapper is the execution wrapper script submitted as the executable.
	Wrapper string
}

// Emitter renders DAG and submit descriptions from a plan.
type Emitter struct {
	cfg Config
}

// New returns an emitter with defaults filled in.
func New(cfg Config) *Emitter {
	if cfg.DAGFile == "" {
		cfg.DAGFile = "jobs.dag"
	}
	if cfg.StatusFile == "" {
		cfg.StatusFile = strings.TrimSuffix(cfg.DAGFile, filepath.Ext(cfg.DAGFile)) + ".status"
	}
	if cfg.StatusUpdateSeconds <= 0 {
		cfg.StatusUpdateSeconds = 30
	}
	if cfg.Wrapper == "" {
		cfg.Wrapper = "condor_worker.sh"
	}
	return &Emitter{cfg: cfg}
}

// StatusFile reports where the scheduler will write the status feed.
func (e *Emitter) StatusFile() string {
	return e.cfg.StatusFile
}

// SubmitFileName names the submit description for a job set.
func SubmitFileName(js *jobs.JobSet) string {
	if js.Name == "" {
		return "jobs.condor"
	}
	return js.Name + ".condor"
}

// DAGContents renders the DAG description: each node's JOB line against its
// set's submit description, its wrapper arguments as a VARS line, a RETRY
// line when a budget is set, then the parent/child edges and the status
// feed directive.
func (e *Emitter) DAGContents(g *dag.Graph, plan *submit.Plan) string {
	var lines []string

	for _, node := range plan.Nodes {
		job, _ := g.Job(node.Name)
		lines = append(lines, fmt.Sprintf("JOB %s %s", node.Name, SubmitFileName(job.Set())))
		lines = append(lines, fmt.Sprintf("VARS %s %s=%q", node.Name, jobVarName, strings.Join(node.WorkerArgs, " ")))
		if node.Retry > 0 {
			lines = append(lines, fmt.Sprintf("RETRY %s %d", node.Name, node.Retry))
		}
	}

	for _, node := range plan.Nodes {
		if len(node.Prerequisites) > 0 {
			lines = append(lines, fmt.Sprintf("PARENT %s CHILD %s",
				strings.Join(node.Prerequisites, " "), node.Name))
		}
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("NODE_STATUS_FILE %s %d", e.cfg.StatusFile, e.cfg.StatusUpdateSeconds))

	if e.cfg.DotFile != "" {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("DOT %s", e.cfg.DotFile))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// SubmitContents renders one job set's submit description. The actual
// per-node arguments arrive through the DAG file's VARS lines.
func (e *Emitter) SubmitContents(js *jobs.JobSet) string {
	logStem := filepath.Join(js.LogDir, "$(cluster).$(process)")
	lines := []string{
		"universe = vanilla",
		fmt.Sprintf("executable = %s", e.cfg.Wrapper),
		fmt.Sprintf("output = %s.out", logStem),
		fmt.Sprintf("error = %s.err", logStem),
		fmt.Sprintf("log = %s.log", logStem),
		fmt.Sprintf("request_cpus = %d", js.Resources.CPUs),
		fmt.Sprintf("request_memory = %s", js.Resources.MemoryString()),
		fmt.Sprintf("request_disk = %s", js.Resources.DiskString()),
		"transfer_executable = true",
		"should_transfer_files = YES",
		"when_to_transfer_output = ON_EXIT_OR_EVICT",
		fmt.Sprintf("arguments = \"$(%s)\"", jobVarName),
		"queue",
		"",
	}
	return strings.Join(lines, "\n")
}

// Write renders and writes the DAG description plus one submit description
// per job set, creating parent directories as needed.
func (e *Emitter) Write(ctx context.Context, g *dag.Graph, plan *submit.Plan) error {
	logger := ctxlog.FromContext(ctx)

	if err := writeFile(e.cfg.DAGFile, e.DAGContents(g, plan)); err != nil {
		return fmt.Errorf("writing DAG description: %w", err)
	}
	logger.Info("DAG description written.", "path", e.cfg.DAGFile)

	for _, js := range g.JobSets() {
		name := SubmitFileName(js)
		path := filepath.Join(filepath.Dir(e.cfg.DAGFile), name)
		if err := writeFile(path, e.SubmitContents(js)); err != nil {
			return fmt.Errorf("writing submit description for %s: %w", js.Name, err)
		}
		logger.Info("Submit description written.", "path", path)
	}
	return nil
}

func writeFile(path, contents string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}
