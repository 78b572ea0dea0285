package jobs

import (
	"fmt"
	"path"

	"github.com/raggleton/htcondenser/internal/staging"
)

// JobConfig collects the user-supplied fields for a single job.
type JobConfig struct {
	// Name identifies the job. It must be unique within the owning set and,
	// once composed, across the whole dependency graph.
	Name string
	// Args are the positional program arguments. Any argument equal to a
	// declared input or output path is rewritten before submission.
	Args []string
	// InputFiles are files the program reads. They are staged onto remote
	// storage before submission unless already there.
	InputFiles []string
	// OutputFiles are files the program produces in its scratch directory.
	OutputFiles []string
	// Quantity is the number of identical copies to submit. The job still
	// contributes a single node to the dependency graph.
	Quantity int
	// MirrorDir overrides the storage location for this job's staged files.
	// Defaults to <set mirror root>/<name>.
	MirrorDir string
	// Retry is the per-node retry budget passed to the scheduler.
	Retry int
}

// Job is one unit of schedulable work inside a JobSet.
type Job struct {
	Name        string
	Args        []string
	InputFiles  []string
	OutputFiles []string
	Quantity    int
	MirrorDir   string
	Retry       int

	set *JobSet
}

// NewJob validates the config and returns a Job not yet owned by any set.
// Path problems surface here, at construction time, never at submission.
func NewJob(cfg JobConfig) (*Job, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("job name must not be empty")
	}
	for _, f := range cfg.InputFiles {
		if err := staging.CheckPath(f); err != nil {
			return nil, fmt.Errorf("job %s: input: %w", cfg.Name, err)
		}
	}
	for _, f := range cfg.OutputFiles {
		if err := staging.CheckPath(f); err != nil {
			return nil, fmt.Errorf("job %s: output: %w", cfg.Name, err)
		}
	}
	quantity := cfg.Quantity
	if quantity < 1 {
		quantity = 1
	}
	retry := cfg.Retry
	if retry < 0 {
		retry = 0
	}
	return &Job{
		Name:        cfg.Name,
		Args:        append([]string(nil), cfg.Args...),
		InputFiles:  append([]string(nil), cfg.InputFiles...),
		OutputFiles: append([]string(nil), cfg.OutputFiles...),
		Quantity:    quantity,
		MirrorDir:   cfg.MirrorDir,
		Retry:       retry,
	}, nil
}

// Set returns the owning JobSet, or nil before the job is added to one.
func (j *Job) Set() *JobSet {
	return j.set
}

// TransferPlans resolves every file this job touches: shared set-level files
// first (exe, setup script, common inputs), then the job's own inputs, then
// its outputs. Shared files resolve against the set mirror root so that one
// staged copy serves every member job.
func (j *Job) TransferPlans(r *staging.Resolver) ([]staging.TransferPlan, error) {
	if j.set == nil {
		return nil, fmt.Errorf("job %s is not owned by a JobSet", j.Name)
	}
	var plans []staging.TransferPlan

	appendInput := func(raw, mirrorDir string) error {
		plan, err := r.ResolveInput(raw, mirrorDir, j.set.TransferInput)
		if err != nil {
			return fmt.Errorf("job %s: %w", j.Name, err)
		}
		plans = append(plans, plan)
		return nil
	}

	for _, shared := range j.set.sharedInputFiles() {
		mirrorDir := j.MirrorDir
		if j.set.ShareExeSetup || j.set.isCommonInput(shared) {
			mirrorDir = j.set.MirrorRoot
		}
		if err := appendInput(shared, mirrorDir); err != nil {
			return nil, err
		}
	}
	for _, in := range j.InputFiles {
		if err := appendInput(in, j.MirrorDir); err != nil {
			return nil, err
		}
	}
	for _, out := range j.OutputFiles {
		plan, err := r.ResolveOutput(out, j.MirrorDir)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", j.Name, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// RewrittenArgs returns the argument list as the running program sees it,
// with every declared file reference replaced by its run-time path.
func (j *Job) RewrittenArgs(r *staging.Resolver) ([]string, error) {
	plans, err := j.TransferPlans(r)
	if err != nil {
		return nil, err
	}
	return staging.RewriteArgs(j.Args, plans), nil
}

// UploadRequests lists the copies needed to stage this job's own input
// files. Shared set-level files are excluded; the JobSet stages those once.
func (j *Job) UploadRequests(r *staging.Resolver) ([]staging.Request, error) {
	if j.set == nil {
		return nil, fmt.Errorf("job %s is not owned by a JobSet", j.Name)
	}
	var plans []staging.TransferPlan
	for _, in := range j.InputFiles {
		plan, err := r.ResolveInput(in, j.MirrorDir, j.set.TransferInput)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", j.Name, err)
		}
		plans = append(plans, plan)
	}
	if !j.set.ShareExeSetup {
		for _, shared := range j.set.exeSetupFiles() {
			plan, err := r.ResolveInput(shared, j.MirrorDir, j.set.TransferInput)
			if err != nil {
				return nil, fmt.Errorf("job %s: %w", j.Name, err)
			}
			plans = append(plans, plan)
		}
	}
	return staging.UploadRequests(plans), nil
}

// WorkerArgs generates the argument vector for the execution wrapper that
// runs on the worker: copy directives for inputs and outputs, the setup
// script, the executable, and finally the rewritten program arguments. The
// --args flag is greedy and must come last.
func (j *Job) WorkerArgs(r *staging.Resolver) ([]string, error) {
	plans, err := j.TransferPlans(r)
	if err != nil {
		return nil, err
	}

	var argv []string
	if j.set.SetupScript != "" {
		argv = append(argv, "--setup", path.Base(j.set.SetupScript))
	}
	for _, plan := range plans {
		switch plan.Role {
		case staging.RoleInput:
			if plan.Category == staging.CategoryRemoteStorage && j.set.TransferInput == staging.ReadInPlace {
				continue
			}
			argv = append(argv, "--copy-to-local", plan.StagedLocation, plan.WorkerLocation)
		case staging.RoleOutput:
			argv = append(argv, "--copy-from-local", plan.WorkerLocation, plan.StagedLocation)
		}
	}

	exe := j.set.Exe
	if j.set.CopyExe {
		exe = path.Base(exe)
	}
	argv = append(argv, "--exe", exe)

	rewritten := staging.RewriteArgs(j.Args, plans)
	if len(rewritten) > 0 {
		argv = append(argv, "--args")
		argv = append(argv, rewritten...)
	}
	return argv, nil
}
