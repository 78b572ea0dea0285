package jobs

import (
	"fmt"
	"path"

	"github.com/raggleton/htcondenser/internal/staging"
)

// JobSetConfig collects the shared settings for a group of jobs.
type JobSetConfig struct {
	// Name labels the set; it is used for the submit description filename
	// and in diagnostics, not for graph identity.
	Name string
	// Exe is the executable every member job runs.
	Exe string
	// CopyExe stages the executable onto remote storage alongside the other
	// inputs. Leave false for programs already present on workers.
	CopyExe bool
	// SetupScript, if set, runs on the worker before the executable.
	SetupScript string
	// ShareExeSetup stages one copy of the exe and setup script at the set
	// mirror root instead of one copy per job.
	ShareExeSetup bool
	// CommonInputFiles are inputs shared by every member job, staged once
	// under the set mirror root.
	CommonInputFiles []string
	// LogDir receives stdout/stderr/scheduler logs for the whole set.
	LogDir string
	// MirrorRoot is the remote-storage directory under which member jobs
	// stage their files.
	MirrorRoot string
	// TransferInput controls how storage-resident inputs reach the worker.
	TransferInput staging.TransferPolicy
	// Resources is the per-job resource request.
	Resources ResourceProfile
}

// JobSet owns an ordered collection of Jobs sharing one executable, setup
// step, resource profile, and log location.
type JobSet struct {
	Name             string
	Exe              string
	CopyExe          bool
	SetupScript      string
	ShareExeSetup    bool
	CommonInputFiles []string
	LogDir           string
	MirrorRoot       string
	TransferInput    staging.TransferPolicy
	Resources        ResourceProfile

	jobs   []*Job
	byName map[string]*Job
}

// NewJobSet validates the shared settings and returns an empty set.
func NewJobSet(cfg JobSetConfig) (*JobSet, error) {
	if cfg.Exe == "" {
		return nil, fmt.Errorf("job set %q: exe must not be empty", cfg.Name)
	}
	if cfg.MirrorRoot == "" {
		return nil, fmt.Errorf("job set %q: mirror root must not be empty", cfg.Name)
	}
	for _, f := range cfg.CommonInputFiles {
		if err := staging.CheckPath(f); err != nil {
			return nil, fmt.Errorf("job set %q: common input: %w", cfg.Name, err)
		}
	}
	resources := cfg.Resources
	if resources == (ResourceProfile{}) {
		resources = DefaultResources
	}
	return &JobSet{
		Name:             cfg.Name,
		Exe:              cfg.Exe,
		CopyExe:          cfg.CopyExe,
		SetupScript:      cfg.SetupScript,
		ShareExeSetup:    cfg.ShareExeSetup,
		CommonInputFiles: append([]string(nil), cfg.CommonInputFiles...),
		LogDir:           cfg.LogDir,
		MirrorRoot:       cfg.MirrorRoot,
		TransferInput:    cfg.TransferInput,
		Resources:        resources,
		byName:           make(map[string]*Job),
	}, nil
}

// AddJob attaches a job to this set. The job's name must be unused within
// the set, and the job must not already belong to another set. Adding fills
// in the job's mirror dir default of <mirror root>/<name>.
func (s *JobSet) AddJob(j *Job) error {
	if j.set != nil {
		return fmt.Errorf("job %s already belongs to a JobSet", j.Name)
	}
	if _, exists := s.byName[j.Name]; exists {
		return fmt.Errorf("job %s already exists in this JobSet", j.Name)
	}
	if j.MirrorDir == "" {
		j.MirrorDir = path.Join(s.MirrorRoot, j.Name)
	}
	j.set = s
	s.jobs = append(s.jobs, j)
	s.byName[j.Name] = j
	return nil
}

// Jobs returns the member jobs in insertion order.
func (s *JobSet) Jobs() []*Job {
	return s.jobs
}

// Job looks a member up by name.
func (s *JobSet) Job(name string) (*Job, bool) {
	j, ok := s.byName[name]
	return j, ok
}

// Len reports the number of member jobs.
func (s *JobSet) Len() int {
	return len(s.jobs)
}

// exeSetupFiles lists the executable and setup script as stageable inputs.
func (s *JobSet) exeSetupFiles() []string {
	var files []string
	if s.CopyExe {
		files = append(files, s.Exe)
	}
	if s.SetupScript != "" {
		files = append(files, s.SetupScript)
	}
	return files
}

// sharedInputFiles lists every set-level file a member job depends on.
func (s *JobSet) sharedInputFiles() []string {
	return append(s.exeSetupFiles(), s.CommonInputFiles...)
}

func (s *JobSet) isCommonInput(raw string) bool {
	for _, f := range s.CommonInputFiles {
		if f == raw {
			return true
		}
	}
	return false
}

// UploadRequests lists every copy needed to stage this set for submission:
// the shared exe/setup and common inputs once at the set mirror root, then
// each member job's own files. Duplicate destinations are collapsed.
func (s *JobSet) UploadRequests(r *staging.Resolver) ([]staging.Request, error) {
	var plans []staging.TransferPlan
	if s.ShareExeSetup {
		for _, f := range s.exeSetupFiles() {
			plan, err := r.ResolveInput(f, s.MirrorRoot, s.TransferInput)
			if err != nil {
				return nil, fmt.Errorf("job set %q: %w", s.Name, err)
			}
			plans = append(plans, plan)
		}
	}
	for _, f := range s.CommonInputFiles {
		plan, err := r.ResolveInput(f, s.MirrorRoot, s.TransferInput)
		if err != nil {
			return nil, fmt.Errorf("job set %q: %w", s.Name, err)
		}
		plans = append(plans, plan)
	}
	reqs := staging.UploadRequests(plans)

	for _, j := range s.jobs {
		jobReqs, err := j.UploadRequests(r)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, jobReqs...)
	}

	seen := make(map[string]bool, len(reqs))
	deduped := reqs[:0]
	for _, req := range reqs {
		if seen[req.Destination] {
			continue
		}
		seen[req.Destination] = true
		deduped = append(deduped, req)
	}
	return deduped, nil
}
