// Package schema holds the HCL block shapes for job description files. It is
// a pure declaration of the on-disk format; translation into the runtime
// model lives in the loader.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// ResourcesBlock represents the `resources` block inside a job_set.
type ResourcesBlock struct {
	CPUs   int    `hcl:"cpus,optional"`
	Memory string `hcl:"memory,optional"`
	Disk   string `hcl:"disk,optional"`
}

// JobBlock represents a `job` block: one unit of work inside its set.
type JobBlock struct {
	Name        string   `hcl:"name,label"`
	Args        []string `hcl:"args,optional"`
	InputFiles  []string `hcl:"input_files,optional"`
	OutputFiles []string `hcl:"output_files,optional"`
	Quantity    int      `hcl:"quantity,optional"`
	Retry       int      `hcl:"retry,optional"`
	MirrorDir   string   `hcl:"mirror_dir,optional"`
	// Requires names jobs, from any set, that must finish before this one.
	Requires []string `hcl:"requires,optional"`
}

// JobSetBlock represents a `job_set` block from a user's job description
// file: the shared executable, staging settings, and member jobs.
//
// Boolean settings that default to true are pointers so that an absent
// attribute is distinguishable from an explicit false.
type JobSetBlock struct {
	Name             string          `hcl:"name,label"`
	Exe              string          `hcl:"exe"`
	CopyExe          *bool           `hcl:"copy_exe,optional"`
	SetupScript      string          `hcl:"setup_script,optional"`
	ShareExeSetup    *bool           `hcl:"share_exe_setup,optional"`
	CommonInputFiles []string        `hcl:"common_input_files,optional"`
	LogDir           string          `hcl:"log_dir,optional"`
	MirrorRoot       string          `hcl:"mirror_root"`
	TransferInput    *bool           `hcl:"transfer_input,optional"`
	Resources        *ResourcesBlock `hcl:"resources,block"`
	Jobs             []*JobBlock     `hcl:"job,block"`
}

// Root represents the top-level structure of a job description file.
type Root struct {
	JobSets []*JobSetBlock `hcl:"job_set,block"`
	Remain  hcl.Body       `hcl:",remain"`
}
