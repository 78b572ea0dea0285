package hclload

import (
	"fmt"

	"github.com/raggleton/htcondenser/internal/jobs"
	"github.com/raggleton/htcondenser/internal/schema"
	"github.com/raggleton/htcondenser/internal/staging"
)

// Defaults for absent job_set attributes.
const (
	defaultLogDir = "logs"
)

// translateJobSet converts a decoded job_set block into the runtime model,
// applying defaults and attaching every member job.
func translateJobSet(b *schema.JobSetBlock) (*jobs.JobSet, error) {
	resources := jobs.DefaultResources
	if b.Resources != nil {
		r, err := translateResources(b.Resources)
		if err != nil {
			return nil, fmt.Errorf("job set %q: %w", b.Name, err)
		}
		resources = r
	}

	logDir := b.LogDir
	if logDir == "" {
		logDir = defaultLogDir
	}

	policy := staging.CopyToWorker
	if b.TransferInput != nil && !*b.TransferInput {
		policy = staging.ReadInPlace
	}

	set, err := jobs.NewJobSet(jobs.JobSetConfig{
		Name:             b.Name,
		Exe:              b.Exe,
		CopyExe:          boolOr(b.CopyExe, true),
		SetupScript:      b.SetupScript,
		ShareExeSetup:    boolOr(b.ShareExeSetup, true),
		CommonInputFiles: b.CommonInputFiles,
		LogDir:           logDir,
		MirrorRoot:       b.MirrorRoot,
		TransferInput:    policy,
		Resources:        resources,
	})
	if err != nil {
		return nil, err
	}

	for _, jb := range b.Jobs {
		job, err := jobs.NewJob(jobs.JobConfig{
			Name:        jb.Name,
			Args:        jb.Args,
			InputFiles:  jb.InputFiles,
			OutputFiles: jb.OutputFiles,
			Quantity:    jb.Quantity,
			MirrorDir:   jb.MirrorDir,
			Retry:       jb.Retry,
		})
		if err != nil {
			return nil, fmt.Errorf("job set %q: %w", b.Name, err)
		}
		if err := set.AddJob(job); err != nil {
			return nil, fmt.Errorf("job set %q: %w", b.Name, err)
		}
	}
	return set, nil
}

// translateResources fills in the default for any omitted field before
// parsing the human-readable sizes.
func translateResources(b *schema.ResourcesBlock) (jobs.ResourceProfile, error) {
	memory := b.Memory
	if memory == "" {
		memory = jobs.DefaultResources.MemoryString()
	}
	disk := b.Disk
	if disk == "" {
		disk = jobs.DefaultResources.DiskString()
	}
	return jobs.ParseResourceProfile(b.CPUs, memory, disk)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
