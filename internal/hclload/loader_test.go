package hclload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raggleton/htcondenser/internal/dag"
	"github.com/raggleton/htcondenser/internal/jobs"
	"github.com/raggleton/htcondenser/internal/staging"
)

func writeJobFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const basicJobSet = `
job_set "analysis" {
  exe         = "analyze.sh"
  mirror_root = "/hdfs/user/work"

  resources {
    cpus   = 2
    memory = "2GB"
    disk   = "500MB"
  }

  job "skim" {
    args         = ["--in", "/hdfs/data/raw.root", "--out", "skim.root"]
    input_files  = ["/hdfs/data/raw.root"]
    output_files = ["skim.root"]
    retry        = 2
  }

  job "merge" {
    args     = ["--in", "skim.root"]
    requires = ["skim"]
  }
}
`

func loadGraph(t *testing.T, path string) *dag.Graph {
	t.Helper()
	g, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	return g
}

func TestLoad_BasicJobSet(t *testing.T) {
	dir := t.TempDir()
	path := writeJobFile(t, dir, "analysis.hcl", basicJobSet)

	g := loadGraph(t, path)
	assert.Equal(t, 2, g.Len())

	skim, ok := g.Job("skim")
	require.True(t, ok)
	assert.Equal(t, 2, skim.Retry)
	assert.Equal(t, "/hdfs/user/work/skim", skim.MirrorDir)

	set := skim.Set()
	require.NotNil(t, set)
	assert.Equal(t, "analysis", set.Name)
	assert.Equal(t, 2, set.Resources.CPUs)
	assert.Equal(t, uint64(2_000_000_000), set.Resources.Memory)
	// Booleans that default to true.
	assert.True(t, set.CopyExe)
	assert.True(t, set.ShareExeSetup)
	assert.Equal(t, staging.CopyToWorker, set.TransferInput)
	assert.Equal(t, "logs", set.LogDir)

	prereqs, err := g.Prerequisites("merge")
	require.NoError(t, err)
	assert.Equal(t, []string{"skim"}, prereqs)
}

func TestLoad_ExplicitFalseBooleans(t *testing.T) {
	dir := t.TempDir()
	path := writeJobFile(t, dir, "set.hcl", `
job_set "s" {
  exe             = "/usr/bin/python3"
  mirror_root     = "/hdfs/u"
  copy_exe        = false
  share_exe_setup = false
  transfer_input  = false

  job "a" {}
}
`)

	g := loadGraph(t, path)
	a, ok := g.Job("a")
	require.True(t, ok)
	set := a.Set()
	assert.False(t, set.CopyExe)
	assert.False(t, set.ShareExeSetup)
	assert.Equal(t, staging.ReadInPlace, set.TransferInput)
	assert.Equal(t, jobs.DefaultResources, set.Resources)
}

func TestLoad_CrossFileDependencies(t *testing.T) {
	dir := t.TempDir()
	writeJobFile(t, dir, "a.hcl", `
job_set "producers" {
  exe         = "produce.sh"
  mirror_root = "/hdfs/u"
  job "produce" {}
}
`)
	writeJobFile(t, dir, "b.hcl", `
job_set "consumers" {
  exe         = "consume.sh"
  mirror_root = "/hdfs/u"
  job "consume" {
    requires = ["produce"]
  }
}
`)

	g := loadGraph(t, dir)
	assert.Equal(t, 2, g.Len())
	prereqs, err := g.Prerequisites("consume")
	require.NoError(t, err)
	assert.Equal(t, []string{"produce"}, prereqs)
}

func TestLoad_DuplicateNamesAcrossSets(t *testing.T) {
	dir := t.TempDir()
	writeJobFile(t, dir, "dup.hcl", `
job_set "one" {
  exe         = "run.sh"
  mirror_root = "/hdfs/u"
  job "same" {}
}

job_set "two" {
  exe         = "run.sh"
  mirror_root = "/hdfs/u"
  job "same" {}
}
`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	var dup *dag.DuplicateNodeError
	assert.ErrorAs(t, err, &dup)
}

func TestLoad_UnknownRequire(t *testing.T) {
	dir := t.TempDir()
	writeJobFile(t, dir, "bad.hcl", `
job_set "s" {
  exe         = "run.sh"
  mirror_root = "/hdfs/u"
  job "a" {
    requires = ["ghost"]
  }
}
`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	var unknown *dag.UnknownNodeError
	assert.ErrorAs(t, err, &unknown)
}

func TestLoad_NoFiles(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestLoad_MissingRequiredAttribute(t *testing.T) {
	dir := t.TempDir()
	writeJobFile(t, dir, "bad.hcl", `
job_set "s" {
  mirror_root = "/hdfs/u"
  job "a" {}
}
`)

	_, err := NewLoader().Load(context.Background(), dir)
	assert.Error(t, err)
}
