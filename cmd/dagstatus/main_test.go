package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})

	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_RendersFeed(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	feed := filepath.Join(tempDir, "jobs.status")
	require.NoError(t, os.WriteFile(feed, []byte(`[
  Type = "NodeStatus";
  Node = "skim";
  NodeStatus = 5; /* "STATUS_DONE" */
  RetryCount = 0;
]
`), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{"-log-level", "error", feed})

	require.NoError(t, err)
	require.Contains(t, out.String(), "skim")
}

func TestRun_MissingFeed(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"/no/such/file.status"})
	require.Error(t, err)
}
