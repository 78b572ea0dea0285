package status

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `[
  Type = "DagStatus";
  DagFiles = {
    "jobs.dag"
  };
  Timestamp = 1441230920; /* "Wed Sep  2 22:55:20 2015" */
  DagStatus = 3; /* "STATUS_SUBMITTED ()" */
  NodesTotal = 4;
  NodesDone = 1;
  NodesPre = 0;
  NodesQueued = 2;
  NodesPost = 0;
  NodesReady = 0;
  NodesUnready = 1;
  NodesFailed = 0;
  JobProcsHeld = 0;
  JobProcsIdle = 1;
]
[
  Type = "NodeStatus";
  Node = "skim";
  NodeStatus = 5; /* "STATUS_DONE" */
  StatusDetails = "";
  RetryCount = 0;
  JobProcsQueued = 0;
  JobProcsHeld = 0;
]
[
  Type = "NodeStatus";
  Node = "analyze";
  NodeStatus = 3; /* "STATUS_SUBMITTED" */
  StatusDetails = "not_idle";
  RetryCount = 1;
]
[
  Type = "NodeStatus";
  Node = "merge";
  NodeStatus = 3; /* "STATUS_SUBMITTED" */
  StatusDetails = "idle";
  RetryCount = 0;
]
[
  Type = "NodeStatus";
  Node = "publish";
  NodeStatus = 0; /* "STATUS_NOT_READY" */
  StatusDetails = "";
  RetryCount = 0;
]
[
  Type = "StatusEnd";
  EndTime = 1441230920; /* "Wed Sep  2 22:55:20 2015" */
  NextUpdate = 1441230950; /* "Wed Sep  2 22:55:50 2015" */
]
`

func TestMapCode(t *testing.T) {
	cases := []struct {
		code    string
		detail  string
		want    State
		rawCode string
	}{
		{"STATUS_NOT_READY", "", Unready, ""},
		{"STATUS_READY", "", Idle, ""},
		{"STATUS_PRERUN", "", Idle, ""},
		{"STATUS_SUBMITTED", "idle", Idle, ""},
		{"STATUS_SUBMITTED", "not_idle", Running, ""},
		{"STATUS_POSTRUN", "", Running, ""},
		{"STATUS_DONE", "", Done, ""},
		{"STATUS_ERROR", "job failed with status 1", Failed, ""},
		{"STATUS_ERROR", "submit attempt returned no cluster", Error, ""},
		{"STATUS_FUTURE", "", Error, "STATUS_FUTURE"},
	}
	for _, tc := range cases {
		t.Run(tc.code+"/"+tc.detail, func(t *testing.T) {
			state, raw := MapCode(tc.code, tc.detail)
			assert.Equal(t, tc.want, state)
			assert.Equal(t, tc.rawCode, raw)
		})
	}
}

func TestParseFeed(t *testing.T) {
	snap, err := ParseFeed(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	require.Equal(t, 4, snap.Len())

	skim, ok := snap.Node("skim")
	require.True(t, ok)
	assert.Equal(t, Done, skim.State)

	analyze, ok := snap.Node("analyze")
	require.True(t, ok)
	assert.Equal(t, Running, analyze.State)
	assert.Equal(t, 1, analyze.Retries)

	merge, ok := snap.Node("merge")
	require.True(t, ok)
	assert.Equal(t, Idle, merge.State)

	publish, ok := snap.Node("publish")
	require.True(t, ok)
	assert.Equal(t, Unready, publish.State)

	require.NotNil(t, snap.Summary)
	assert.Equal(t, "STATUS_SUBMITTED", snap.Summary.Status)
	assert.Equal(t, 4, snap.Summary.Total)
	assert.Equal(t, 1, snap.Summary.Done)
	assert.Equal(t, 2, snap.Summary.Queued)

	require.NotNil(t, snap.Info)
	assert.Equal(t, "Wed Sep  2 22:55:20 2015", snap.Info.RecordedAt)
	assert.Equal(t, "Wed Sep  2 22:55:50 2015", snap.Info.NextUpdate)
}

func TestParseFeed_NumericFallback(t *testing.T) {
	feed := `[
  Type = "NodeStatus";
  Node = "bare";
  NodeStatus = 5;
  RetryCount = 0;
]
`
	snap, err := ParseFeed(strings.NewReader(feed))
	require.NoError(t, err)
	n, ok := snap.Node("bare")
	require.True(t, ok)
	assert.Equal(t, Done, n.State)
}

func TestParseFeed_UnknownCodePreserved(t *testing.T) {
	feed := `[
  Type = "NodeStatus";
  Node = "odd";
  NodeStatus = 9; /* "STATUS_FUTURE" */
]
`
	snap, err := ParseFeed(strings.NewReader(feed))
	require.NoError(t, err)
	n, ok := snap.Node("odd")
	require.True(t, ok)
	assert.Equal(t, Error, n.State)
	assert.Equal(t, "STATUS_FUTURE", n.DetailedCode)
}

func TestParseFeed_NodeWithoutName(t *testing.T) {
	feed := `[
  Type = "NodeStatus";
  NodeStatus = 5; /* "STATUS_DONE" */
]
`
	snap, err := ParseFeed(strings.NewReader(feed))
	require.NoError(t, err)
	n, ok := snap.Node("(unnamed)")
	require.True(t, ok)
	assert.Equal(t, Error, n.State)
	assert.Contains(t, n.Detail, "without a Node key")
}

func TestParseFeed_Idempotent(t *testing.T) {
	first, err := ParseFeed(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	second, err := ParseFeed(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	assert.Equal(t, first.Nodes(), second.Nodes())
	assert.Equal(t, first.Summary, second.Summary)
}

func TestSnapshot_CountsFlappingAllDone(t *testing.T) {
	snap := NewSnapshot([]NodeStatus{
		{Name: "a", State: Done},
		{Name: "b", State: Failed, Retries: 3},
		{Name: "c", State: Failed, Retries: 1},
		{Name: "d", State: Running},
	}, nil, nil)

	counts := snap.Counts()
	assert.Equal(t, 1, counts[Done])
	assert.Equal(t, 2, counts[Failed])
	assert.Equal(t, 1, counts[Running])

	flapping := snap.Flapping(2)
	require.Len(t, flapping, 1)
	assert.Equal(t, "b", flapping[0].Name)

	assert.False(t, snap.AllDone())
	assert.False(t, NewSnapshot(nil, nil, nil).AllDone())

	done := NewSnapshot([]NodeStatus{{Name: "a", State: Done}}, nil, nil)
	assert.True(t, done.AllDone())
}

func TestStore_ReplaceDropsAbsentNodes(t *testing.T) {
	store := NewStore()
	store.Replace(NewSnapshot([]NodeStatus{{Name: "a", State: Running}, {Name: "b", State: Idle}}, nil, nil))
	store.Replace(NewSnapshot([]NodeStatus{{Name: "a", State: Done}}, nil, nil))

	snap := store.Snapshot()
	assert.Equal(t, 1, snap.Len())
	_, ok := snap.Node("b")
	assert.False(t, ok)
}

func writeFeedFile(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "jobs.status")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestPoller_StopsWhenAllDone(t *testing.T) {
	dir := t.TempDir()
	path := writeFeedFile(t, dir, sampleFeed)

	mock := clock.NewMock()
	store := NewStore()
	poller := NewPoller(path, 30*time.Second, mock, store)

	var updates int
	poller.OnUpdate(func(Snapshot) { updates++ })

	done := make(chan error, 1)
	go func() { done <- poller.Run(context.Background()) }()

	// First poll happens immediately.
	require.Eventually(t, func() bool {
		return store.Snapshot().Len() == 4
	}, time.Second, 5*time.Millisecond)

	allDone := `[
  Type = "NodeStatus";
  Node = "skim";
  NodeStatus = 5; /* "STATUS_DONE" */
]
`
	require.NoError(t, os.WriteFile(path, []byte(allDone), 0o644))
	// Give the poller a moment to reach its ticker wait before advancing.
	time.Sleep(10 * time.Millisecond)
	mock.Add(30 * time.Second)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after every node finished")
	}
	assert.GreaterOrEqual(t, updates, 2)
}

func TestPoller_KeepsSnapshotOnUnreadableFeed(t *testing.T) {
	dir := t.TempDir()
	path := writeFeedFile(t, dir, sampleFeed)

	store := NewStore()
	poller := NewPoller(path, 30*time.Second, clock.NewMock(), store)
	poller.pollOnce(context.Background())
	require.Equal(t, 4, store.Snapshot().Len())

	require.NoError(t, os.Remove(path))
	poller.pollOnce(context.Background())
	assert.Equal(t, 4, store.Snapshot().Len())
}

func TestPoller_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFeedFile(t, dir, sampleFeed)

	ctx, cancel := context.WithCancel(context.Background())
	poller := NewPoller(path, time.Minute, clock.NewMock(), NewStore())

	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop on context cancellation")
	}
}
