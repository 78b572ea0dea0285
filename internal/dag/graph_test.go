package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raggleton/htcondenser/internal/jobs"
)

func newTestSet(t *testing.T, names ...string) *jobs.JobSet {
	t.Helper()
	set, err := jobs.NewJobSet(jobs.JobSetConfig{
		Name:       "set",
		Exe:        "run.sh",
		MirrorRoot: "/hdfs/user/work",
	})
	require.NoError(t, err)
	for _, name := range names {
		j, err := jobs.NewJob(jobs.JobConfig{Name: name})
		require.NoError(t, err)
		require.NoError(t, set.AddJob(j))
	}
	return set
}

func newTestGraph(t *testing.T, names ...string) *Graph {
	t.Helper()
	g := New()
	require.NoError(t, g.AddJobSet(newTestSet(t, names...)))
	return g
}

func TestAddJobSet_ReportsEveryDuplicate(t *testing.T) {
	g := newTestGraph(t, "a", "b", "c")

	before := g.Len()
	err := g.AddJobSet(newTestSet(t, "b", "d", "a"))
	require.Error(t, err)

	var dup *DuplicateNodeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, []string{"b", "a"}, dup.Names)

	// Nothing was merged, not even the non-clashing job.
	assert.Equal(t, before, g.Len())
	_, ok := g.Job("d")
	assert.False(t, ok)
}

func TestAddEdge_UnknownNodes(t *testing.T) {
	g := newTestGraph(t, "a")

	err := g.AddEdge("a", "ghost")
	var unknown *UnknownNodeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.Name)

	assert.Error(t, g.AddEdge("ghost", "a"))
}

func TestAddEdge_DuplicateIsNoOp(t *testing.T) {
	g := newTestGraph(t, "a", "b")

	require.NoError(t, g.AddEdge("b", "a"))
	require.NoError(t, g.AddEdge("b", "a"))

	prereqs, err := g.Prerequisites("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, prereqs)
}

func TestTopologicalPlan_Diamond(t *testing.T) {
	g := newTestGraph(t, "a", "b", "c", "d")
	require.NoError(t, g.Require("b", "a"))
	require.NoError(t, g.Require("c", "a"))
	require.NoError(t, g.Require("d", "b", "c"))

	plan, err := g.TopologicalPlan()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}, {"d"}}, plan)
}

func TestTopologicalPlan_EmptyGraph(t *testing.T) {
	g := New()
	plan, err := g.TopologicalPlan()
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestTopologicalPlan_FreezesGraph(t *testing.T) {
	g := newTestGraph(t, "a", "b")
	_, err := g.TopologicalPlan()
	require.NoError(t, err)

	assert.ErrorIs(t, g.AddEdge("b", "a"), ErrFrozen)
	assert.ErrorIs(t, g.AddJobSet(newTestSet(t, "z")), ErrFrozen)
}

func TestValidate_ReportsCycleWalk(t *testing.T) {
	g := newTestGraph(t, "a", "b", "c")
	require.NoError(t, g.Require("a", "b"))
	require.NoError(t, g.Require("b", "c"))
	require.NoError(t, g.Require("c", "a"))

	err := g.Validate()
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)

	// The walk starts and ends on the same node.
	require.GreaterOrEqual(t, len(cycle.Cycle), 2)
	assert.Equal(t, cycle.Cycle[0], cycle.Cycle[len(cycle.Cycle)-1])
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cycle.Cycle[:len(cycle.Cycle)-1])
}

func TestValidate_SelfLoop(t *testing.T) {
	g := newTestGraph(t, "a")
	require.NoError(t, g.Require("a", "a"))

	var cycle *CycleError
	require.ErrorAs(t, g.Validate(), &cycle)
	assert.Equal(t, []string{"a", "a"}, cycle.Cycle)
}

func TestQuantityContributesSingleNode(t *testing.T) {
	set, err := jobs.NewJobSet(jobs.JobSetConfig{Exe: "run.sh", MirrorRoot: "/hdfs/u"})
	require.NoError(t, err)
	j, err := jobs.NewJob(jobs.JobConfig{Name: "multi", Quantity: 3})
	require.NoError(t, err)
	require.NoError(t, set.AddJob(j))

	g := New()
	require.NoError(t, g.AddJobSet(set))
	assert.Equal(t, 1, g.Len())
}

func TestJobSets_InsertionOrder(t *testing.T) {
	g := New()
	first := newTestSet(t, "a")
	second := newTestSet(t, "b")
	require.NoError(t, g.AddJobSet(first))
	require.NoError(t, g.AddJobSet(second))

	sets := g.JobSets()
	require.Len(t, sets, 2)
	assert.Same(t, first, sets[0])
	assert.Same(t, second, sets[1])
}
