package dag

import (
	"fmt"
	"strings"
)

// DuplicateNodeError reports every job name that clashed with one already in
// the graph. All offenders are listed so one fix-and-rerun pass suffices.
type DuplicateNodeError struct {
	Names []string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate job names in graph: %s", strings.Join(e.Names, ", "))
}

// UnknownNodeError reports an edge endpoint that names no job in the graph.
type UnknownNodeError struct {
	Name string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown job name: %s", e.Name)
}

// CycleError carries the first discovered cycle, in order, for diagnostics.
// Cycle starts and ends with the same node name.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// ErrFrozen is returned by mutations attempted after a plan was produced.
var ErrFrozen = fmt.Errorf("graph is frozen once a submission plan has been requested")
