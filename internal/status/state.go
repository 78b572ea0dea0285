package status

import "strings"

// State is the lifecycle position of a single graph node, rebuilt from the
// feed on every poll. Transitions are never inferred; each poll simply
// reports whatever the feed says.
type State int

const (
	// Unready nodes are waiting on prerequisites.
	Unready State = iota
	// Idle nodes are released and queued but not yet running.
	Idle
	// Running nodes have a live worker process.
	Running
	// Done is terminal success.
	Done
	// Failed means the user program exited non-zero. A retry moves the node
	// back to Idle and bumps its retry count.
	Failed
	// Error is a terminal scheduler-level fault, distinct from a program
	// failure. Unknown feed codes also land here.
	Error
)

var stateNames = [...]string{"Unready", "Idle", "Running", "Done", "Failed", "Error"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// AllStates lists every state in lifecycle order, for stable iteration.
var AllStates = []State{Unready, Idle, Running, Done, Failed, Error}

// The scheduler's discrete status vocabulary.
const (
	codeNotReady  = "STATUS_NOT_READY"
	codeReady     = "STATUS_READY"
	codePrerun    = "STATUS_PRERUN"
	codeSubmitted = "STATUS_SUBMITTED"
	codePostrun   = "STATUS_POSTRUN"
	codeDone      = "STATUS_DONE"
	codeError     = "STATUS_ERROR"
)

// MapCode translates a feed status code and its detail string into a State.
// Unknown codes map to Error with the raw code preserved as the detailed
// code, never silently dropped.
func MapCode(code, detail string) (State, string) {
	switch code {
	case codeNotReady:
		return Unready, ""
	case codeReady, codePrerun:
		return Idle, ""
	case codeSubmitted:
		// The scheduler reports queued and running procs under one code and
		// disambiguates in the detail field.
		if strings.Contains(detail, "not_idle") {
			return Running, ""
		}
		return Idle, ""
	case codePostrun:
		return Running, ""
	case codeDone:
		return Done, ""
	case codeError:
		// A detail mentioning the job's own exit distinguishes a program
		// failure from a scheduler fault.
		if strings.Contains(strings.ToLower(detail), "failed") {
			return Failed, ""
		}
		return Error, ""
	default:
		return Error, code
	}
}
