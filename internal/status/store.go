package status

import "sync"

// NodeStatus is the lifecycle record for one graph node.
type NodeStatus struct {
	Name    string
	State   State
	Retries int
	// Detail is the feed's free-form status detail, if any.
	Detail string
	// DetailedCode preserves a raw status code the vocabulary did not
	// recognize.
	DetailedCode string
}

// DAGSummary is the feed's whole-graph record: coarse counters plus the
// scheduler's own verdict on the DAG.
type DAGSummary struct {
	Status    string
	Timestamp string
	Total     int
	Done      int
	Pre       int
	Queued    int
	Post      int
	Ready     int
	Unready   int
	Failed    int
	Held      int
	Idle      int
}

// FeedInfo is the feed's epilogue record: when the snapshot was written and
// when the next one is due.
type FeedInfo struct {
	RecordedAt string
	NextUpdate string
}

// Snapshot is one complete parse of the feed. It is immutable by
// convention; the store swaps whole snapshots.
type Snapshot struct {
	nodes   map[string]NodeStatus
	order   []string
	Summary *DAGSummary
	Info    *FeedInfo
}

// NewSnapshot builds a snapshot from node records in feed order.
func NewSnapshot(nodes []NodeStatus, summary *DAGSummary, info *FeedInfo) Snapshot {
	snap := Snapshot{
		nodes:   make(map[string]NodeStatus, len(nodes)),
		Summary: summary,
		Info:    info,
	}
	for _, n := range nodes {
		if _, seen := snap.nodes[n.Name]; !seen {
			snap.order = append(snap.order, n.Name)
		}
		snap.nodes[n.Name] = n
	}
	return snap
}

// Node looks up one node's status by name.
func (s Snapshot) Node(name string) (NodeStatus, bool) {
	n, ok := s.nodes[name]
	return n, ok
}

// Nodes returns every node status in feed order.
func (s Snapshot) Nodes() []NodeStatus {
	out := make([]NodeStatus, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.nodes[name])
	}
	return out
}

// Len reports the number of nodes in the snapshot.
func (s Snapshot) Len() int {
	return len(s.nodes)
}

// Counts tallies nodes per state.
func (s Snapshot) Counts() map[State]int {
	counts := make(map[State]int, len(AllStates))
	for _, n := range s.nodes {
		counts[n.State]++
	}
	return counts
}

// Flapping lists nodes currently Failed whose retry count has reached the
// threshold, in feed order.
func (s Snapshot) Flapping(minRetries int) []NodeStatus {
	var out []NodeStatus
	for _, name := range s.order {
		n := s.nodes[name]
		if n.State == Failed && n.Retries >= minRetries {
			out = append(out, n)
		}
	}
	return out
}

// AllDone reports whether every node in the snapshot is Done. An empty
// snapshot is not done.
func (s Snapshot) AllDone() bool {
	if len(s.nodes) == 0 {
		return false
	}
	for _, n := range s.nodes {
		if n.State != Done {
			return false
		}
	}
	return true
}

// Store holds the latest snapshot. Each poll replaces the contents
// wholesale; entries absent from the new snapshot are dropped with it.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore returns a store holding an empty snapshot.
func NewStore() *Store {
	return &Store{snap: NewSnapshot(nil, nil, nil)}
}

// Replace swaps in a freshly parsed snapshot.
func (s *Store) Replace(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
