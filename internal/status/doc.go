// Package status parses the scheduler's node status feed and keeps an
// in-memory table of per-node lifecycle state.
//
// The feed is treated as replace-on-read: every poll parses the whole
// snapshot and swaps it into the store atomically, so a reader never sees a
// half-applied update. A record that cannot be parsed is surfaced as a node
// in the Error state rather than aborting the poll.
package status
