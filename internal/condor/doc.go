// Package condor formats a submission plan into the scheduler's native
// descriptions: one DAG file naming every node, its wrapper arguments,
// retries and parent/child edges, plus one submit description per job set.
// It is deliberately thin; all decisions are made upstream.
package condor
