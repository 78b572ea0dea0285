// Package jobs models the user-facing description of batch work: individual
// jobs with their arguments and file references, and job sets that group jobs
// sharing an executable, setup step, resource profile, and log location.
package jobs
