// Package submit turns a validated dependency graph into the submission
// plan handed to the scheduler collaborator: one spec per node with its
// rewritten arguments and resource request, ordered by generation, plus the
// staging copies that must happen first.
package submit
