// Package app wires the two command-line tools together: condense, which
// turns job description files into scheduler descriptions plus a staging
// manifest, and dagstatus, which renders the scheduler's status feed.
package app
