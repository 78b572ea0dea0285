// Package cli parses command-line arguments for the condense and dagstatus
// tools into validated app configurations.
package cli
