// Package render projects a status snapshot into a human-readable terminal
// view: a per-node table and a one-line whole-graph summary. Rendering is a
// pure projection; running it twice on the same snapshot yields identical
// bytes.
package render
