// Package hclload reads HCL job description files and builds the runtime
// model: job sets, their member jobs, and the dependency graph over them.
// The block shapes it decodes live in the schema package.
package hclload
