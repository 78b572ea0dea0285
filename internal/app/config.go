package app

import (
	"errors"
	"path/filepath"
)

// CondenseConfig holds everything the condense tool needs for one run.
type CondenseConfig struct {
	// JobPath is an .hcl file or a directory of them.
	JobPath string
	// StorageRoot is the absolute mount point of the remote storage system.
	StorageRoot string

	DAGFile             string
	StatusFile          string
	StatusUpdateSeconds int
	DotFile             string
	Wrapper             string

	LogFormat string
	LogLevel  string
}

// NewCondenseConfig validates a condense configuration.
func NewCondenseConfig(cfg CondenseConfig) (*CondenseConfig, error) {
	if cfg.JobPath == "" {
		return nil, errors.New("a job description path is required")
	}
	if cfg.StorageRoot == "" {
		return nil, errors.New("storage-root is required")
	}
	if !filepath.IsAbs(cfg.StorageRoot) {
		return nil, errors.New("storage-root must be an absolute path")
	}
	return &cfg, nil
}

// StatusConfig holds everything the dagstatus tool needs for one run.
type StatusConfig struct {
	// FeedPath is the node status feed maintained by the scheduler.
	FeedPath string
	// StylesPath optionally overrides the built-in display styles.
	StylesPath string
	// Summary collapses the output to the one-line whole-graph row.
	Summary bool
	// Follow keeps re-reading the feed until every node is done.
	Follow          bool
	IntervalSeconds int

	LogFormat string
	LogLevel  string
}

// NewStatusConfig validates a dagstatus configuration.
func NewStatusConfig(cfg StatusConfig) (*StatusConfig, error) {
	if cfg.FeedPath == "" {
		return nil, errors.New("a status feed path is required")
	}
	return &cfg, nil
}
