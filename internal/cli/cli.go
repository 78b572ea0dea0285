package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/raggleton/htcondenser/internal/app"
)

// ExitError is an error carrying a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// ParseCondense processes the condense tool's arguments. It returns a
// populated config, a boolean indicating the program should exit cleanly
// (help, or no path given), or an ExitError.
func ParseCondense(args []string, output io.Writer) (*app.CondenseConfig, bool, error) {
	flagSet := flag.NewFlagSet("condense", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
condense - prepare a batch job graph for scheduler submission.

Usage:
  condense [options] JOB_PATH

Arguments:
  JOB_PATH
    Path to a single .hcl job description or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	storageRoot := flagSet.String("storage-root", "/hdfs", "Absolute mount point of the remote storage system.")
	dagFile := flagSet.String("dag-file", "jobs.dag", "Output path for the DAG description.")
	statusFile := flagSet.String("status-file", "", "Output path for the status feed. Defaults next to the DAG file.")
	statusPeriod := flagSet.Int("status-period", 30, "Status feed refresh period in seconds.")
	dotFile := flagSet.String("dot", "", "Also request a graph visualisation at this path.")
	wrapper := flagSet.String("wrapper", "condor_worker.sh", "Execution wrapper script submitted as the executable.")
	logFormat := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevel := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	format, level, err := checkLogFlags(*logFormat, *logLevel)
	if err != nil {
		return nil, false, err
	}

	config, err := app.NewCondenseConfig(app.CondenseConfig{
		JobPath:             flagSet.Arg(0),
		StorageRoot:         *storageRoot,
		DAGFile:             *dagFile,
		StatusFile:          *statusFile,
		StatusUpdateSeconds: *statusPeriod,
		DotFile:             *dotFile,
		Wrapper:             *wrapper,
		LogFormat:           format,
		LogLevel:            level,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}

// ParseStatus processes the dagstatus tool's arguments, with the same
// exit-cleanly convention as ParseCondense.
func ParseStatus(args []string, output io.Writer) (*app.StatusConfig, bool, error) {
	flagSet := flag.NewFlagSet("dagstatus", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
dagstatus - render the scheduler's node status feed as a table.

Usage:
  dagstatus [options] STATUS_FILE

Arguments:
  STATUS_FILE
    Path to the status feed maintained by the scheduler.

Options:
`)
		flagSet.PrintDefaults()
	}

	summary := flagSet.Bool("summary", false, "Only show the whole-graph summary row.")
	follow := flagSet.Bool("follow", false, "Keep re-reading the feed until every node is done.")
	interval := flagSet.Int("interval", 30, "Polling interval in seconds, used with -follow.")
	stylesPath := flagSet.String("styles", "", "Path to a YAML file overriding the display styles.")
	logFormat := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevel := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	format, level, err := checkLogFlags(*logFormat, *logLevel)
	if err != nil {
		return nil, false, err
	}

	config, err := app.NewStatusConfig(app.StatusConfig{
		FeedPath:        flagSet.Arg(0),
		StylesPath:      *stylesPath,
		Summary:         *summary,
		Follow:          *follow,
		IntervalSeconds: *interval,
		LogFormat:       format,
		LogLevel:        level,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}

// checkLogFlags validates and normalizes the shared logging flags.
func checkLogFlags(format, level string) (string, string, error) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return "", "", &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	level = strings.ToLower(level)
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return "", "", &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	return format, level, nil
}
