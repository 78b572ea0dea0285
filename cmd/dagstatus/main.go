package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/raggleton/htcondenser/internal/app"
	"github.com/raggleton/htcondenser/internal/cli"
)

// main is the entrypoint for the dagstatus tool.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the tool's logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	config, shouldExit, err := cli.ParseStatus(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	statusApp, err := app.NewStatus(outW, config)
	if err != nil {
		return err
	}
	return statusApp.Run(context.Background())
}
