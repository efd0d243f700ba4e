// Command imageset validates and partitions image classification datasets.
//
// Configuration is loaded from environment variables:
//   - IMAGESET_DATA_DIR: Override for the run ledger directory (optional)
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	vision "github.com/cmaxcy/computer-vision"
)

// CLI exit codes for standardized error reporting.
const (
	// ExitSuccess indicates the operation completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitInvalidArgs indicates invalid command line arguments.
	ExitInvalidArgs = 2

	// ExitInvalidCollection indicates the directory is not a valid image collection.
	ExitInvalidCollection = 3

	// ExitOutputExists indicates partition output already exists.
	ExitOutputExists = 4

	// ExitRunNotFound indicates the run is not in the ledger.
	ExitRunNotFound = 5

	// ExitStorageError indicates a filesystem operation failed.
	ExitStorageError = 7

	// ExitInterrupted indicates the run was cancelled by SIGINT or SIGTERM.
	ExitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command tree and returns the process exit code.
// SIGINT and SIGTERM cancel the context so an interrupted partition removes
// its staging directory before the process exits.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := vision.Config{
		AppName: "imageset",
		// DataDir can be set via IMAGESET_DATA_DIR env var (handled by storage layer)
	}

	cmd := vision.NewCommand(cfg)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return exitCodeFromError(err)
	}
	return ExitSuccess
}

// exitCodeFromError maps error types to exit codes.
func exitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, vision.ErrInvalidCollection):
		return ExitInvalidCollection
	case errors.Is(err, vision.ErrOutputExists):
		return ExitOutputExists
	case errors.Is(err, vision.ErrRunNotFound):
		return ExitRunNotFound
	case errors.Is(err, vision.ErrStorageError):
		return ExitStorageError
	case errors.Is(err, vision.ErrInvalidArgument), errors.Is(err, vision.ErrInvalidOutput):
		return ExitInvalidArgs
	default:
		return ExitGeneralError
	}
}
