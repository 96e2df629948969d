package errors

import (
	"log/slog"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if classified, ok := AsClassified(err); ok {
		return exitCodeFromCategory(classified.Category())
	}
	return 1
}

func exitCodeFromCategory(category ErrorCategory) int {
	switch category {
	case CategoryConfig, CategoryValidation:
		return 7
	case CategoryRegistry:
		return 3
	case CategoryState:
		return 4
	case CategoryReader, CategoryNotifier:
		return 8
	case CategoryCycle:
		return 12
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// Report logs err with its classification and returns the exit code.
func (a *CLIErrorAdapter) Report(err error) int {
	code := a.ExitCodeFor(err)
	if err == nil {
		return code
	}
	attrs := []any{"error", err, "exit_code", code}
	if classified, ok := AsClassified(err); ok {
		attrs = append(attrs, "category", string(classified.Category()))
		if a.verbose {
			for k, v := range classified.Context() {
				attrs = append(attrs, k, v)
			}
		}
	}
	a.logger.Error("Fatal error", attrs...)
	return code
}
