// Package logging configures the process-wide charmbracelet logger.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// DebugEnv enables debug logging regardless of flags.
const DebugEnv = "BOILERPLATE_DEBUG"

// Setup configures the default logger for a CLI invocation. Warnings are shown
// by default, --verbose adds info, --quiet limits output to errors.
func Setup(verbose, quiet bool) {
	SetupWriter(os.Stderr, verbose, quiet)
}

func SetupWriter(w io.Writer, verbose, quiet bool) {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		Level:           Level(verbose, quiet, os.Getenv(DebugEnv) != ""),
	})
	log.SetDefault(logger)
}

// Level picks the log level for the given switches. Debug wins over quiet.
func Level(verbose, quiet, debug bool) log.Level {
	switch {
	case debug:
		return log.DebugLevel
	case quiet:
		return log.ErrorLevel
	case verbose:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}

// For returns a logger prefixed with component. It inherits the level of the
// default logger at the time of the call.
func For(component string) *log.Logger {
	return log.Default().WithPrefix(component)
}
