//go:build linux

package capture

import (
	"os"

	"github.com/phuslu/log"
)

// diagLogger is the interposer's side channel (spec §4.1.7, §7
// "installed silently (with a clear console banner)"). It is a plain
// colorized console logger, not the analyzer's multi-writer stack,
// because the capture side has no configuration file of its own — only
// the environment variables in spec §6.4.
var diagLogger = log.Logger{
	Level: log.InfoLevel,
	Writer: &log.ConsoleWriter{
		ColorOutput:    true,
		QuoteString:    true,
		EndWithMessage: true,
		Writer:         os.Stderr,
	},
}

func setVerbose(verbose bool) {
	if verbose {
		diagLogger.Level = log.DebugLevel
	} else {
		diagLogger.Level = log.InfoLevel
	}
}

// fatalf prints a diagnostic and terminates the target process with a
// non-zero code (spec §4.1.7 "On any failure... terminate with a
// non-zero code"; §7 "not recoverable... abort with a diagnostic").
func fatalf(format string, args ...any) {
	diagLogger.Fatal().Msgf(format, args...)
}

func warnf(format string, args ...any) {
	diagLogger.Warn().Msgf(format, args...)
}

func debugf(format string, args ...any) {
	diagLogger.Debug().Msgf(format, args...)
}
