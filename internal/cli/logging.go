package cli

import (
	"fmt"
	"io"

	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/sirupsen/logrus"
)

// newLogger creates the run logger. Warnings are always shown, --verbose
// adds info and --debug adds per-request detail.
func newLogger(w io.Writer, debug, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	switch {
	case debug:
		logger.SetLevel(logrus.DebugLevel)
	case verbose:
		logger.SetLevel(logrus.InfoLevel)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

// wireGitDebug routes git package debug output into logger when it logs at
// debug level. The git hook is process-wide, so it is left alone otherwise.
func wireGitDebug(logger *logrus.Logger) {
	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	git.SetDebugLogger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	})
}
