package cli

import (
	"github.com/nhle/news-archive/internal/model"
)

// Exit codes for the news-archive command. Anything but ExitSuccess is
// only ever returned in test mode.
const (
	// ExitSuccess indicates the run completed, or failed outside test mode.
	ExitSuccess = 0

	// ExitError indicates a failed run in test mode.
	ExitError = 1

	// ExitConfig indicates the configuration could not be used.
	ExitConfig = 3
)

// GetExitCode maps a run error to an exit code.
// Returns ExitSuccess (0) if err is nil, ExitConfig for configuration
// errors and ExitError (1) for everything else.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if model.IsConfigError(err) {
		return ExitConfig
	}
	return ExitError
}
