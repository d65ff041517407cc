package config

import (
	"github.com/rshade/agentview/internal/logging"
)

// ToLoggingConfig converts the logging section to logging.Config.
//
// If File is set, Output becomes "file"; otherwise logs go to stderr.
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}
