package env

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/agentuity/aggcache/logger"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"
)

// FlagOrEnv will try and get a flag from the cobra.Command and if not found, look it up in the environment
// and fallback to defaultValue if non found
func FlagOrEnv(cmd *cobra.Command, flagName string, envName string, defaultValue string) string {
	flagValue, _ := cmd.Flags().GetString(flagName)
	if flagValue != "" {
		return flagValue
	}
	if val, ok := os.LookupEnv(envName); ok && val != "" {
		return val
	}
	return defaultValue
}

// IntFlagOrEnv resolves an integer the same way as FlagOrEnv. The flag must be a string flag so
// that an unset flag can be told apart from zero.
func IntFlagOrEnv(cmd *cobra.Command, flagName string, envName string, defaultValue int) (int, error) {
	val := FlagOrEnv(cmd, flagName, envName, "")
	if val == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid --%s value %q", flagName, val)
	}
	return n, nil
}

// DurationFlagOrEnv resolves a duration the same way as FlagOrEnv. Values such as "90s", "5m" or
// "1d" are accepted.
func DurationFlagOrEnv(cmd *cobra.Command, flagName string, envName string, defaultValue time.Duration) (time.Duration, error) {
	val := FlagOrEnv(cmd, flagName, envName, "")
	if val == "" {
		return defaultValue, nil
	}
	d, err := str2duration.ParseDuration(val)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid --%s value %q", flagName, val)
	}
	return d, nil
}

// LogLevel returns the level from the cobra.Command log-level flag, then the AGGCACHE_LOG_LEVEL
// environment value, falling back to info.
func LogLevel(cmd *cobra.Command) logger.LogLevel {
	return logger.ParseLevel(FlagOrEnv(cmd, "log-level", logger.EnvLogLevel, "info"), logger.LevelInfo)
}

// NewLogger returns a logger at the level resolved by LogLevel. The log-format flag or
// AGGCACHE_LOG_FORMAT selects JSON lines instead of the console format.
func NewLogger(cmd *cobra.Command) logger.Logger {
	log.SetFlags(0)
	if FlagOrEnv(cmd, "log-format", logger.EnvLogFormat, "console") == "json" {
		return logger.NewJSONLogger(LogLevel(cmd))
	}
	return logger.NewConsoleLogger(LogLevel(cmd))
}
