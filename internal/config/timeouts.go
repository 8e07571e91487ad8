package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the SSH connection tuning used by the remote executor.
// These values can be customized via environment variables.
type Timeouts struct {
	DialTimeout     time.Duration // Timeout for establishing one TCP connection
	DialMaxRetries  int           // Connection attempts after the first
	DialRetryDelay  time.Duration // Initial delay between connection attempts
	CommandTimeout  time.Duration // Upper bound for a single remote command
	RebootGraceTime time.Duration // Delay before the admin host reboots
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - SWIFTSETUP_SSH_DIAL_TIMEOUT (default: 10s)
//   - SWIFTSETUP_SSH_MAX_RETRIES (default: 5)
//   - SWIFTSETUP_SSH_RETRY_DELAY (default: 2s)
//   - SWIFTSETUP_COMMAND_TIMEOUT (default: 30m)
//   - SWIFTSETUP_REBOOT_GRACE (default: 5s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		DialTimeout:     parseDuration("SWIFTSETUP_SSH_DIAL_TIMEOUT", 10*time.Second),
		DialMaxRetries:  parseInt("SWIFTSETUP_SSH_MAX_RETRIES", 5),
		DialRetryDelay:  parseDuration("SWIFTSETUP_SSH_RETRY_DELAY", 2*time.Second),
		CommandTimeout:  parseDuration("SWIFTSETUP_COMMAND_TIMEOUT", 30*time.Minute),
		RebootGraceTime: parseDuration("SWIFTSETUP_REBOOT_GRACE", 5*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}

	return i
}
