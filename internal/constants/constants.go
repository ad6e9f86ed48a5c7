// Package constants provides centralized constant values used throughout trustlink.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by trustlink for configuration and logs.
const (
	// TrustlinkHome is the hidden directory name where trustlink keeps its
	// global configuration and log files. It is created in the user's home directory.
	TrustlinkHome = ".trustlink"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// EnvPrefix is the prefix for all trustlink environment variables (TRUSTLINK_*).
	EnvPrefix = "TRUSTLINK"

	// HomeEnvVar overrides the location of the trustlink home directory.
	HomeEnvVar = "TRUSTLINK_HOME"
)

// Verification defaults.
const (
	// DefaultRoutePath is the path of the error route. It is the prefix of
	// every canonical message.
	DefaultRoutePath = "/error"

	// DefaultVerifyTimeout bounds a single verification attempt.
	// A verification that has not finished by then resolves to untrusted.
	DefaultVerifyTimeout = 5 * time.Second

	// DefaultSiteName is used in "Back to {site}" labels when no site name is configured.
	DefaultSiteName = "Home"

	// DefaultLocale is the locale used for locally-defined messaging.
	DefaultLocale = "en"

	// DefaultChannelName is the display name of the channel every member belongs to.
	DefaultChannelName = "Town Square"
)

// Server defaults.
const (
	// DefaultListenAddr is the address the HTTP server listens on.
	DefaultListenAddr = ":8080"

	// DefaultReadHeaderTimeout bounds how long the server waits for request headers.
	DefaultReadHeaderTimeout = 5 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP server.
	DefaultShutdownTimeout = 10 * time.Second
)

// Batch verification defaults.
const (
	// DefaultVerifyConcurrency is the number of URLs verified in parallel by the CLI.
	DefaultVerifyConcurrency = 4

	// MaxVerifyConcurrency caps the --concurrency flag.
	MaxVerifyConcurrency = 64
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to keep.
	LogMaxBackups = 3

	// LogMaxAgeDays is the number of days to keep rotated log files.
	LogMaxAgeDays = 28

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true

	// MaxLoggedValueLength truncates attacker-controlled values before they reach a log line.
	MaxLoggedValueLength = 256
)
