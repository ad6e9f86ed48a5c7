package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.trustlink/logs/trustlink.log
	CLILogFileName = "trustlink.log"
)

// Configuration file names.
const (
	// ConfigFileName is the name of both the global and the project configuration file.
	ConfigFileName = "config.yaml"
)

// HTTP routes served in addition to the configured error route.
const (
	// HealthPath answers liveness probes.
	HealthPath = "/healthz"
)
