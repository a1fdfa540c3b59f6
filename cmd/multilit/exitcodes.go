package main

const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing SPRINGER_API_KEY, bad PORT)
	ExitUpstream    = 3 // Upstream provider error (non-200 status, network)
)
