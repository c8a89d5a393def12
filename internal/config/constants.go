package config

import "time"

// Server defaults
const (
	DefaultPort = 8080
)

// Provider defaults
const (
	DefaultOpenF1BaseURL   = "https://api.openf1.org/v1"
	DefaultErgastBaseURL   = "https://api.jolpi.ca/ergast/f1"
	DefaultProviderTimeout = 5 * time.Second
	DefaultHealthCacheTTL  = 2 * time.Minute
)

// Scheduler defaults
const (
	DefaultStartupDelay           = 3 * time.Second
	DefaultSessionStateInterval   = 30 * time.Second
	DefaultProviderHealthInterval = 2 * time.Minute
	DefaultAutoFinalizeInterval   = 30 * time.Second
)

// Gameplay defaults
const (
	DefaultConfidenceCreditsTotal = 100
)
