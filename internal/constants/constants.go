package constants

import "time"

const (
	// FreshnessWindow bounds both the response cache and the chart cache-buster.
	FreshnessWindow = 5 * time.Minute
)

const (
	ExternalAPITimeout = 30 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RefreshTimeout     = 45 * time.Second
)

const (
	// single writer; the profile table never holds more than one row
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 0
	DBMaxIdleTime     = 0
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultBaseURL  = "https://api.cheftoan.com"
	DefaultDBPath   = "clash.db"
	DefaultLogLevel = "info"

	PlayerEssentialsPath = "/player/essentials"
	ChartPath            = "/chart"
)

const (
	LoadProfileFailedMessage = "could not load profile"
)
