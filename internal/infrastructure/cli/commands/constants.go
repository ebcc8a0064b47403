package commands

import "time"

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrHistoryStoreUnavailable  = "history store unavailable"
	ErrCacheStoreUnavailable    = "cache store unavailable"
	ErrPatchServiceUnavailable  = "optimize service unavailable"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No optimize runs recorded yet."
	MsgNoCachedFacts            = "No cached facts."
	MsgCacheCleared             = "Cache cleared."
)

// sessionReadTimeout bounds how long render waits for a piped session payload.
const sessionReadTimeout = 250 * time.Millisecond

// TimestampFormat is used when listing history records.
const TimestampFormat = "2006-01-02 15:04:05"
