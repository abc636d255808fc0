package utils

import (
	"time"
)

// Task names used in logs, metrics and the run status store
const (
	TaskIngestion = "ingestion"
	TaskExport    = "export"
)

// Google API constants
const (
	// SpreadsheetsScope grants read/write access to spreadsheets
	SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"

	// ValueInputOptionRaw stores values exactly as sent, without formula or number parsing
	ValueInputOptionRaw = "RAW"
)

// Tariff API constants
const (
	BoxTariffsPath = "/api/v1/tariffs/box"
)

const (
	// RunStatusWriteTimeout bounds how long a finished run may spend recording its outcome
	RunStatusWriteTimeout = 5 * time.Second

	// RunStatusTTL is how long the last run of a task stays in redis (7 days)
	RunStatusTTL = 7 * 24 * time.Hour
)

// ContextKey namespaces values stored in a request context
type ContextKey string

const RequestIDKey ContextKey = "request_id"
