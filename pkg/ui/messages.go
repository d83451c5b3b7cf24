package ui

import (
	"time"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
)

// NotificationMsg is sent for every spread above the threshold.
type NotificationMsg struct {
	Notification domain.Notification
}

// ScanMsg is sent after each scanner tick.
type ScanMsg struct {
	Number        int64
	Pairs         int
	Notifications int
	Duration      time.Duration
	Err           error
}

// SetupMsg describes the constructed scanner.
type SetupMsg struct {
	Market1   string
	Market2   string
	Pairs     []string
	Threshold string
	Interval  time.Duration
}

// MarketStatusMsg reports whether a market answered.
type MarketStatusMsg struct {
	Name    string
	Healthy bool
	Detail  string
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// frameMsg drives redraws and the welcome timeout.
type frameMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // "config", "markets", "scanner"
	Status  string // "connecting", "connected", "failed"
	Message string
}
