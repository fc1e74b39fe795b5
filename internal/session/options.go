package session

import (
	"time"

	"github.com/urdf-visualizer/backend/internal/config"
)

// Options tunes a Manager.
type Options struct {
	// DefaultBaseLink is used when a session is opened without a base link
	// and the robot declares a link of that name.
	DefaultBaseLink string
	// ClampToLimits pins revolute and prismatic values into [lower, upper].
	ClampToLimits bool
	// DefaultRange is the ± control range offered for joints without limits.
	DefaultRange float64
	MaxSessions  int
	// Watch reloads a session whenever its document changes on disk.
	Watch bool
	// HistoryLimit caps trajectory queries that do not ask for a limit.
	HistoryLimit int
	// KeepAliveWindow protects recently touched sessions from cleanup.
	KeepAliveWindow time.Duration
}

// DefaultOptions mirrors config.DefaultConfig.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

// OptionsFromConfig extracts manager options from the application config.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		DefaultBaseLink: cfg.Kinematics.DefaultBaseLink,
		ClampToLimits:   cfg.Kinematics.ClampToLimits,
		DefaultRange:    cfg.Kinematics.DefaultRange,
		MaxSessions:     cfg.Session.MaxSessions,
		Watch:           cfg.Session.WatchDocuments,
		HistoryLimit:    cfg.Kinematics.HistoryLimit,
		KeepAliveWindow: 5 * time.Minute,
	}
}
