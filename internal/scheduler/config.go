package scheduler

import (
	"time"

	appconfig "github.com/spotlane/pricing/internal/config"
)

// Config controls scheduler cadence and retention windows.
type Config struct {
	Enabled          bool
	RunInterval      time.Duration
	QuoteRetention   time.Duration
	SuggestionMaxAge time.Duration
	LockTTL          time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		RunInterval:      5 * time.Minute,
		QuoteRetention:   90 * 24 * time.Hour,
		SuggestionMaxAge: 7 * 24 * time.Hour,
		LockTTL:          time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.QuoteRetention <= 0 {
		c.QuoteRetention = defaults.QuoteRetention
	}
	if c.SuggestionMaxAge <= 0 {
		c.SuggestionMaxAge = defaults.SuggestionMaxAge
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}

func ProvideConfig(cfg appconfig.Config) Config {
	return Config{
		Enabled:          cfg.Scheduler.Enabled,
		RunInterval:      time.Duration(cfg.Scheduler.RunIntervalSeconds) * time.Second,
		QuoteRetention:   time.Duration(cfg.Scheduler.QuoteRetentionDays) * 24 * time.Hour,
		SuggestionMaxAge: time.Duration(cfg.Scheduler.SuggestionMaxAgeDays) * 24 * time.Hour,
	}
}
