package monitor

import (
	"fmt"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/constants"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
)

// Config contains configuration for the watch loop and one-shot views
type Config struct {
	// Display settings
	Timezone   string
	TimeFormat string

	// Statistics window
	Window aggregator.Window

	// Timeline settings
	DayHeight float64
	Days      int // 0 shows every day that has events

	// Refresh settings
	NowRefreshInterval time.Duration
}

// Validate fills defaults and rejects values the engine cannot work with
func (c *Config) Validate() error {
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "24h"
	}
	if c.Window == 0 {
		c.Window = aggregator.DefaultWindow
	}
	if !c.Window.Valid() {
		return fmt.Errorf("unsupported window %d days", int(c.Window))
	}
	if c.DayHeight == 0 {
		c.DayHeight = constants.DefaultDayHeight
	}
	if c.DayHeight < 0 {
		return fmt.Errorf("day height must be positive, got %g", c.DayHeight)
	}
	if c.Days < 0 {
		return fmt.Errorf("days must not be negative, got %d", c.Days)
	}
	if c.NowRefreshInterval == 0 {
		c.NowRefreshInterval = constants.DefaultNowRefreshInterval
	}
	if c.NowRefreshInterval < time.Second {
		return fmt.Errorf("now refresh interval %s is below one second", c.NowRefreshInterval)
	}
	return nil
}
