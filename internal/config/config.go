// Package config loads the optional YAML settings file shared by every command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
	"github.com/penwyp/go-dose-monitor/internal/core/constants"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

const (
	DefaultPath      = "~/.go-dose-monitor/config.yaml"
	DefaultStorePath = "~/.go-dose-monitor/intakes.jsonl"
	DefaultLogFile   = "~/.go-dose-monitor/logs/app.log"
	DefaultAddr      = ":3001"
)

// Config maps the YAML file. Zero values mean "use the default".
//
// Example:
//
//	store:
//	  path: ~/doses/intakes.jsonl
//	timezone: Europe/Berlin
//	time_format: 24h
//	window: 7d
//	timeline:
//	  days: 3
//	  day_height: 1440
//	  refresh_interval: 60s
//	log:
//	  level: debug
//	server:
//	  addr: 127.0.0.1:3001
type Config struct {
	Store struct {
		Path string `yaml:"path"` // JSONL file holding every intake
	} `yaml:"store"`

	Timezone   string `yaml:"timezone"`    // IANA name or "Local"
	TimeFormat string `yaml:"time_format"` // 12h or 24h
	Window     string `yaml:"window"`      // statistics window: 3d, 7d, 14d, 30d or 90d
	Output     string `yaml:"output"`      // report format: table, json, csv, summary

	Timeline struct {
		Days            int           `yaml:"days"`
		DayHeight       float64       `yaml:"day_height"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
	} `yaml:"timeline"`

	Log struct {
		Level  string `yaml:"level"`
		File   string `yaml:"file"`
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and validates the file at path. A missing file is an error;
// use LoadOptional for the default location.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

// LoadOptional behaves like Load but returns the defaults when the file
// does not exist.
func LoadOptional(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		util.LogDebug("No config file, using defaults", util.F("path", path))
		return Default(), nil
	}
	return c, err
}

// Parse decodes YAML content, fills defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "24h"
	}
	if c.Window == "" {
		c.Window = aggregator.DefaultWindow.String()
	}
	if c.Output == "" {
		c.Output = "table"
	}
	if c.Timeline.DayHeight == 0 {
		c.Timeline.DayHeight = constants.DefaultDayHeight
	}
	if c.Timeline.RefreshInterval == 0 {
		c.Timeline.RefreshInterval = constants.DefaultNowRefreshInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
	if c.Log.Format == "" {
		c.Log.Format = string(util.FormatText)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// Validate checks the values that have a closed set of choices
func (c *Config) Validate() error {
	if _, err := aggregator.ParseWindow(c.Window); err != nil {
		return err
	}
	if c.TimeFormat != "12h" && c.TimeFormat != "24h" {
		return fmt.Errorf("invalid time format '%s': must be either '12h' or '24h'", c.TimeFormat)
	}
	provider := &util.TimeProvider{}
	if err := provider.SetTimezone(c.Timezone); err != nil {
		return err
	}
	switch util.LogFormat(c.Log.Format) {
	case util.FormatText, util.FormatJSON:
	default:
		return fmt.Errorf("invalid log format '%s': must be text or json", c.Log.Format)
	}
	if c.Timeline.Days < 0 {
		return fmt.Errorf("timeline days must not be negative, got %d", c.Timeline.Days)
	}
	return nil
}

// StatsWindow returns the parsed statistics window
func (c *Config) StatsWindow() aggregator.Window {
	w, err := aggregator.ParseWindow(c.Window)
	if err != nil {
		return aggregator.DefaultWindow
	}
	return w
}

// Monitor converts the file settings into the view engine configuration
func (c *Config) Monitor() monitor.Config {
	return monitor.Config{
		Timezone:           c.Timezone,
		TimeFormat:         c.TimeFormat,
		Window:             c.StatsWindow(),
		DayHeight:          c.Timeline.DayHeight,
		Days:               c.Timeline.Days,
		NowRefreshInterval: c.Timeline.RefreshInterval,
	}
}

// ExpandPath resolves a leading ~/ and makes the path absolute
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
