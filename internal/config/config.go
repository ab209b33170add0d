package config

import (
	"fmt"
	"time"
)

// DefaultTemplateURL points at the published sample event template.
const DefaultTemplateURL = "https://raw.githubusercontent.com/lc-cbot/demo-data-extension/main/lc_events_simple_template.json"

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // text or json
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HistoryConfig controls the optional run history kept in Redis.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	TTL     string `mapstructure:"ttl"`   // duration string, e.g., "168h"
	Limit   int    `mapstructure:"limit"` // max runs kept in the index
}

// LoaderConfig controls template processing and delivery.
type LoaderConfig struct {
	TemplateURL      string `mapstructure:"template_url"`
	WebhookURL       string `mapstructure:"webhook_url"`
	Mode             string `mapstructure:"mode"`    // auto, events or lines
	Delay            string `mapstructure:"delay"`   // pause between calls, e.g., "50ms"
	Timeout          string `mapstructure:"timeout"` // per-request timeout
	BatchSize        int    `mapstructure:"batch_size"`
	MaxTemplateBytes int64  `mapstructure:"max_template_bytes"`
	UserAgent        string `mapstructure:"user_agent"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// HookConfig describes how per-organization webhook URLs are derived.
type HookConfig struct {
	Domain    string `mapstructure:"domain"`
	Name      string `mapstructure:"name"`
	Extension string `mapstructure:"extension"`
}

// Config is the top-level configuration structure.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Redis   RedisConfig   `mapstructure:"redis"`
	History HistoryConfig `mapstructure:"history"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Server  ServerConfig  `mapstructure:"server"`
	Hook    HookConfig    `mapstructure:"hook"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFormat == "" {
		c.App.LogFormat = "text"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.History.TTL == "" {
		c.History.TTL = "168h"
	}
	if c.History.Limit == 0 {
		c.History.Limit = 100
	}
	if c.Loader.TemplateURL == "" {
		c.Loader.TemplateURL = DefaultTemplateURL
	}
	if c.Loader.Mode == "" {
		c.Loader.Mode = "auto"
	}
	if c.Loader.Delay == "" {
		c.Loader.Delay = "50ms"
	}
	if c.Loader.Timeout == "" {
		c.Loader.Timeout = "30s"
	}
	if c.Loader.BatchSize == 0 {
		c.Loader.BatchSize = 10
	}
	if c.Loader.MaxTemplateBytes == 0 {
		c.Loader.MaxTemplateBytes = 10 << 20
	}
	if c.Loader.UserAgent == "" {
		c.Loader.UserAgent = "demo-data-loader/1.0"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Hook.Domain == "" {
		c.Hook.Domain = "hook.limacharlie.io"
	}
	if c.Hook.Name == "" {
		c.Hook.Name = "demo-data-webhook"
	}
	if c.Hook.Extension == "" {
		c.Hook.Extension = "ext-demo-data"
	}
}

// Durations holds the parsed duration fields of the loader config.
type Durations struct {
	Delay      time.Duration
	Timeout    time.Duration
	HistoryTTL time.Duration
}

// ParseDurations validates and parses every duration string.
func (c Config) ParseDurations() (Durations, error) {
	var d Durations
	var err error
	if d.Delay, err = time.ParseDuration(c.Loader.Delay); err != nil {
		return d, fmt.Errorf("invalid loader.delay: %w", err)
	}
	if d.Delay < 0 {
		return d, fmt.Errorf("invalid loader.delay: must not be negative")
	}
	if d.Timeout, err = time.ParseDuration(c.Loader.Timeout); err != nil {
		return d, fmt.Errorf("invalid loader.timeout: %w", err)
	}
	if d.HistoryTTL, err = time.ParseDuration(c.History.TTL); err != nil {
		return d, fmt.Errorf("invalid history.ttl: %w", err)
	}
	return d, nil
}
