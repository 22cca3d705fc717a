package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	UpdateIntervalSeconds int    `mapstructure:"update_interval_seconds"`
	DisplayCurrency       string `mapstructure:"display_currency"`

	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	PriceFeed PriceFeedConfig `mapstructure:"pricefeed"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Export    ExportConfig    `mapstructure:"export"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type PriceFeedConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AlertsConfig struct {
	PortfolioDropThreshold  float64 `mapstructure:"portfolio_drop_threshold"`
	PortfolioGainThreshold  float64 `mapstructure:"portfolio_gain_threshold"`
	IndividualCoinThreshold float64 `mapstructure:"individual_coin_threshold"`
}

type ExportConfig struct {
	AutoExportEnabled   bool   `mapstructure:"auto_export_enabled"`
	ExportIntervalHours int    `mapstructure:"export_interval_hours"`
	KeepHistoryDays     int    `mapstructure:"keep_history_days"`
	Dir                 string `mapstructure:"dir"`
}

type RetentionConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// UpdateInterval returns the poll cadence as a duration.
func (c Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalSeconds) * time.Second
}

// Interval returns the auto-export cadence as a duration.
func (e ExportConfig) Interval() time.Duration {
	return time.Duration(e.ExportIntervalHours) * time.Hour
}

// KeepHistory returns the snapshot age cutoff as a duration.
func (e ExportConfig) KeepHistory() time.Duration {
	return time.Duration(e.KeepHistoryDays) * 24 * time.Hour
}

// Load builds the runtime configuration: built-in defaults first, file
// values merged key-wise on top (nested groups merge per key, unknown
// keys in the file are carried along untouched), TRACKER_* env vars last.
//
// The returned Config is usable even when err != nil: a missing or
// malformed file degrades to defaults and the error only reports why,
// so callers can log it and continue.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		// No extension to infer the format from; the stock config is JSON.
		v.SetConfigType("json")
	}
	v.AutomaticEnv()

	v.SetDefault("update_interval_seconds", 300)
	v.SetDefault("display_currency", "USD")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.path", "tracker.db")
	v.SetDefault("pricefeed.base_url", "https://api.coingecko.com")
	v.SetDefault("pricefeed.timeout", "10s")
	v.SetDefault("alerts.portfolio_drop_threshold", -10.0)
	v.SetDefault("alerts.portfolio_gain_threshold", 15.0)
	v.SetDefault("alerts.individual_coin_threshold", 20.0)
	v.SetDefault("export.auto_export_enabled", true)
	v.SetDefault("export.export_interval_hours", 24)
	v.SetDefault("export.keep_history_days", 90)
	v.SetDefault("export.dir", "exports")
	v.SetDefault("retention.max_entries", 1000)

	readErr := v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	return cfg, readErr
}
