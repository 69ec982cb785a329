package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env          string        `yaml:"env"`
	Venue        VenueConfig   `yaml:"venue"`
	Session      SessionConfig `yaml:"session"`
	Trading      TradingConfig `yaml:"trading"`
	Limits       LimitsConfig  `yaml:"limits"`
	Pairs        []PairConfig  `yaml:"pairs"`
	Autodiscover bool          `yaml:"autodiscover"`
	Metrics      MetricsConfig `yaml:"metrics"`
	Logging      LogConfig     `yaml:"logging"`
}

type VenueConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	// 每秒报单令牌数与突发上限（0 表示不限流）
	OrderRate  float64 `yaml:"orderRate"`
	OrderBurst int     `yaml:"orderBurst"`
}

type SessionConfig struct {
	DurationMinutes int  `yaml:"durationMinutes"`
	PollMs          int  `yaml:"pollMs"`
	ReportSec       int  `yaml:"reportSec"`
	FlattenOnExit   bool `yaml:"flattenOnExit"`
}

func (s SessionConfig) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

func (s SessionConfig) PollInterval() time.Duration {
	return time.Duration(s.PollMs) * time.Millisecond
}

func (s SessionConfig) ReportInterval() time.Duration {
	return time.Duration(s.ReportSec) * time.Second
}

type TradingConfig struct {
	SpreadThreshold    float64 `yaml:"spreadThreshold"`
	HedgeTolerance     int     `yaml:"hedgeTolerance"`
	MaxHedgeIterations int     `yaml:"maxHedgeIterations"`
}

// LimitsConfig 持仓限额：默认值 + 按合约覆盖。
type LimitsConfig struct {
	Default       int            `yaml:"default"`
	PerInstrument map[string]int `yaml:"perInstrument"`
}

// PairConfig 一条套利组合。future2 非空视为期货-期货形态。
type PairConfig struct {
	Stock           string `yaml:"stock"`
	Future          string `yaml:"future"`
	Future2         string `yaml:"future2"`
	GroupNeutralize bool   `yaml:"groupNeutralize"`
	RequireProfit   bool   `yaml:"requireProfit"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig 与 infrastructure/logger.Config 字段对应。
type LogConfig struct {
	Level      string   `yaml:"level"`
	Outputs    []string `yaml:"outputs"`
	OutputFile string   `yaml:"output_file"`
	Format     string   `yaml:"format"`
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("ARB_VENUE_ENDPOINT"); v != "" {
		cfg.Venue.Endpoint = v
	}
	if v := os.Getenv("ARB_VENUE_API_KEY"); v != "" {
		cfg.Venue.APIKey = v
	}
	return cfg, Validate(cfg)
}

// Validate ensures required fields are present and consistent.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Venue.Endpoint == "" {
		return errors.New("venue.endpoint is required (or ARB_VENUE_ENDPOINT)")
	}
	if cfg.Venue.OrderRate < 0 || cfg.Venue.OrderBurst < 0 {
		return errors.New("venue.orderRate/orderBurst must be >= 0")
	}
	if cfg.Session.DurationMinutes < 0 || cfg.Session.PollMs < 0 || cfg.Session.ReportSec < 0 {
		return errors.New("session durations must be >= 0")
	}
	if cfg.Trading.SpreadThreshold < 0 {
		return errors.New("trading.spreadThreshold must be >= 0")
	}
	if cfg.Trading.HedgeTolerance < 0 {
		return errors.New("trading.hedgeTolerance must be >= 0")
	}
	if cfg.Trading.MaxHedgeIterations < 0 {
		return errors.New("trading.maxHedgeIterations must be >= 0")
	}
	if cfg.Limits.Default < 0 {
		return errors.New("limits.default must be >= 0")
	}
	for id, v := range cfg.Limits.PerInstrument {
		if v < 0 {
			return fmt.Errorf("limits.perInstrument[%s] must be >= 0", id)
		}
	}
	if !cfg.Autodiscover && len(cfg.Pairs) == 0 {
		return errors.New("either pairs or autodiscover is required")
	}
	for i, p := range cfg.Pairs {
		if p.Future == "" {
			return fmt.Errorf("pairs[%d]: future is required", i)
		}
		if p.Future2 == "" && p.Stock == "" {
			return fmt.Errorf("pairs[%d]: stock is required for a stock-future pair", i)
		}
		if p.Future2 != "" && p.GroupNeutralize && p.Stock == "" {
			return fmt.Errorf("pairs[%d]: groupNeutralize needs a stock leg", i)
		}
	}
	return nil
}
