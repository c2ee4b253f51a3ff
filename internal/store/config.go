package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"signal-engine/internal/levels"
	"signal-engine/internal/risk"
	"signal-engine/internal/ta"
)

// Config is the engine configuration loaded from config.yaml. The
// indicator periods, level-detection tunables, and risk thresholds are
// all named here rather than hard-coded: their calibration is not a law
// of nature and differs per instrument class.
type Config struct {
	Universe    []string `yaml:"universe"`
	CandleCount int      `yaml:"candle_count"`
	PollSeconds int      `yaml:"poll_seconds"`
	MetricsAddr string   `yaml:"metrics_addr"`

	Indicators ta.Config     `yaml:"indicators"`
	Levels     levels.Config `yaml:"levels"`
	Risk       risk.Config   `yaml:"risk"`

	Batch struct {
		MaxConcurrent int `yaml:"max_concurrent"`
	} `yaml:"batch"`

	Profile struct {
		MaxDailyRiskPercent float64 `yaml:"max_daily_risk_percent"`
		PortfolioValue      float64 `yaml:"portfolio_value"`
		DefaultPositionSize float64 `yaml:"default_position_size"`
		AllowShorting       bool    `yaml:"allow_shorting"`
	} `yaml:"profile"`
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if len(c.Universe) == 0 {
		return errors.New("universe cannot be empty")
	}
	if c.CandleCount < 2 {
		return fmt.Errorf("candle_count must be at least 2, got %d", c.CandleCount)
	}
	if c.Batch.MaxConcurrent <= 0 {
		return fmt.Errorf("batch.max_concurrent must be positive, got %d", c.Batch.MaxConcurrent)
	}
	if c.Profile.PortfolioValue <= 0 {
		return fmt.Errorf("profile.portfolio_value must be positive, got %.2f", c.Profile.PortfolioValue)
	}
	if c.Profile.MaxDailyRiskPercent <= 0 || c.Profile.MaxDailyRiskPercent > 100 {
		return fmt.Errorf("profile.max_daily_risk_percent must be between 0-100, got %.2f", c.Profile.MaxDailyRiskPercent)
	}
	return nil
}

// LoadConfig reads, defaults, and validates the yaml config at path.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.CandleCount == 0 {
		c.CandleCount = 250
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 15
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9090"
	}
	if c.Batch.MaxConcurrent == 0 {
		c.Batch.MaxConcurrent = 10
	}
	if c.Profile.PortfolioValue == 0 {
		c.Profile.PortfolioValue = 100000
	}
	if c.Profile.MaxDailyRiskPercent == 0 {
		c.Profile.MaxDailyRiskPercent = 2.0
	}
	if c.Profile.DefaultPositionSize == 0 {
		c.Profile.DefaultPositionSize = 10000
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
