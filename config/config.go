package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/intervalbot/market"
	"github.com/rustyeddy/intervalbot/strategies"
)

// Config represents the complete run configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`
	Guard    GuardConfig    `json:"guard" yaml:"guard"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Replay   ReplayConfig   `json:"replay" yaml:"replay"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// ScheduleConfig contains the interval scheduler parameters.
type ScheduleConfig struct {
	Instrument      string  `json:"instrument" yaml:"instrument"`
	Units           float64 `json:"units" yaml:"units"`
	Window          string  `json:"window" yaml:"window"` // "HH:MM-HH:MM"
	IntervalMinutes int     `json:"interval_minutes" yaml:"interval_minutes"`
	MaxPerDay       int     `json:"max_per_day" yaml:"max_per_day"`
	ThresholdPoints float64 `json:"threshold_points" yaml:"threshold_points"`
	Direction       string  `json:"direction" yaml:"direction"` // buy, sell, random
	Timezone        string  `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Seed            int64   `json:"seed,omitempty" yaml:"seed,omitempty"`

	// MaxTickAgeSeconds rejects ticks older than this against the wall
	// clock. Zero disables the check; leave it off for historical replays.
	MaxTickAgeSeconds int `json:"max_tick_age_seconds,omitempty" yaml:"max_tick_age_seconds,omitempty"`

	// Strategy selects the tick strategy by name. Empty means "daily-interval".
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	StopPoints float64 `json:"stop_points,omitempty" yaml:"stop_points,omitempty"`
	TakePoints float64 `json:"take_points,omitempty" yaml:"take_points,omitempty"`

	ADXPeriod     int     `json:"adx_period,omitempty" yaml:"adx_period,omitempty"`
	ADXThreshold  float64 `json:"adx_threshold,omitempty" yaml:"adx_threshold,omitempty"`
	ATRPeriod     int     `json:"atr_period,omitempty" yaml:"atr_period,omitempty"`
	ATRStopMult   float64 `json:"atr_stop_mult,omitempty" yaml:"atr_stop_mult,omitempty"`
	CandleMinutes int     `json:"candle_minutes,omitempty" yaml:"candle_minutes,omitempty"`
}

// GuardConfig contains the equity trailing guard parameters.
type GuardConfig struct {
	Enabled         bool    `json:"enabled" yaml:"enabled"`
	TargetPercent   float64 `json:"target_percent" yaml:"target_percent"`
	TrailingPercent float64 `json:"trailing_percent" yaml:"trailing_percent"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "memory"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	GuardFile  string `json:"guard_file,omitempty" yaml:"guard_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ReplayConfig points at the tick dataset a run replays.
type ReplayConfig struct {
	TicksFile string `json:"ticks_file" yaml:"ticks_file"`
	CloseEnd  bool   `json:"close_end" yaml:"close_end"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if _, ok := market.Instruments[c.Schedule.Instrument]; !ok {
		return fmt.Errorf("unknown instrument: %s", c.Schedule.Instrument)
	}

	if _, err := c.StrategyConfig(); err != nil {
		return err
	}

	if c.Guard.Enabled {
		if c.Guard.TargetPercent <= 0 {
			return fmt.Errorf("guard.target_percent must be positive")
		}
		if c.Guard.TrailingPercent <= 0 || c.Guard.TrailingPercent > 100 {
			return fmt.Errorf("guard.trailing_percent must be in (0,100]")
		}
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" || c.Journal.GuardFile == "" {
			return fmt.Errorf("journal trades_file, equity_file and guard_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "memory":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'memory'")
	}
	return nil
}

// StrategyConfig builds the scheduler configuration, parsing the window,
// direction and timezone. It validates the result.
func (c *Config) StrategyConfig() (strategies.DailyIntervalConfig, error) {
	start, end, err := ParseWindow(c.Schedule.Window)
	if err != nil {
		return strategies.DailyIntervalConfig{}, err
	}

	dir, err := strategies.ParseDirection(c.Schedule.Direction)
	if err != nil {
		return strategies.DailyIntervalConfig{}, err
	}

	loc := time.UTC
	if c.Schedule.Timezone != "" {
		loc, err = time.LoadLocation(c.Schedule.Timezone)
		if err != nil {
			return strategies.DailyIntervalConfig{}, fmt.Errorf("schedule.timezone: %w", err)
		}
	}

	sc := strategies.DailyIntervalConfig{
		Instrument:      c.Schedule.Instrument,
		Units:           c.Schedule.Units,
		WindowStart:     start,
		WindowEnd:       end,
		Interval:        time.Duration(c.Schedule.IntervalMinutes) * time.Minute,
		MaxPerDay:       c.Schedule.MaxPerDay,
		ThresholdPoints: c.Schedule.ThresholdPoints,
		Direction:       dir,
		Location:        loc,
		MaxTickAge:      time.Duration(c.Schedule.MaxTickAgeSeconds) * time.Second,
		StopPoints:      c.Schedule.StopPoints,
		TakePoints:      c.Schedule.TakePoints,
		ADXPeriod:       c.Schedule.ADXPeriod,
		ADXThreshold:    c.Schedule.ADXThreshold,
		ATRPeriod:       c.Schedule.ATRPeriod,
		ATRStopMult:     c.Schedule.ATRStopMult,
		CandlePeriod:    time.Duration(c.Schedule.CandleMinutes) * time.Minute,
	}
	if err := sc.Validate(); err != nil {
		return strategies.DailyIntervalConfig{}, fmt.Errorf("schedule: %w", err)
	}
	return sc, nil
}

// ParseWindow parses a trading window like "06:00-18:00" into minutes from
// midnight. The session wraps past midnight when start > end.
func ParseWindow(s string) (start, end int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("window must be HH:MM-HH:MM, got %q", s)
	}
	start, err = parseHHMM(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("window start: %w", err)
	}
	end, err = parseHHMM(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("window end: %w", err)
	}
	return start, end, nil
}

func parseHHMM(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("time must be HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("hour out of range in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("minute out of range in %q", s)
	}
	return h*60 + m, nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "SIM-001",
			Currency: "USD",
			Balance:  10000,
		},
		Schedule: ScheduleConfig{
			Instrument:      "EUR_USD",
			Units:           1000,
			Window:          "06:00-18:00",
			IntervalMinutes: 240,
			MaxPerDay:       3,
			ThresholdPoints: 42,
			Direction:       "random",
			Strategy:        "daily-interval",
		},
		Guard: GuardConfig{
			Enabled:         true,
			TargetPercent:   2.0,
			TrailingPercent: 50.0,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "trades.csv",
			EquityFile: "equity.csv",
			GuardFile:  "guards.csv",
		},
		Replay: ReplayConfig{
			TicksFile: "ticks.csv",
			CloseEnd:  true,
		},
	}
}
