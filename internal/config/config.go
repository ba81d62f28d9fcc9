// Package config handles loading pomo configuration files.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/amonks/pomo/internal/paths"
	internalstrings "github.com/amonks/pomo/internal/strings"
	"github.com/amonks/pomo/internal/validation"
	"github.com/amonks/pomo/task"
	"github.com/amonks/pomo/timer"
)

// Store backends.
const (
	BackendJSONL  = "jsonl"
	BackendLibsql = "libsql"
)

// DefaultDailyGoal is the number of pomodoros per day shown as the goal.
const DefaultDailyGoal = 8

// ErrUnknownBackend is returned when [store] backend names no known store.
var ErrUnknownBackend = errors.New("unknown store backend")

// Config is the effective configuration.
type Config struct {
	Timer     timer.Config `toml:"timer"`
	Stats     Stats        `toml:"stats"`
	Store     Store        `toml:"store"`
	Telemetry Telemetry    `toml:"telemetry"`

	// Warnings lists values that were replaced by defaults.
	Warnings []string `toml:"-"`
}

// Stats contains statistics-related configuration.
type Stats struct {
	ExcludeWeekendsFromStreak bool `toml:"exclude-weekends-from-streak"`
	DailyGoal                 int  `toml:"daily-goal"`
}

// Store selects where tasks, projects and events are kept.
type Store struct {
	// Backend is "jsonl" (files in the data dir) or "libsql".
	Backend string `toml:"backend"`

	// URL is the libsql database URL, e.g. file:/path/pomo.db or libsql://host.
	URL string `toml:"url,omitempty"`

	// AuthToken authenticates against remote libsql databases.
	AuthToken string `toml:"auth-token,omitempty"`

	// RetainEvents bounds the event log.
	RetainEvents int `toml:"retain-events"`
}

// Telemetry configures OTLP metric export.
type Telemetry struct {
	// Endpoint is the OTLP/gRPC collector address. Empty disables export.
	Endpoint string `toml:"endpoint,omitempty"`
	Insecure bool   `toml:"insecure"`
}

// rawConfig mirrors the file layout. Numeric settings are decoded loosely
// so a bad value falls back to its default instead of failing the load.
type rawConfig struct {
	Timer struct {
		WorkMinutes       any  `toml:"work-minutes"`
		ShortBreakMinutes any  `toml:"short-break-minutes"`
		LongBreakMinutes  any  `toml:"long-break-minutes"`
		LongBreakInterval any  `toml:"long-break-interval"`
		AutoStartBreaks   bool `toml:"auto-start-breaks"`
		FlowMode          bool `toml:"flow-mode"`
	} `toml:"timer"`
	Stats struct {
		ExcludeWeekendsFromStreak bool `toml:"exclude-weekends-from-streak"`
		DailyGoal                 any  `toml:"daily-goal"`
	} `toml:"stats"`
	Store struct {
		Backend      string `toml:"backend"`
		URL          string `toml:"url"`
		AuthToken    string `toml:"auth-token"`
		RetainEvents any    `toml:"retain-events"`
	} `toml:"store"`
	Telemetry struct {
		Endpoint string `toml:"endpoint"`
		Insecure bool   `toml:"insecure"`
	} `toml:"telemetry"`
}

// Load loads the global config file, overridden key by key by the file
// named in POMO_CONFIG. Missing files contribute nothing.
func Load() (*Config, error) {
	globalPath, err := paths.GlobalConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFiles(globalPath, paths.OverrideConfigPath())
}

// LoadFiles loads and merges the given config files. An empty
// overridePath is ignored.
func LoadFiles(globalPath, overridePath string) (*Config, error) {
	globalCfg, _, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	overrideCfg, overrideMeta := &rawConfig{}, toml.MetaData{}
	if overridePath != "" {
		overrideCfg, overrideMeta, err = loadConfigFile(overridePath)
		if err != nil {
			return nil, err
		}
	}

	return resolve(mergeConfigs(globalCfg, overrideCfg, overrideMeta))
}

func loadConfigFile(path string) (*rawConfig, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &rawConfig{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg rawConfig
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, overrideCfg *rawConfig, overrideMeta toml.MetaData) *rawConfig {
	merged := *globalCfg
	defined := func(section, key string) bool { return overrideMeta.IsDefined(section, key) }

	merged.Timer.WorkMinutes = pick(defined("timer", "work-minutes"), overrideCfg.Timer.WorkMinutes, globalCfg.Timer.WorkMinutes)
	merged.Timer.ShortBreakMinutes = pick(defined("timer", "short-break-minutes"), overrideCfg.Timer.ShortBreakMinutes, globalCfg.Timer.ShortBreakMinutes)
	merged.Timer.LongBreakMinutes = pick(defined("timer", "long-break-minutes"), overrideCfg.Timer.LongBreakMinutes, globalCfg.Timer.LongBreakMinutes)
	merged.Timer.LongBreakInterval = pick(defined("timer", "long-break-interval"), overrideCfg.Timer.LongBreakInterval, globalCfg.Timer.LongBreakInterval)
	merged.Timer.AutoStartBreaks = pick(defined("timer", "auto-start-breaks"), overrideCfg.Timer.AutoStartBreaks, globalCfg.Timer.AutoStartBreaks)
	merged.Timer.FlowMode = pick(defined("timer", "flow-mode"), overrideCfg.Timer.FlowMode, globalCfg.Timer.FlowMode)

	merged.Stats.ExcludeWeekendsFromStreak = pick(defined("stats", "exclude-weekends-from-streak"), overrideCfg.Stats.ExcludeWeekendsFromStreak, globalCfg.Stats.ExcludeWeekendsFromStreak)
	merged.Stats.DailyGoal = pick(defined("stats", "daily-goal"), overrideCfg.Stats.DailyGoal, globalCfg.Stats.DailyGoal)

	merged.Store.Backend = pick(defined("store", "backend"), overrideCfg.Store.Backend, globalCfg.Store.Backend)
	merged.Store.URL = pick(defined("store", "url"), overrideCfg.Store.URL, globalCfg.Store.URL)
	merged.Store.AuthToken = pick(defined("store", "auth-token"), overrideCfg.Store.AuthToken, globalCfg.Store.AuthToken)
	merged.Store.RetainEvents = pick(defined("store", "retain-events"), overrideCfg.Store.RetainEvents, globalCfg.Store.RetainEvents)

	merged.Telemetry.Endpoint = pick(defined("telemetry", "endpoint"), overrideCfg.Telemetry.Endpoint, globalCfg.Telemetry.Endpoint)
	merged.Telemetry.Insecure = pick(defined("telemetry", "insecure"), overrideCfg.Telemetry.Insecure, globalCfg.Telemetry.Insecure)

	return &merged
}

func pick[T any](overrideDefined bool, overrideValue, globalValue T) T {
	if overrideDefined {
		return overrideValue
	}
	return globalValue
}

func resolve(raw *rawConfig) (*Config, error) {
	cfg := &Config{}
	defaults := timer.DefaultConfig()

	cfg.Timer = timer.Config{
		WorkMinutes:       cfg.positive("timer.work-minutes", raw.Timer.WorkMinutes, defaults.WorkMinutes),
		ShortBreakMinutes: cfg.positive("timer.short-break-minutes", raw.Timer.ShortBreakMinutes, defaults.ShortBreakMinutes),
		LongBreakMinutes:  cfg.positive("timer.long-break-minutes", raw.Timer.LongBreakMinutes, defaults.LongBreakMinutes),
		LongBreakInterval: cfg.count("timer.long-break-interval", raw.Timer.LongBreakInterval, defaults.LongBreakInterval),
		AutoStartBreaks:   raw.Timer.AutoStartBreaks,
		FlowModeEnabled:   raw.Timer.FlowMode,
	}

	cfg.Stats = Stats{
		ExcludeWeekendsFromStreak: raw.Stats.ExcludeWeekendsFromStreak,
		DailyGoal:                 cfg.count("stats.daily-goal", raw.Stats.DailyGoal, DefaultDailyGoal),
	}

	backend := internalstrings.NormalizeLowerTrimSpace(raw.Store.Backend)
	switch backend {
	case "":
		backend = BackendJSONL
	case BackendJSONL, BackendLibsql:
	default:
		return nil, validation.FormatInvalidValueError(ErrUnknownBackend, raw.Store.Backend, []string{BackendJSONL, BackendLibsql})
	}
	cfg.Store = Store{
		Backend:      backend,
		URL:          strings.TrimSpace(raw.Store.URL),
		AuthToken:    strings.TrimSpace(raw.Store.AuthToken),
		RetainEvents: cfg.count("store.retain-events", raw.Store.RetainEvents, task.DefaultRetention),
	}

	cfg.Telemetry = Telemetry{
		Endpoint: strings.TrimSpace(raw.Telemetry.Endpoint),
		Insecure: raw.Telemetry.Insecure,
	}
	return cfg, nil
}

// positive interprets value as a positive number, or warns and returns fallback.
func (c *Config) positive(key string, value any, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	n, ok := number(value)
	if !ok || n <= 0 {
		c.warn(key, value, fallback)
		return fallback
	}
	return n
}

// count interprets value as a positive whole number, or warns and returns fallback.
func (c *Config) count(key string, value any, fallback int) int {
	if value == nil {
		return fallback
	}
	n, ok := number(value)
	if !ok || n < 1 || n != math.Trunc(n) {
		c.warn(key, value, fallback)
		return fallback
	}
	return int(n)
}

func (c *Config) warn(key string, value any, fallback any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf("%s: invalid value %v, using %v", key, value, fallback))
}

func number(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case int64:
		n = float64(v)
	case float64:
		n = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Encode writes cfg as TOML.
func Encode(cfg *Config) (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
