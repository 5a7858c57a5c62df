// Package config loads YAML configuration with environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// Config is the top-level configuration for the research tool.
type Config struct {
	Data       Data       `yaml:"data"`
	Labeling   Labeling   `yaml:"labeling"`
	Simulation Simulation `yaml:"simulation"`
	Ranking    Ranking    `yaml:"ranking"`
	Storage    Storage    `yaml:"storage"`
	Logging    Logging    `yaml:"logging"`
}

// Data holds input and cache paths.
type Data struct {
	SeriesPath string `yaml:"series_path"`
	CacheDir   string `yaml:"cache_dir"`
}

// Labeling parameterizes the outcome scan grid.
type Labeling struct {
	PipSize     float64   `yaml:"pip_size"`
	TargetPips  []float64 `yaml:"target_pips"`
	StopPips    []float64 `yaml:"stop_pips"`
	HorizonBars []int     `yaml:"horizon_bars"`
	Workers     int       `yaml:"workers"`
}

// Simulation parameterizes the trade simulator.
type Simulation struct {
	InitialBalance float64   `yaml:"initial_balance"`
	RiskLevels     []float64 `yaml:"risk_levels"`
	PeriodsPerYear float64   `yaml:"periods_per_year"`
}

// Ranking parameterizes composite scoring.
type Ranking struct {
	TopN    int                `yaml:"top_n"`
	Weights map[string]float64 `yaml:"weights"`
}

// Storage holds database connection strings. Both are optional; without
// them results stay in memory and on disk only.
type Storage struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns a Config with the standard research grid.
func Default() *Config {
	return &Config{
		Data: Data{
			CacheDir: ".labelcache",
		},
		Labeling: Labeling{
			PipSize:     domain.DefaultPipSize,
			TargetPips:  append([]float64(nil), domain.DefaultTargetPips...),
			StopPips:    append([]float64(nil), domain.DefaultStopPips...),
			HorizonBars: append([]int(nil), domain.DefaultHorizonBars...),
		},
		Simulation: Simulation{
			InitialBalance: domain.DefaultInitialBalance,
			RiskLevels:     append([]float64(nil), domain.DefaultRiskLevels...),
			PeriodsPerYear: 252,
		},
		Ranking: Ranking{
			TopN:    domain.DefaultLegendaryCount,
			Weights: copyWeights(domain.DefaultWeights),
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads the YAML configuration file at the given path on top of the
// defaults, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values the rest of the system assumes.
func (c *Config) Validate() error {
	if c.Labeling.PipSize <= 0 {
		return fmt.Errorf("labeling.pip_size must be > 0, got %g", c.Labeling.PipSize)
	}
	if len(c.Labeling.TargetPips) == 0 || len(c.Labeling.StopPips) == 0 || len(c.Labeling.HorizonBars) == 0 {
		return fmt.Errorf("labeling grid must have at least one target, stop and horizon")
	}
	if c.Simulation.InitialBalance <= 0 {
		return fmt.Errorf("simulation.initial_balance must be > 0, got %g", c.Simulation.InitialBalance)
	}
	for _, r := range c.Simulation.RiskLevels {
		if r <= 0 || r > 1 {
			return fmt.Errorf("simulation.risk_levels entries must be in (0, 1], got %g", r)
		}
	}
	if c.Ranking.TopN <= 0 {
		return fmt.Errorf("ranking.top_n must be > 0, got %d", c.Ranking.TopN)
	}
	return nil
}

// Configs expands the labeling grid into the full config cross product.
func (c *Config) Configs() []domain.LabelConfig {
	return domain.ExpandGrid(c.Labeling.TargetPips, c.Labeling.StopPips, c.Labeling.HorizonBars)
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERIES_PATH"); v != "" {
		cfg.Data.SeriesPath = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.Data.CacheDir = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func copyWeights(w map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
