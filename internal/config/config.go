package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"turnero/internal/scheduling"
)

type Config struct {
	Server struct {
		Port           int     `yaml:"port"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Enabled         bool   `yaml:"enabled"`
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		BoardTTLMinutes int    `yaml:"board_ttl_minutes"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Scheduling struct {
		SlotGranularityMinutes int `yaml:"slot_granularity_minutes"`
		DefaultServiceMinutes  int `yaml:"default_service_minutes"`
		AverageServiceMinutes  int `yaml:"average_service_minutes"`
		MinServiceMinutes      int `yaml:"min_service_minutes"`
		LockTimeoutSeconds     int `yaml:"lock_timeout_seconds"`
		NoShowToleranceMinutes int `yaml:"no_show_tolerance_minutes"`
		SweepIntervalSeconds   int `yaml:"sweep_interval_seconds"`
	} `yaml:"scheduling"`

	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	// A .env file, when present, feeds the ${ENV_VAR} placeholders below.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/turnero.db"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "configs/catalog.yaml"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SchedulingConfig maps the yaml section onto the scheduling core's config.
// Zero values fall through to the core's own defaults.
func (c *Config) SchedulingConfig() scheduling.Config {
	return scheduling.Config{
		SlotGranularityMinutes: c.Scheduling.SlotGranularityMinutes,
		DefaultServiceMinutes:  c.Scheduling.DefaultServiceMinutes,
		AverageServiceMinutes:  c.Scheduling.AverageServiceMinutes,
		MinServiceMinutes:      c.Scheduling.MinServiceMinutes,
		LockTimeout:            time.Duration(c.Scheduling.LockTimeoutSeconds) * time.Second,
		NoShowTolerance:        time.Duration(c.Scheduling.NoShowToleranceMinutes) * time.Minute,
	}
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) SweepInterval() time.Duration {
	if c.Scheduling.SweepIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Scheduling.SweepIntervalSeconds) * time.Second
}

func (c *Config) BoardTTL() time.Duration {
	if c.Redis.BoardTTLMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.BoardTTLMinutes) * time.Minute
}
