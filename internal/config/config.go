package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/planning"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Planning  PlanningConfig  `mapstructure:"planning"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// RedisConfig configures the report cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	ReportTTL time.Duration `mapstructure:"report_ttl"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// BootstrapConfig seeds the first manager account at startup, since public
// registration only creates representatives. An empty ManagerEmail skips it.
type BootstrapConfig struct {
	ManagerName     string `mapstructure:"manager_name"`
	ManagerEmail    string `mapstructure:"manager_email"`
	ManagerPassword string `mapstructure:"manager_password"`
}

// PlanningConfig holds the organization's week and alert policy.
type PlanningConfig struct {
	WeekStart            string   `mapstructure:"week_start"`
	PlanningDays         []string `mapstructure:"planning_days"`
	Timezone             string   `mapstructure:"timezone"`
	OverdueThresholdDays int      `mapstructure:"overdue_threshold_days"`
}

// WeekConfig converts the configured weekday names.
func (p PlanningConfig) WeekConfig() (planning.WeekConfig, error) {
	start, ok := domain.ParseWeekday(p.WeekStart)
	if !ok {
		return planning.WeekConfig{}, fmt.Errorf("planning.week_start: unknown weekday %q", p.WeekStart)
	}
	wc := planning.WeekConfig{Start: start}
	for _, name := range p.PlanningDays {
		d, ok := domain.ParseWeekday(name)
		if !ok {
			return planning.WeekConfig{}, fmt.Errorf("planning.planning_days: unknown weekday %q", name)
		}
		wc.PlanningDays = append(wc.PlanningDays, d)
	}
	if err := wc.Validate(); err != nil {
		return planning.WeekConfig{}, err
	}
	return wc, nil
}

// Location resolves the timezone in which calendar days are counted.
func (p PlanningConfig) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("planning.timezone: %w", err)
	}
	return loc, nil
}

// LoadConfig reads configuration from path/config.yaml, overridden by
// environment variables (server.address -> SERVER_ADDRESS).
func LoadConfig(path string) (Config, error) {
	var config Config
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, env vars and defaults still apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, err
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, err
	}
	// AutomaticEnv yields a plain string for list keys
	if len(config.Planning.PlanningDays) == 1 && strings.Contains(config.Planning.PlanningDays[0], ",") {
		config.Planning.PlanningDays = splitList(config.Planning.PlanningDays[0])
	}
	if config.Planning.OverdueThresholdDays < 0 {
		return config, errors.New("planning.overdue_threshold_days must not be negative")
	}
	if config.Bootstrap.ManagerEmail != "" && len(config.Bootstrap.ManagerPassword) < 8 {
		return config, errors.New("bootstrap.manager_password must be at least 8 characters")
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "visit_planner")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.report_ttl", "5m")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("planning.week_start", "saturday")
	v.SetDefault("planning.planning_days", []string{"thursday", "friday"})
	v.SetDefault("planning.timezone", "UTC")
	v.SetDefault("planning.overdue_threshold_days", 30)
	v.SetDefault("bootstrap.manager_name", "Manager")
	v.SetDefault("bootstrap.manager_email", "")
	v.SetDefault("bootstrap.manager_password", "")
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
