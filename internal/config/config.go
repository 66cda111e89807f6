// Package config loads and validates application configuration from default
// values, an optional config.yaml, and BOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Discord   DiscordConfig   `mapstructure:"discord"`
	Purge     PurgeConfig     `mapstructure:"purge"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls the slog sink.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"` // empty disables the file sink
}

// DiscordConfig holds gateway credentials and the command surface.
type DiscordConfig struct {
	Token         string `mapstructure:"token"          validate:"required"`
	CommandPrefix string `mapstructure:"command_prefix" validate:"required"`
}

// PurgeConfig tunes the scan and deletion engine. The pauses are tuned
// against Discord's rate limits; treat them as deployment knobs.
type PurgeConfig struct {
	CaseSensitive  bool          `mapstructure:"case_sensitive"`
	PageSize       int           `mapstructure:"page_size"       validate:"min=1,max=100"`
	PagesPerPause  int           `mapstructure:"pages_per_pause" validate:"min=1"`
	PagePause      time.Duration `mapstructure:"page_pause"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	BulkMaxAge     time.Duration `mapstructure:"bulk_max_age"    validate:"min=1h"`
	ChunkSize      int           `mapstructure:"chunk_size"      validate:"min=1,max=100"`
	ChunkPause     time.Duration `mapstructure:"chunk_pause"`
	FallbackPause  time.Duration `mapstructure:"fallback_pause"`
	BatchSize      int           `mapstructure:"batch_size"      validate:"min=1"`
	GroupSize      int           `mapstructure:"group_size"      validate:"min=1,max=10"`
	GroupPause     time.Duration `mapstructure:"group_pause"`
	BatchPause     time.Duration `mapstructure:"batch_pause"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout" validate:"min=5s,max=10m"`
}

// DatabaseConfig locates the SQLite audit database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AuditConfig controls the purge audit log.
type AuditConfig struct {
	Retention time.Duration `mapstructure:"retention" validate:"min=24h"`
	LogLimit  int           `mapstructure:"log_limit" validate:"min=1,max=25"`
}

// SchedulerConfig lists the scheduled maintenance tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables one scheduled task with a cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Load reads configuration in precedence order (defaults, config file,
// environment) and validates the result.
func Load(path string) (*Config, error) {
	setDefaults()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; env and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", true)
	viper.SetDefault("log.file", "")

	viper.SetDefault("discord.command_prefix", "!purge")

	viper.SetDefault("purge.case_sensitive", false)
	viper.SetDefault("purge.page_size", 100)
	viper.SetDefault("purge.pages_per_pause", 3)
	viper.SetDefault("purge.page_pause", 300*time.Millisecond)
	viper.SetDefault("purge.retry_delay", time.Second)
	viper.SetDefault("purge.bulk_max_age", 14*24*time.Hour)
	viper.SetDefault("purge.chunk_size", 100)
	viper.SetDefault("purge.chunk_pause", 800*time.Millisecond)
	viper.SetDefault("purge.fallback_pause", 1500*time.Millisecond)
	viper.SetDefault("purge.batch_size", 25)
	viper.SetDefault("purge.group_size", 3)
	viper.SetDefault("purge.group_pause", 200*time.Millisecond)
	viper.SetDefault("purge.batch_pause", time.Second)
	viper.SetDefault("purge.confirm_timeout", 60*time.Second)

	viper.SetDefault("database.path", "storage.db")

	viper.SetDefault("audit.retention", 90*24*time.Hour)
	viper.SetDefault("audit.log_limit", 10)

	viper.SetDefault("scheduler.tasks.audit_prune.enabled", true)
	viper.SetDefault("scheduler.tasks.audit_prune.schedule", "0 4 * * *")
	viper.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	viper.SetDefault("scheduler.tasks.sql_maintenance.schedule", "30 4 * * 0")
}
