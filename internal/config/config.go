package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	S3         S3Config         `mapstructure:"s3"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Generation GenerationConfig `mapstructure:"generation"`
	Sweeper    SweeperConfig    `mapstructure:"sweeper"`
	Log        LogConfig        `mapstructure:"log"`

	// Planning starts from the embedded tables; the "planning" key overrides entries.
	Planning PlanningTables `mapstructure:"-"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
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

// GenerationConfig configures the plan generation model.
// An empty APIKey switches the server to the offline generator.
type GenerationConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float32       `mapstructure:"temperature"`
}

// SweeperConfig controls the overdue plan sweeper.
// Schedule is a six-field cron expression with seconds first.
type SweeperConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or text
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Nested keys map to env vars, e.g. generation.api_key -> GENERATION_API_KEY
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitness_coach")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.model", "gemini-2.0-flash")
	v.SetDefault("generation.timeout", "60s")
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.schedule", "0 0 23 * * 0") // Sundays 23:00
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	err = v.ReadInConfig()
	// A missing file is fine, env vars and defaults still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	if config.Planning, err = DefaultPlanningTables(); err != nil {
		return
	}
	if v.IsSet("planning") {
		var override PlanningTables
		if err = v.UnmarshalKey("planning", &override); err != nil {
			return config, fmt.Errorf("planning overrides: %w", err)
		}
		config.Planning.merge(override)
		if err = config.Planning.Validate(); err != nil {
			return
		}
	}

	if config.JWT.Secret == "" {
		return config, errors.New("jwt.secret is required")
	}
	if config.Generation.Timeout <= 0 {
		return config, errors.New("generation.timeout must be positive")
	}

	return config, nil
}
