// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logging    LoggingConfig
	Generation GenerationConfig
}

// ServerConfig contains server-related configuration for the thin REST
// adapters (internal/api/rest).
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig contains the SQLite database configuration. Spec section 6
// fixes the deployment model at one SQLite database per deployment; there
// is no second backend to select between.
type DatabaseConfig struct {
	Path            string
	MigrationsPath  string
	MigrationsTable string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// GenerationConfig carries the tunables the scheduler needs that the spec
// fixes as constants (MIN_RECIPES_FOR_MEAL_PLAN, the 5-week cap, the
// default variety weight). Load fills these fields, but nothing reads
// them: the generator and validator use the constants in
// internal/domain/mealplan.
type GenerationConfig struct {
	MaxWeeks               int
	MinRecipesForMealPlan  int
	MinRecipesForMultiWeek int
	DefaultVarietyWeight   float64
}

// Load reads configuration from environment variables and an optional
// config file, following the teacher's viper conventions.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/mealkit")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.SetEnvPrefix("MEALKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("database.path", "./data/mealkit.db")
	viper.SetDefault("database.migrationspath", "internal/database/migrations")
	viper.SetDefault("database.migrationstable", "schema_migrations")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("generation.maxweeks", 5)
	viper.SetDefault("generation.minrecipesformealplan", 7)
	viper.SetDefault("generation.minrecipesformultiweek", 21)
	viper.SetDefault("generation.defaultvarietyweight", 0.7)
}
