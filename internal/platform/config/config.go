// Copyright (c) 2026 Bookvault. All rights reserved.
// Author: a.smelnik.dev@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, importer) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Bookvault API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Publication-year bounds enforced on create, update, and import.
	// The lower default is the Gutenberg Bible; the upper leaves headroom
	// for announced-but-unreleased titles.
	MinPublicationYear int `env:"MIN_PUBLICATION_YEAR" envDefault:"1457"`
	MaxPublicationYear int `env:"MAX_PUBLICATION_YEAR" envDefault:"2100"`

	// ImportColumns is the exact header set a bulk-import spreadsheet must
	// carry (order-independent).
	ImportColumns []string `env:"IMPORT_COLUMNS" envSeparator:"," envDefault:"title,publication_year,genre,price,author,description,cover_image"`

	// BooksFeedURL is the remote endpoint returning a JSON array of
	// book-shaped objects for the pull-based bulk import.
	BooksFeedURL string `env:"BOOKS_FEED_URL,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.MinPublicationYear > cfg.MaxPublicationYear {
		return nil, fmt.Errorf("config: MIN_PUBLICATION_YEAR (%d) exceeds MAX_PUBLICATION_YEAR (%d)",
			cfg.MinPublicationYear, cfg.MaxPublicationYear)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins configured for this deployment.
func (c *Config) AllowedOrigins() []string {
	if strings.TrimSpace(c.ExtraOrigins) == "" {
		return nil
	}

	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
