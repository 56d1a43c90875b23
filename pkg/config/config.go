// Package config provides configuration for geocol sessions.
//
// A session configuration covers the warehouse location, the experiment
// tracking store, optional object storage for remote warehouses, and
// logging. Configurations load from YAML with ${ENV_VAR} substitution.
package config

import (
	"path/filepath"

	"github.com/visionlake/geocol/pkg/errors"
)

// SessionConfig configures a local analytics session.
type SessionConfig struct {
	// Name identifies the session in logs and tracking runs
	Name string `yaml:"name" json:"name"`

	// Warehouse is the directory datasets are written under
	Warehouse string `yaml:"warehouse" json:"warehouse"`

	// Tracking configures the experiment tracking store
	Tracking TrackingConfig `yaml:"tracking" json:"tracking"`

	// ObjectStore configures optional cloud storage access
	ObjectStore ObjectStoreConfig `yaml:"object_store" json:"object_store"`

	// Logging configures the structured logger
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TrackingConfig configures the experiment tracking store.
type TrackingConfig struct {
	// Path is the tracking database file. Empty means
	// <warehouse>/tracking.db.
	Path string `yaml:"path" json:"path"`
}

// ObjectStoreConfig configures cloud storage used for remote warehouses and
// test fixtures.
type ObjectStoreConfig struct {
	// Provider selects the backend: "s3", "gcs", or empty for none
	Provider string `yaml:"provider" json:"provider"`
	// Bucket is the bucket name
	Bucket string `yaml:"bucket" json:"bucket"`
	// Prefix is prepended to every object key
	Prefix string `yaml:"prefix" json:"prefix"`
	// Region applies to S3 only
	Region string `yaml:"region" json:"region"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level"`
	Encoding    string `yaml:"encoding" json:"encoding"`
	Development bool   `yaml:"development" json:"development"`
}

// Default returns a session configuration with sensible defaults rooted at
// the given warehouse directory.
func Default(name, warehouse string) *SessionConfig {
	return &SessionConfig{
		Name:      name,
		Warehouse: warehouse,
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// TrackingPath returns the effective tracking database path.
func (c *SessionConfig) TrackingPath() string {
	if c.Tracking.Path != "" {
		return c.Tracking.Path
	}
	return filepath.Join(c.Warehouse, "tracking.db")
}

// Validate checks the configuration for completeness.
func (c *SessionConfig) Validate() error {
	if c.Name == "" {
		return errors.New(errors.ErrorTypeConfig, "session name is required")
	}
	if c.Warehouse == "" {
		return errors.New(errors.ErrorTypeConfig, "warehouse directory is required")
	}
	switch c.ObjectStore.Provider {
	case "", "s3", "gcs":
	default:
		return errors.Newf(errors.ErrorTypeConfig,
			"unknown object store provider %q", c.ObjectStore.Provider)
	}
	if c.ObjectStore.Provider != "" && c.ObjectStore.Bucket == "" {
		return errors.New(errors.ErrorTypeConfig, "object store bucket is required")
	}
	return nil
}
