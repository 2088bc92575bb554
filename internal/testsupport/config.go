// Package testsupport centralizes fixtures shared across package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"tracksync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DatabaseDir = filepath.Join(base, "catalog")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithSimilarityThreshold overrides the duplicate-detection threshold.
func WithSimilarityThreshold(threshold float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Dupes.SimilarityThreshold = threshold
	}
}

// WithExtensions overrides the scanned music extensions.
func WithExtensions(exts ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.Extensions = exts
	}
}
