// Package config loads repo-analyzer settings from a YAML file, environment
// variables, and defaults.
package config

import (
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/probe"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/report"
)

// Analysis defaults.
const (
	DefaultThreshold       = churn.DefaultThreshold
	DefaultExcludeVendored = false
	DefaultBackend         = probe.BackendExec
	DefaultFormat          = string(report.FormatHTML)
	DefaultOutput          = ""
	DefaultTheme           = "light"
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Publish defaults.
const (
	DefaultPublishRegion   = ""
	DefaultPublishEndpoint = ""
)

// DefaultIgnoredPaths returns the top-level directories skipped by default.
func DefaultIgnoredPaths() []string {
	return churn.DefaultIgnoredPaths()
}

// DefaultSelectedExtensions returns the extensions analyzed by default.
func DefaultSelectedExtensions() []string {
	return churn.DefaultExtensions()
}
