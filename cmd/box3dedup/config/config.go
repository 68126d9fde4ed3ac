// Package config builds component configurations for the CLI.
package config

import (
	"box3-dedup-service/internal/matcher"
	"box3-dedup-service/internal/reporter"
	"box3-dedup-service/pkg/errors"
)

// CreateMatchingConfig creates the matcher configuration for CLI usage.
// The tolerances are contract values, not tunables; this validates them and
// surfaces a typed configuration error if the defaults were ever broken.
func CreateMatchingConfig() (*matcher.Config, error) {
	config := matcher.DefaultConfig()

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigError(errors.CodeInvalidConfig, "matcher tolerances", err)
	}

	return config, nil
}

// CreateReportConfig creates a report configuration for the specified
// output format
func CreateReportConfig(format string, includeCrossCategory bool) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.IncludeCrossCategory = includeCrossCategory

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	}

	return config
}
