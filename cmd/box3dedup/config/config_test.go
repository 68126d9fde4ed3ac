package config

import (
	"testing"

	"box3-dedup-service/internal/reporter"
)

func TestCreateMatchingConfig(t *testing.T) {
	config, err := CreateMatchingConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.HighTolerance != 0.01 {
		t.Errorf("expected high tolerance 0.01, got %f", config.HighTolerance)
	}
	if config.ConflictTolerance != 0.05 {
		t.Errorf("expected conflict tolerance 0.05, got %f", config.ConflictTolerance)
	}
	if config.WOZTolerance != 0.05 {
		t.Errorf("expected WOZ tolerance 0.05, got %f", config.WOZTolerance)
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format   string
		expected reporter.OutputFormat
	}{
		{"console", reporter.FormatConsole},
		{"json", reporter.FormatJSON},
		{"csv", reporter.FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			config := CreateReportConfig(tt.format, true)
			if config.Format != tt.expected {
				t.Errorf("expected format %s, got %s", tt.expected, config.Format)
			}
			if err := config.Validate(); err != nil {
				t.Errorf("generated configuration is invalid: %v", err)
			}
		})
	}
}

func TestCreateReportConfig_CrossCategoryToggle(t *testing.T) {
	if config := CreateReportConfig("console", false); config.IncludeCrossCategory {
		t.Error("expected cross-category reporting disabled")
	}
	if config := CreateReportConfig("console", true); !config.IncludeCrossCategory {
		t.Error("expected cross-category reporting enabled")
	}
}
