// Package reporter renders deduplication audit results for the human
// reviewer.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: structured output for programmatic consumption
//   - CSV: one row per match, for spreadsheet review
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"box3-dedup-service/internal/dedup"
	"box3-dedup-service/internal/matcher"
	"box3-dedup-service/internal/models"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludeMatches            bool `json:"include_matches"`
	IncludeReviewFlags        bool `json:"include_review_flags"`
	IncludeOwnershipConflicts bool `json:"include_ownership_conflicts"`
	IncludeCrossCategory      bool `json:"include_cross_category"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                    FormatConsole,
		IncludeMatches:            true,
		IncludeReviewFlags:        true,
		IncludeOwnershipConflicts: true,
		IncludeCrossCategory:      true,
		CSVDelimiter:              ',',
		CSVHeaders:                true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// Report bundles one deduplication run's audit output for rendering.
type Report struct {
	Result             *dedup.Result    `json:"result"`
	CrossCategoryFlags []*matcher.Match `json:"cross_category_flags,omitempty"`
}

// ReportGenerator renders deduplication reports in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator. A nil config selects the
// defaults.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport renders the report and writes it to the provided writer
func (rg *ReportGenerator) GenerateReport(report *Report, writer io.Writer) error {
	if report == nil || report.Result == nil {
		return fmt.Errorf("deduplication result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(report, writer)
	case FormatJSON:
		return rg.generateJSONReport(report, writer)
	case FormatCSV:
		return rg.generateCSVReport(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(report *Report, writer io.Writer) error {
	result := report.Result

	fmt.Fprintf(writer, "DEDUPLICATION REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n\n", result.ProcessedAt.Format(time.RFC3339))

	fmt.Fprintf(writer, "=== CATEGORY SUMMARY ===\n")
	fmt.Fprintf(writer, "%-15s %10s %14s %8s\n", "Category", "Original", "Deduplicated", "Removed")
	for _, category := range models.AllCategories() {
		counts := result.Counts[category]
		fmt.Fprintf(writer, "%-15s %10d %14d %8d\n",
			category, counts.Original, counts.Deduplicated, counts.Original-counts.Deduplicated)
	}
	fmt.Fprintf(writer, "\nMerged: %d  Review flagged: %d  Ownership conflicts: %d\n\n",
		result.MergedCount, len(result.ReviewFlagged), len(result.OwnershipConflicts))

	if rg.config.IncludeMatches && len(result.Matches) > 0 {
		fmt.Fprintf(writer, "=== MATCHES ===\n")
		for _, match := range result.Matches {
			rg.printMatch(match, writer)
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeOwnershipConflicts && len(result.OwnershipConflicts) > 0 {
		fmt.Fprintf(writer, "=== OWNERSHIP CONFLICTS ===\n")
		for _, conflict := range result.OwnershipConflicts {
			fmt.Fprintf(writer, "  - %s\n", conflict)
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeCrossCategory && len(report.CrossCategoryFlags) > 0 {
		fmt.Fprintf(writer, "=== CROSS-CATEGORY REVIEW FLAGS ===\n")
		for _, match := range report.CrossCategoryFlags {
			rg.printMatch(match, writer)
		}
		fmt.Fprintf(writer, "\n")
	}

	return nil
}

func (rg *ReportGenerator) printMatch(match *matcher.Match, writer io.Writer) {
	fmt.Fprintf(writer, "  %-12s %5.0f  %s <> %s  [%s]",
		match.Level, match.Score, match.AssetID, match.OtherAssetID, match.Recommendation)
	if len(match.MatchedOn) > 0 {
		fmt.Fprintf(writer, "  matched: %s", strings.Join(match.MatchedOn, ", "))
	}
	if len(match.Conflicts) > 0 {
		fmt.Fprintf(writer, "  conflicts: %s", strings.Join(match.Conflicts, "; "))
	}
	fmt.Fprintf(writer, "\n")
}

func (rg *ReportGenerator) generateJSONReport(report *Report, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	output := &Report{Result: report.Result}
	if rg.config.IncludeCrossCategory {
		output.CrossCategoryFlags = report.CrossCategoryFlags
	}

	return encoder.Encode(output)
}

func (rg *ReportGenerator) generateCSVReport(report *Report, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		header := []string{"asset_id", "other_asset_id", "match_level", "match_score",
			"recommendation", "matched_on", "conflicts", "kept_id", "merged_id"}
		if err := csvWriter.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	writeMatch := func(match *matcher.Match) error {
		record := []string{
			match.AssetID,
			match.OtherAssetID,
			match.Level.String(),
			strconv.FormatFloat(match.Score, 'f', 0, 64),
			match.Recommendation.String(),
			strings.Join(match.MatchedOn, "|"),
			strings.Join(match.Conflicts, "|"),
			match.KeptID,
			match.MergedID,
		}
		return csvWriter.Write(record)
	}

	for _, match := range report.Result.Matches {
		if err := writeMatch(match); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	if rg.config.IncludeCrossCategory {
		for _, match := range report.CrossCategoryFlags {
			if err := writeMatch(match); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	return csvWriter.Error()
}
