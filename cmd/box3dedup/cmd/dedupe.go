package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"box3-dedup-service/cmd/box3dedup/config"
	"box3-dedup-service/internal/dedup"
	"box3-dedup-service/internal/parsers"
	"box3-dedup-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the dedupe command
var (
	dossierFile   string
	taxYears      []int
	outputFormat  string
	outputFile    string
	dedupedFile   string
	crossCategory bool
)

// dedupeCmd represents the dedupe command
var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Deduplicate the asset collection of a dossier",
	Long: `Dedupe fingerprints every asset in a dossier blueprint, compares all
pairs within each category, merges conclusive duplicates, and flags
ambiguous pairs for review. A second advisory pass detects records
misclassified across categories.

This command requires:
- A dossier blueprint file (JSON format)
- The tax years under consideration

Examples:
  # Basic deduplication with a console report
  box3dedup dedupe --dossier dossier.json --tax-years 2022,2023

  # JSON audit report written to a file
  box3dedup dedupe --dossier dossier.json --tax-years 2023 \
    --output-format json --output-file audit.json

  # Also write the deduplicated replacement collection
  box3dedup dedupe --dossier dossier.json --tax-years 2023 \
    --deduped-file dossier.deduped.json

  # Skip the cross-category advisory pass
  box3dedup dedupe --dossier dossier.json --tax-years 2023 --cross-category=false`,

	PreRunE: validateDedupeFlags,
	RunE:    runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)

	// Required flags
	dedupeCmd.Flags().StringVarP(&dossierFile, "dossier", "d", "", "path to dossier blueprint JSON file (required)")
	dedupeCmd.Flags().IntSliceVarP(&taxYears, "tax-years", "y", []int{}, "comma-separated tax years under consideration (required)")

	// Output flags
	dedupeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	dedupeCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "audit report file path (default: stdout)")
	dedupeCmd.Flags().StringVar(&dedupedFile, "deduped-file", "", "write the deduplicated collection to this path")

	// Behavior flags
	dedupeCmd.Flags().BoolVar(&crossCategory, "cross-category", true, "run the cross-category advisory pass")

	// Mark required flags
	dedupeCmd.MarkFlagRequired("dossier")
	dedupeCmd.MarkFlagRequired("tax-years")

	// Bind flags to viper
	viper.BindPFlag("dossier", dedupeCmd.Flags().Lookup("dossier"))
	viper.BindPFlag("tax-years", dedupeCmd.Flags().Lookup("tax-years"))
	viper.BindPFlag("output-format", dedupeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", dedupeCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("deduped-file", dedupeCmd.Flags().Lookup("deduped-file"))
	viper.BindPFlag("cross-category", dedupeCmd.Flags().Lookup("cross-category"))
}

func validateDedupeFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	dossierFile = viper.GetString("dossier")
	taxYears = viper.GetIntSlice("tax-years")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	dedupedFile = viper.GetString("deduped-file")
	crossCategory = viper.GetBool("cross-category")

	if dossierFile == "" {
		return fmt.Errorf("dossier file is required")
	}
	if len(taxYears) == 0 {
		return fmt.Errorf("at least one tax year is required")
	}

	for _, year := range taxYears {
		if year < 2000 || year > 2100 {
			return fmt.Errorf("implausible tax year: %d", year)
		}
	}

	if err := validateFileExists(dossierFile, "dossier blueprint file"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	for _, path := range []string{outputFile, dedupedFile} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runDedupe(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting deduplication...\n")
		fmt.Fprintf(os.Stderr, "Dossier file: %s\n", dossierFile)
		fmt.Fprintf(os.Stderr, "Tax years: %v\n", taxYears)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
	}

	blueprint, err := parsers.LoadBlueprint(dossierFile)
	if err != nil {
		return err
	}

	matchingConfig, err := config.CreateMatchingConfig()
	if err != nil {
		return err
	}

	deduplicator := dedup.NewDeduplicator(matchingConfig)
	deduped, result := deduplicator.Run(blueprint, taxYears)

	report := &reporter.Report{Result: result}
	if crossCategory {
		report.CrossCategoryFlags = dedup.DetectCrossCategoryDuplicates(deduped, taxYears)
	}

	reportConfig := config.CreateReportConfig(outputFormat, crossCategory)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	if err := reportGenerator.GenerateReport(report, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if dedupedFile != "" {
		dedupedOutput, err := os.Create(dedupedFile)
		if err != nil {
			return fmt.Errorf("failed to create deduped file: %w", err)
		}
		defer dedupedOutput.Close()

		if err := parsers.WriteBlueprint(deduped, dedupedOutput); err != nil {
			return fmt.Errorf("failed to write deduplicated collection: %w", err)
		}
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nDeduplication completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Assets: %d before, %d after (%d merged).\n",
			blueprint.TotalAssetCount(), deduped.TotalAssetCount(), result.MergedCount)
		fmt.Fprintf(os.Stderr, "Review flagged: %d, ownership conflicts: %d.\n",
			len(result.ReviewFlagged), len(result.OwnershipConflicts))
		if crossCategory {
			fmt.Fprintf(os.Stderr, "Cross-category review flags: %d.\n", len(report.CrossCategoryFlags))
		}
	}

	return nil
}
