package cmd

import (
	"fmt"
	"os"

	"box3-dedup-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "box3dedup",
	Short: "Box 3 dossier asset deduplication tool",
	Long: `Box3dedup deduplicates the asset collection of a Box 3 objection
dossier. Asset records extracted independently from overlapping source
documents (bank statements, tax returns, WOZ valuations) are fingerprinted,
compared within each category, and merged when the evidence is conclusive.
Ambiguous pairs are flagged for human review, never merged silently.

Examples:
  box3dedup dedupe --dossier dossier.json --tax-years 2022,2023
  box3dedup dedupe --dossier dossier.json --tax-years 2023 --output-format json
  box3dedup version`,
	Version: getVersionString(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}

		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}

	// Read environment variables that match
	viper.SetEnvPrefix("BOX3DEDUP")
	viper.AutomaticEnv()

	if viper.GetBool("verbose") {
		debugLogger, err := logger.NewLogger(logger.DebugConfig(), os.Stderr)
		if err == nil {
			logger.SetGlobalLogger(debugLogger)
		}
	}
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
