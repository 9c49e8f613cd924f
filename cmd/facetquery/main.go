package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-facet-query/config"
	"github.com/gcbaptista/go-facet-query/internal/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "facetquery",
	Short: "Translate UI search options into engine queries and back",
	Long: `facetquery compiles faceted search options into a filtered engine query,
serializes it as a search URL query string, restores options from a stored
query, and normalizes engine responses.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings reads the config file and applies flag overrides
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}
	return settings, nil
}

// newLogger builds the logger from the log settings
func newLogger(settings *config.Settings) (*zap.Logger, func(), error) {
	logger, closeFn, err := logging.New(settings)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = closeFn() }, nil
}
