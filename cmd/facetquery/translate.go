package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-facet-query/internal/builder"
	"github.com/gcbaptista/go-facet-query/internal/engine"
	"github.com/gcbaptista/go-facet-query/internal/reverse"
	"github.com/gcbaptista/go-facet-query/model"
)

var (
	translateNoFacets bool
	translateNoFields bool
	translateJSON     bool
	restoreParam      string
)

var translateCmd = &cobra.Command{
	Use:   "translate [options.json]",
	Short: "Build and serialize the query for a search options file",
	Long: `Reads search options as JSON from the given file, or stdin when omitted,
and prints the serialized query string. With --json the structured query is
printed as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranslate,
}

var restoreCmd = &cobra.Command{
	Use:   "restore [query.json | url]",
	Short: "Recover search options from a structured query or bookmarked URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRestore,
}

var mapCmd = &cobra.Command{
	Use:   "map [response.json]",
	Short: "Normalize a raw engine response",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMap,
}

func init() {
	translateCmd.Flags().BoolVar(&translateNoFacets, "no-facets", false, "leave facet specs out of the query")
	translateCmd.Flags().BoolVar(&translateNoFields, "no-fields", false, "leave field projections out of the query")
	translateCmd.Flags().BoolVar(&translateJSON, "json", false, "print the structured query and query string as JSON")
	restoreCmd.Flags().StringVar(&restoreParam, "param", reverse.DefaultSourceParam, "URL parameter carrying the query JSON")

	rootCmd.AddCommand(translateCmd, restoreCmd, mapCmd)
}

// newCLIEngine builds an engine from the config. Logs never go to stdout.
func newCLIEngine() (*engine.Engine, func(), error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog, err := newLogger(settings)
	if err != nil {
		return nil, nil, err
	}
	return engine.NewEngine(settings, logger, nil), closeLog, nil
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	eng, closeLog, err := newCLIEngine()
	if err != nil {
		return err
	}
	defer closeLog()

	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	var opts model.SearchOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return fmt.Errorf("invalid search options: %w", err)
	}

	var buildOpts []builder.BuildOption
	if translateNoFacets {
		buildOpts = append(buildOpts, builder.WithoutFacets())
	}
	if translateNoFields {
		buildOpts = append(buildOpts, builder.WithoutFields())
	}

	translation, err := eng.Translate(opts, buildOpts...)
	if err != nil {
		return err
	}

	if translateJSON {
		return printJSON(cmd, translation)
	}
	if translation.URL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), translation.URL)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), translation.QueryString)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	var (
		opts model.SearchOptions
		err  error
	)

	if len(args) == 1 && strings.Contains(args[0], "://") {
		opts, err = reverse.ParseOptionsURL(args[0], restoreParam)
	} else {
		var data []byte
		if data, err = readInput(cmd, args); err != nil {
			return err
		}
		opts, err = reverse.ParseOptionsJSON(data)
	}
	if err != nil {
		return err
	}
	return printJSON(cmd, opts)
}

func runMap(cmd *cobra.Command, args []string) error {
	eng, closeLog, err := newCLIEngine()
	if err != nil {
		return err
	}
	defer closeLog()

	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	result, err := eng.MapResponse(data)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
