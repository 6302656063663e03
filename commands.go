package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"m3u-parser/work/logger"
	"m3u-parser/work/parser"
	"m3u-parser/work/playlist"
)

// parse flags
var (
	parseNoCheckLive      bool
	parseOutput           string
	parseFormat           string
	parseRetrieveCategory []string
	parseRemoveCategory   []string
	parseRetrieveExt      []string
	parseRemoveExt        []string
	parseSortBy           string
	parseDesc             bool
	parseNested           bool
	parseIndent           int
	randomShuffle         bool
	randomNoCheckLive     bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <path-or-url>",
	Short: "Parse a playlist and print or save its streams",
	Args:  cobra.ExactArgs(1),
	RunE:  parseRun,
}

var randomCmd = &cobra.Command{
	Use:   "random <path-or-url>",
	Short: "Print one random stream from a playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  randomRun,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	f := parseCmd.Flags()
	f.BoolVar(&parseNoCheckLive, "no-check-live", false, "Skip stream liveness checks")
	f.StringVarP(&parseOutput, "output", "o", "", "Write to this file instead of stdout")
	f.StringVar(&parseFormat, "format", "", "json, m3u, sqlite or db (default json, or the output file's extension)")
	f.StringSliceVar(&parseRetrieveCategory, "retrieve-category", nil, "Keep streams whose category matches any of these")
	f.StringSliceVar(&parseRemoveCategory, "remove-category", nil, "Drop streams whose category matches any of these")
	f.StringSliceVar(&parseRetrieveExt, "retrieve-ext", nil, "Keep streams whose URL matches any of these extensions")
	f.StringSliceVar(&parseRemoveExt, "remove-ext", nil, "Drop streams whose URL matches any of these extensions")
	f.StringVar(&parseSortBy, "sort-by", "", "Sort by this key, e.g. name or tvg-id")
	f.BoolVar(&parseDesc, "desc", false, "Sort descending")
	f.BoolVar(&parseNested, "nested", false, "Treat --sort-by as a nested key such as tvg-id")
	f.IntVar(&parseIndent, "indent", playlist.DefaultIndent, "JSON indentation, 0 for compact")

	randomCmd.Flags().BoolVar(&randomShuffle, "shuffle", false, "Shuffle before picking")
	randomCmd.Flags().BoolVar(&randomNoCheckLive, "no-check-live", false, "Skip stream liveness checks")
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func parseRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	m, err := parser.NewM3uParser(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.ParseM3u(ctx, args[0], !parseNoCheckLive); err != nil {
		return err
	}

	steps := []struct {
		values []string
		apply  func([]string) error
	}{
		{parseRetrieveCategory, m.RetrieveByCategory},
		{parseRemoveCategory, m.RemoveByCategory},
		{parseRetrieveExt, m.RetrieveByExtension},
		{parseRemoveExt, m.RemoveByExtension},
	}
	for _, step := range steps {
		if len(step.values) == 0 {
			continue
		}
		if err := step.apply(step.values); err != nil {
			return err
		}
	}

	if parseSortBy != "" {
		if err := m.SortBy(parseSortBy, !parseDesc, parseNested, ""); err != nil {
			return err
		}
	}

	logger.Debug("{main - parseRun} %d streams after operations", m.Len())

	if parseOutput != "" {
		written, err := m.SaveToFile(ctx, parseOutput, parseFormat)
		if err != nil {
			return err
		}
		logger.Info("{main - parseRun} wrote %d streams to %s", m.Len(), written)
		return nil
	}

	out := cmd.OutOrStdout()
	switch parseFormat {
	case "", playlist.FormatJSON:
		return playlist.EncodeJSON(out, m.Streams(), parseIndent)
	case playlist.FormatM3U:
		return playlist.EncodeM3U(out, m.Streams())
	default:
		return fmt.Errorf("format %q needs --output", parseFormat)
	}
}

func randomRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	m, err := parser.NewM3uParser(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.ParseM3u(ctx, args[0], !randomNoCheckLive); err != nil {
		return err
	}

	record, err := m.GetRandomStream(randomShuffle)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "    ")
	return enc.Encode(record)
}
