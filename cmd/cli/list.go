package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the records in the corpus",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the configured store and its record count",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

type ListResponse struct {
	Tracks []string `json:"tracks"`
	Count  int      `json:"count"`
}

type StatsResponse struct {
	Store  string `json:"store"`
	Tracks int64  `json:"tracks"`
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext()
	defer stop()

	svc := mustOpenService(ctx)
	defer svc.Close()

	tracks, err := svc.ListTracks(ctx)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	if tracks == nil {
		tracks = []string{}
	}

	if !humanOutput {
		return outputJSON(ListResponse{Tracks: tracks, Count: len(tracks)})
	}
	if len(tracks) == 0 {
		outputHuman("No records in the corpus.\n")
		return nil
	}
	for i, name := range tracks {
		outputHuman("%s  %s\n", padLeft(humanize.Comma(int64(i+1)), 6), name)
	}
	outputHuman("\n%s records\n", humanize.Comma(int64(len(tracks))))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext()
	defer stop()

	svc := mustOpenService(ctx)
	defer svc.Close()

	stats, err := svc.Stats(ctx)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	if humanOutput {
		outputHuman("Store:   %s\n", stats.Store)
		outputHuman("Records: %s\n", humanize.Comma(stats.Tracks))
		return nil
	}
	return outputJSON(StatsResponse{Store: stats.Store, Tracks: stats.Tracks})
}

// padLeft pads a string on the left to the given length.
func padLeft(s string, n int) string {
	for len(s) < n {
		s = " " + s
	}
	return s
}
