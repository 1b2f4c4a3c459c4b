package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(matchCmd)
}

var matchCmd = &cobra.Command{
	Use:   "match <fingerprint-file|->",
	Short: "Find the closest corpus record to a fingerprint",
	Long: `Reads a fingerprint record (the FINGERPRINT= value printed by fpcalc) from a
file, or from stdin when the argument is "-", and prints the closest corpus
record. "No match found" is reported when no record is comparable.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	query, err := readInput(args[0])
	if err != nil {
		exitWithError(ExitError, "reading fingerprint: %v", err)
	}

	ctx, stop := commandContext()
	defer stop()

	svc := mustOpenService(ctx)
	defer svc.Close()

	res, err := svc.FindBestMatch(ctx, query)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	printMatch(res)
	return nil
}
