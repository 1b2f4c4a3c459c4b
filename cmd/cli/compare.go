package main

import (
	"github.com/spf13/cobra"

	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

var compareScorer string

func init() {
	compareCmd.Flags().StringVar(&compareScorer, "scorer", "", "Scorer: element (default) or bits")
	rootCmd.AddCommand(compareCmd)
}

var compareCmd = &cobra.Command{
	Use:   "compare <fingerprint-a> <fingerprint-b>",
	Short: "Print the distance between two fingerprint records",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

type CompareResponse struct {
	Distance fingerprint.Distance `json:"distance"`
	LengthA  int                  `json:"length_a"`
	LengthB  int                  `json:"length_b"`
	Compared int                  `json:"compared"`
}

func runCompare(cmd *cobra.Command, args []string) error {
	scorer, err := fingerprint.ScorerByName(compareScorer)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	a, _, err := loadVector(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%s: %v", args[0], err)
	}
	b, _, err := loadVector(args[1])
	if err != nil {
		exitWithError(ExitDataError, "%s: %v", args[1], err)
	}

	resp := CompareResponse{
		Distance: scorer.Score(a, b),
		LengthA:  len(a),
		LengthB:  len(b),
		Compared: min(len(a), len(b)),
	}
	if humanOutput {
		outputHuman("Distance: %s over %d values (%d vs %d)\n", resp.Distance, resp.Compared, resp.LengthA, resp.LengthB)
		return nil
	}
	return outputJSON(resp)
}
