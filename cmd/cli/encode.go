package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

var (
	encodeAlgorithm uint8
	encodeOut       string
)

func init() {
	encodeCmd.Flags().Uint8Var(&encodeAlgorithm, "algorithm", fingerprint.DefaultAlgorithm, "Algorithm id written to the record header")
	encodeCmd.Flags().StringVarP(&encodeOut, "out", "o", "", "Write the record to this file instead of stdout")
	rootCmd.AddCommand(encodeCmd)
}

var encodeCmd = &cobra.Command{
	Use:   "encode <values-file|->",
	Short: "Encode sub-fingerprint values as a fingerprint record",
	Long: `Reads unsigned or signed 32-bit sub-fingerprint values separated by
whitespace or commas (e.g. the output of "fpcalc -raw") and writes the
compressed base64 record that fpcalc would print.`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func runEncode(cmd *cobra.Command, args []string) error {
	data, err := readInput(args[0])
	if err != nil {
		exitWithError(ExitError, "reading values: %v", err)
	}
	v, err := parseValues(string(data))
	if err != nil {
		exitWithError(ExitDataError, "parsing values: %v", err)
	}
	record, err := fingerprint.Encode(v, encodeAlgorithm)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if encodeOut != "" {
		if err := os.WriteFile(encodeOut, record, 0o644); err != nil {
			exitWithError(ExitError, "writing %s: %v", encodeOut, err)
		}
		if humanOutput {
			outputHuman("Wrote %d values to %s\n", len(v), encodeOut)
		}
		return nil
	}
	_, err = os.Stdout.Write(append(record, '\n'))
	return err
}
